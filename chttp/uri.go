// Licensed under the Apache License, Version 2.0 (the "License"); you may not
// use this file except in compliance with the License. You may obtain a copy of
// the License at
//
//  http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS, WITHOUT
// WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied. See the
// License for the specific language governing permissions and limitations under
// the License.

package chttp

import (
	"net/url"
	"strings"
)

const (
	prefixDesign = "_design/"
	prefixLocal  = "_local/"
)

// JoinPath appends rel to base with exactly the separator needed: an empty
// base yields "/"+rel, a base ending in "/" is concatenated as-is, and any
// other base gets a single "/" inserted.
func JoinPath(base, rel string) string {
	switch {
	case base == "":
		return "/" + rel
	case strings.HasSuffix(base, "/"):
		return base + rel
	}
	return base + "/" + rel
}

// JoinURL returns a copy of base with each segment appended to its path using
// [JoinPath]. Segments are path-escaped, so they may contain '/', '?' or
// other reserved characters. The query and fragment of base are dropped.
func JoinURL(base *url.URL, segments ...string) *url.URL {
	u := *base
	u.RawQuery = ""
	u.Fragment = ""
	rawPath := base.EscapedPath()
	for _, seg := range segments {
		u.Path = JoinPath(u.Path, seg)
		rawPath = JoinPath(rawPath, url.PathEscape(seg))
	}
	u.RawPath = rawPath
	return &u
}

// DocIDSegments splits a document ID into path segments. The '_design/' and
// '_local/' prefixes form a segment of their own; the rest of the ID is kept
// whole, so that any '/' it contains is escaped by [JoinURL].
func DocIDSegments(docID string) []string {
	for _, prefix := range []string{prefixDesign, prefixLocal} {
		if strings.HasPrefix(docID, prefix) {
			return []string{strings.TrimSuffix(prefix, "/"), strings.TrimPrefix(docID, prefix)}
		}
	}
	return []string{docID}
}

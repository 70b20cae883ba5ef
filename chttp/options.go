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
	"io"
	"net/http"
	"net/url"

	"go.uber.org/zap"
)

// Options are optional parameters which may be sent with a request.
type Options struct {
	// Body sets the body of the request.
	Body io.ReadCloser

	// Query is appended to the exiting url, if present. If the passed url
	// already contains query parameters, the values in Query are appended.
	// No merging takes place.
	Query url.Values
}

// Option configures a Client at construction time.
type Option func(*Client)

// WithHTTPClient sets the *http.Client used for requests. The client is
// copied, so authentication never alters the caller's transport.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc == nil {
			return
		}
		cp := *hc
		c.Client = &cp
	}
}

// WithLogger sets the logger used to trace requests at debug level.
func WithLogger(log *zap.Logger) Option {
	return func(c *Client) {
		if log != nil {
			c.log = log
		}
	}
}

// WithUserAgent appends ua to the default User-Agent header.
func WithUserAgent(ua string) Option {
	return func(c *Client) {
		c.UserAgents = append(c.UserAgents, ua)
	}
}

// WithBasicAuth sets HTTP Basic Auth credentials, overriding any found in
// the DSN.
func WithBasicAuth(username, password string) Option {
	return func(c *Client) {
		c.auth = &basicAuth{Username: username, Password: password}
	}
}

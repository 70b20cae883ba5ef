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
	"encoding/json"
	"mime"
	"net/http"

	cerrors "github.com/go-kivik/couchdoc/internal/errors"
)

// couchError is the error body CouchDB sends with non-2xx responses.
type couchError struct {
	Error  string `json:"error"`
	Reason string `json:"reason"`
}

// ResponseError returns an error from an *http.Response unless the status
// code is 2xx. 404 is classified as not found, any other status as a failed
// request.
func ResponseError(resp *http.Response) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 { // nolint:gomnd
		return nil
	}
	if resp.Body != nil {
		defer CloseBody(resp.Body)
	}
	var body couchError
	if resp.Body != nil && resp.Request != nil && resp.Request.Method != http.MethodHead && resp.ContentLength != 0 {
		if ct, _, _ := mime.ParseMediaType(resp.Header.Get("Content-Type")); ct == typeJSON {
			_ = json.NewDecoder(resp.Body).Decode(&body)
		}
	}
	return cerrors.Classify(resp.StatusCode, body.Error, body.Reason)
}

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

package couchtest

import (
	"fmt"
	"net/http"
)

var (
	errNotImplemented = &couchError{status: http.StatusNotImplemented, Err: "not_implemented", Reason: "Feature not implemented"}
	errUnauthorized   = &couchError{status: http.StatusUnauthorized, Err: "unauthorized", Reason: "Name or password is incorrect."}
	errDBNotFound     = &couchError{status: http.StatusNotFound, Err: "not_found", Reason: "Database does not exist."}
	errDBExists       = &couchError{status: http.StatusPreconditionFailed, Err: "file_exists", Reason: "The database could not be created, the file already exists."}
	errDocNotFound    = &couchError{status: http.StatusNotFound, Err: "not_found", Reason: "missing"}
	errViewNotFound   = &couchError{status: http.StatusNotFound, Err: "not_found", Reason: "missing_named_view"}
	errConflict       = &couchError{status: http.StatusConflict, Err: "conflict", Reason: "Document update conflict."}
)

type couchError struct {
	status int
	Err    string `json:"error"`
	Reason string `json:"reason"`
}

func (e *couchError) Error() string {
	return e.Reason
}

func (e *couchError) HTTPStatus() int {
	return e.status
}

func badRequest(code, format string, args ...interface{}) *couchError {
	return &couchError{status: http.StatusBadRequest, Err: code, Reason: fmt.Sprintf(format, args...)}
}

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

package couchdoc

import (
	cerrors "github.com/go-kivik/couchdoc/internal/errors"
)

// Error is the error type returned by all couchdoc operations. Use [KindOf]
// to classify it, or errors.As to inspect the server's status and reason.
type Error = cerrors.Error

// Kind classifies an [Error].
type Kind = cerrors.Kind

// Error kinds.
const (
	KindUnknown         = cerrors.KindUnknown
	KindNotFound        = cerrors.KindNotFound
	KindRequestFailed   = cerrors.KindRequestFailed
	KindInvalidArgument = cerrors.KindInvalidArgument
)

// KindOf returns the Kind of err, or KindUnknown if err was not produced by
// couchdoc.
func KindOf(err error) Kind {
	return cerrors.KindOf(err)
}

// IsNotFound reports whether err is the result of an HTTP 404/Not Found
// response.
func IsNotFound(err error) bool {
	return cerrors.IsNotFound(err)
}

// HTTPStatus returns the HTTP status code embedded in the error, or 500 if
// there is no embedded status code. A nil error returns 0.
func HTTPStatus(err error) int {
	return cerrors.HTTPStatus(err)
}

func missingArg(arg string) error {
	return cerrors.InvalidArgument("%s required", arg)
}

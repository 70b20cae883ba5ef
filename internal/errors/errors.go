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

// Package errors holds the error taxonomy shared by the transport and the
// document protocol. It is re-exported by the root package.
package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies an error.
type Kind int

// Error kinds.
const (
	// KindUnknown is the zero value. It is never produced by this package.
	KindUnknown Kind = iota
	// KindNotFound means the server answered 404.
	KindNotFound
	// KindRequestFailed means the server answered with any other non-2xx
	// status, or the request could not be completed at all.
	KindRequestFailed
	// KindInvalidArgument means a precondition on the caller's input was
	// violated. No request was sent.
	KindInvalidArgument
)

func (k Kind) String() string {
	switch k {
	case KindNotFound:
		return "not found"
	case KindRequestFailed:
		return "request failed"
	case KindInvalidArgument:
		return "invalid argument"
	}
	return "unknown"
}

// Error is the concrete error type returned by couchdoc.
type Error struct {
	Kind Kind

	// Status is the HTTP status received from the server. For transport
	// failures it is 502, and for invalid arguments 400.
	Status int

	// Code is the server-supplied error identifier, such as "conflict" or
	// "not_found".
	Code string

	// Reason is the server-supplied reason, or a description of the
	// violated precondition.
	Reason string

	// Err is the underlying cause, if any.
	Err error
}

var _ error = (*Error)(nil)

func (e *Error) Error() string {
	var msg string
	switch {
	case e.Reason != "":
		msg = e.Reason
	case e.Err != nil:
		msg = e.Err.Error()
	}
	if e.Kind == KindInvalidArgument {
		return msg
	}
	statusText := http.StatusText(e.Status)
	switch {
	case msg == "":
		return statusText
	case statusText == "" || e.Reason == "":
		return msg
	}
	return fmt.Sprintf("%s: %s", statusText, msg)
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Err
}

// HTTPStatus returns the HTTP status associated with the error.
func (e *Error) HTTPStatus() int {
	return e.Status
}

// Classify maps a non-2xx status to an error. 404 yields KindNotFound, every
// other status yields KindRequestFailed.
func Classify(status int, code, reason string) *Error {
	kind := KindRequestFailed
	if status == http.StatusNotFound {
		kind = KindNotFound
	}
	return &Error{Kind: kind, Status: status, Code: code, Reason: reason}
}

// Transport wraps a failure to complete a request. A nil err returns nil.
func Transport(err error) error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return err
	}
	return &Error{Kind: KindRequestFailed, Status: http.StatusBadGateway, Err: err}
}

// InvalidArgument returns a KindInvalidArgument error with a formatted
// message.
func InvalidArgument(format string, args ...interface{}) error {
	return &Error{
		Kind:   KindInvalidArgument,
		Status: http.StatusBadRequest,
		Reason: fmt.Sprintf(format, args...),
	}
}

// KindOf returns the Kind of the first *Error in err's chain, or KindUnknown.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// IsNotFound reports whether err is a KindNotFound error.
func IsNotFound(err error) bool {
	return KindOf(err) == KindNotFound
}

// HTTPStatus returns the HTTP status embedded in err. If err is nil, 0 is
// returned. Errors that carry no status yield 500.
func HTTPStatus(err error) int {
	if err == nil {
		return 0
	}
	var coder interface {
		HTTPStatus() int
	}
	if errors.As(err, &coder) {
		return coder.HTTPStatus()
	}
	return http.StatusInternalServerError
}

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
	"strings"
	"testing"

	"gitlab.com/flimzy/testy"

	cerrors "github.com/go-kivik/couchdoc/internal/errors"
)

func TestResponseError(t *testing.T) {
	tests := []struct {
		name     string
		resp     *http.Response
		expected interface{}
	}{
		{
			name:     "non error",
			resp:     &http.Response{StatusCode: 200},
			expected: nil,
		},
		{
			name:     "created",
			resp:     &http.Response{StatusCode: http.StatusCreated},
			expected: nil,
		},
		{
			name: "multiple choices",
			resp: &http.Response{
				StatusCode:    http.StatusMultipleChoices,
				Request:       &http.Request{Method: "GET"},
				Header:        http.Header{"Content-Type": []string{"application/json"}},
				ContentLength: -1,
				Body:          Body(`{"error":"x","reason":"not 2xx"}`),
			},
			expected: &cerrors.Error{
				Kind:   cerrors.KindRequestFailed,
				Status: http.StatusMultipleChoices,
				Code:   "x",
				Reason: "not 2xx",
			},
		},
		{
			name: "found",
			resp: &http.Response{
				StatusCode: http.StatusFound,
				Request:    &http.Request{Method: "GET"},
				Body:       Body(""),
			},
			expected: &cerrors.Error{Kind: cerrors.KindRequestFailed, Status: http.StatusFound},
		},
		{
			name: "not modified",
			resp: &http.Response{
				StatusCode: http.StatusNotModified,
				Request:    &http.Request{Method: "GET"},
				Body:       Body(""),
			},
			expected: &cerrors.Error{Kind: cerrors.KindRequestFailed, Status: http.StatusNotModified},
		},
		{
			name: "informational",
			resp: &http.Response{
				StatusCode: http.StatusContinue,
				Request:    &http.Request{Method: "GET"},
				Body:       Body(""),
			},
			expected: &cerrors.Error{Kind: cerrors.KindRequestFailed, Status: http.StatusContinue},
		},
		{
			name: "HEAD error",
			resp: &http.Response{
				StatusCode: http.StatusNotFound,
				Request:    &http.Request{Method: "HEAD"},
				Body:       Body(""),
			},
			expected: &cerrors.Error{Kind: cerrors.KindNotFound, Status: http.StatusNotFound},
		},
		{
			name: "not found with reason",
			resp: &http.Response{
				StatusCode:    http.StatusNotFound,
				Request:       &http.Request{Method: "GET"},
				Header:        http.Header{"Content-Type": []string{"application/json; charset=utf-8"}},
				ContentLength: 1,
				Body:          Body(`{"error":"not_found","reason":"deleted"}`),
			},
			expected: &cerrors.Error{
				Kind:   cerrors.KindNotFound,
				Status: http.StatusNotFound,
				Code:   "not_found",
				Reason: "deleted",
			},
		},
		{
			name: "conflict",
			resp: &http.Response{
				StatusCode:    http.StatusConflict,
				Request:       &http.Request{Method: "PUT"},
				Header:        http.Header{"Content-Type": []string{"application/json"}},
				ContentLength: -1,
				Body:          Body(`{"error":"conflict","reason":"Document update conflict."}`),
			},
			expected: &cerrors.Error{
				Kind:   cerrors.KindRequestFailed,
				Status: http.StatusConflict,
				Code:   "conflict",
				Reason: "Document update conflict.",
			},
		},
		{
			name: "invalid JSON body",
			resp: &http.Response{
				StatusCode:    http.StatusBadRequest,
				Request:       &http.Request{Method: "POST"},
				Header:        http.Header{"Content-Type": []string{"application/json"}},
				ContentLength: -1,
				Body:          Body(`invalid json`),
			},
			expected: &cerrors.Error{Kind: cerrors.KindRequestFailed, Status: http.StatusBadRequest},
		},
		{
			name: "non-JSON body",
			resp: &http.Response{
				StatusCode:    http.StatusServiceUnavailable,
				Request:       &http.Request{Method: "GET"},
				Header:        http.Header{"Content-Type": []string{"text/plain"}},
				ContentLength: -1,
				Body:          Body(`{"error":"ignored"}`),
			},
			expected: &cerrors.Error{Kind: cerrors.KindRequestFailed, Status: http.StatusServiceUnavailable},
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			err := ResponseError(test.resp)
			if test.expected == nil {
				if err != nil {
					t.Errorf("Unexpected error: %s", err)
				}
				return
			}
			if d := testy.DiffInterface(test.expected, err); d != nil {
				t.Error(d)
			}
		})
	}
}

func TestResponseErrorClosesBody(t *testing.T) {
	var closed bool
	body := &trackingCloser{Reader: strings.NewReader(`{}`), closed: &closed}
	_ = ResponseError(&http.Response{StatusCode: http.StatusBadRequest, Body: body})
	if !closed {
		t.Error("body was not closed")
	}
}

type trackingCloser struct {
	io.Reader
	closed *bool
}

func (c *trackingCloser) Close() error {
	*c.closed = true
	return nil
}

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
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
)

// GetHead routes HEAD requests with no HEAD handler of their own to the GET
// handler, and discards the response body.
func GetHead(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodHead {
			next.ServeHTTP(w, r)
			return
		}
		rctx := chi.RouteContext(r.Context())
		routePath := rctx.RoutePath
		if routePath == "" {
			routePath = r.URL.Path
			if r.URL.RawPath != "" {
				routePath = r.URL.RawPath
			}
		}

		if rctx.Routes.Match(chi.NewRouteContext(), http.MethodHead, routePath) {
			next.ServeHTTP(w, r)
			return
		}

		type httpWriter interface {
			Header() http.Header
			WriteHeader(statusCode int)
		}
		discardWriter := struct {
			httpWriter
			io.Writer
		}{
			httpWriter: w,
			Writer:     io.Discard,
		}
		rctx.RouteMethod = http.MethodGet
		rctx.RoutePath = routePath
		next.ServeHTTP(discardWriter, r)
	})
}

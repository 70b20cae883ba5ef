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

// Package couchtest provides an in-memory server that speaks the subset of
// the CouchDB HTTP API used by couchdoc: databases, documents with revision
// checks, design documents, and JavaScript views.
package couchtest

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"

	"github.com/go-chi/chi/v5"
	"gitlab.com/flimzy/httpe"

	cerrors "github.com/go-kivik/couchdoc/internal/errors"
)

// DefaultVersion is the CouchDB version reported by the server root.
const DefaultVersion = "3.3.3"

// Server is an in-memory CouchDB server. It is safe for concurrent use.
type Server struct {
	mux     *chi.Mux
	version string
	user    string
	pass    string

	mu  sync.RWMutex
	dbs map[string]*database
}

// Option configures a Server.
type Option func(*Server)

// WithAdmin requires HTTP Basic Auth with the given credentials on every
// request except the server root.
func WithAdmin(username, password string) Option {
	return func(s *Server) {
		s.user, s.pass = username, password
	}
}

// WithDatabases creates empty databases with the given names.
func WithDatabases(names ...string) Option {
	return func(s *Server) {
		for _, name := range names {
			s.dbs[name] = newDatabase(name)
		}
	}
}

// WithVersion sets the version reported by the server root.
func WithVersion(version string) Option {
	return func(s *Server) {
		s.version = version
	}
}

// New instantiates a new server instance.
func New(options ...Option) *Server {
	s := &Server{
		mux:     chi.NewMux(),
		version: DefaultVersion,
		dbs:     make(map[string]*database),
	}
	for _, option := range options {
		option(s)
	}
	s.routes(s.mux)
	return s
}

// NewTestServer starts a Server on a local port, and shuts it down when the
// test completes. The returned URL carries the admin credentials, if any.
func NewTestServer(t testing.TB, options ...Option) (*Server, string) {
	t.Helper()
	s := New(options...)
	ts := httptest.NewServer(s)
	t.Cleanup(ts.Close)
	dsn, err := url.Parse(ts.URL)
	if err != nil {
		t.Fatal(err)
	}
	if s.user != "" {
		dsn.User = url.UserPassword(s.user, s.pass)
	}
	dsn.Path = "/"
	return s, dsn.String()
}

func (s *Server) routes(mux *chi.Mux) {
	mux.Use(
		GetHead,
		httpe.ToMiddleware(s.handleErrors),
	)
	mux.Get("/", httpe.ToHandler(s.root()).ServeHTTP)

	auth := mux.With(
		httpe.ToMiddleware(s.authMiddleware),
	)

	// Databases
	auth.Head("/{db}", httpe.ToHandler(s.dbExists()).ServeHTTP)
	auth.Get("/{db}", httpe.ToHandler(s.dbInfo()).ServeHTTP)
	auth.Put("/{db}", httpe.ToHandler(s.createDB()).ServeHTTP)
	auth.Delete("/{db}", httpe.ToHandler(s.deleteDB()).ServeHTTP)
	auth.Post("/{db}", httpe.ToHandler(s.postDoc()).ServeHTTP)
	auth.Get("/{db}/_all_docs", httpe.ToHandler(s.notImplemented()).ServeHTTP)
	auth.Get("/{db}/_changes", httpe.ToHandler(s.notImplemented()).ServeHTTP)

	// Documents
	auth.Get("/{db}/{docid}", httpe.ToHandler(s.getDoc()).ServeHTTP)
	auth.Put("/{db}/{docid}", httpe.ToHandler(s.putDoc()).ServeHTTP)
	auth.Delete("/{db}/{docid}", httpe.ToHandler(s.notImplemented()).ServeHTTP)
	auth.Get("/{db}/_local/{docid}", httpe.ToHandler(s.getDoc()).ServeHTTP)
	auth.Put("/{db}/_local/{docid}", httpe.ToHandler(s.putDoc()).ServeHTTP)

	// Design docs
	auth.Get("/{db}/_design/{ddoc}", httpe.ToHandler(s.getDoc()).ServeHTTP)
	auth.Put("/{db}/_design/{ddoc}", httpe.ToHandler(s.putDoc()).ServeHTTP)
	auth.Delete("/{db}/_design/{ddoc}", httpe.ToHandler(s.notImplemented()).ServeHTTP)
	auth.Get("/{db}/_design/{ddoc}/_view/{view}", httpe.ToHandler(s.queryView()).ServeHTTP)
	auth.Post("/{db}/_design/{ddoc}/_view/{view}", httpe.ToHandler(s.notImplemented()).ServeHTTP)
}

func (s *Server) handleErrors(next httpe.HandlerWithError) httpe.HandlerWithError {
	return httpe.HandlerWithErrorFunc(func(w http.ResponseWriter, r *http.Request) error {
		if err := next.ServeHTTPWithError(w, r); err != nil {
			status := cerrors.HTTPStatus(err)
			ce := &couchError{}
			if !errors.As(err, &ce) {
				ce.Err = strings.ReplaceAll(strings.ToLower(http.StatusText(status)), " ", "_")
				ce.Reason = err.Error()
			}
			return serveJSON(w, status, ce)
		}
		return nil
	})
}

func (s *Server) authMiddleware(next httpe.HandlerWithError) httpe.HandlerWithError {
	return httpe.HandlerWithErrorFunc(func(w http.ResponseWriter, r *http.Request) error {
		if s.user != "" {
			user, pass, ok := r.BasicAuth()
			if !ok || user != s.user || pass != s.pass {
				return errUnauthorized
			}
		}
		return next.ServeHTTPWithError(w, r)
	})
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

func serveJSON(w http.ResponseWriter, status int, payload interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_, err = io.Copy(w, bytes.NewReader(body))
	return err
}

func (s *Server) notImplemented() httpe.HandlerWithError {
	return httpe.HandlerWithErrorFunc(func(http.ResponseWriter, *http.Request) error {
		return errNotImplemented
	})
}

func (s *Server) root() httpe.HandlerWithError {
	return httpe.HandlerWithErrorFunc(func(w http.ResponseWriter, _ *http.Request) error {
		return serveJSON(w, http.StatusOK, map[string]interface{}{
			"couchdb": "Welcome",
			"version": s.version,
			"vendor": map[string]string{
				"name": "couchdoc",
			},
		})
	})
}

// urlParam returns the unescaped value of a route parameter. chi routes on
// the escaped path when one is present.
func urlParam(r *http.Request, key string) string {
	value := chi.URLParam(r, key)
	if r.URL.RawPath == "" {
		return value
	}
	if unescaped, err := url.PathUnescape(value); err == nil {
		return unescaped
	}
	return value
}

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
	"context"
	"errors"
	"net/http"
	"testing"

	"go.uber.org/zap/zaptest"

	"github.com/go-kivik/couchdoc/internal/couchtest"
)

const testDB = "testdb"

type customTransport func(*http.Request) (*http.Response, error)

var _ http.RoundTripper = customTransport(nil)

func (c customTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	return c(req)
}

// noNetwork returns an http.Client that fails the test if any request is
// attempted.
func noNetwork(t *testing.T) *http.Client {
	t.Helper()
	return &http.Client{
		Transport: customTransport(func(req *http.Request) (*http.Response, error) {
			t.Errorf("Unexpected %s request to %s", req.Method, req.URL)
			return nil, errors.New("network disabled")
		}),
	}
}

// newTestClient starts an in-memory server and returns a client connected to
// it as admin.
func newTestClient(t *testing.T, options ...couchtest.Option) *Client {
	t.Helper()
	options = append([]couchtest.Option{couchtest.WithAdmin("admin", "abc123")}, options...)
	_, dsn := couchtest.NewTestServer(t, options...)
	c, err := New(dsn, WithLogger(zaptest.NewLogger(t)))
	if err != nil {
		t.Fatal(err)
	}
	return c
}

// newTestDB returns a handle to an empty database on a fresh in-memory
// server.
func newTestDB(t *testing.T) *DB {
	t.Helper()
	c := newTestClient(t, couchtest.WithDatabases(testDB))
	db, err := c.Open(context.Background(), testDB)
	if err != nil {
		t.Fatal(err)
	}
	return db
}

// offlineDB returns a database handle whose client must not touch the
// network.
func offlineDB(t *testing.T) *DB {
	t.Helper()
	c, err := New("http://example.com/", WithHTTPClient(noNetwork(t)))
	if err != nil {
		t.Fatal(err)
	}
	return c.DB(testDB)
}

type person struct {
	Doc
	Name string `json:"name"`
	Type string `json:"type,omitempty"`
	Age  int    `json:"age,omitempty"`
}

// plainDoc implements Document but not IDSetter.
type plainDoc struct {
	ID   string `json:"_id,omitempty"`
	Rev  string `json:"_rev,omitempty"`
	Name string `json:"name"`
}

func (d *plainDoc) DocID() string        { return d.ID }
func (d *plainDoc) DocRev() string       { return d.Rev }
func (d *plainDoc) SetDocRev(rev string) { d.Rev = rev }

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
	"encoding/json"
	"net/http"
	"net/url"

	"github.com/go-kivik/couchdoc/chttp"
)

// ViewResult is the envelope returned by a view query.
type ViewResult[T any] struct {
	TotalRows int          `json:"total_rows"`
	Offset    int          `json:"offset"`
	Rows      []ViewRow[T] `json:"rows"`
}

// ViewRow is a single view row. Doc is only populated when the query asked
// for included documents, and is nil if the source document was deleted.
type ViewRow[T any] struct {
	ID    string          `json:"id,omitempty"`
	Rev   string          `json:"rev,omitempty"`
	Key   json.RawMessage `json:"key"`
	Value json.RawMessage `json:"value"`
	Doc   *T              `json:"doc,omitempty"`
}

// Docs returns the included documents, in row order. Rows without a
// document are skipped.
func (r *ViewResult[T]) Docs() []T {
	docs := make([]T, 0, len(r.Rows))
	for _, row := range r.Rows {
		if row.Doc != nil {
			docs = append(docs, *row.Doc)
		}
	}
	return docs
}

// ViewRaw queries a view and returns the raw result envelope. If includeDocs
// is true, each row carries the document that emitted it.
func (db *DB) ViewRaw(ctx context.Context, ddoc, view string, includeDocs bool) (json.RawMessage, error) {
	if ddoc == "" {
		return nil, missingArg("ddoc")
	}
	if view == "" {
		return nil, missingArg("view")
	}
	var opts *chttp.Options
	if includeDocs {
		opts = &chttp.Options{Query: url.Values{"include_docs": {"true"}}}
	}
	return db.client.http.DoBytes(ctx, http.MethodGet, db.ViewURL(ddoc, view), opts)
}

// QueryView queries a view and decodes the result envelope, with included
// documents decoded as T.
func QueryView[T any](ctx context.Context, db *DB, ddoc, view string, includeDocs bool) (*ViewResult[T], error) {
	body, err := db.ViewRaw(ctx, ddoc, view, includeDocs)
	if err != nil {
		return nil, err
	}
	result := new(ViewResult[T])
	if err := decode(body, result); err != nil {
		return nil, err
	}
	return result, nil
}

// ViewDocs queries a view with included documents and returns just the
// documents, in row order.
func ViewDocs[T any](ctx context.Context, db *DB, ddoc, view string) ([]T, error) {
	result, err := QueryView[T](ctx, db, ddoc, view, true)
	if err != nil {
		return nil, err
	}
	return result.Docs(), nil
}

// ViewRefDocs is ViewDocs for a view obtained from a design document or a
// Registry.
func ViewRefDocs[T any](ctx context.Context, db *DB, ref ViewRef) ([]T, error) {
	return ViewDocs[T](ctx, db, ref.Design, ref.View)
}

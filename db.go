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
	"net/url"
	"reflect"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/go-kivik/couchdoc/chttp"
	cerrors "github.com/go-kivik/couchdoc/internal/errors"
)

// DB is a handle to a database. It holds no state beyond the client and the
// database name, and is safe for concurrent use.
type DB struct {
	client *Client
	name   string
}

// Name returns the database name.
func (db *DB) Name() string {
	return db.name
}

// Client returns the client used by the handle.
func (db *DB) Client() *Client {
	return db.client
}

// Info returns the database's metadata.
func (db *DB) Info(ctx context.Context) (*DBInfo, error) {
	return db.client.DBInfo(ctx, db.name)
}

// URL returns the database URL.
func (db *DB) URL() *url.URL {
	return db.client.DatabaseURL(db.name)
}

// DocumentURL returns the URL of the document with the given ID. The
// _design/ and _local/ prefixes are kept as path segments of their own.
func (db *DB) DocumentURL(docID string) *url.URL {
	return chttp.JoinURL(db.URL(), chttp.DocIDSegments(docID)...)
}

// DesignURL returns the URL of the named design document.
func (db *DB) DesignURL(ddoc string) *url.URL {
	return chttp.JoinURL(db.URL(), "_design", ddoc)
}

// ViewURL returns the URL of a view.
func (db *DB) ViewURL(ddoc, view string) *url.URL {
	return chttp.JoinURL(db.DesignURL(ddoc), "_view", view)
}

// GetRaw returns the JSON of the document with the given ID.
func (db *DB) GetRaw(ctx context.Context, docID string) (json.RawMessage, error) {
	if docID == "" {
		return nil, missingArg("docID")
	}
	return db.client.http.Get(ctx, db.DocumentURL(docID))
}

// Get fetches the document with the given ID and unmarshals it into dest.
func (db *DB) Get(ctx context.Context, docID string, dest interface{}) error {
	body, err := db.GetRaw(ctx, docID)
	if err != nil {
		return err
	}
	return decode(body, dest)
}

// GetAs fetches the document with the given ID as a new T.
func GetAs[T any](ctx context.Context, db *DB, docID string) (*T, error) {
	doc := new(T)
	if err := db.Get(ctx, docID, doc); err != nil {
		return nil, err
	}
	return doc, nil
}

// GetDesign fetches the named design document.
func (db *DB) GetDesign(ctx context.Context, name string) (*DesignDocument, error) {
	if name == "" {
		return nil, missingArg("ddoc")
	}
	body, err := db.client.http.Get(ctx, db.DesignURL(name))
	if err != nil {
		return nil, err
	}
	dd := new(DesignDocument)
	if err := decode(body, dd); err != nil {
		return nil, err
	}
	return dd, nil
}

// PutRaw stores content at the given document ID, and returns the server's
// result envelope. content must already hold the current _rev when updating.
func (db *DB) PutRaw(ctx context.Context, content json.RawMessage, docID string) (json.RawMessage, error) {
	if docID == "" {
		return nil, missingArg("docID")
	}
	return db.client.http.Put(ctx, db.DocumentURL(docID), content)
}

// PostRaw stores content under a server-assigned ID, and returns the
// server's {ok, id, rev} envelope.
func (db *DB) PostRaw(ctx context.Context, content json.RawMessage) (json.RawMessage, error) {
	return db.client.http.Post(ctx, db.URL(), content)
}

// Put stores doc at the given ID, then sets doc's revision, and its ID if doc
// implements IDSetter, from the server's response.
func (db *DB) Put(ctx context.Context, doc Document, docID string) error {
	if isNilDoc(doc) {
		return missingArg("doc")
	}
	if docID == "" {
		return missingArg("docID")
	}
	body, err := db.client.http.Put(ctx, db.DocumentURL(docID), doc)
	if err != nil {
		return err
	}
	return db.applyResult(body, doc)
}

// Post stores doc under a server-assigned ID, then sets doc's revision, and
// its ID if doc implements IDSetter, from the server's response.
func (db *DB) Post(ctx context.Context, doc Document) error {
	if isNilDoc(doc) {
		return missingArg("doc")
	}
	body, err := db.client.http.Post(ctx, db.URL(), doc)
	if err != nil {
		return err
	}
	return db.applyResult(body, doc)
}

// isNilDoc reports whether doc is nil, or a typed nil pointer or map.
func isNilDoc(doc Document) bool {
	if doc == nil {
		return true
	}
	switch v := reflect.ValueOf(doc); v.Kind() {
	case reflect.Ptr, reflect.Map, reflect.Slice, reflect.Interface:
		return v.IsNil()
	}
	return false
}

func (db *DB) applyResult(body []byte, doc Document) error {
	var result DocumentResult
	if err := decode(body, &result); err != nil {
		return err
	}
	if setter, ok := doc.(IDSetter); ok {
		setter.SetDocID(result.ID)
	}
	doc.SetDocRev(result.Rev)
	db.client.log.Debug("document stored",
		zap.String("db", db.name),
		zap.String("id", result.ID),
		zap.String("rev", result.Rev),
	)
	return nil
}

// Create stores a new document. doc must not carry a revision. If doc has an
// ID it is stored there, otherwise the server assigns one. On success doc's
// revision, and its ID if doc implements IDSetter, are set in place.
func (db *DB) Create(ctx context.Context, doc Document) error {
	if isNilDoc(doc) {
		return missingArg("doc")
	}
	if rev := doc.DocRev(); rev != "" {
		return cerrors.InvalidArgument("new documents must not have a parent rev; %q specified", rev)
	}
	if docID := doc.DocID(); docID != "" {
		return db.Put(ctx, doc, docID)
	}
	return db.Post(ctx, doc)
}

// Update stores a new revision of an existing document. doc must carry both
// its ID and its current revision. On success doc's revision is updated in
// place.
func (db *DB) Update(ctx context.Context, doc Document) error {
	if isNilDoc(doc) {
		return missingArg("doc")
	}
	docID := doc.DocID()
	if docID == "" {
		return cerrors.InvalidArgument("document to update (of type %T) must have its ID set (got %q)", doc, docID)
	}
	if doc.DocRev() == "" {
		return cerrors.InvalidArgument("document to update (of type %T, ID %q) must have its current rev set", doc, docID)
	}
	return db.Put(ctx, doc, docID)
}

// UpsertDesign writes dd to the server, replacing any existing revision. dd
// itself is left untouched; the returned copy carries the new revision.
func (db *DB) UpsertDesign(ctx context.Context, dd *DesignDocument) (*DesignDocument, error) {
	if dd == nil {
		return nil, missingArg("design document")
	}
	if dd.Name() == "" {
		return nil, missingArg("design document name")
	}
	log := db.client.log.With(zap.String("db", db.name), zap.String("design", dd.Name()))
	log.Debug("checking for existing design document")
	next := dd.clone()
	next.rev = ""
	var existing Doc
	err := db.Get(ctx, next.DocID(), &existing)
	switch {
	case err == nil:
		log.Debug("design document exists, replacing it", zap.String("rev", existing.Rev))
		next.rev = existing.Rev
		err = db.Update(ctx, next)
	case IsNotFound(err):
		log.Debug("design document does not exist, creating it")
		err = db.Create(ctx, next)
	}
	if err != nil {
		return nil, err
	}
	return next, nil
}

// syncConcurrency bounds the number of design documents written at once.
const syncConcurrency = 4

// SyncDesigns upserts every design document in reg. It stops at the first
// failure. On success the stored copies are returned in name order.
func (db *DB) SyncDesigns(ctx context.Context, reg *Registry) ([]*DesignDocument, error) {
	dds := reg.DesignDocuments()
	synced := make([]*DesignDocument, len(dds))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(syncConcurrency)
	for i, dd := range dds {
		i, dd := i, dd
		g.Go(func() error {
			stored, err := db.UpsertDesign(ctx, dd)
			if err != nil {
				return err
			}
			synced[i] = stored
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return synced, nil
}

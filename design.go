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
	"encoding/json"
	"fmt"
	"strings"

	cerrors "github.com/go-kivik/couchdoc/internal/errors"
)

const designPrefix = "_design/"

// View is an immutable pair of JavaScript map and reduce function sources.
type View struct {
	mapFn    string
	reduceFn string
}

// NewView returns a view with only a map function.
func NewView(mapFn string) View {
	return View{mapFn: mapFn}
}

// NewReduceView returns a view with a map and a reduce function. reduceFn
// may name a built-in reduce, such as "_count" or "_sum".
func NewReduceView(mapFn, reduceFn string) View {
	return View{mapFn: mapFn, reduceFn: reduceFn}
}

// Map returns the map function source.
func (v View) Map() string { return v.mapFn }

// Reduce returns the reduce function source, or "" if there is none.
func (v View) Reduce() string { return v.reduceFn }

type jsonView struct {
	Map    string `json:"map"`
	Reduce string `json:"reduce,omitempty"`
}

// MarshalJSON satisfies the json.Marshaler interface.
func (v View) MarshalJSON() ([]byte, error) {
	return json.Marshal(jsonView{Map: v.mapFn, Reduce: v.reduceFn})
}

// UnmarshalJSON satisfies the json.Unmarshaler interface.
func (v *View) UnmarshalJSON(p []byte) error {
	var jv jsonView
	if err := json.Unmarshal(p, &jv); err != nil {
		return err
	}
	*v = View{mapFn: jv.Map, reduceFn: jv.Reduce}
	return nil
}

// ViewSet maps view names to view definitions.
type ViewSet map[string]View

func (s ViewSet) clone() ViewSet {
	c := make(ViewSet, len(s))
	for k, v := range s {
		c[k] = v
	}
	return c
}

// ViewRef names a view within a design document. Obtain one from
// [DesignDocument.ViewRef] or [Registry.ViewRef], which confirm the view is
// declared.
type ViewRef struct {
	Design string
	View   string
}

func (r ViewRef) String() string {
	return r.Design + "/" + r.View
}

// DesignDocument is a document that declares views. Its ID is derived from
// its name, and its views are fixed at construction.
type DesignDocument struct {
	name  string
	rev   string
	views ViewSet
}

var _ Document = (*DesignDocument)(nil)

// NewDesignDocument returns a design document with the given name and views.
// The views are copied; later changes to the map do not affect the document.
func NewDesignDocument(name string, views ViewSet) *DesignDocument {
	return &DesignDocument{
		name:  strings.TrimPrefix(name, designPrefix),
		views: views.clone(),
	}
}

// Name returns the design document's name, without the _design/ prefix.
func (d *DesignDocument) Name() string { return d.name }

// DocID returns "_design/" followed by the name.
func (d *DesignDocument) DocID() string { return designPrefix + d.name }

// DocRev returns the revision, or "" if the document has not been persisted.
func (d *DesignDocument) DocRev() string { return d.rev }

// SetDocRev sets the revision.
func (d *DesignDocument) SetDocRev(rev string) { d.rev = rev }

// Views returns a copy of the declared views.
func (d *DesignDocument) Views() ViewSet {
	return d.views.clone()
}

// View returns the named view, and whether it is declared.
func (d *DesignDocument) View(name string) (View, bool) {
	v, ok := d.views[name]
	return v, ok
}

// ViewRef returns a reference to the named view. It fails with
// KindInvalidArgument if the view is not declared.
func (d *DesignDocument) ViewRef(view string) (ViewRef, error) {
	if _, ok := d.views[view]; !ok {
		return ViewRef{}, cerrors.InvalidArgument("design document %q declares no view %q", d.name, view)
	}
	return ViewRef{Design: d.name, View: view}, nil
}

func (d *DesignDocument) clone() *DesignDocument {
	return &DesignDocument{
		name:  d.name,
		rev:   d.rev,
		views: d.views.clone(),
	}
}

func (d *DesignDocument) String() string {
	return fmt.Sprintf("%s (%d views)", d.DocID(), len(d.views))
}

type jsonDesignDocument struct {
	ID    string  `json:"_id"`
	Rev   string  `json:"_rev,omitempty"`
	Views ViewSet `json:"views"`
}

// MarshalJSON satisfies the json.Marshaler interface.
func (d *DesignDocument) MarshalJSON() ([]byte, error) {
	views := d.views
	if views == nil {
		views = ViewSet{}
	}
	return json.Marshal(jsonDesignDocument{
		ID:    d.DocID(),
		Rev:   d.rev,
		Views: views,
	})
}

// UnmarshalJSON satisfies the json.Unmarshaler interface. Members other than
// _id, _rev and views are ignored.
func (d *DesignDocument) UnmarshalJSON(p []byte) error {
	var doc jsonDesignDocument
	if err := json.Unmarshal(p, &doc); err != nil {
		return err
	}
	if !strings.HasPrefix(doc.ID, designPrefix) {
		return fmt.Errorf("not a design document: %q", doc.ID)
	}
	*d = DesignDocument{
		name:  strings.TrimPrefix(doc.ID, designPrefix),
		rev:   doc.Rev,
		views: doc.Views.clone(),
	}
	return nil
}

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
	"github.com/go-kivik/couchdoc/internal/registry"
)

// Registry is an explicit, statically-assembled set of design documents.
// It is safe for concurrent use.
type Registry struct {
	designs *registry.Registry[*DesignDocument]
}

// NewRegistry returns a registry holding dds. It panics under the same
// conditions as [Registry.Register].
func NewRegistry(dds ...*DesignDocument) *Registry {
	r := &Registry{
		designs: registry.New("design document", func(dd *DesignDocument) bool { return dd == nil }),
	}
	for _, dd := range dds {
		r.Register(dd)
	}
	return r
}

// Register adds dd to the registry. If Register is called twice with the same
// design document name, or if dd is nil or has an empty name, it panics. The registry keeps its own
// copy, without revision.
func (r *Registry) Register(dd *DesignDocument) {
	if dd == nil {
		r.designs.Register("", nil)
		return
	}
	c := dd.clone()
	c.rev = ""
	r.designs.Register(c.name, c)
}

// Lookup returns a copy of the named design document, and whether it was
// registered.
func (r *Registry) Lookup(name string) (*DesignDocument, bool) {
	dd, ok := r.designs.Lookup(name)
	if !ok {
		return nil, false
	}
	return dd.clone(), true
}

// Names returns the registered design document names in sorted order.
func (r *Registry) Names() []string {
	return r.designs.Names()
}

// DesignDocuments returns copies of all registered design documents, sorted
// by name.
func (r *Registry) DesignDocuments() []*DesignDocument {
	names := r.Names()
	dds := make([]*DesignDocument, 0, len(names))
	for _, name := range names {
		if dd, ok := r.Lookup(name); ok {
			dds = append(dds, dd)
		}
	}
	return dds
}

// ViewRef returns a reference to a view declared by a registered design
// document. It fails with KindInvalidArgument if either is unknown.
func (r *Registry) ViewRef(design, view string) (ViewRef, error) {
	dd, ok := r.designs.Lookup(design)
	if !ok {
		return ViewRef{}, cerrors.InvalidArgument("design document %q is not registered", design)
	}
	return dd.ViewRef(view)
}

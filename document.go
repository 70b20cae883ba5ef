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

// Document is implemented by every value that can be stored with the
// document protocol. A document with a non-empty revision has been persisted
// at least once.
type Document interface {
	DocID() string
	DocRev() string
	SetDocRev(rev string)
}

// IDSetter is implemented by documents whose identifier is stored rather
// than derived. Create and Put assign the server's identifier only to
// documents that implement it.
type IDSetter interface {
	SetDocID(id string)
}

// Doc holds the reserved _id and _rev members. Embed it in a struct to make
// a pointer to that struct a Document:
//
//	type Person struct {
//		couchdoc.Doc
//		Name string `json:"name"`
//	}
type Doc struct {
	ID  string `json:"_id,omitempty"`
	Rev string `json:"_rev,omitempty"`
}

var (
	_ Document = (*Doc)(nil)
	_ IDSetter = (*Doc)(nil)
)

// DocID returns the document ID.
func (d *Doc) DocID() string { return d.ID }

// DocRev returns the document revision.
func (d *Doc) DocRev() string { return d.Rev }

// SetDocID sets the document ID.
func (d *Doc) SetDocID(id string) { d.ID = id }

// SetDocRev sets the document revision.
func (d *Doc) SetDocRev(rev string) { d.Rev = rev }

// Map is a schemaless document. Its _id and _rev members are managed through
// the Document methods; all other members are passed through unaltered.
type Map map[string]interface{}

var (
	_ Document = Map(nil)
	_ IDSetter = Map(nil)
)

// DocID returns the _id member, or "" if it is unset or not a string.
func (m Map) DocID() string {
	id, _ := m["_id"].(string)
	return id
}

// DocRev returns the _rev member, or "" if it is unset or not a string.
func (m Map) DocRev() string {
	rev, _ := m["_rev"].(string)
	return rev
}

// SetDocID sets the _id member. An empty id removes it.
func (m Map) SetDocID(id string) { m.set("_id", id) }

// SetDocRev sets the _rev member. An empty rev removes it.
func (m Map) SetDocRev(rev string) { m.set("_rev", rev) }

func (m Map) set(key, value string) {
	if value == "" {
		delete(m, key)
		return
	}
	m[key] = value
}

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

/*
Package couchdoc is a typed client for CouchDB documents and views.

A [Client] talks to one server. [Client.Open] returns a [DB] handle after
confirming the database exists; all document and view operations hang off
that handle.

# Documents

Any type whose pointer implements [Document] can be stored. The simplest way
is to embed [Doc]:

	type Person struct {
		couchdoc.Doc
		Name string `json:"name"`
	}

	p := &Person{Name: "Alice"}
	err := db.Create(ctx, p) // p.ID and p.Rev are now set

CouchDB uses multi-version concurrency control. [DB.Create] refuses a
document that already carries a revision, and [DB.Update] requires both ID
and revision. A stale revision is rejected by the server with a 409, which
is reported as a [KindRequestFailed] error.

# Design documents and views

Design documents are declared in code with [NewDesignDocument] and
collected in a [Registry]. [DB.UpsertDesign] and [DB.SyncDesigns] write them
to the server, replacing any existing revision. Views are queried with
[QueryView], [ViewDocs] or [ViewRefDocs].

# Errors

Every failure is an *[Error]. [KindOf] classifies it: a 404 response is
[KindNotFound], any other failed request is [KindRequestFailed], and a
violated precondition detected before any request is sent is
[KindInvalidArgument].
*/
package couchdoc

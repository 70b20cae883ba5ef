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
	"testing"

	"github.com/google/go-cmp/cmp"
	"gitlab.com/flimzy/testy"
)

func TestDocJSON(t *testing.T) {
	type tt struct {
		doc  interface{}
		want string
	}

	tests := testy.NewTable()
	tests.Add("new", tt{
		doc:  &person{Name: "Alice"},
		want: `{"name":"Alice"}`,
	})
	tests.Add("persisted", tt{
		doc:  &person{Doc: Doc{ID: "alice", Rev: "1-abc"}, Name: "Alice"},
		want: `{"_id":"alice","_rev":"1-abc","name":"Alice"}`,
	})

	tests.Run(t, func(t *testing.T, tt tt) {
		got, err := json.Marshal(tt.doc)
		if err != nil {
			t.Fatal(err)
		}
		if d := testy.DiffJSON([]byte(tt.want), got); d != nil {
			t.Error(d)
		}
	})
}

func TestMap(t *testing.T) {
	m := Map{"name": "Alice"}
	if m.DocID() != "" || m.DocRev() != "" {
		t.Errorf("Unexpected identity: %q, %q", m.DocID(), m.DocRev())
	}
	m.SetDocID("alice")
	m.SetDocRev("1-abc")
	want := Map{"_id": "alice", "_rev": "1-abc", "name": "Alice"}
	if d := cmp.Diff(want, m); d != "" {
		t.Error(d)
	}
	m.SetDocRev("")
	if _, ok := m["_rev"]; ok {
		t.Error("Setting an empty rev should remove the member")
	}
	m["_id"] = 123
	if m.DocID() != "" {
		t.Errorf("Non-string _id should read as empty, got %q", m.DocID())
	}
}

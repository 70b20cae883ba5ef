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

package chttp

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"gitlab.com/flimzy/testy"
)

func TestJoinPath(t *testing.T) {
	type tt struct {
		base, rel string
		want      string
	}

	tests := testy.NewTable()
	tests.Add("empty base", tt{base: "", rel: "db", want: "/db"})
	tests.Add("root", tt{base: "/", rel: "db", want: "/db"})
	tests.Add("trailing slash", tt{base: "/couch/", rel: "db", want: "/couch/db"})
	tests.Add("no trailing slash", tt{base: "/couch", rel: "db", want: "/couch/db"})
	tests.Add("host only", tt{base: "http://localhost:5984", rel: "db", want: "http://localhost:5984/db"})
	tests.Add("host with slash", tt{base: "http://localhost:5984/", rel: "db", want: "http://localhost:5984/db"})

	tests.Run(t, func(t *testing.T, tt tt) {
		if got := JoinPath(tt.base, tt.rel); got != tt.want {
			t.Errorf("Unexpected result: %q, want %q", got, tt.want)
		}
	})
}

func TestJoinURL(t *testing.T) {
	type tt struct {
		base     string
		segments []string
		want     string
		path     string
	}

	tests := testy.NewTable()
	tests.Add("database", tt{
		base:     "http://localhost:5984/",
		segments: []string{"mydb"},
		want:     "http://localhost:5984/mydb",
		path:     "/mydb",
	})
	tests.Add("base path", tt{
		base:     "http://localhost:5984/couch",
		segments: []string{"mydb", "doc"},
		want:     "http://localhost:5984/couch/mydb/doc",
		path:     "/couch/mydb/doc",
	})
	tests.Add("base path with trailing slash", tt{
		base:     "http://localhost:5984/couch/",
		segments: []string{"mydb"},
		want:     "http://localhost:5984/couch/mydb",
		path:     "/couch/mydb",
	})
	tests.Add("slash in segment", tt{
		base:     "http://localhost:5984/",
		segments: []string{"mydb", "a/b"},
		want:     "http://localhost:5984/mydb/a%2Fb",
		path:     "/mydb/a/b",
	})
	tests.Add("reserved characters", tt{
		base:     "http://localhost:5984/",
		segments: []string{"my db", "q?x"},
		want:     "http://localhost:5984/my%20db/q%3Fx",
		path:     "/my db/q?x",
	})
	tests.Add("view", tt{
		base:     "http://localhost:5984/",
		segments: []string{"mydb", "_design", "app", "_view", "by_name"},
		want:     "http://localhost:5984/mydb/_design/app/_view/by_name",
		path:     "/mydb/_design/app/_view/by_name",
	})
	tests.Add("query dropped", tt{
		base:     "http://localhost:5984/?foo=bar",
		segments: []string{"mydb"},
		want:     "http://localhost:5984/mydb",
		path:     "/mydb",
	})

	tests.Run(t, func(t *testing.T, tt tt) {
		base := mustParse(tt.base)
		got := JoinURL(base, tt.segments...)
		if got.String() != tt.want {
			t.Errorf("Unexpected URL: %s, want %s", got, tt.want)
		}
		if got.Path != tt.path {
			t.Errorf("Unexpected path: %s, want %s", got.Path, tt.path)
		}
		if base.String() != mustParse(tt.base).String() {
			t.Errorf("base was modified: %s", base)
		}
	})
}

func TestDocIDSegments(t *testing.T) {
	type tt struct {
		id   string
		want []string
	}

	tests := testy.NewTable()
	tests.Add("plain", tt{id: "foo", want: []string{"foo"}})
	tests.Add("design", tt{id: "_design/app", want: []string{"_design", "app"}})
	tests.Add("local", tt{id: "_local/chk", want: []string{"_local", "chk"}})
	tests.Add("slash", tt{id: "a/b", want: []string{"a/b"}})
	tests.Add("design with slash", tt{id: "_design/a/b", want: []string{"_design", "a/b"}})

	tests.Run(t, func(t *testing.T, tt tt) {
		if d := cmp.Diff(tt.want, DocIDSegments(tt.id)); d != "" {
			t.Error(d)
		}
	})
}

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

package registry

import (
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"
)

type item struct{ name string }

func newTestRegistry() *Registry[*item] {
	return New("item", func(i *item) bool { return i == nil })
}

func TestRegister(t *testing.T) {
	t.Run("nil value", func(t *testing.T) {
		r := newTestRegistry()
		p := func() (p any) {
			defer func() {
				p = recover()
			}()
			r.Register("foo", nil)
			return ""
		}()
		if p.(string) != "couchdoc: Register item is nil" {
			t.Errorf("Unexpected panic: %v", p)
		}
	})

	t.Run("duplicate", func(t *testing.T) {
		r := newTestRegistry()
		p := func() (p any) {
			defer func() {
				p = recover()
			}()
			r.Register("foo", &item{})
			r.Register("foo", &item{})
			return ""
		}()
		if p.(string) != "couchdoc: Register called twice for item foo" {
			t.Errorf("Unexpected panic: %v", p)
		}
	})

	t.Run("success", func(t *testing.T) {
		r := newTestRegistry()
		p := func() (p any) {
			defer func() {
				p = recover()
			}()
			r.Register("foo", &item{name: "foo"})
			return nil
		}()
		if p != nil {
			t.Errorf("Unexpected panic: %v", p)
		}
		got, ok := r.Lookup("foo")
		if !ok || got.name != "foo" {
			t.Errorf("Unexpected lookup result: %v, %t", got, ok)
		}
	})

	t.Run("empty name", func(t *testing.T) {
		r := newTestRegistry()
		p := func() (p any) {
			defer func() {
				p = recover()
			}()
			r.Register("", &item{})
			return ""
		}()
		if p.(string) != "couchdoc: Register item name is empty" {
			t.Errorf("Unexpected panic: %v", p)
		}
	})

	t.Run("no nil check", func(t *testing.T) {
		r := New[string]("name", nil)
		r.Register("foo", "")
		if got := r.Names(); len(got) != 1 {
			t.Errorf("Unexpected names: %v", got)
		}
	})
}

func TestLookupMissing(t *testing.T) {
	r := newTestRegistry()
	got, ok := r.Lookup("missing")
	if ok || got != nil {
		t.Errorf("Unexpected result: %v, %t", got, ok)
	}
}

func TestNames(t *testing.T) {
	r := newTestRegistry()
	for _, name := range []string{"zeta", "alpha", "mu"} {
		r.Register(name, &item{name: name})
	}
	if d := cmp.Diff([]string{"alpha", "mu", "zeta"}, r.Names()); d != "" {
		t.Error(d)
	}
}

func TestConcurrentAccess(t *testing.T) {
	r := newTestRegistry()
	var wg sync.WaitGroup
	for _, name := range []string{"a", "b", "c", "d"} {
		wg.Add(1)
		go func(name string) {
			defer wg.Done()
			r.Register(name, &item{name: name})
			_, _ = r.Lookup(name)
			_ = r.Names()
		}(name)
	}
	wg.Wait()
	if got := r.Names(); len(got) != 4 {
		t.Errorf("Unexpected names: %v", got)
	}
}

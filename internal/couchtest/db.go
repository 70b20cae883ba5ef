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

package couchtest

import (
	"fmt"
	"net/http"
	"regexp"

	"gitlab.com/flimzy/httpe"
)

var validDBName = regexp.MustCompile(`^[a-z][a-z0-9_$()+/-]*$`)

type database struct {
	name string
	docs map[string]*document
	seq  int
	size int64
}

func newDatabase(name string) *database {
	return &database{
		name: name,
		docs: make(map[string]*document),
	}
}

func (db *database) info() map[string]interface{} {
	var count int
	for id := range db.docs {
		if !isLocal(id) {
			count++
		}
	}
	return map[string]interface{}{
		"db_name":             db.name,
		"doc_count":           count,
		"doc_del_count":       0,
		"update_seq":          fmt.Sprintf("%d-g1AAAAA", db.seq),
		"purge_seq":           "0-g1AAAAA",
		"compact_running":     false,
		"disk_format_version": 8,
		"sizes": map[string]int64{
			"file":     db.size,
			"external": db.size,
			"active":   db.size,
		},
		"instance_start_time": "0",
	}
}

// lookupDB must be called with s.mu held.
func (s *Server) lookupDB(name string) (*database, error) {
	db, ok := s.dbs[name]
	if !ok {
		return nil, errDBNotFound
	}
	return db, nil
}

func (s *Server) dbExists() httpe.HandlerWithError {
	return httpe.HandlerWithErrorFunc(func(w http.ResponseWriter, r *http.Request) error {
		s.mu.RLock()
		_, err := s.lookupDB(urlParam(r, "db"))
		s.mu.RUnlock()
		if err != nil {
			w.WriteHeader(http.StatusNotFound)
			return nil
		}
		w.WriteHeader(http.StatusOK)
		return nil
	})
}

func (s *Server) dbInfo() httpe.HandlerWithError {
	return httpe.HandlerWithErrorFunc(func(w http.ResponseWriter, r *http.Request) error {
		s.mu.RLock()
		db, err := s.lookupDB(urlParam(r, "db"))
		if err != nil {
			s.mu.RUnlock()
			return err
		}
		info := db.info()
		s.mu.RUnlock()
		return serveJSON(w, http.StatusOK, info)
	})
}

func (s *Server) createDB() httpe.HandlerWithError {
	return httpe.HandlerWithErrorFunc(func(w http.ResponseWriter, r *http.Request) error {
		name := urlParam(r, "db")
		if !validDBName.MatchString(name) {
			return badRequest("illegal_database_name", "Name: '%s'. Only lowercase characters (a-z), digits (0-9), and any of the characters _, $, (, ), +, -, and / are allowed. Must begin with a letter.", name)
		}
		s.mu.Lock()
		defer s.mu.Unlock()
		if _, ok := s.dbs[name]; ok {
			return errDBExists
		}
		s.dbs[name] = newDatabase(name)
		return serveJSON(w, http.StatusCreated, map[string]interface{}{
			"ok": true,
		})
	})
}

func (s *Server) deleteDB() httpe.HandlerWithError {
	return httpe.HandlerWithErrorFunc(func(w http.ResponseWriter, r *http.Request) error {
		name := urlParam(r, "db")
		s.mu.Lock()
		defer s.mu.Unlock()
		if _, err := s.lookupDB(name); err != nil {
			return err
		}
		delete(s.dbs, name)
		return serveJSON(w, http.StatusOK, map[string]interface{}{
			"ok": true,
		})
	})
}

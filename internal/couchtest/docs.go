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
	"crypto/md5"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"gitlab.com/flimzy/httpe"
)

const (
	prefixDesign = "_design/"
	prefixLocal  = "_local/"
)

type document struct {
	rev string
	// body is never modified once stored; updates replace it.
	body map[string]interface{}
}

func isDesign(id string) bool { return strings.HasPrefix(id, prefixDesign) }
func isLocal(id string) bool  { return strings.HasPrefix(id, prefixLocal) }

// docID reconstructs the document ID from the matched route.
func docID(r *http.Request) string {
	if ddoc := urlParam(r, "ddoc"); ddoc != "" {
		return prefixDesign + ddoc
	}
	id := urlParam(r, "docid")
	if strings.Contains(chi.RouteContext(r.Context()).RoutePattern(), "/_local/") {
		return prefixLocal + id
	}
	return id
}

// newDocID returns a server-assigned document ID: 32 lowercase hex digits.
func newDocID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}

func (s *Server) getDoc() httpe.HandlerWithError {
	return httpe.HandlerWithErrorFunc(func(w http.ResponseWriter, r *http.Request) error {
		s.mu.RLock()
		db, err := s.lookupDB(urlParam(r, "db"))
		if err != nil {
			s.mu.RUnlock()
			return err
		}
		doc, ok := db.docs[docID(r)]
		s.mu.RUnlock()
		if !ok {
			return errDocNotFound
		}
		return serveJSON(w, http.StatusOK, doc.body)
	})
}

func (s *Server) putDoc() httpe.HandlerWithError {
	return httpe.HandlerWithErrorFunc(func(w http.ResponseWriter, r *http.Request) error {
		body, err := readDoc(r)
		if err != nil {
			return err
		}
		id := docID(r)
		rev, err := s.store(urlParam(r, "db"), id, body)
		if err != nil {
			return err
		}
		return serveJSON(w, http.StatusCreated, map[string]interface{}{
			"ok":  true,
			"id":  id,
			"rev": rev,
		})
	})
}

func (s *Server) postDoc() httpe.HandlerWithError {
	return httpe.HandlerWithErrorFunc(func(w http.ResponseWriter, r *http.Request) error {
		body, err := readDoc(r)
		if err != nil {
			return err
		}
		id, _ := body["_id"].(string)
		if id == "" {
			id = newDocID()
		}
		rev, err := s.store(urlParam(r, "db"), id, body)
		if err != nil {
			return err
		}
		return serveJSON(w, http.StatusCreated, map[string]interface{}{
			"ok":  true,
			"id":  id,
			"rev": rev,
		})
	})
}

func readDoc(r *http.Request) (map[string]interface{}, error) {
	var body map[string]interface{}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body == nil {
		return nil, badRequest("bad_request", "Document must be a JSON object")
	}
	return body, nil
}

// store writes body as the next revision of the document id, and returns the
// new revision.
func (s *Server) store(dbName, id string, body map[string]interface{}) (string, error) {
	if err := validateDoc(id, body); err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	db, err := s.lookupDB(dbName)
	if err != nil {
		return "", err
	}
	rev, _ := body["_rev"].(string)
	existing, ok := db.docs[id]
	switch {
	case !ok && rev != "":
		return "", errConflict
	case ok && rev != existing.rev:
		return "", errConflict
	}
	gen := 1
	if ok {
		gen = generation(existing.rev) + 1
	}
	body["_id"] = id
	delete(body, "_rev")
	encoded, err := json.Marshal(body)
	if err != nil {
		return "", err
	}
	sum := md5.Sum(append([]byte(rev), encoded...))
	newRev := strconv.Itoa(gen) + "-" + hex.EncodeToString(sum[:])
	body["_rev"] = newRev
	db.docs[id] = &document{rev: newRev, body: body}
	db.seq++
	db.size += int64(len(encoded))
	return newRev, nil
}

func generation(rev string) int {
	prefix, _, _ := strings.Cut(rev, "-")
	gen, _ := strconv.Atoi(prefix)
	return gen
}

func validateDoc(id string, body map[string]interface{}) error {
	if strings.HasPrefix(id, "_") && !isDesign(id) && !isLocal(id) {
		return badRequest("illegal_docid", "Only reserved document ids may start with underscore.")
	}
	for key := range body {
		if strings.HasPrefix(key, "_") && key != "_id" && key != "_rev" {
			return badRequest("doc_validation", "Bad special document member: %s", key)
		}
	}
	if isDesign(id) {
		return validateDesign(body)
	}
	return nil
}

func validateDesign(body map[string]interface{}) error {
	raw, ok := body["views"]
	if !ok {
		return nil
	}
	views, ok := raw.(map[string]interface{})
	if !ok {
		return badRequest("invalid_design_doc", "`views` is not an object")
	}
	for name, v := range views {
		view, ok := v.(map[string]interface{})
		if !ok {
			return badRequest("invalid_design_doc", "View %s must be an object", name)
		}
		if _, ok := view["map"].(string); !ok {
			return badRequest("invalid_design_doc", "View %s must have a map function", name)
		}
		if reduce, ok := view["reduce"]; ok {
			if _, ok := reduce.(string); !ok {
				return badRequest("invalid_design_doc", "View %s has an invalid reduce function", name)
			}
		}
	}
	return nil
}

// viewDef extracts a view definition from a stored design document.
func viewDef(ddoc *document, name string) (mapCode, reduceCode string, err error) {
	views, _ := ddoc.body["views"].(map[string]interface{})
	view, ok := views[name].(map[string]interface{})
	if !ok {
		return "", "", errViewNotFound
	}
	mapCode, _ = view["map"].(string)
	reduceCode, _ = view["reduce"].(string)
	if mapCode == "" {
		return "", "", fmt.Errorf("view %s has no map function", name)
	}
	return mapCode, reduceCode, nil
}

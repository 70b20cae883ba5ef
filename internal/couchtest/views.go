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
	"encoding/json"
	"net/http"
	"net/url"
	"sort"
	"strconv"

	"gitlab.com/flimzy/httpe"

	"github.com/go-kivik/couchdoc/internal/collate"
)

type viewRow struct {
	ID    string      `json:"id,omitempty"`
	Key   interface{} `json:"key"`
	Value interface{} `json:"value"`
	Doc   interface{} `json:"doc,omitempty"`
}

type viewOptions struct {
	includeDocs bool
	reduce      *bool
	group       bool
	descending  bool
	limit       int
	skip        int
	key         interface{}
	hasKey      bool
}

func parseViewOptions(query url.Values) (*viewOptions, error) {
	opts := &viewOptions{limit: -1}
	var err error
	parseBool := func(name string) (bool, error) {
		v := query.Get(name)
		if v == "" {
			return false, nil
		}
		b, err := strconv.ParseBool(v)
		if err != nil {
			return false, badRequest("query_parse_error", "Invalid boolean parameter: %q", v)
		}
		return b, nil
	}
	if opts.includeDocs, err = parseBool("include_docs"); err != nil {
		return nil, err
	}
	if opts.group, err = parseBool("group"); err != nil {
		return nil, err
	}
	if opts.descending, err = parseBool("descending"); err != nil {
		return nil, err
	}
	if query.Has("reduce") {
		reduce, err := parseBool("reduce")
		if err != nil {
			return nil, err
		}
		opts.reduce = &reduce
	}
	parseInt := func(name string, target *int) error {
		v := query.Get(name)
		if v == "" {
			return nil
		}
		i, err := strconv.Atoi(v)
		if err != nil || i < 0 {
			return badRequest("query_parse_error", "Invalid value for integer: %q", v)
		}
		*target = i
		return nil
	}
	if err := parseInt("limit", &opts.limit); err != nil {
		return nil, err
	}
	if err := parseInt("skip", &opts.skip); err != nil {
		return nil, err
	}
	if query.Has("key") {
		if err := json.Unmarshal([]byte(query.Get("key")), &opts.key); err != nil {
			return nil, badRequest("query_parse_error", "Invalid JSON value for key: %q", query.Get("key"))
		}
		opts.hasKey = true
	}
	return opts, nil
}

func (s *Server) queryView() httpe.HandlerWithError {
	return httpe.HandlerWithErrorFunc(func(w http.ResponseWriter, r *http.Request) error {
		opts, err := parseViewOptions(r.URL.Query())
		if err != nil {
			return err
		}

		s.mu.RLock()
		db, err := s.lookupDB(urlParam(r, "db"))
		if err != nil {
			s.mu.RUnlock()
			return err
		}
		ddoc, ok := db.docs[prefixDesign+urlParam(r, "ddoc")]
		if !ok {
			s.mu.RUnlock()
			return errDocNotFound
		}
		mapCode, reduceCode, err := viewDef(ddoc, urlParam(r, "view"))
		if err != nil {
			s.mu.RUnlock()
			return err
		}
		docs := snapshot(db)
		s.mu.RUnlock()

		reduce := reduceCode != "" && (opts.reduce == nil || *opts.reduce)
		if reduce && opts.includeDocs {
			return badRequest("query_parse_error", "`include_docs` is invalid for reduce")
		}
		if opts.group && !reduce {
			return badRequest("query_parse_error", "Invalid use of grouping on a map view.")
		}

		rows, err := mapDocs(mapCode, docs)
		if err != nil {
			return err
		}
		total := len(rows)
		if opts.hasKey {
			rows = filterKey(rows, opts.key)
		}
		if reduce {
			rows, err = reduceRows(reduceCode, rows, opts.group)
			if err != nil {
				return err
			}
		}
		if opts.descending {
			for i, j := 0, len(rows)-1; i < j; i, j = i+1, j-1 {
				rows[i], rows[j] = rows[j], rows[i]
			}
		}
		rows = paginate(rows, opts.skip, opts.limit)
		if opts.includeDocs {
			for i := range rows {
				rows[i].Doc = docs[rows[i].ID]
			}
		}
		if reduce {
			return serveJSON(w, http.StatusOK, map[string]interface{}{
				"rows": rows,
			})
		}
		return serveJSON(w, http.StatusOK, map[string]interface{}{
			"total_rows": total,
			"offset":     opts.skip,
			"rows":       rows,
		})
	})
}

// snapshot returns the bodies of all regular documents. It must be called
// with s.mu held. Stored bodies are never mutated, so they may be read after
// the lock is released.
func snapshot(db *database) map[string]map[string]interface{} {
	docs := make(map[string]map[string]interface{}, len(db.docs))
	for id, doc := range db.docs {
		if isDesign(id) || isLocal(id) {
			continue
		}
		docs[id] = doc.body
	}
	return docs
}

func mapDocs(code string, docs map[string]map[string]interface{}) ([]viewRow, error) {
	ids := make([]string, 0, len(docs))
	for id := range docs {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	var rows []viewRow
	var currentID string
	var emitErr error
	emit := func(key, value interface{}) {
		k, err := normalize(key)
		if err != nil {
			emitErr = err
			return
		}
		v, err := normalize(value)
		if err != nil {
			emitErr = err
			return
		}
		rows = append(rows, viewRow{ID: currentID, Key: k, Value: v})
	}
	fn, err := compileMap(code, emit)
	if err != nil {
		return nil, badRequest("compilation_error", "Compilation of the map function failed: %s", err)
	}
	for _, id := range ids {
		currentID = id
		mark := len(rows)
		emitErr = nil
		// Documents whose map function throws are skipped, as CouchDB does.
		if err := fn(copyDoc(docs[id])); err != nil || emitErr != nil {
			rows = rows[:mark]
		}
	}
	sort.SliceStable(rows, func(i, j int) bool {
		if c := collate.CompareObject(rows[i].Key, rows[j].Key); c != 0 {
			return c < 0
		}
		return rows[i].ID < rows[j].ID
	})
	if rows == nil {
		rows = []viewRow{}
	}
	return rows, nil
}

// copyDoc returns a deep copy of doc, so map functions cannot modify the
// stored document.
func copyDoc(doc map[string]interface{}) map[string]interface{} {
	v, err := normalize(doc)
	if err != nil {
		return doc
	}
	out, _ := v.(map[string]interface{})
	return out
}

func filterKey(rows []viewRow, key interface{}) []viewRow {
	out := rows[:0:0]
	for _, row := range rows {
		if collate.CompareObject(row.Key, key) == 0 {
			out = append(out, row)
		}
	}
	return out
}

func paginate(rows []viewRow, skip, limit int) []viewRow {
	if skip >= len(rows) {
		return []viewRow{}
	}
	rows = rows[skip:]
	if limit >= 0 && limit < len(rows) {
		rows = rows[:limit]
	}
	return rows
}

func reduceRows(code string, rows []viewRow, group bool) ([]viewRow, error) {
	fn, err := reducer(code)
	if err != nil {
		return nil, err
	}
	if !group {
		if len(rows) == 0 {
			return []viewRow{}, nil
		}
		value, err := reduceGroup(fn, rows)
		if err != nil {
			return nil, err
		}
		return []viewRow{{Key: nil, Value: value}}, nil
	}
	out := []viewRow{}
	for start := 0; start < len(rows); {
		end := start + 1
		for end < len(rows) && collate.CompareObject(rows[start].Key, rows[end].Key) == 0 {
			end++
		}
		value, err := reduceGroup(fn, rows[start:end])
		if err != nil {
			return nil, err
		}
		out = append(out, viewRow{Key: rows[start].Key, Value: value})
		start = end
	}
	return out, nil
}

func reduceGroup(fn reduceFunc, rows []viewRow) (interface{}, error) {
	keys := make([]interface{}, len(rows))
	values := make([]interface{}, len(rows))
	for i, row := range rows {
		keys[i] = []interface{}{row.Key, row.ID}
		values[i] = row.Value
	}
	value, err := fn(keys, values, false)
	if err != nil {
		return nil, badRequest("reduce_error", "%s", err)
	}
	return value, nil
}

// reducer returns the reduce function for code, which may name one of the
// built-in reduce functions.
func reducer(code string) (reduceFunc, error) {
	switch code {
	case "_count":
		return func(_, values []interface{}, _ bool) (interface{}, error) {
			return float64(len(values)), nil
		}, nil
	case "_sum":
		return func(_, values []interface{}, _ bool) (interface{}, error) {
			var sum float64
			for _, v := range values {
				n, ok := v.(float64)
				if !ok {
					return nil, badRequest("builtin_reduce_error", "The _sum function requires that map values be numbers")
				}
				sum += n
			}
			return sum, nil
		}, nil
	case "_stats":
		return func(_, values []interface{}, _ bool) (interface{}, error) {
			stats := map[string]interface{}{"sum": 0.0, "count": 0.0, "min": 0.0, "max": 0.0, "sumsqr": 0.0}
			var sum, sumsqr, lo, hi float64
			for i, v := range values {
				n, ok := v.(float64)
				if !ok {
					return nil, badRequest("builtin_reduce_error", "The _stats function requires that map values be numbers")
				}
				if i == 0 || n < lo {
					lo = n
				}
				if i == 0 || n > hi {
					hi = n
				}
				sum += n
				sumsqr += n * n
			}
			stats["sum"], stats["sumsqr"] = sum, sumsqr
			stats["min"], stats["max"] = lo, hi
			stats["count"] = float64(len(values))
			return stats, nil
		}, nil
	}
	fn, err := compileReduce(code)
	if err != nil {
		return nil, badRequest("compilation_error", "Compilation of the reduce function failed: %s", err)
	}
	return fn, nil
}

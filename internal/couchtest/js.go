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
	"errors"
	"fmt"

	"github.com/dop251/goja"
)

// mapFunc is the Go representation of a CouchDB map function. Exceptions are
// converted to errors.
type mapFunc func(doc map[string]interface{}) error

// compileMap compiles code into a mapFunc, and makes emit available to the
// JavaScript code. A goja runtime is not safe for concurrent use, so each
// view query compiles its own.
func compileMap(code string, emit func(key, value interface{})) (mapFunc, error) {
	vm := goja.New()

	if err := vm.Set("emit", emit); err != nil {
		return nil, err
	}

	if _, err := vm.RunString("const map = " + code); err != nil {
		return nil, err
	}

	fn, ok := goja.AssertFunction(vm.Get("map"))
	if !ok {
		return nil, fmt.Errorf("expected map to be a function, got %T", vm.Get("map").Export())
	}

	return func(doc map[string]interface{}) error {
		_, err := fn(goja.Undefined(), vm.ToValue(doc))
		return jsError(err)
	}, nil
}

// reduceFunc is the Go representation of a custom CouchDB reduce function.
type reduceFunc func(keys, values []interface{}, rereduce bool) (interface{}, error)

func compileReduce(code string) (reduceFunc, error) {
	vm := goja.New()

	if _, err := vm.RunString("const reduce = " + code); err != nil {
		return nil, err
	}

	fn, ok := goja.AssertFunction(vm.Get("reduce"))
	if !ok {
		return nil, fmt.Errorf("expected reduce to be a function, got %T", vm.Get("reduce").Export())
	}

	return func(keys, values []interface{}, rereduce bool) (interface{}, error) {
		var jsKeys interface{}
		if keys != nil {
			jsKeys = keys
		}
		result, err := fn(goja.Undefined(), vm.ToValue(jsKeys), vm.ToValue(values), vm.ToValue(rereduce))
		if err != nil {
			return nil, jsError(err)
		}
		return normalize(result.Export())
	}, nil
}

func jsError(err error) error {
	if err == nil {
		return nil
	}
	var exception *goja.Exception
	if errors.As(err, &exception) {
		return errors.New(exception.String())
	}
	return err
}

// normalize converts a value exported from JavaScript into the types
// encoding/json produces, so that it can be collated.
func normalize(v interface{}) (interface{}, error) {
	if v == nil {
		return nil, nil
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var out interface{}
	err = json.Unmarshal(raw, &out)
	return out, err
}

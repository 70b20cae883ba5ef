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

// Package collate orders view keys the way CouchDB does: null, then booleans,
// numbers, strings (Unicode collation), arrays and objects.
//
// Object members are compared with keys sorted, not in their original order.
package collate

import (
	"sort"
	"sync"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

var (
	collatorMu = new(sync.Mutex)
	collator   = collate.New(language.Und)
)

// CompareString returns an integer comparing the two strings.
// The result will be 0 if a==b, -1 if a < b, and +1 if a > b.
func CompareString(a, b string) int {
	collatorMu.Lock()
	defer collatorMu.Unlock()
	return collator.CompareString(a, b)
}

// CompareObject compares two unmarshaled JSON values. It panics if it
// encounters a type encoding/json does not produce. The result is negative if
// a < b, positive if a > b, and 0 if they collate equal.
func CompareObject(a, b interface{}) int {
	aType := jsonTypeOf(a)
	switch bType := jsonTypeOf(b); {
	case aType < bType:
		return -1
	case aType > bType:
		return 1
	}

	switch aType {
	case jsonTypeNull:
		return 0
	case jsonTypeBool:
		aBool, bBool := a.(bool), b.(bool)
		switch {
		case aBool == bBool:
			return 0
		case !aBool:
			return -1
		}
		return 1
	case jsonTypeNumber:
		aNum, bNum := a.(float64), b.(float64)
		switch {
		case aNum < bNum:
			return -1
		case aNum > bNum:
			return 1
		}
		return 0
	case jsonTypeString:
		return CompareString(a.(string), b.(string))
	case jsonTypeArray:
		aArray, bArray := a.([]interface{}), b.([]interface{})
		for i := 0; i < len(aArray) && i < len(bArray); i++ {
			if cmp := CompareObject(aArray[i], bArray[i]); cmp != 0 {
				return cmp
			}
		}
		return len(aArray) - len(bArray)
	}

	aObject, bObject := a.(map[string]interface{}), b.(map[string]interface{})
	aKeys, bKeys := sortedKeys(aObject), sortedKeys(bObject)
	for i := 0; i < len(aKeys) && i < len(bKeys); i++ {
		if cmp := CompareString(aKeys[i], bKeys[i]); cmp != 0 {
			return cmp
		}
		if cmp := CompareObject(aObject[aKeys[i]], bObject[bKeys[i]]); cmp != 0 {
			return cmp
		}
	}
	return len(aKeys) - len(bKeys)
}

func sortedKeys(o map[string]interface{}) []string {
	keys := make([]string, 0, len(o))
	for k := range o {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		return CompareString(keys[i], keys[j]) < 0
	})
	return keys
}

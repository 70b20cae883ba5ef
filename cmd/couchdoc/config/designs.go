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

package config

import (
	"io"
	"os"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/go-kivik/couchdoc"
	"github.com/go-kivik/couchdoc/cmd/couchdoc/errors"
)

// designFile is the on-disk declaration of design documents, for example:
//
//	designs:
//	  people:
//	    views:
//	      by_type:
//	        map: function(doc) { emit(doc.type, null); }
//	      count:
//	        map: function(doc) { emit(doc.type, 1); }
//	        reduce: _count
type designFile struct {
	Designs map[string]designDecl `yaml:"designs" validate:"required,min=1,dive,keys,required,excludesall=/,endkeys"`
}

type designDecl struct {
	Views map[string]viewDecl `yaml:"views" validate:"required,min=1,dive,keys,required,endkeys"`
}

type viewDecl struct {
	Map    string `yaml:"map" validate:"required"`
	Reduce string `yaml:"reduce"`
}

// ReadDesigns loads the design document declarations in filename into a
// registry.
func ReadDesigns(filename string) (*couchdoc.Registry, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, errors.Code(errors.ErrNoInput, err)
	}
	defer f.Close()
	return DecodeDesigns(f)
}

// DecodeDesigns reads design document declarations from r into a registry.
func DecodeDesigns(r io.Reader) (*couchdoc.Registry, error) {
	var file designFile
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&file); err != nil {
		return nil, errors.Code(errors.ErrData, err)
	}
	if err := validate.Struct(file); err != nil {
		return nil, errors.Code(errors.ErrData, validationError(err))
	}
	names := make([]string, 0, len(file.Designs))
	for name := range file.Designs {
		names = append(names, name)
	}
	sort.Strings(names)
	reg := couchdoc.NewRegistry()
	for _, name := range names {
		views := couchdoc.ViewSet{}
		for viewName, v := range file.Designs[name].Views {
			if v.Reduce == "" {
				views[viewName] = couchdoc.NewView(v.Map)
				continue
			}
			views[viewName] = couchdoc.NewReduceView(v.Map, v.Reduce)
		}
		reg.Register(couchdoc.NewDesignDocument(name, views))
	}
	return reg, nil
}

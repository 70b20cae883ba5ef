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

// Package input reads document data given on the command line.
package input

import (
	"bytes"
	"encoding/json"
	"io"
	"os"
	"strings"

	"github.com/icza/dyno"
	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"

	"github.com/go-kivik/couchdoc"
	"github.com/go-kivik/couchdoc/cmd/couchdoc/errors"
)

// Input collects document data from --data, --data-file or stdin.
type Input struct {
	data  string
	file  string
	yaml  bool
	stdin io.Reader
}

// New returns an Input reading stdin from os.Stdin.
func New() *Input {
	return &Input{stdin: os.Stdin}
}

// SetIn sets the reader used for --data-file -.
func (i *Input) SetIn(r io.Reader) {
	i.stdin = r
}

func (i *Input) ConfigFlags(pf *pflag.FlagSet) {
	pf.StringVarP(&i.data, "data", "d", "", "JSON document data.")
	pf.StringVarP(&i.file, "data-file", "D", "", "Read document data from the named file. Use - for stdin. Assumed to be JSON, unless the file extension is .yaml or .yml, or the --yaml flag is used.")
	pf.BoolVar(&i.yaml, "yaml", false, "Treat input data as YAML")
}

// HasInput returns true if some input has been provided.
func (i *Input) HasInput() bool {
	return i.data != "" || i.file != ""
}

func (i *Input) isYAML() bool {
	return i.yaml || strings.HasSuffix(i.file, ".yaml") || strings.HasSuffix(i.file, ".yml")
}

// JSONData returns the input as JSON. YAML input is converted.
func (i *Input) JSONData() (json.RawMessage, error) {
	r, err := i.reader()
	if err != nil {
		return nil, err
	}
	defer r.Close() // nolint:errcheck
	buf, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.Code(errors.ErrIO, err)
	}
	if i.isYAML() {
		return yaml2json(buf)
	}
	if !json.Valid(buf) {
		return nil, errors.Code(errors.ErrData, "invalid JSON document data")
	}
	return json.RawMessage(bytes.TrimSpace(buf)), nil
}

// Document returns the input as a document.
func (i *Input) Document() (couchdoc.Map, error) {
	data, err := i.JSONData()
	if err != nil {
		return nil, err
	}
	var doc couchdoc.Map
	if err := json.Unmarshal(data, &doc); err != nil || doc == nil {
		return nil, errors.Code(errors.ErrData, "document data must be a JSON object")
	}
	return doc, nil
}

func (i *Input) reader() (io.ReadCloser, error) {
	if i.data != "" {
		return io.NopCloser(strings.NewReader(i.data)), nil
	}
	switch i.file {
	case "-":
		return io.NopCloser(i.stdin), nil
	case "":
		return nil, errors.Code(errors.ErrUsage, "no document data provided")
	}
	f, err := os.Open(i.file)
	if err != nil {
		return nil, errors.Code(errors.ErrNoInput, err)
	}
	return f, nil
}

func yaml2json(buf []byte) (json.RawMessage, error) {
	var doc interface{}
	if err := yaml.Unmarshal(buf, &doc); err != nil {
		return nil, errors.Code(errors.ErrData, err)
	}
	out, err := json.Marshal(dyno.ConvertMapI2MapS(doc))
	if err != nil {
		return nil, errors.Code(errors.ErrData, err)
	}
	return out, nil
}

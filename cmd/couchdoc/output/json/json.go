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

// Package json provides the indented JSON output format.
package json

import (
	"bytes"
	"encoding/json"
	"io"

	"github.com/go-kivik/couchdoc/cmd/couchdoc/output"
)

type format struct {
	indent string
}

var (
	_ output.Format    = &format{}
	_ output.FormatArg = &format{}
)

// New returns the JSON formatter. Output is indented with four spaces unless
// an alternate indent is passed as the format argument.
func New() output.Format {
	return &format{indent: "    "}
}

func (format) Required() bool { return false }

func (f *format) Arg(arg string) error {
	f.indent = arg
	return nil
}

func (f *format) Output(w io.Writer, r io.Reader) error {
	buf, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	var out bytes.Buffer
	if err := json.Indent(&out, bytes.TrimSpace(buf), "", f.indent); err != nil {
		return err
	}
	_, err = out.WriteTo(w)
	return err
}

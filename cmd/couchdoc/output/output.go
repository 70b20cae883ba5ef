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

// Package output formats command results.
package output

import (
	"io"
	"os"
	"sort"
	"strings"
	"sync"

	"github.com/spf13/pflag"

	"github.com/go-kivik/couchdoc/cmd/couchdoc/errors"
)

// Formatter manages output formatting.
type Formatter struct {
	mu         sync.Mutex
	formats    map[string]Format
	formatOpts []string

	format    string
	output    string
	overwrite bool
	stdout    io.Writer
}

// New returns an output formatter instance.
func New() *Formatter {
	return &Formatter{
		formats: map[string]Format{},
		stdout:  os.Stdout,
	}
}

// Format is the output format interface.
type Format interface {
	Output(io.Writer, io.Reader) error
}

// FormatArg is an optional interface. If implemented by a formatter, it
// may receive an argument.
type FormatArg interface {
	Arg(string) error
	Required() bool
}

// Register registers an output formatter. The empty name registers the
// default format.
func (f *Formatter) Register(name string, fmt Format) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.formats[name]; ok {
		panic(name + " already registered")
	}
	f.formats[name] = fmt
	if name != "" {
		f.formatOpts = append(f.formatOpts, formatOptions(name, fmt))
		sort.Strings(f.formatOpts)
	}
}

func (f *Formatter) options() []string {
	if len(f.formats) == 0 {
		panic("no formatters registered")
	}
	return f.formatOpts
}

func formatOptions(name string, f Format) string {
	if argFmt, ok := f.(FormatArg); ok {
		if argFmt.Required() {
			return name + "=..."
		}
		return name + "[=...]"
	}
	return name
}

// ConfigFlags sets up the CLI flags based on the configured formatters.
func (f *Formatter) ConfigFlags(fs *pflag.FlagSet) {
	fs.StringVarP(&f.format, "format", "f", "", "Output format. One of: "+strings.Join(f.options(), "|"))
	fs.StringVarP(&f.output, "output", "o", "", "Output file.")
	fs.BoolVarP(&f.overwrite, "overwrite", "F", false, "Overwrite output file")
}

// SetOut sets the destination used when no output file is given.
func (f *Formatter) SetOut(w io.Writer) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.stdout = w
}

// Output formats the JSON read from r.
func (f *Formatter) Output(r io.Reader) error {
	fmt, err := f.formatter()
	if err != nil {
		return err
	}
	out, err := f.writer()
	if err != nil {
		return err
	}
	if err := fmt.Output(out, r); err != nil {
		_ = out.Close()
		return err
	}
	return out.Close()
}

// Validate reports an invalid --format before any request is made.
func (f *Formatter) Validate() error {
	_, err := f.formatter()
	return err
}

func (f *Formatter) formatter() (Format, error) {
	args := strings.SplitN(f.format, "=", 2) //nolint:gomnd
	name := args[0]
	format, ok := f.formats[name]
	if !ok {
		return nil, errors.Codef(errors.ErrUsage, "unrecognized output format option: %s", name)
	}
	if fmtArg, ok := format.(FormatArg); ok {
		if fmtArg.Required() && len(args) == 1 {
			return nil, errors.Codef(errors.ErrUsage, "format %s requires an argument", name)
		}
		if len(args) > 1 {
			if err := fmtArg.Arg(args[1]); err != nil {
				return nil, errors.Code(errors.ErrUsage, err)
			}
		}
	} else if len(args) > 1 {
		return nil, errors.Codef(errors.ErrUsage, "format %s takes no arguments", name)
	}
	return format, nil
}

func (f *Formatter) writer() (io.WriteCloser, error) {
	switch f.output {
	case "", "-":
		f.mu.Lock()
		defer f.mu.Unlock()
		return ensureNewlineEnding(f.stdout), nil
	}
	file, err := f.createFile(f.output)
	return file, errors.Code(errors.ErrIO, err)
}

func (f *Formatter) createFile(path string) (*os.File, error) {
	if f.overwrite {
		return os.Create(path)
	}
	return os.OpenFile(path, os.O_EXCL|os.O_CREATE|os.O_WRONLY, 0o666) //nolint:gomnd
}

// OK outputs a bare success result.
func (f *Formatter) OK() error {
	return f.Output(JSONReader(map[string]bool{"ok": true}))
}

// UpdateResult outputs the result of a document write.
func (f *Formatter) UpdateResult(id, rev string) error {
	type result struct {
		OK  bool   `json:"ok"`
		ID  string `json:"id"`
		Rev string `json:"rev"`
	}

	return f.Output(JSONReader(result{
		OK:  true,
		ID:  id,
		Rev: rev,
	}))
}

func ensureNewlineEnding(w io.Writer) io.WriteCloser {
	return &addNewlineEnding{Writer: w}
}

type addNewlineEnding struct {
	io.Writer
	last byte
}

func (w *addNewlineEnding) Write(p []byte) (int, error) {
	if len(p) > 0 {
		w.last = p[len(p)-1]
	}
	return w.Writer.Write(p)
}

// Close adds a trailing newline if one is missing. The underlying writer is
// not closed.
func (w *addNewlineEnding) Close() error {
	if w.last != '\n' {
		_, err := w.Writer.Write([]byte{'\n'})
		return err
	}
	return nil
}

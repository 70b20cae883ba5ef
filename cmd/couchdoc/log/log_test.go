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

package log

import (
	"bytes"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestLoggerOutput(t *testing.T) {
	var stdout, stderr bytes.Buffer
	l := New()
	l.SetOut(&stdout)
	l.SetErr(&stderr)

	l.Debug("hidden")
	l.Info("info ", 1)
	l.Errorf("error %d\n", 2)
	l.SetDebug(true)
	l.Debugf("debug %s", "on")

	if got, want := stdout.String(), "info 1\n"; got != want {
		t.Errorf("Unexpected stdout: %q", got)
	}
	if got, want := stderr.String(), "error 2\ndebug on\n"; got != want {
		t.Errorf("Unexpected stderr: %q", got)
	}
}

func TestLoggerZap(t *testing.T) {
	var stderr bytes.Buffer
	l := New()
	l.SetErr(&stderr)
	l.Zap().Debug("request")
	if stderr.Len() != 0 {
		t.Errorf("Expected no trace output without debug, got %q", stderr.String())
	}
	l.SetDebug(true)
	l.Zap().Debug("request")
	if got := stderr.String(); !strings.Contains(got, "DEBUG") || !strings.Contains(got, "request") {
		t.Errorf("Unexpected trace output: %q", got)
	}
}

func TestTestLogger(t *testing.T) {
	l := NewTest()
	l.Debug("a")
	l.Infof("b%d", 1)
	l.Error("c")
	want := []string{"[DEBUG] a", "[INFO] b1", "[ERROR] c"}
	if d := cmp.Diff(want, l.Logs()); d != "" {
		t.Error(d)
	}
}

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

// Package log handles logging.
package log

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger is the standard logger interface.
type Logger interface {
	// SetOut sets the destination for normal output.
	SetOut(io.Writer)
	// SetErr sets the destination for error output.
	SetErr(io.Writer)
	// SetDebug turns debug mode on or off.
	SetDebug(bool)
	// Debug logs debug output.
	Debug(...any)
	// Debug logs formatted debug output.
	Debugf(string, ...any)
	// Info logs normal priority messages.
	Info(...any)
	// Infof logs formatted normal priority messages.
	Infof(string, ...any)
	// Error logs error messages.
	Error(...any)
	// Errorf logs formatted error messages.
	Errorf(string, ...any)
	// Zap returns a structured logger writing to the error output. It
	// discards everything unless debug mode is enabled.
	Zap() *zap.Logger
}

type logger struct {
	mu     sync.Mutex
	stdout io.Writer
	stderr io.Writer
	debug  bool

	out *zap.Logger
	err *zap.Logger
}

var _ Logger = &logger{}

// New returns a new logger instance.
func New() Logger {
	l := &logger{
		stdout: os.Stdout,
		stderr: os.Stderr,
	}
	l.build()
	return l
}

// plainEncoder writes bare messages, one per line, the way a CLI prints.
func plainEncoder() zapcore.Encoder {
	return zapcore.NewConsoleEncoder(zapcore.EncoderConfig{
		MessageKey:     "msg",
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeDuration: zapcore.StringDurationEncoder,
	})
}

// traceEncoder includes levels and fields, for request traces.
func traceEncoder() zapcore.Encoder {
	return zapcore.NewConsoleEncoder(zapcore.EncoderConfig{
		MessageKey:     "msg",
		LevelKey:       "level",
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeLevel:    zapcore.CapitalLevelEncoder,
		EncodeDuration: zapcore.StringDurationEncoder,
	})
}

// build must be called with l.mu held, or before l is shared.
func (l *logger) build() {
	l.out = zap.New(zapcore.NewCore(plainEncoder(), zapcore.AddSync(l.stdout), zapcore.DebugLevel))
	l.err = zap.New(zapcore.NewCore(plainEncoder(), zapcore.AddSync(l.stderr), zapcore.DebugLevel))
}

func (l *logger) SetOut(out io.Writer) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.stdout = out
	l.build()
}

func (l *logger) SetErr(err io.Writer) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.stderr = err
	l.build()
}

func (l *logger) SetDebug(debug bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.debug = debug
}

func (l *logger) Zap() *zap.Logger {
	l.mu.Lock()
	defer l.mu.Unlock()
	if !l.debug {
		return zap.NewNop()
	}
	return zap.New(zapcore.NewCore(traceEncoder(), zapcore.AddSync(l.stderr), zapcore.DebugLevel))
}

func (l *logger) loggers() (out, err *zap.Logger, debug bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.out, l.err, l.debug
}

func (l *logger) Debug(args ...any) {
	if _, err, debug := l.loggers(); debug {
		err.Debug(strings.TrimSpace(fmt.Sprint(args...)))
	}
}

func (l *logger) Debugf(format string, args ...any) {
	if _, err, debug := l.loggers(); debug {
		err.Debug(strings.TrimSpace(fmt.Sprintf(format, args...)))
	}
}

func (l *logger) Info(args ...any) {
	out, _, _ := l.loggers()
	out.Info(strings.TrimSpace(fmt.Sprint(args...)))
}

func (l *logger) Infof(format string, args ...any) {
	out, _, _ := l.loggers()
	out.Info(strings.TrimSpace(fmt.Sprintf(format, args...)))
}

func (l *logger) Error(args ...any) {
	_, err, _ := l.loggers()
	err.Error(strings.TrimSpace(fmt.Sprint(args...)))
}

func (l *logger) Errorf(format string, args ...any) {
	_, err, _ := l.loggers()
	err.Error(strings.TrimSpace(fmt.Sprintf(format, args...)))
}

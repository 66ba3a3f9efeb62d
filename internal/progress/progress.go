// Copyright 2025 Google LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//	https://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package progress provides the sink an operation tracker reports
// cosmetic status updates to. Sinks are presentation only; dropping
// every update is always safe.
package progress

import (
	"fmt"
	"io"
	"log/slog"
	"time"
)

// Sink receives one update per status observation while an operation
// is tracked. Done is called exactly once, after the last update.
type Sink interface {
	Update(status string, elapsed time.Duration)
	Done()
}

// Nop returns a Sink that discards all updates.
func Nop() Sink {
	return nopSink{}
}

type nopSink struct{}

func (nopSink) Update(string, time.Duration) {}
func (nopSink) Done()                        {}

var spinnerFrames = []rune{'|', '/', '-', '\\'}

// NewSpinner returns a Sink that redraws a single line on w on every
// update. Meant for interactive terminals; w is typically stderr so
// that machine-readable output on stdout stays clean.
func NewSpinner(w io.Writer) Sink {
	return &spinnerSink{w: w}
}

type spinnerSink struct {
	w     io.Writer
	ticks int
	drawn bool
}

func (s *spinnerSink) Update(status string, elapsed time.Duration) {
	frame := spinnerFrames[s.ticks%len(spinnerFrames)]
	s.ticks++
	s.drawn = true
	fmt.Fprintf(s.w, "\r%c %s (%s)", frame, status, elapsed.Round(time.Second))
}

func (s *spinnerSink) Done() {
	if s.drawn {
		fmt.Fprint(s.w, "\n")
	}
}

// NewLogger returns a Sink that emits each update through logger at
// debug level. Used in verbose mode, where an in-place spinner would
// interleave with log lines.
func NewLogger(logger *slog.Logger) Sink {
	return &logSink{logger: logger}
}

type logSink struct {
	logger *slog.Logger
}

func (s *logSink) Update(status string, elapsed time.Duration) {
	s.logger.Debug("operation still running", "status", status, "elapsed", elapsed.Round(time.Millisecond))
}

func (s *logSink) Done() {}

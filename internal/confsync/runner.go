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

package confsync

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/googleapis/confsync/internal/config"
	"github.com/googleapis/confsync/internal/format"
	"github.com/googleapis/confsync/internal/lro"
	"github.com/googleapis/confsync/internal/progress"
	"github.com/googleapis/confsync/internal/remote"
)

// Exit codes, one per terminal disposition, so scripts can branch on
// how an operation ended. Client-side errors (bad flags, unreadable
// files, submit transport failures) exit 1.
const (
	exitFailed            = 2
	exitTimedOut          = 3
	exitNotFoundExhausted = 4
	exitAborted           = 5
)

// newClient is replaced in tests to avoid real network calls.
var newClient = func(conn *config.Connection) remote.Client {
	return remote.NewHTTPClient(conn.BaseURL, conn.Token)
}

// runner executes one operation: it owns the resolved policy, the
// client, and where results are written.
type runner struct {
	client     remote.Client
	policy     lro.Policy
	sink       progress.Sink
	stdout     io.Writer
	stderr     io.Writer
	jsonOut    bool
	outputPath string
}

func newRunner(cmd *cli.Command, kind remote.Kind) (*runner, error) {
	conn, err := config.ResolveConnection(cmd.String("profiles"), cmd.String("target"))
	if err != nil {
		return nil, err
	}
	settings, err := config.ResolvePollSettings(kind)
	if err != nil {
		return nil, err
	}
	applyPolicyFlags(cmd, &settings)
	if err := settings.Validate(); err != nil {
		return nil, err
	}

	r := &runner{
		client:  newClient(conn),
		policy:  policyFromSettings(settings),
		stdout:  os.Stdout,
		stderr:  os.Stderr,
		jsonOut: cmd.Bool("json"),
	}
	switch {
	case cmd.Bool("verbose"):
		slog.SetLogLoggerLevel(slog.LevelDebug)
		r.sink = progress.NewLogger(slog.Default())
	case r.jsonOut:
		r.sink = progress.Nop()
	default:
		r.sink = progress.NewSpinner(r.stderr)
	}
	return r, nil
}

func policyFromSettings(s config.PollSettings) lro.Policy {
	return lro.Policy{
		PollInterval:        time.Duration(s.PollIntervalMS) * time.Millisecond,
		Timeout:             time.Duration(s.TimeoutMS) * time.Millisecond,
		MaxNotFoundRetries:  s.MaxNotFoundRetries,
		NotFoundDelayFactor: s.NotFoundDelayFactor,
	}
}

// run tracks req to its terminal outcome, renders it, and maps the
// disposition to the process exit code.
func (r *runner) run(ctx context.Context, req *remote.SubmitRequest) error {
	tracker := lro.NewTracker(r.client, r.policy, r.sink)
	out, err := tracker.Run(ctx, req)
	if err != nil {
		return err
	}
	if err := r.render(out, req.Kind); err != nil {
		return err
	}
	if code := exitCode(out.Disposition); code != 0 {
		return cli.Exit("", code)
	}
	return nil
}

func (r *runner) render(out *lro.Outcome, kind remote.Kind) error {
	if r.jsonOut {
		b, err := format.JSON(out)
		if err != nil {
			return fmt.Errorf("encoding outcome: %w", err)
		}
		fmt.Fprintln(r.stdout, string(b))
		return nil
	}
	if out.Disposition == lro.Success && kind == remote.KindExport && len(out.Payload) > 0 {
		// The exported document goes to the file or stdout; the
		// human-readable line stays on stderr so the document remains
		// pipeable.
		fmt.Fprintln(r.stderr, format.Text(out))
		if r.outputPath != "" {
			if err := os.WriteFile(r.outputPath, out.Payload, 0o644); err != nil {
				return fmt.Errorf("writing exported configuration: %w", err)
			}
			fmt.Fprintf(r.stderr, "wrote exported configuration to %s\n", r.outputPath)
			return nil
		}
		fmt.Fprintln(r.stdout, string(out.Payload))
		return nil
	}
	fmt.Fprintln(r.stdout, format.Text(out))
	return nil
}

func exitCode(d lro.Disposition) int {
	switch d {
	case lro.Success:
		return 0
	case lro.Failed:
		return exitFailed
	case lro.TimedOut:
		return exitTimedOut
	case lro.NotFoundExhausted:
		return exitNotFoundExhausted
	case lro.Aborted:
		return exitAborted
	default:
		return 1
	}
}

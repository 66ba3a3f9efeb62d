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
	"time"

	"github.com/urfave/cli/v3"

	"github.com/googleapis/confsync/internal/config"
)

// connectionFlags select which service instance a command runs
// against.
func connectionFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:  "profiles",
			Usage: "path to the connection profiles file",
			Value: config.DefaultProfilesPath(),
		},
		&cli.StringFlag{
			Name:  "target",
			Usage: "named connection profile to run against",
		},
	}
}

// policyFlags tune how the operation is polled. Unset flags fall back
// to the environment and then to the per-kind defaults, so no flag
// declares a default value here.
func policyFlags() []cli.Flag {
	return []cli.Flag{
		&cli.DurationFlag{
			Name:  "poll-interval",
			Usage: "pause between status checks (default 1s)",
		},
		&cli.DurationFlag{
			Name:  "timeout",
			Usage: "overall wall-clock deadline for the operation (default 5m)",
		},
		&cli.IntFlag{
			Name:  "max-not-found-retries",
			Usage: "how many not-found status checks to tolerate before giving up (default 3 for export, 5 for import)",
		},
		&cli.FloatFlag{
			Name:  "not-found-delay-factor",
			Usage: "stretch the pause after a not-found status by this factor (default 1.0)",
		},
		&cli.BoolFlag{
			Name:  "verbose",
			Usage: "log every status observation instead of showing a spinner",
		},
		&cli.BoolFlag{
			Name:  "json",
			Usage: "print the raw outcome as JSON on stdout",
		},
	}
}

// applyPolicyFlags overlays explicitly set flags onto s. Flag
// presence matters: a flag the user did not pass must not clobber an
// environment override.
func applyPolicyFlags(cmd *cli.Command, s *config.PollSettings) {
	if cmd.IsSet("poll-interval") {
		s.PollIntervalMS = int(cmd.Duration("poll-interval") / time.Millisecond)
	}
	if cmd.IsSet("timeout") {
		s.TimeoutMS = int(cmd.Duration("timeout") / time.Millisecond)
	}
	if cmd.IsSet("max-not-found-retries") {
		s.MaxNotFoundRetries = int(cmd.Int("max-not-found-retries"))
	}
	if cmd.IsSet("not-found-delay-factor") {
		s.NotFoundDelayFactor = cmd.Float("not-found-delay-factor")
	}
}

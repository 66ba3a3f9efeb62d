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

// Package config resolves where confsync connects and how it polls.
// Values come from, in rising precedence: per-kind defaults, the TOML
// profiles file, CONFSYNC_* environment variables, and command-line
// flags (applied by the command layer).
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/kelseyhightower/envconfig"
	"github.com/pelletier/go-toml/v2"

	"github.com/googleapis/confsync/internal/remote"
)

// envPrefix is the prefix for all environment overrides, e.g.
// CONFSYNC_BASE_URL.
const envPrefix = "confsync"

// Profile is one named connection target in the profiles file.
type Profile struct {
	BaseURL string `toml:"base_url"`
	Token   string `toml:"token"`
}

// Profiles is the contract of the profiles.toml file.
type Profiles struct {
	Profiles map[string]Profile `toml:"profiles"`
}

// DefaultProfilesPath returns the default location of the profiles
// file.
func DefaultProfilesPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "profiles.toml"
	}
	return filepath.Join(home, ".config", "confsync", "profiles.toml")
}

// LoadProfiles reads the profiles file at path. A missing file is not
// an error: environment-only setups (CI) have no profiles file.
func LoadProfiles(path string) (*Profiles, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return &Profiles{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading profiles file %s: %w", path, err)
	}
	var p Profiles
	if err := toml.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("parsing profiles file %s: %w", path, err)
	}
	for name, prof := range p.Profiles {
		if prof.BaseURL == "" {
			return nil, fmt.Errorf("profile %q has no base_url", name)
		}
	}
	return &p, nil
}

// Connection is a resolved target: where to connect and as whom.
type Connection struct {
	BaseURL string `envconfig:"BASE_URL"`
	Token   string `envconfig:"TOKEN"`
}

// ResolveConnection picks the connection for target from the profiles
// file at profilesPath, then applies environment overrides. An empty
// target is allowed when the environment supplies the base URL.
func ResolveConnection(profilesPath, target string) (*Connection, error) {
	profiles, err := LoadProfiles(profilesPath)
	if err != nil {
		return nil, err
	}
	var conn Connection
	if target != "" {
		prof, ok := profiles.Profiles[target]
		if !ok {
			return nil, fmt.Errorf("unknown target %q: not in %s", target, profilesPath)
		}
		conn = Connection(prof)
	}
	var env Connection
	if err := envconfig.Process(envPrefix, &env); err != nil {
		return nil, fmt.Errorf("reading environment: %w", err)
	}
	if env.BaseURL != "" {
		conn.BaseURL = env.BaseURL
	}
	if env.Token != "" {
		conn.Token = env.Token
	}
	if conn.BaseURL == "" {
		return nil, fmt.Errorf("no service address: pass --target with a profiles entry or set CONFSYNC_BASE_URL")
	}
	return &conn, nil
}

// PollSettings is the polling policy in the units the CLI and the
// environment speak (milliseconds).
type PollSettings struct {
	PollIntervalMS      int     `envconfig:"POLL_INTERVAL_MS"`
	TimeoutMS           int     `envconfig:"TIMEOUT_MS"`
	MaxNotFoundRetries  int     `envconfig:"MAX_NOT_FOUND_RETRIES"`
	NotFoundDelayFactor float64 `envconfig:"NOT_FOUND_DELAY_FACTOR"`
}

// DefaultPollSettings returns the defaults for one operation kind.
// Imports tolerate more not-found observations than exports because
// the service takes longer to materialize import operations in its
// status store.
func DefaultPollSettings(kind remote.Kind) PollSettings {
	s := PollSettings{
		PollIntervalMS:      1000,
		TimeoutMS:           300000,
		MaxNotFoundRetries:  3,
		NotFoundDelayFactor: 1.0,
	}
	if kind == remote.KindImport {
		s.MaxNotFoundRetries = 5
	}
	return s
}

// ResolvePollSettings starts from the defaults for kind and applies
// environment overrides. Flag overrides happen in the command layer,
// where flag presence is known.
func ResolvePollSettings(kind remote.Kind) (PollSettings, error) {
	s := DefaultPollSettings(kind)
	if err := envconfig.Process(envPrefix, &s); err != nil {
		return PollSettings{}, fmt.Errorf("reading environment: %w", err)
	}
	if err := s.Validate(); err != nil {
		return PollSettings{}, err
	}
	return s, nil
}

// Validate rejects settings the poller cannot run with.
func (s PollSettings) Validate() error {
	if s.PollIntervalMS <= 0 {
		return fmt.Errorf("poll interval must be positive, got %dms", s.PollIntervalMS)
	}
	if s.TimeoutMS <= 0 {
		return fmt.Errorf("timeout must be positive, got %dms", s.TimeoutMS)
	}
	if s.MaxNotFoundRetries < 1 {
		return fmt.Errorf("max not-found retries must be at least 1, got %d", s.MaxNotFoundRetries)
	}
	if s.NotFoundDelayFactor < 0 {
		return fmt.Errorf("not-found delay factor must not be negative, got %g", s.NotFoundDelayFactor)
	}
	return nil
}

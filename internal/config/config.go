// Package config loads the application configuration from YAML or JSON.
package config

import (
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"github.com/zeusync/trackenv/internal/core/env"
	"github.com/zeusync/trackenv/internal/core/observability/log"
	"github.com/zeusync/trackenv/internal/core/track"
	"github.com/zeusync/trackenv/internal/server"
	"gopkg.in/yaml.v3"
)

// Config is everything the server binary needs.
type Config struct {
	Log    LogConfig     `json:"log" yaml:"log"`
	Track  track.Spec    `json:"track" yaml:"track"`
	Env    env.Config    `json:"env" yaml:"env"`
	Server server.Config `json:"server" yaml:"server"`
}

type LogConfig struct {
	Level string `json:"level" yaml:"level"`
}

// Default returns the built-in configuration: the default arena, the
// default environment and both transports on localhost.
func Default() Config {
	return Config{
		Log:    LogConfig{Level: "info"},
		Track:  track.DefaultSpec(),
		Env:    env.DefaultConfig(),
		Server: server.DefaultConfig(),
	}
}

// LoadJSON decodes a configuration over the defaults, so a file only needs
// the fields it changes.
func LoadJSON(r io.Reader) (*Config, error) {
	c := Default()
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&c); err != nil {
		return nil, errors.Wrap(err, "decode json config")
	}
	return &c, nil
}

// LoadYAML decodes a configuration over the defaults.
func LoadYAML(r io.Reader) (*Config, error) {
	c := Default()
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&c); err != nil && !errors.Is(err, io.EOF) {
		return nil, errors.Wrap(err, "decode yaml config")
	}
	return &c, nil
}

// Load reads path, choosing the decoder by extension, and validates the
// result.
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "open config")
	}
	defer func() { _ = f.Close() }()

	var c *Config
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		c, err = LoadJSON(f)
	case ".yaml", ".yml":
		c, err = LoadYAML(f)
	default:
		return nil, errors.Errorf("unsupported config format %q", filepath.Ext(path))
	}
	if err != nil {
		return nil, err
	}
	if err = c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// Validate checks every section. The environment is checked against the
// track it will run on.
func (c *Config) Validate() error {
	if _, err := log.ParseLevel(c.Log.Level); err != nil {
		return err
	}
	trk, err := c.Track.Build()
	if err != nil {
		return errors.Wrap(err, "track")
	}
	e, err := env.New(c.Env, trk)
	if err != nil {
		return errors.Wrap(err, "env")
	}
	_ = e.Close()
	return errors.Wrap(c.Server.Validate(), "server")
}

package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zeusync/trackenv/internal/core/env"
	"github.com/zeusync/trackenv/internal/core/systems/vehicle"
	"github.com/zeusync/trackenv/internal/core/track"
	"github.com/zeusync/trackenv/internal/server"
)

const yamlConfig = `
log:
  level: debug
track:
  kind: segments
  width: 400
  height: 300
  walls:
    - [10, 10, 390, 10]
    - [390, 10, 390, 290]
    - [390, 290, 10, 290]
    - [10, 290, 10, 10]
  checkpoints:
    - {x: 100, y: 150, radius: 20}
    - {x: 300, y: 150, radius: 20}
env:
  vehicle:
    model: holonomic
    top_speed: 120
  start:
    mode: checkpoints
  max_steps: 500
  observation: extended
server:
  quic_addr: ""
  idle_timeout: 30s
`

func TestDefaultIsValid(t *testing.T) {
	c := Default()
	require.NoError(t, c.Validate())
	assert.Equal(t, track.KindArena, c.Track.Kind)
	assert.Equal(t, 4000, c.Env.MaxSteps)
}

func TestLoadYAML(t *testing.T) {
	c, err := LoadYAML(strings.NewReader(yamlConfig))
	require.NoError(t, err)
	require.NoError(t, c.Validate())

	assert.Equal(t, "debug", c.Log.Level)
	assert.Equal(t, track.KindSegments, c.Track.Kind)
	assert.Len(t, c.Track.Walls, 4)
	assert.Equal(t, vehicle.ModelHolonomic, c.Env.Vehicle.Model)
	assert.Equal(t, 120.0, c.Env.Vehicle.TopSpeed)
	assert.Equal(t, 20.0, c.Env.Vehicle.Footprint.HalfWidth, "unset fields keep defaults")
	assert.Equal(t, env.StartCheckpoints, c.Env.Start.Mode)
	assert.Equal(t, env.ObservationExtended, c.Env.Observation)
	assert.Equal(t, "", c.Server.QUICAddr)
	assert.Equal(t, 30*time.Second, c.Server.IdleTimeout)
	assert.Equal(t, server.DefaultConfig().WebSocketAddr, c.Server.WebSocketAddr)
}

func TestLoadJSON(t *testing.T) {
	c, err := LoadJSON(strings.NewReader(`{"env": {"max_steps": 10, "reward": {"clip": 5}}}`))
	require.NoError(t, err)
	assert.Equal(t, 10, c.Env.MaxSteps)
	assert.Equal(t, 5.0, c.Env.Reward.Clip)
	assert.Equal(t, -25.0, c.Env.Reward.CollisionPenalty)

	_, err = LoadJSON(strings.NewReader(`{"env": {"max_stepz": 10}}`))
	require.Error(t, err)
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()

	good := filepath.Join(dir, "trackenv.yaml")
	require.NoError(t, os.WriteFile(good, []byte(yamlConfig), 0o600))
	c, err := Load(good)
	require.NoError(t, err)
	assert.Equal(t, 500, c.Env.MaxSteps)

	bad := filepath.Join(dir, "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte(`{"track": {"kind": "segments", "width": 100, "height": 100}}`), 0o600))
	_, err = Load(bad)
	require.ErrorIs(t, err, track.ErrNoGeometry)

	level := filepath.Join(dir, "level.yml")
	require.NoError(t, os.WriteFile(level, []byte("log:\n  level: loud\n"), 0o600))
	_, err = Load(level)
	require.Error(t, err)

	_, err = Load(filepath.Join(dir, "config.toml"))
	require.Error(t, err)
	_, err = Load(filepath.Join(dir, "missing.yaml"))
	require.Error(t, err)
}

package rollout

import (
	"context"
	"math"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zeusync/trackenv/internal/core/env"
	"github.com/zeusync/trackenv/internal/core/events/bus"
	"github.com/zeusync/trackenv/internal/core/track"
)

func testConfig() env.Config {
	cfg := env.DefaultConfig()
	cfg.MaxSteps = 300
	cfg.Start.Jitter = 15
	cfg.Collision.Policy = "stop"
	return cfg
}

// weave steers by the seed so every episode follows its own path.
func weave(seed int64) Policy {
	i := 0
	return PolicyFunc(func(env.Observation) env.Action {
		i++
		return env.Continuous(math.Sin(float64(i)*0.02+float64(seed)), 0.8)
	})
}

func TestRunDeterministicAcrossWorkers(t *testing.T) {
	trk, err := track.DefaultSpec().Build()
	require.NoError(t, err)
	seeds := []int64{1, 2, 3, 4, 5, 6, 7, 8}

	serial, err := Run(context.Background(), testConfig(), trk, seeds, weave, WithWorkers(1))
	require.NoError(t, err)
	parallel, err := Run(context.Background(), testConfig(), trk, seeds, weave, WithWorkers(4))
	require.NoError(t, err)

	require.Len(t, parallel, len(seeds))
	assert.Equal(t, serial, parallel)
	for i, r := range parallel {
		assert.Equal(t, seeds[i], r.Seed)
		assert.True(t, r.Truncated)
		assert.Equal(t, 300, r.Steps)
	}
	assert.NotEqual(t, parallel[0].Digest, parallel[1].Digest)

	stats := Summarize(parallel)
	assert.Equal(t, len(seeds), stats.Episodes)
	assert.Equal(t, 300.0, stats.MeanSteps)
	assert.Zero(t, stats.Terminated)
}

func TestRunTerminalEpisodes(t *testing.T) {
	trk, err := track.DefaultSpec().Build()
	require.NoError(t, err)
	cfg := env.DefaultConfig()
	cfg.Start.Position.Y = 60

	events := bus.New()
	var collisions atomic.Int64
	_, err = events.Subscribe(bus.TypeCollision, func(bus.Event) error {
		collisions.Add(1)
		return nil
	})
	require.NoError(t, err)

	up := func(int64) Policy {
		return PolicyFunc(func(env.Observation) env.Action { return env.Continuous(0, 1) })
	}
	heading := -90.0
	cfg.Start.HeadingDeg = &heading

	results, err := Run(context.Background(), cfg, trk, []int64{0, 1}, up, WithEventBus(events))
	require.NoError(t, err)
	for _, r := range results {
		assert.True(t, r.Terminated)
		assert.False(t, r.Truncated)
		assert.Equal(t, 1, r.Collisions)
		// a few small positive steps, then the collision penalty
		assert.Greater(t, r.Return, -25.0)
		assert.Less(t, r.Return, -15.0)
	}
	assert.Equal(t, int64(2), collisions.Load())
	assert.Equal(t, 2, Summarize(results).Terminated)
}

func TestRunErrors(t *testing.T) {
	trk, err := track.DefaultSpec().Build()
	require.NoError(t, err)

	_, err = Run(context.Background(), testConfig(), trk, []int64{1}, nil)
	require.ErrorIs(t, err, ErrNoPolicy)

	bad := testConfig()
	bad.DT = -1
	_, err = Run(context.Background(), bad, trk, []int64{1}, weave)
	require.ErrorIs(t, err, env.ErrInvalidConfig)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = Run(ctx, testConfig(), trk, []int64{1, 2}, weave)
	require.ErrorIs(t, err, context.Canceled)

	results, err := Run(context.Background(), testConfig(), trk, nil, weave)
	require.NoError(t, err)
	assert.Empty(t, results)
}

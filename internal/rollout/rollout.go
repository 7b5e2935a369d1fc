// Package rollout runs independent episodes in parallel. Every episode gets
// its own environment over the shared, read-only track.
package rollout

import (
	"context"
	"runtime"

	"github.com/pkg/errors"
	"github.com/zeusync/trackenv/internal/core/env"
	"github.com/zeusync/trackenv/internal/core/events/bus"
	"github.com/zeusync/trackenv/internal/core/observability/log"
	"github.com/zeusync/trackenv/internal/core/systems/progress"
	"github.com/zeusync/trackenv/internal/core/track"
	"golang.org/x/sync/errgroup"
)

var ErrNoPolicy = errors.New("rollout: nil policy factory")

// Policy picks an action from an observation.
type Policy interface {
	Act(obs env.Observation) env.Action
}

// PolicyFunc adapts a function to Policy.
type PolicyFunc func(obs env.Observation) env.Action

func (f PolicyFunc) Act(obs env.Observation) env.Action { return f(obs) }

// PolicyFactory builds one policy per episode, so stateful policies never
// share state across workers.
type PolicyFactory func(seed int64) Policy

// Result summarizes one episode.
type Result struct {
	Seed        int64        `json:"seed"`
	Steps       int          `json:"steps"`
	Return      float64      `json:"return"`
	Checkpoints int          `json:"checkpoints"`
	Laps        int          `json:"laps"`
	Collisions  int          `json:"collisions"`
	Terminated  bool         `json:"terminated"`
	Truncated   bool         `json:"truncated"`
	Digest      uint64       `json:"digest"`
	Final       env.Snapshot `json:"final"`
}

type options struct {
	workers int
	logger  log.Log
	events  bus.EventBus
}

type Option func(*options)

// WithWorkers bounds the number of episodes run at once. The default is
// GOMAXPROCS.
func WithWorkers(n int) Option { return func(o *options) { o.workers = n } }

func WithLogger(l log.Log) Option { return func(o *options) { o.logger = l } }

// WithEventBus forwards every episode's events to b.
func WithEventBus(b bus.EventBus) Option { return func(o *options) { o.events = b } }

// Run plays one episode per seed and returns the results in seed order. An
// episode ends when it terminates or truncates. The first error, including
// cancellation of ctx, stops the remaining episodes.
func Run(ctx context.Context, cfg env.Config, trk *track.Track, seeds []int64, factory PolicyFactory, opts ...Option) ([]Result, error) {
	if factory == nil {
		return nil, ErrNoPolicy
	}
	o := options{workers: runtime.GOMAXPROCS(0)}
	for _, opt := range opts {
		opt(&o)
	}
	if o.workers < 1 {
		o.workers = 1
	}
	if o.logger == nil {
		o.logger = log.NewNop()
	}

	results := make([]Result, len(seeds))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(o.workers)

	for i, seed := range seeds {
		g.Go(func() error {
			res, err := episode(ctx, cfg, trk, seed, factory(seed), o)
			if err != nil {
				return errors.Wrapf(err, "episode with seed %d", seed)
			}
			results[i] = res
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		o.logger.Warn("rollout aborted", log.Error(err))
		return nil, err
	}
	o.logger.Info("rollout finished", log.Int("episodes", len(seeds)), log.Int("workers", o.workers))
	return results, nil
}

func episode(ctx context.Context, cfg env.Config, trk *track.Track, seed int64, policy Policy, o options) (Result, error) {
	envOpts := []env.Option{env.WithLogger(o.logger)}
	if o.events != nil {
		envOpts = append(envOpts, env.WithEventBus(o.events))
	}
	e, err := env.New(cfg, trk, envOpts...)
	if err != nil {
		return Result{}, err
	}
	defer func() { _ = e.Close() }()

	res := Result{Seed: seed}
	obs := e.Reset(seed)
	for !res.Terminated && !res.Truncated {
		if err = ctx.Err(); err != nil {
			return Result{}, err
		}
		step := e.Step(policy.Act(obs))
		obs = step.Observation
		res.Steps++
		res.Return += step.Reward
		res.Terminated = step.Terminated
		res.Truncated = step.Truncated
		if step.Info.Collided {
			res.Collisions++
		}
		switch step.Info.Event {
		case progress.CheckpointReached.String():
			res.Checkpoints++
		case progress.LapCompleted.String():
			res.Checkpoints++
			res.Laps++
		}
	}
	res.Digest = e.Digest()
	res.Final = e.Snapshot()
	return res, nil
}

// Stats aggregates a batch of results.
type Stats struct {
	Episodes   int     `json:"episodes"`
	MeanReturn float64 `json:"mean_return"`
	MeanSteps  float64 `json:"mean_steps"`
	Terminated int     `json:"terminated"`
	Laps       int     `json:"laps"`
}

func Summarize(results []Result) Stats {
	s := Stats{Episodes: len(results)}
	if len(results) == 0 {
		return s
	}
	for _, r := range results {
		s.MeanReturn += r.Return
		s.MeanSteps += float64(r.Steps)
		s.Laps += r.Laps
		if r.Terminated {
			s.Terminated++
		}
	}
	n := float64(len(results))
	s.MeanReturn /= n
	s.MeanSteps /= n
	return s
}

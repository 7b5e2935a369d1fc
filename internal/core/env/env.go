// Package env is the reset/step facade over the simulation core. An
// Environment owns one vehicle, its progress and its step counter; the track
// is shared read-only. Step and Reset never fail once New has succeeded.
package env

import (
	"encoding/binary"
	"math"
	"math/rand/v2"

	"github.com/cespare/xxhash/v2"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/zeusync/trackenv/internal/core/events/bus"
	"github.com/zeusync/trackenv/internal/core/observability/log"
	"github.com/zeusync/trackenv/internal/core/systems/collision"
	"github.com/zeusync/trackenv/internal/core/systems/physics"
	"github.com/zeusync/trackenv/internal/core/systems/progress"
	"github.com/zeusync/trackenv/internal/core/systems/sensors"
	"github.com/zeusync/trackenv/internal/core/systems/vehicle"
	"github.com/zeusync/trackenv/internal/core/track"
)

// Observation is the vector handed to the agent. Every element is in [0, 1].
type Observation []float64

// Info carries diagnostics that are not part of the observation.
type Info struct {
	Step     int            `json:"step"`
	Event    string         `json:"event"`
	Collided bool           `json:"collided"`
	Progress progress.State `json:"progress"`
	Position physics.Vec2   `json:"position"`
	Heading  float64        `json:"heading"`
	Speed    float64        `json:"speed"`
}

// StepResult is the outcome of one Step.
type StepResult struct {
	Observation Observation `json:"observation"`
	Reward      float64     `json:"reward"`
	Terminated  bool        `json:"terminated"`
	Truncated   bool        `json:"truncated"`
	Info        Info        `json:"info"`
}

// Snapshot is the read-only view a renderer draws from.
type Snapshot struct {
	Pose     physics.Pose    `json:"pose"`
	Speed    float64         `json:"speed"`
	Reading  sensors.Reading `json:"reading"`
	Progress progress.State  `json:"progress"`
	Target   physics.Vec2    `json:"target"`
	Step     int             `json:"step"`
}

type Option func(*Environment)

func WithLogger(l log.Log) Option {
	return func(e *Environment) { e.logger = l }
}

// WithEventBus publishes episode events on b.
func WithEventBus(b bus.EventBus) Option {
	return func(e *Environment) { e.bus = b }
}

// WithID names the environment in logs and events. A random id is used
// otherwise.
func WithID(id string) Option {
	return func(e *Environment) { e.id = id }
}

type Environment struct {
	id  string
	cfg Config

	track     *track.Track
	bounds    physics.Rect
	model     vehicle.Model
	discrete  bool
	footprint vehicle.Footprint
	sensors   *sensors.Array
	detector  collision.Detector
	policy    collision.Policy
	progress  *progress.Tracker

	logger log.Log
	bus    bus.EventBus

	state    vehicle.State
	reading  sensors.Reading
	steps    int
	prevDist float64
	digest   *xxhash.Digest
	buf      [8]byte
	closed   bool
}

// New validates cfg against trk and builds an environment. The returned
// environment is already reset with seed 0.
func New(cfg Config, trk *track.Track, opts ...Option) (*Environment, error) {
	if trk == nil {
		return nil, ErrNilTrack
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	e := &Environment{
		cfg:       cfg,
		track:     trk,
		discrete:  cfg.Vehicle.Discrete(),
		footprint: cfg.Vehicle.Footprint,
		digest:    xxhash.New(),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.id == "" {
		e.id = uuid.NewString()
	}
	if e.logger == nil {
		e.logger = log.NewNop()
	}
	e.logger = e.logger.With(log.String("env", e.id))

	var err error
	if e.model, err = cfg.Vehicle.Build(); err != nil {
		return nil, err
	}
	if e.sensors, err = cfg.Sensors.Build(); err != nil {
		return nil, errors.Wrap(ErrInvalidConfig, err.Error())
	}
	switch cfg.Sensors.Source {
	case sensors.SourceSurface:
		if trk.Surface() == nil {
			return nil, errors.Wrap(ErrIncompatible, "surface sensors need a classification surface")
		}
	default:
		if len(trk.Walls()) == 0 {
			return nil, errors.Wrap(ErrIncompatible, "wall sensors need wall segments")
		}
	}
	if e.detector, e.policy, err = cfg.Collision.Build(trk); err != nil {
		return nil, err
	}
	if e.progress, err = progress.NewTracker(trk.Checkpoints()); err != nil {
		return nil, err
	}
	if cfg.Start.Mode == StartCheckpoints && trk.NumCheckpoints() < 2 {
		return nil, errors.Wrap(ErrIncompatible, "checkpoint start needs two checkpoints")
	}

	e.bounds = trk.Bounds().Inset(cfg.BoundsInset)
	if e.bounds.Empty() {
		return nil, errors.Wrapf(ErrIncompatible, "bounds inset %g leaves no room", cfg.BoundsInset)
	}

	e.logger.Info("environment created",
		log.String("model", e.model.Name()),
		log.String("collision", e.detector.Name()),
		log.String("policy", e.policy.String()),
		log.String("sensors", e.sensors.Mode().String()),
		log.Int("rays", e.sensors.Len()),
		log.Int("checkpoints", trk.NumCheckpoints()),
	)
	e.Reset(0)
	return e, nil
}

func (e *Environment) ID() string               { return e.id }
func (e *Environment) Config() Config           { return e.cfg }
func (e *Environment) Track() *track.Track      { return e.track }
func (e *Environment) ActionSpace() ActionSpace { return actionSpace(e.cfg.Vehicle) }

// ObservationSize is the length of every observation.
func (e *Environment) ObservationSize() int {
	if e.cfg.Observation == ObservationExtended {
		return e.sensors.Len() + 5
	}
	return e.sensors.Len()
}

// Reset starts a new episode and returns its first observation. The same
// seed always yields the same start pose.
func (e *Environment) Reset(seed int64) Observation {
	e.progress.Reset()
	e.steps = 0
	e.digest.Reset()
	e.place(e.startPose(seed))

	e.logger.Debug("episode reset",
		log.Int64("seed", seed),
		log.Float64("x", e.state.Position.X),
		log.Float64("y", e.state.Position.Y),
		log.Float64("heading", e.state.Heading),
	)
	e.publish(bus.TypeEpisodeReset, e.Snapshot())
	return e.observe()
}

func (e *Environment) startPose(seed int64) physics.Pose {
	cps := e.track.Checkpoints()
	var pose physics.Pose
	switch e.cfg.Start.Mode {
	case StartCheckpoints:
		pose.Position = cps[0].Center()
		pose.Heading = cps[1].Center().Sub(pose.Position).Angle()
	default:
		pose.Position = e.cfg.Start.Position
		if e.cfg.Start.HeadingDeg != nil {
			pose.Heading = physics.Radians(*e.cfg.Start.HeadingDeg)
		} else {
			pose.Heading = cps[0].Center().Sub(pose.Position).Angle()
		}
	}

	if j, hj := e.cfg.Start.Jitter, physics.Radians(e.cfg.Start.HeadingJitterDeg); j > 0 || hj > 0 {
		rng := rand.New(rand.NewPCG(uint64(seed), 0x9e3779b97f4a7c15))
		pose.Position.X += float64((2*rng.Float64() - 1) * j)
		pose.Position.Y += float64((2*rng.Float64() - 1) * j)
		pose.Heading += float64((2*rng.Float64() - 1) * hj)
	}
	pose.Position = e.bounds.Clamp(pose.Position)
	return pose
}

// Place puts the vehicle at rest at pose without touching progress or the
// step counter. Curriculum starts and tests use it.
func (e *Environment) Place(pose physics.Pose) Observation {
	e.place(pose)
	return e.observe()
}

func (e *Environment) place(pose physics.Pose) {
	if !pose.Position.IsFinite() {
		pose.Position = e.bounds.Clamp(physics.Vec2{})
	}
	if !physics.IsFinite(pose.Heading) {
		pose.Heading = 0
	}
	e.state = vehicle.State{Pose: pose}
	e.reading = e.scan(pose)
	e.prevDist = e.targetDistance()
}

// Step advances the simulation by one tick.
func (e *Environment) Step(a Action) StepResult {
	prev := e.state
	next := e.model.Advance(prev, e.control(a), e.cfg.DT)
	next.Position = e.bounds.Clamp(next.Position)

	collided := e.detector.Collides(next, e.footprint)
	terminated := collided && e.policy == collision.Terminal
	switch {
	case terminated:
		next = prev
	case collided:
		next = next.Stopped()
	}
	e.state = next
	e.reading = e.scan(next.Pose)

	event := progress.None
	var delta float64
	if !terminated {
		dist := e.targetDistance()
		delta = e.prevDist - dist
		e.prevDist = dist
		event = e.progress.Update(next.Position)
		if event != progress.None {
			e.prevDist = e.targetDistance()
		}
	}

	reward := e.reward(next, delta, collided, terminated, event)
	e.steps++
	truncated := e.steps >= e.cfg.MaxSteps

	e.record(next.Pose, reward)
	res := StepResult{
		Observation: e.observe(),
		Reward:      reward,
		Terminated:  terminated,
		Truncated:   truncated,
		Info: Info{
			Step:     e.steps,
			Event:    event.String(),
			Collided: collided,
			Progress: e.progress.State(),
			Position: next.Position,
			Heading:  next.Heading,
			Speed:    next.Speed,
		},
	}
	e.announce(res, event)
	return res
}

func (e *Environment) reward(s vehicle.State, delta float64, collided, terminated bool, event progress.Event) float64 {
	r := e.cfg.Reward
	if terminated {
		return clip(r.CollisionPenalty, r.Clip)
	}
	total := r.Survival +
		float64(r.SpeedScale*s.Speed) +
		float64(r.ProgressScale*delta) +
		float64(r.ClearanceScale*e.reading.Mean()) -
		r.TimePenalty
	if collided {
		total += r.CollisionPenalty
	}
	switch event {
	case progress.CheckpointReached:
		total += r.CheckpointBonus
	case progress.LapCompleted:
		total += r.LapBonus
	}
	return clip(total, r.Clip)
}

// clip bounds v to [-limit, limit]; NaN becomes 0.
func clip(v, limit float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	return physics.Clamp(v, -limit, limit)
}

func (e *Environment) scan(pose physics.Pose) sensors.Reading {
	if e.cfg.Sensors.Source == sensors.SourceSurface {
		return e.sensors.ScanSurface(pose, e.track.Surface(), e.cfg.Sensors.RasterStep)
	}
	return e.sensors.Scan(pose, e.track.Walls())
}

func (e *Environment) targetDistance() float64 {
	d := e.progress.Target().Center().Distance(e.state.Position)
	if !physics.IsFinite(d) {
		return 0
	}
	return d
}

func (e *Environment) observe() Observation {
	obs := make(Observation, 0, e.ObservationSize())
	obs = append(obs, e.reading...)
	if e.cfg.Observation == ObservationExtended {
		limit := e.cfg.Vehicle.SpeedLimit()
		to := e.progress.Target().Center().Sub(e.state.Position).Scale(1 / (2 * e.sensors.MaxRange()))
		obs = append(obs,
			e.state.Speed/limit,
			math.Sin(e.state.Heading),
			math.Cos(e.state.Heading),
			(physics.Clamp(to.X, -1, 1)+1)/2,
			(physics.Clamp(to.Y, -1, 1)+1)/2,
		)
	}
	for i, v := range obs {
		if !physics.IsFinite(v) {
			v = 0
		}
		obs[i] = physics.Clamp(v, 0, 1)
	}
	return obs
}

// record folds a committed step into the trajectory digest.
func (e *Environment) record(p physics.Pose, reward float64) {
	for _, v := range [...]float64{p.Position.X, p.Position.Y, p.Heading, reward} {
		binary.LittleEndian.PutUint64(e.buf[:], math.Float64bits(v))
		_, _ = e.digest.Write(e.buf[:])
	}
}

// Digest hashes every committed position, heading and reward since the last
// reset. Equal digests mean bit-identical trajectories.
func (e *Environment) Digest() uint64 { return e.digest.Sum64() }

// Steps is the number of steps since the last reset.
func (e *Environment) Steps() int { return e.steps }

func (e *Environment) Snapshot() Snapshot {
	return Snapshot{
		Pose:     e.state.Pose,
		Speed:    e.state.Speed,
		Reading:  append(sensors.Reading(nil), e.reading...),
		Progress: e.progress.State(),
		Target:   e.progress.Target().Center(),
		Step:     e.steps,
	}
}

func (e *Environment) announce(res StepResult, event progress.Event) {
	if res.Info.Collided {
		e.logger.Debug("collision", log.Int("step", res.Info.Step), log.Bool("terminated", res.Terminated))
		e.publish(bus.TypeCollision, res.Info)
	}
	switch event {
	case progress.CheckpointReached:
		e.logger.Debug("checkpoint reached", log.Int("step", res.Info.Step), log.Int("next", res.Info.Progress.Expected))
		e.publish(bus.TypeCheckpointReached, res.Info)
	case progress.LapCompleted:
		e.logger.Debug("lap completed", log.Int("step", res.Info.Step), log.Int("laps", res.Info.Progress.Laps))
		e.publish(bus.TypeLapCompleted, res.Info)
	}
	if res.Truncated && res.Info.Step == e.cfg.MaxSteps {
		e.logger.Debug("episode truncated", log.Int("step", res.Info.Step), log.Uint64("digest", e.Digest()))
		e.publish(bus.TypeTruncated, res.Info)
	}
}

func (e *Environment) publish(typ string, data any) {
	if e.bus == nil || e.closed {
		return
	}
	if err := e.bus.Publish(bus.NewEvent(typ, e.id, e.steps, data)); err != nil {
		e.logger.Warn("event handler failed", log.String("event", typ), log.Error(err))
	}
}

// Close ends the environment's lifecycle. Events are no longer published
// afterwards; Close is idempotent.
func (e *Environment) Close() error {
	if e.closed {
		return nil
	}
	e.closed = true
	e.logger.Info("environment closed", log.Int("steps", e.steps))
	e.bus = nil
	return nil
}

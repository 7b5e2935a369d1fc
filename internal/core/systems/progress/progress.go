// Package progress tracks ordered checkpoint traversal and completed laps.
package progress

import (
	"github.com/pkg/errors"
	"github.com/zeusync/trackenv/internal/core/systems/physics"
	"github.com/zeusync/trackenv/internal/core/track"
)

var ErrNoCheckpoints = errors.New("progress: no checkpoints")

// Event is the outcome of one update.
type Event int

const (
	None Event = iota
	CheckpointReached
	LapCompleted
)

func (e Event) String() string {
	switch e {
	case CheckpointReached:
		return "checkpoint_reached"
	case LapCompleted:
		return "lap_completed"
	default:
		return "none"
	}
}

// State is the tracker position: the index of the checkpoint that must be
// reached next and the number of finished laps.
type State struct {
	Expected int `json:"expected"`
	Laps     int `json:"laps"`
}

// Tracker only ever tests the expected checkpoint, so skipping ahead or
// re-entering a passed zone earns nothing.
type Tracker struct {
	checkpoints []track.Checkpoint
	state       State
}

func NewTracker(checkpoints []track.Checkpoint) (*Tracker, error) {
	if len(checkpoints) == 0 {
		return nil, ErrNoCheckpoints
	}
	return &Tracker{checkpoints: append([]track.Checkpoint(nil), checkpoints...)}, nil
}

// Update advances at most one checkpoint. Reaching the last checkpoint wraps
// to the first and completes a lap.
func (t *Tracker) Update(pos physics.Vec2) Event {
	if !pos.IsFinite() || !t.checkpoints[t.state.Expected].Reached(pos) {
		return None
	}
	t.state.Expected++
	if t.state.Expected == len(t.checkpoints) {
		t.state.Expected = 0
		t.state.Laps++
		return LapCompleted
	}
	return CheckpointReached
}

func (t *Tracker) Reset()       { t.state = State{} }
func (t *Tracker) State() State { return t.state }
func (t *Tracker) Len() int     { return len(t.checkpoints) }

// Target is the checkpoint that must be reached next.
func (t *Tracker) Target() track.Checkpoint { return t.checkpoints[t.state.Expected] }

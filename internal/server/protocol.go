package server

import (
	"encoding/json"

	"github.com/pkg/errors"
	"github.com/zeusync/trackenv/internal/core/env"
)

// Operations
const (
	OpSpec     = "spec"
	OpReset    = "reset"
	OpStep     = "step"
	OpSnapshot = "snapshot"
)

// Request is one message from a training harness. Every request gets
// exactly one Response.
type Request struct {
	Op     string     `json:"op"`
	Seed   int64      `json:"seed,omitempty"`
	Action env.Action `json:"action,omitempty"`
	Token  string     `json:"token,omitempty"`
}

// Response mirrors the environment's reset/step contract.
type Response struct {
	Session         string           `json:"session"`
	Observation     env.Observation  `json:"observation,omitempty"`
	Reward          float64          `json:"reward"`
	Terminated      bool             `json:"terminated"`
	Truncated       bool             `json:"truncated"`
	Info            *env.Info        `json:"info,omitempty"`
	ActionSpace     *env.ActionSpace `json:"action_space,omitempty"`
	ObservationSize int              `json:"observation_size,omitempty"`
	Snapshot        *env.Snapshot    `json:"snapshot,omitempty"`
	Digest          uint64           `json:"digest,omitempty"`
	Error           string           `json:"error,omitempty"`
}

func decodeRequest(data []byte) (Request, error) {
	var req Request
	if err := json.Unmarshal(data, &req); err != nil {
		return req, errors.Wrap(ErrInvalidMessage, err.Error())
	}
	return req, nil
}

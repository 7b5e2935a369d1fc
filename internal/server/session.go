package server

import (
	"bytes"
	"encoding/json"

	"github.com/zeusync/trackenv/internal/core/env"
	"github.com/zeusync/trackenv/internal/core/observability/log"
	"github.com/zeusync/trackenv/pkg/generic"
)

var replyBuffers = generic.NewPool(func() *bytes.Buffer { return new(bytes.Buffer) }, (*bytes.Buffer).Reset)

// session is one remote episode stream. It owns its environment; requests
// are handled one at a time in the connection goroutine.
type session struct {
	id        string
	transport string
	env       *env.Environment
	logger    log.Log
	authed    bool
	close     func() error
}

func (ss *session) handle(req Request) Response {
	resp := Response{Session: ss.id}
	switch req.Op {
	case OpSpec:
		space := ss.env.ActionSpace()
		resp.ActionSpace = &space
		resp.ObservationSize = ss.env.ObservationSize()
	case OpReset:
		resp.Observation = ss.env.Reset(req.Seed)
	case OpStep:
		res := ss.env.Step(req.Action)
		resp.Observation = res.Observation
		resp.Reward = res.Reward
		resp.Terminated = res.Terminated
		resp.Truncated = res.Truncated
		resp.Info = &res.Info
		if res.Terminated || res.Truncated {
			resp.Digest = ss.env.Digest()
		}
	case OpSnapshot:
		snap := ss.env.Snapshot()
		resp.Snapshot = &snap
		resp.Digest = ss.env.Digest()
	default:
		resp.Error = ErrUnknownOp.Error() + ": " + req.Op
	}
	return resp
}

// process turns one raw message into one newline-terminated reply and
// hands it to write. The reply buffer is reused after write returns.
func (s *Server) process(ss *session, data []byte, write func([]byte) error) error {
	req, err := decodeRequest(data)
	var resp Response
	switch {
	case err != nil:
		ss.logger.Debug("Malformed request", log.Error(err))
		resp = Response{Session: ss.id, Error: err.Error()}
	case !ss.authed && !s.authorized(req.Token):
		resp = Response{Session: ss.id, Error: ErrUnauthorized.Error()}
	default:
		ss.authed = true
		resp = ss.handle(req)
	}

	buf := replyBuffers.Get()
	defer replyBuffers.Put(buf)
	if err = json.NewEncoder(buf).Encode(resp); err != nil {
		ss.logger.Error("Failed to encode response", log.Error(err))
		buf.Reset()
		_ = json.NewEncoder(buf).Encode(Response{Session: ss.id, Error: err.Error()})
	}
	return write(buf.Bytes())
}

package server

import (
	"bytes"
	"encoding/json"
	"net"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
	"github.com/pkg/errors"
	"github.com/zeusync/trackenv/internal/core/observability/log"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

// Handler serves the WebSocket endpoint at /ws and a health probe at
// /healthz.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.handleWebSocket)
	mux.HandleFunc("/healthz", s.handleHealth)
	return mux
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"running":  atomic.LoadInt32(&s.running) == 1,
		"sessions": s.Sessions(),
	})
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	if !s.authorized(requestToken(r)) {
		http.Error(w, ErrUnauthorized.Error(), http.StatusUnauthorized)
		return
	}
	if s.Sessions() >= s.config.MaxSessions {
		http.Error(w, ErrMaxSessionsReached.Error(), http.StatusServiceUnavailable)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("WebSocket upgrade failed", log.String("remote_addr", r.RemoteAddr), log.Error(err))
		return
	}
	conn.SetReadLimit(int64(s.config.MaxMessageSize))

	ss, err := s.openSession("websocket", conn.Close)
	if err != nil {
		s.logger.Warn("Rejecting session", log.String("remote_addr", r.RemoteAddr), log.Error(err))
		msg := websocket.FormatCloseMessage(websocket.CloseTryAgainLater, err.Error())
		_ = conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(s.config.WriteTimeout))
		_ = conn.Close()
		return
	}
	// the token was checked at upgrade time
	ss.authed = true

	s.workerGroup.Add(1)
	defer s.workerGroup.Done()
	defer s.closeSession(ss)

	for {
		_ = conn.SetReadDeadline(time.Now().Add(s.config.IdleTimeout))
		kind, data, err := conn.ReadMessage()
		if err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) && !errors.Is(err, net.ErrClosed) {
				ss.logger.Debug("WebSocket read ended", log.Error(err))
			}
			return
		}
		if kind != websocket.TextMessage && kind != websocket.BinaryMessage {
			continue
		}

		err = s.process(ss, data, func(reply []byte) error {
			_ = conn.SetWriteDeadline(time.Now().Add(s.config.WriteTimeout))
			return conn.WriteMessage(websocket.TextMessage, bytes.TrimSuffix(reply, []byte("\n")))
		})
		if err != nil {
			ss.logger.Warn("WebSocket write failed", log.Error(err))
			return
		}
	}
}

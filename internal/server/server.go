package server

import (
	"context"
	"net"
	"net/http"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/quic-go/quic-go"
	"github.com/zeusync/trackenv/internal/core/env"
	"github.com/zeusync/trackenv/internal/core/events/bus"
	"github.com/zeusync/trackenv/internal/core/observability/log"
	"github.com/zeusync/trackenv/internal/core/track"
)

// Server exposes environments to out-of-process training harnesses. Every
// WebSocket connection and every QUIC stream is a session with its own
// environment over the shared track.
type Server struct {
	config Config
	envCfg env.Config
	track  *track.Track
	logger log.Log
	events bus.EventBus

	sessions     sync.Map // map[string]*session
	sessionCount int64    // atomic

	running int32 // atomic bool
	closed  int32 // atomic bool

	httpServer   *http.Server
	wsAddr       net.Addr
	quicListener *quic.Listener

	workerGroup sync.WaitGroup
	stopChan    chan struct{}
}

// New validates the configuration and builds a stopped server. Events from
// every session are published on events; a private bus is used when nil.
func New(config Config, envCfg env.Config, trk *track.Track, logger log.Log, events bus.EventBus) (*Server, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = log.Provide()
	}
	if events == nil {
		events = bus.New()
	}

	// construction errors surface here rather than on the first session
	probe, err := env.New(envCfg, trk, env.WithLogger(log.NewNop()))
	if err != nil {
		return nil, err
	}
	_ = probe.Close()

	s := &Server{
		config:   config,
		envCfg:   envCfg,
		track:    trk,
		logger:   logger.With(log.String("component", "server")),
		events:   events,
		stopChan: make(chan struct{}),
	}

	s.logger.Info("Server created",
		log.String("websocket_addr", config.WebSocketAddr),
		log.String("quic_addr", config.QUICAddr),
		log.Int("max_sessions", config.MaxSessions))

	return s, nil
}

// Events is the bus every session publishes on.
func (s *Server) Events() bus.EventBus { return s.events }

// Sessions is the number of live sessions.
func (s *Server) Sessions() int { return int(atomic.LoadInt64(&s.sessionCount)) }

// Start binds the enabled transports and serves them in the background.
func (s *Server) Start(ctx context.Context) error {
	if atomic.LoadInt32(&s.closed) == 1 {
		return ErrServerClosed
	}
	if !atomic.CompareAndSwapInt32(&s.running, 0, 1) {
		return ErrServerAlreadyRunning
	}

	s.logger.Info("Starting server")

	if s.config.WebSocketAddr != "" {
		var lc net.ListenConfig
		ln, err := lc.Listen(ctx, "tcp", s.config.WebSocketAddr)
		if err != nil {
			atomic.StoreInt32(&s.running, 0)
			s.logger.Error("Failed to create listener", log.Error(err))
			return errors.Wrap(ErrListenerFailed, err.Error())
		}
		s.wsAddr = ln.Addr()
		s.httpServer = &http.Server{Handler: s.Handler(), ReadHeaderTimeout: s.config.WriteTimeout}

		s.workerGroup.Add(1)
		go func() {
			defer s.workerGroup.Done()
			if err := s.httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
				s.logger.Error("WebSocket listener failed", log.Error(err))
			}
		}()
		s.logger.Info("WebSocket listening", log.String("addr", ln.Addr().String()))
	}

	if s.config.QUICAddr != "" {
		if err := s.listenQUIC(); err != nil {
			if s.httpServer != nil {
				_ = s.httpServer.Close()
			}
			atomic.StoreInt32(&s.running, 0)
			return err
		}
	}

	s.logger.Info("Server started successfully")
	return nil
}

// WebSocketAddr is the bound WebSocket address, or nil before Start.
func (s *Server) WebSocketAddr() net.Addr { return s.wsAddr }

// QUICAddr is the bound QUIC address, or nil before Start.
func (s *Server) QUICAddr() net.Addr {
	if s.quicListener == nil {
		return nil
	}
	return s.quicListener.Addr()
}

// Stop closes the listeners and every live session, then waits for the
// connection goroutines. A stopped server cannot be started again.
func (s *Server) Stop(ctx context.Context) error {
	if !atomic.CompareAndSwapInt32(&s.running, 1, 0) {
		return ErrServerNotRunning
	}

	s.logger.Info("Stopping server")
	atomic.StoreInt32(&s.closed, 1)
	close(s.stopChan)

	var err error
	if s.httpServer != nil {
		err = s.httpServer.Shutdown(ctx)
	}
	if s.quicListener != nil {
		_ = s.quicListener.Close()
	}

	s.sessions.Range(func(_, value any) bool {
		if ss, ok := value.(*session); ok && ss.close != nil {
			_ = ss.close()
		}
		return true
	})

	done := make(chan struct{})
	go func() {
		s.workerGroup.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-ctx.Done():
		err = ctx.Err()
	}

	s.logger.Info("Server stopped")
	return err
}

// Close stops the server if it is running and marks it unusable.
func (s *Server) Close() error {
	if !atomic.CompareAndSwapInt32(&s.closed, 0, 1) {
		return nil
	}
	if atomic.LoadInt32(&s.running) == 1 {
		return s.Stop(context.Background())
	}
	return nil
}

// openSession reserves a slot and builds the session's environment.
func (s *Server) openSession(transport string, closer func() error) (*session, error) {
	if atomic.AddInt64(&s.sessionCount, 1) > int64(s.config.MaxSessions) {
		atomic.AddInt64(&s.sessionCount, -1)
		return nil, ErrMaxSessionsReached
	}

	id := uuid.NewString()
	logger := s.logger.With(log.String("session", id), log.String("transport", transport))
	e, err := env.New(s.envCfg, s.track,
		env.WithID(id),
		env.WithLogger(logger),
		env.WithEventBus(s.events),
	)
	if err != nil {
		atomic.AddInt64(&s.sessionCount, -1)
		return nil, err
	}

	ss := &session{
		id:        id,
		transport: transport,
		env:       e,
		logger:    logger,
		authed:    s.config.AuthToken == "",
		close:     closer,
	}
	s.sessions.Store(id, ss)

	logger.Info("Session opened", log.Int64("total_sessions", atomic.LoadInt64(&s.sessionCount)))
	return ss, nil
}

func (s *Server) closeSession(ss *session) {
	if _, loaded := s.sessions.LoadAndDelete(ss.id); !loaded {
		return
	}
	atomic.AddInt64(&s.sessionCount, -1)
	_ = ss.env.Close()
	if ss.close != nil {
		_ = ss.close()
	}
	ss.logger.Info("Session closed",
		log.Int("steps", ss.env.Steps()),
		log.Int64("total_sessions", atomic.LoadInt64(&s.sessionCount)))
}

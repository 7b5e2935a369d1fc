package server

import (
	"crypto/tls"
	"time"

	"github.com/pkg/errors"
)

// Config holds server configuration. An empty address disables that
// transport.
type Config struct {
	WebSocketAddr string `json:"websocket_addr" yaml:"websocket_addr"`
	QUICAddr      string `json:"quic_addr" yaml:"quic_addr"`

	MaxSessions    int           `json:"max_sessions" yaml:"max_sessions"`
	MaxMessageSize int           `json:"max_message_size" yaml:"max_message_size"`
	IdleTimeout    time.Duration `json:"idle_timeout" yaml:"idle_timeout"`
	WriteTimeout   time.Duration `json:"write_timeout" yaml:"write_timeout"`
	KeepAlive      time.Duration `json:"keep_alive" yaml:"keep_alive"`

	// AuthToken, when set, must be presented by every session.
	AuthToken string `json:"auth_token,omitempty" yaml:"auth_token,omitempty"`

	// TLS is used by the QUIC listener. A self-signed certificate is
	// generated when nil.
	TLS *tls.Config `json:"-" yaml:"-"`
}

// DefaultConfig returns default server configuration
func DefaultConfig() Config {
	return Config{
		WebSocketAddr:  "127.0.0.1:8080",
		QUICAddr:       "127.0.0.1:8443",
		MaxSessions:    256,
		MaxMessageSize: 64 * 1024,
		IdleTimeout:    5 * time.Minute,
		WriteTimeout:   10 * time.Second,
		KeepAlive:      15 * time.Second,
	}
}

func (c Config) Validate() error {
	if c.WebSocketAddr == "" && c.QUICAddr == "" {
		return errors.Wrap(ErrInvalidConfig, "no transport enabled")
	}
	if c.MaxSessions <= 0 {
		return errors.Wrapf(ErrInvalidConfig, "max sessions %d", c.MaxSessions)
	}
	if c.MaxMessageSize < 256 {
		return errors.Wrapf(ErrInvalidConfig, "max message size %d", c.MaxMessageSize)
	}
	if c.IdleTimeout <= 0 || c.WriteTimeout <= 0 || c.KeepAlive < 0 {
		return errors.Wrap(ErrInvalidConfig, "timeouts must be positive")
	}
	return nil
}

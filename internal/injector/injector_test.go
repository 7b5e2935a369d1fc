package injector

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zeusync/trackenv/internal/config"
)

func TestInitializeServer(t *testing.T) {
	cfg := config.Default()
	cfg.Log.Level = "error"
	cfg.Server.WebSocketAddr = "127.0.0.1:0"
	cfg.Server.QUICAddr = ""

	srv, err := InitializeServer(&cfg)
	require.NoError(t, err)
	require.NotNil(t, srv.Events())

	require.NoError(t, srv.Start(context.Background()))
	assert.NotNil(t, srv.WebSocketAddr())
	require.NoError(t, srv.Stop(context.Background()))
}

func TestInitializeServerErrors(t *testing.T) {
	cfg := config.Default()
	cfg.Log.Level = "loud"
	_, err := InitializeServer(&cfg)
	require.Error(t, err)

	cfg = config.Default()
	cfg.Track.Width = 0
	_, err = InitializeServer(&cfg)
	require.Error(t, err)

	cfg = config.Default()
	cfg.Server.MaxSessions = 0
	_, err = InitializeServer(&cfg)
	require.Error(t, err)
}

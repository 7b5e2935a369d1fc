package injector

import (
	"github.com/pkg/errors"
	"github.com/zeusync/trackenv/internal/config"
	"github.com/zeusync/trackenv/internal/core/events/bus"
	"github.com/zeusync/trackenv/internal/core/observability/log"
	"github.com/zeusync/trackenv/internal/core/track"
	"github.com/zeusync/trackenv/internal/server"
)

// ProvideLogger builds a logger at the configured level.
func ProvideLogger(cfg *config.Config) (log.Log, error) {
	level, err := log.ParseLevel(cfg.Log.Level)
	if err != nil {
		return nil, err
	}
	return log.New(level), nil
}

func ProvideTrack(cfg *config.Config) (*track.Track, error) {
	trk, err := cfg.Track.Build()
	return trk, errors.Wrap(err, "build track")
}

func ProvideEventBus() bus.EventBus {
	return bus.New()
}

func ProvideServer(cfg *config.Config, trk *track.Track, logger log.Log, events bus.EventBus) (*server.Server, error) {
	return server.New(cfg.Server, cfg.Env, trk, logger, events)
}

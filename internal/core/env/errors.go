package env

import "github.com/pkg/errors"

var (
	ErrInvalidConfig = errors.New("invalid environment configuration")
	ErrNilTrack      = errors.New("environment needs a track")
	ErrIncompatible  = errors.New("configuration does not fit the track")
)

package log

import (
	"sync"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func observed(level Level) (*Logger, *observer.ObservedLogs) {
	atomic := zap.NewAtomicLevelAt(toZapLevel(level))
	core, logs := observer.New(atomic)
	return &Logger{zapLogger: zap.New(core), zapLevel: atomic}, logs
}

func TestParseLevel(t *testing.T) {
	for in, want := range map[string]Level{
		"debug": LevelDebug, "INFO": LevelInfo, "": LevelInfo,
		"warning": LevelWarn, " error ": LevelError,
	} {
		got, err := ParseLevel(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
	_, err := ParseLevel("loud")
	require.ErrorIs(t, err, ErrUnknownLevel)
}

func TestLoggerFields(t *testing.T) {
	l, logs := observed(LevelDebug)
	l.With(String("session", "abc")).Info("step",
		Int("step", 3), Float64("reward", 0.5), Bool("terminated", false),
		Uint64("digest", 7), Error(errors.New("boom")))

	entries := logs.All()
	require.Len(t, entries, 1)
	ctx := entries[0].ContextMap()
	assert.Equal(t, "abc", ctx["session"])
	assert.Equal(t, int64(3), ctx["step"])
	assert.Equal(t, 0.5, ctx["reward"])
	assert.Equal(t, false, ctx["terminated"])
	assert.Equal(t, uint64(7), ctx["digest"])
	assert.Equal(t, "boom", ctx["error"])
}

func TestLoggerLevel(t *testing.T) {
	l, logs := observed(LevelInfo)
	child := l.With(String("k", "v"))

	child.Debug("hidden")
	l.SetLevel(LevelDebug)
	child.Debug("shown")
	child.Log(LevelWarn, "warned")

	assert.Equal(t, LevelDebug, l.GetLevel())
	require.Equal(t, 2, logs.Len())
	assert.Equal(t, zapcore.WarnLevel, logs.All()[1].Level)
}

func TestNopAndProvide(t *testing.T) {
	NewNop().Info("dropped")
	assert.NotNil(t, Provide())
	assert.Same(t, Provide(), Provide())
}

func TestProvideBeforeNew(t *testing.T) {
	innerLogger, loggerInitializeOnce = nil, sync.Once{}

	done := make(chan *Logger, 1)
	go func() { done <- Provide() }()

	var first *Logger
	select {
	case first = <-done:
	case <-time.After(3 * time.Second):
		t.Fatal("Provide did not return")
	}
	require.NotNil(t, first)
	assert.Equal(t, LevelInfo, first.GetLevel())

	later := New(LevelDebug)
	assert.NotSame(t, first, later)
	assert.Same(t, first, Provide())
}

func TestNewBecomesProvided(t *testing.T) {
	innerLogger, loggerInitializeOnce = nil, sync.Once{}

	logger := New(LevelWarn)
	assert.Same(t, logger, Provide())
}

package logger

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func useBuffer(t *testing.T, opts *slog.HandlerOptions) *bytes.Buffer {
	t.Helper()
	prev := log
	t.Cleanup(func() { log = prev })

	var buf bytes.Buffer
	log = New(NewJSONHandler(&buf, opts))
	return &buf
}

func TestInit(t *testing.T) {
	prev := log
	defer func() { log = prev }()

	Init()
	assert.NotNil(t, log)
	assert.Same(t, log, L())
}

func TestInfo(t *testing.T) {
	buf := useBuffer(t, nil)

	Info("slot booked", "coachId", "c1")

	assert.Contains(t, buf.String(), "slot booked")
	assert.Contains(t, buf.String(), `"coachId":"c1"`)
}

func TestErrorf(t *testing.T) {
	buf := useBuffer(t, nil)

	Errorf("report %s failed", "weekly")

	assert.Contains(t, buf.String(), "report weekly failed")
	assert.Contains(t, buf.String(), `"level":"ERROR"`)
}

func TestDebugFilteredByLevel(t *testing.T) {
	buf := useBuffer(t, nil)
	Debug("hidden")
	assert.Empty(t, buf.String())

	buf = useBuffer(t, &slog.HandlerOptions{Level: slog.LevelDebug})
	Debug("visible", "n", 1)
	assert.Contains(t, buf.String(), "visible")
}

func TestWithError(t *testing.T) {
	buf := useBuffer(t, nil)

	WithError(assert.AnError).Info("with error")

	assert.Contains(t, buf.String(), "with error")
	assert.Contains(t, buf.String(), assert.AnError.Error())
}

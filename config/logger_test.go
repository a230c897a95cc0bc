package config

import (
	"testing"

	"github.com/gookit/slog"
	"github.com/stretchr/testify/assert"
)

type recordingLogger struct {
	AppLogger
	lines []string
}

func (r *recordingLogger) Info(args ...any)  { r.lines = append(r.lines, "info:"+args[0].(string)) }
func (r *recordingLogger) Warn(args ...any)  { r.lines = append(r.lines, "warn:"+args[0].(string)) }
func (r *recordingLogger) Error(args ...any) { r.lines = append(r.lines, "error:"+args[0].(string)) }

func TestLevelsUpTo(t *testing.T) {
	levels := levelsUpTo(slog.WarnLevel)
	assert.Contains(t, levels, slog.ErrorLevel)
	assert.Contains(t, levels, slog.WarnLevel)
	assert.NotContains(t, levels, slog.InfoLevel)
	assert.NotContains(t, levels, slog.DebugLevel)
}

func TestWithServiceName(t *testing.T) {
	t.Setenv("SERVICE_NAME", "scheduler")

	in := Fields{"post_id": "p-1"}
	out := withServiceName(in)
	assert.Equal(t, "scheduler", out["service_name"])
	assert.NotContains(t, in, "service_name")

	out = withServiceName(Fields{"service_name": "api"})
	assert.Equal(t, "api", out["service_name"])
}

func TestLogWithFieldsFallsBackToPlainLogger(t *testing.T) {
	prev := Logger
	t.Cleanup(func() { Logger = prev })

	rec := &recordingLogger{}
	Logger = rec

	InfoWithFields("run finished", Fields{"post_id": "p-1"})
	WarnWithFields("image skipped", nil)
	ErrorWithFields("run error", nil)

	assert.Equal(t, []string{"info:run finished", "warn:image skipped", "error:run error"}, rec.lines)
}

func TestInitLoggerEnvOverride(t *testing.T) {
	prev := Logger
	t.Cleanup(func() { Logger = prev })

	t.Setenv("LOG_LEVEL", "debug")
	InitLogger(LoggingConfig{Level: "error", Format: "text"})
	_, ok := Logger.(*slog.Logger)
	assert.True(t, ok)
}

package main

import (
	"io"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"gauge-tracker/internal/config"
	"gauge-tracker/internal/gauge"
	"gauge-tracker/internal/shot"

	"github.com/stretchr/testify/require"
)

// quiet discards log output in tests.
var quiet = slog.New(slog.NewTextHandler(io.Discard, nil))

// useDefaults installs the built-in profile.
func useDefaults(t *testing.T) {
	t.Helper()
	profile = config.Default()
}

// writeGauge saves a synthetic 200x200 gauge at percent into dir.
func writeGauge(t *testing.T, dir, name string, percent float64) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, shot.Save(path, gauge.Synthesize(gauge.DefaultSynthSpec(percent))))
	return path
}

var evalTime = time.Date(2024, 5, 4, 20, 0, 0, 0, time.UTC)

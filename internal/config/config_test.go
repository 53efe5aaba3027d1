package config

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"gauge-tracker/internal/decay"
	"gauge-tracker/internal/gauge"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func loadFromString(t *testing.T, doc string) *Profile {
	t.Helper()
	path := filepath.Join(t.TempDir(), "gauge.yaml")
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o644))
	p, err := Load(path)
	require.NoError(t, err)
	return p
}

func TestLoadDefaults(t *testing.T) {
	p := loadFromString(t, "{}\n")

	assert.Equal(t, gauge.DefaultConfig(), p.ReaderConfig())
	assert.Equal(t, decay.DefaultCycleBounds(), p.Cycle())
	assert.Equal(t, DefaultCropSize, p.Gauge.CropSize)
	assert.Equal(t, decay.DefaultWatchLimit, p.Projection.WatchLimit)
	assert.Equal(t, DefaultWatchSettle, p.Watch.Settle)

	s, err := p.Strategy()
	require.NoError(t, err)
	assert.Equal(t, "cycle", s.Name())
}

func TestLoadOverrides(t *testing.T) {
	p := loadFromString(t, `
gauge:
  mode: markers
  radii: []
  hue_ranges:
    - {min: 100, max: 130}
  steps: 720
  gap_tolerance: 3
  crop_size: 0
markers:
  colors: ["#ffffff", "e0e0ff"]
  radius_scale: 2
projection:
  strategy: trend
  cycle:
    min: 30m
    avg: 40m
    max: 50m
  watch_limit: 3
watch:
  extensions: [.png]
  settle: 1s
log:
  level: debug
  format: json
`)
	cfg := p.ReaderConfig()
	assert.Equal(t, gauge.ModeMarkers, cfg.Mode)
	assert.Empty(t, cfg.Radii)
	assert.Equal(t, []gauge.HueRange{{Min: 100, Max: 130}}, cfg.HueRanges)
	assert.Equal(t, 720, cfg.Steps)
	assert.Equal(t, 3.0, cfg.GapTolerance)
	assert.Equal(t, 80.0, cfg.SatMin, "untouched fields keep defaults")
	require.Len(t, cfg.Markers.Colors, 2)
	assert.Equal(t, uint8(0xe0), cfg.Markers.Colors[1].R)
	assert.Equal(t, uint8(0xff), cfg.Markers.Colors[1].B)
	assert.Equal(t, 2.0, cfg.Markers.RadiusScale)

	assert.Equal(t, decay.CycleBounds{Min: 30 * time.Minute, Avg: 40 * time.Minute, Max: 50 * time.Minute}, p.Cycle())
	s, err := p.Strategy()
	require.NoError(t, err)
	assert.Equal(t, "trend", s.Name())

	assert.Equal(t, time.Second, p.Watch.Settle)
	assert.Equal(t, "json", p.Log.Format)
	assert.True(t, p.WantsFile("shot.PNG"))
	assert.False(t, p.WantsFile("shot.jpg"))
}

func TestLoadInvalid(t *testing.T) {
	tests := map[string]string{
		"unknown mode":     "gauge: {mode: auto}\n",
		"zero steps":       "gauge: {steps: 0}\n",
		"fixed no radii":   "gauge: {radii: []}\n",
		"negative crop":    "gauge: {crop_size: -1}\n",
		"bad color":        "markers: {colors: [\"#12\"]}\n",
		"inverted cycle":   "projection: {cycle: {min: 2h, avg: 1h, max: 3h}}\n",
		"unknown strategy": "projection: {strategy: linear}\n",
		"no extensions":    "watch: {extensions: []}\n",
		"undecodable ext":  "watch: {extensions: [.gif]}\n",
		"bad log format":   "log: {format: xml}\n",
		"bad yaml":         "gauge: [\n",
	}
	for name, doc := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := Parse([]byte(doc))
			assert.Error(t, err)
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestParseColor(t *testing.T) {
	c, err := ParseColor("#fff5e6")
	require.NoError(t, err)
	assert.Equal(t, uint8(255), c.R)
	assert.Equal(t, uint8(245), c.G)
	assert.Equal(t, uint8(230), c.B)
	assert.Equal(t, uint8(255), c.A)
	assert.Equal(t, "#fff5e6", c.String())

	_, err = ParseColor("#zzzzzz")
	assert.Error(t, err)
}

// startWatch runs Watch on path and returns the reload channel and a stop
// function that waits for Watch to return.
func startWatch(t *testing.T, path string) (<-chan *Profile, func()) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	reloaded := make(chan *Profile, 64)
	done := make(chan error, 1)
	go func() {
		done <- Watch(ctx, path, nil, func(p *Profile) { reloaded <- p })
	}()

	// Give the watcher time to register before writing.
	time.Sleep(100 * time.Millisecond)
	return reloaded, func() {
		cancel()
		select {
		case err := <-done:
			assert.NoError(t, err)
		case <-time.After(5 * time.Second):
			t.Fatal("watch did not stop")
		}
	}
}

// waitSteps drains reloads until one carries the wanted step count.
func waitSteps(t *testing.T, reloaded <-chan *Profile, want int) {
	t.Helper()
	deadline := time.After(5 * time.Second)
	for steps := 0; steps != want; {
		select {
		case p := <-reloaded:
			steps = p.Gauge.Steps
		case <-deadline:
			t.Fatalf("no reload with steps %d observed", want)
		}
	}
}

func TestWatchReloads(t *testing.T) {
	path := filepath.Join(t.TempDir(), "gauge.yaml")
	require.NoError(t, os.WriteFile(path, []byte("gauge: {steps: 720}\n"), 0o644))

	reloaded, stop := startWatch(t, path)
	defer stop()

	require.NoError(t, os.WriteFile(path, []byte("gauge: {steps: 360}\n"), 0o644))
	waitSteps(t, reloaded, 360)
}

func TestWatchReloadsAfterRenameOver(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "gauge.yaml")
	require.NoError(t, os.WriteFile(path, []byte("gauge: {steps: 720}\n"), 0o644))

	reloaded, stop := startWatch(t, path)
	defer stop()

	// Editors save by writing a sibling and renaming it over the profile.
	for i, steps := range []int{360, 480} {
		tmp := filepath.Join(dir, fmt.Sprintf(".gauge.yaml.%d.tmp", i))
		require.NoError(t, os.WriteFile(tmp, []byte(fmt.Sprintf("gauge: {steps: %d}\n", steps)), 0o644))
		require.NoError(t, os.Rename(tmp, path))
		waitSteps(t, reloaded, steps)
	}

	// Plain writes still land after the file was replaced.
	require.NoError(t, os.WriteFile(path, []byte("gauge: {steps: 900}\n"), 0o644))
	waitSteps(t, reloaded, 900)
}

func TestWatchIgnoresSiblings(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "gauge.yaml")
	require.NoError(t, os.WriteFile(path, []byte("gauge: {steps: 720}\n"), 0o644))

	reloaded, stop := startWatch(t, path)
	defer stop()

	require.NoError(t, os.WriteFile(filepath.Join(dir, "other.yaml"), []byte("gauge: {steps: 360}\n"), 0o644))
	select {
	case p := <-reloaded:
		t.Fatalf("unexpected reload with steps %d", p.Gauge.Steps)
	case <-time.After(300 * time.Millisecond):
	}
}

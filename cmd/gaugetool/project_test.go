package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"gauge-tracker/internal/reading"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func at(h float64) time.Time {
	return evalTime.Add(time.Duration(h * float64(time.Hour)))
}

func histories() map[string]reading.History {
	return map[string]reading.History{
		"keep-north": {
			reading.New(reading.Percent(80), at(0)),
			reading.New(reading.Percent(70), at(2)),
		},
		"keep-south": {
			reading.New(reading.Percent(90), at(0)),
			reading.New(reading.Percent(40), at(2)),
		},
		"ruin": {
			reading.New(reading.Percent(20), at(0)),
			reading.New(reading.Destroyed(), at(1)),
		},
	}
}

func TestPrintProjections(t *testing.T) {
	useDefaults(t)
	p, err := newProjector("")
	require.NoError(t, err)
	require.NoError(t, pinClock(p, at(2).Format(time.RFC3339)))

	var buf bytes.Buffer
	printProjections(&buf, p, histories())
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 4)

	assert.True(t, strings.HasPrefix(lines[1], "keep-north"))
	// 4.375% per cycle leaves 16 cycles, 12h at 45m each.
	assert.Contains(t, lines[1], "70.0%")
	assert.True(t, strings.HasSuffix(lines[1], " 12h") || strings.HasSuffix(lines[1], " 11h"), lines[1])
	assert.True(t, strings.HasPrefix(lines[2], "keep-south"))
	assert.True(t, strings.HasPrefix(lines[3], "ruin"))
	assert.Contains(t, lines[3], "projection undefined")
}

func TestPinClock(t *testing.T) {
	useDefaults(t)
	p, err := newProjector("trend")
	require.NoError(t, err)
	assert.Equal(t, "trend", p.Strategy.Name())

	require.NoError(t, pinClock(p, ""))
	require.NoError(t, pinClock(p, "2024-05-04T20:00:00Z"))
	assert.Equal(t, evalTime, p.Now())
	assert.Error(t, pinClock(p, "soon"))

	_, err = newProjector("guess")
	assert.Error(t, err)
}

func TestPrintRanking(t *testing.T) {
	useDefaults(t)
	p, err := newProjector("cycle")
	require.NoError(t, err)
	require.NoError(t, pinClock(p, at(2).Format(time.RFC3339)))

	var buf bytes.Buffer
	printRanking(&buf, p.Rank(histories(), 0), p.Now())
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	assert.True(t, strings.HasPrefix(lines[0], " 1. keep-south"))
	assert.True(t, strings.HasPrefix(lines[1], " 2. keep-north"))

	buf.Reset()
	printRanking(&buf, nil, p.Now())
	assert.Equal(t, "no object has a defined projection\n", buf.String())
}

func TestRankCommand(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "history.yaml")
	data := `objects:
  - id: keep-north
    readings:
      - health: 80
        time: 2024-05-04T20:00:00Z
      - health: 70
        time: 2024-05-04T22:00:00Z
  - id: keep-south
    readings:
      - health: 90
        time: 2024-05-04T20:00:00Z
      - health: 40
        time: 2024-05-04T22:00:00Z
`
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))

	var out, errOut bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&errOut)
	rootCmd.SetArgs([]string{"rank", path, "--limit", "1", "--now", "2024-05-04T22:00:00Z", "--log-level", "debug"})
	t.Cleanup(func() {
		rootCmd.SetArgs(nil)
		logLevel = ""
	})

	require.NoError(t, rootCmd.Execute())
	assert.Equal(t, 1, strings.Count(out.String(), "\n"))
	assert.Contains(t, out.String(), "keep-south")
	// The debug line comes from the logger the pre-run put in the context.
	assert.Contains(t, errOut.String(), "msg=ranked")
	assert.Contains(t, errOut.String(), "defined=2")
}

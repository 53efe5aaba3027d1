package reading

import (
	"encoding/json"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

var base = time.Date(2024, 1, 2, 3, 0, 0, 0, time.UTC)

func TestPercentClamps(t *testing.T) {
	tests := []struct {
		in, want float64
	}{
		{50, 50},
		{-3, 0},
		{140, 100},
		{math.NaN(), 0},
	}
	for _, tt := range tests {
		p, ok := Percent(tt.in).Percent()
		require.True(t, ok)
		assert.Equal(t, tt.want, p)
	}
}

func TestParsePercent(t *testing.T) {
	_, err := ParsePercent(100.5)
	assert.ErrorIs(t, err, ErrOutOfRange)
	_, err = ParsePercent(math.NaN())
	assert.ErrorIs(t, err, ErrOutOfRange)

	h, err := ParsePercent(0)
	require.NoError(t, err)
	assert.False(t, h.IsDestroyed())
}

func TestDestroyed(t *testing.T) {
	h := Destroyed()
	assert.True(t, h.IsDestroyed())
	_, ok := h.Percent()
	assert.False(t, ok)
	assert.Zero(t, h.Value())
	assert.Equal(t, "destroyed", h.String())
	assert.Equal(t, "42.50%", Percent(42.5).String())
}

func TestHealthJSON(t *testing.T) {
	r := New(Percent(73.25), base)
	data, err := json.Marshal(r)
	require.NoError(t, err)
	assert.JSONEq(t, `{"health":73.25,"time":"2024-01-02T03:00:00Z"}`, string(data))

	data, err = json.Marshal(New(Destroyed(), base))
	require.NoError(t, err)
	assert.JSONEq(t, `{"health":"destroyed","time":"2024-01-02T03:00:00Z"}`, string(data))

	var back Reading
	require.NoError(t, json.Unmarshal(data, &back))
	assert.True(t, back.Health.IsDestroyed())

	assert.Error(t, json.Unmarshal([]byte(`{"health":120}`), &back))
	assert.Error(t, json.Unmarshal([]byte(`{"health":"half"}`), &back))
}

func TestHealthYAML(t *testing.T) {
	var h struct {
		A Health `yaml:"a"`
		B Health `yaml:"b"`
		C Health `yaml:"c"`
	}
	require.NoError(t, yaml.Unmarshal([]byte("a: 55.5\nb: destroyed\nc: wrecked\n"), &h))
	p, _ := h.A.Percent()
	assert.Equal(t, 55.5, p)
	assert.True(t, h.B.IsDestroyed())
	assert.True(t, h.C.IsDestroyed())

	assert.Error(t, yaml.Unmarshal([]byte("a: -1\n"), &h))
	assert.Error(t, yaml.Unmarshal([]byte("a: [1]\n"), &h))

	out, err := yaml.Marshal(map[string]Health{"x": Destroyed()})
	require.NoError(t, err)
	assert.Equal(t, "x: destroyed\n", string(out))
}

func TestCorrected(t *testing.T) {
	r := New(Destroyed(), base)
	fixed, err := r.Corrected(64)
	require.NoError(t, err)
	assert.Equal(t, base, fixed.Time)
	p, ok := fixed.Health.Percent()
	require.True(t, ok)
	assert.Equal(t, 64.0, p)

	_, err = r.Corrected(101)
	assert.ErrorIs(t, err, ErrOutOfRange)
}

func TestHistory(t *testing.T) {
	h := History{
		New(Percent(40), base.Add(2*time.Hour)),
		New(Destroyed(), base.Add(3*time.Hour)),
		New(Percent(60), base),
	}

	sorted := h.Sorted()
	require.Len(t, sorted, 3)
	assert.Equal(t, base, sorted[0].Time)
	assert.True(t, sorted[2].Health.IsDestroyed())
	assert.Equal(t, base.Add(2*time.Hour), h[0].Time, "Sorted does not mutate")

	usable := sorted.Usable()
	assert.Len(t, usable, 2)

	latest, ok := h.Latest()
	require.True(t, ok)
	assert.True(t, latest.Health.IsDestroyed())

	_, ok = History(nil).Latest()
	assert.False(t, ok)
}

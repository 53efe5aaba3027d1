package colorutil

import (
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRGBToHSV(t *testing.T) {
	tests := []struct {
		name    string
		r, g, b float64
		h, s, v float64
	}{
		{"red", 255, 0, 0, 0, 255, 255},
		{"green", 0, 255, 0, 60, 255, 255},
		{"blue", 0, 0, 255, 120, 255, 255},
		{"yellow", 255, 255, 0, 30, 255, 255},
		{"black", 0, 0, 0, 0, 0, 0},
		{"grey", 128, 128, 128, 0, 0, 128},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, s, v := RGBToHSV(tt.r, tt.g, tt.b)
			assert.InDelta(t, tt.h, h, 1e-9)
			assert.InDelta(t, tt.s, s, 1e-9)
			assert.InDelta(t, tt.v, v, 1e-9)
		})
	}
}

func TestRGBToHSVNegativeHueWraps(t *testing.T) {
	h, _, _ := RGBToHSV(255, 0, 30)
	assert.Greater(t, h, 170.0)
	assert.Less(t, h, 180.0)
}

func TestNRGBA(t *testing.T) {
	// Premultiplied half-transparent red.
	got := NRGBA(color.RGBA{R: 128, A: 128})
	assert.Equal(t, uint8(128), got.A)
	assert.Equal(t, uint8(255), got.R)
}

func TestDistance(t *testing.T) {
	a := color.NRGBA{R: 255, G: 245, B: 230, A: 255}
	assert.Zero(t, Distance(a, a))
	assert.InDelta(t, 5, Distance(color.NRGBA{R: 3, G: 4}, color.NRGBA{A: 200}), 1e-9)
}

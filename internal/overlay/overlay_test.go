package overlay

import (
	"image"
	"image/color"
	"path/filepath"
	"testing"
	"time"

	"gauge-tracker/internal/gauge"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func analyze(t *testing.T, pct float64) (*image.NRGBA, *gauge.Result) {
	t.Helper()
	img := gauge.Synthesize(gauge.DefaultSynthSpec(pct))
	r, err := gauge.NewReader(gauge.DefaultConfig())
	require.NoError(t, err)
	res, err := r.Analyze(img, time.Unix(0, 0))
	require.NoError(t, err)
	return img, res
}

func TestMatRoundTrip(t *testing.T) {
	img := image.NewNRGBA(image.Rect(3, 4, 20, 13))
	img.SetNRGBA(5, 6, color.NRGBA{R: 10, G: 20, B: 30, A: 255})

	mat := imageToMat(img)
	defer mat.Close()
	back := matToImage(mat)

	assert.Equal(t, image.Rect(0, 0, 17, 9), back.Bounds())
	assert.Equal(t, color.NRGBA{R: 10, G: 20, B: 30, A: 255}, back.NRGBAAt(2, 2))
}

func TestRenderLeavesInputAlone(t *testing.T) {
	img, res := analyze(t, 40)
	before := append([]uint8(nil), img.Pix...)
	reading := res.Reading

	style := DefaultStyle()
	out, err := Render(img, res, style)
	require.NoError(t, err)

	assert.Equal(t, before, img.Pix)
	assert.Equal(t, reading, res.Reading)
	assert.Equal(t, image.Rect(0, 0, 200*style.Scale, 200*style.Scale), out.Bounds())

	c := out.NRGBAAt(100*style.Scale, 100*style.Scale)
	assert.Equal(t, style.Center.R, c.R)
	assert.Equal(t, style.Center.G, c.G)
}

func TestRenderErrors(t *testing.T) {
	_, err := Render(nil, &gauge.Result{}, DefaultStyle())
	assert.ErrorIs(t, err, gauge.ErrEmptyImage)

	img, _ := analyze(t, 10)
	_, err = Render(img, nil, DefaultStyle())
	assert.Error(t, err)
}

func TestSave(t *testing.T) {
	img, res := analyze(t, 75)
	path := filepath.Join(t.TempDir(), "overlay.png")
	require.NoError(t, Save(path, img, res, Style{Scale: 1}))
	assert.FileExists(t, path)
}

// Package overlay draws reader diagnostics on top of a screenshot: the
// calibrated center, the sampling rings, the detected arc and any markers.
// Drawing happens on a copy; the analyzed image and reading are untouched.
package overlay

import (
	"fmt"
	"image"
	"image/color"
	"math"

	"gauge-tracker/internal/gauge"
	"gauge-tracker/pkg/colorutil"

	"gocv.io/x/gocv"
)

// Style controls overlay colors and scale.
type Style struct {
	Ring   color.RGBA
	Arc    color.RGBA
	Center color.RGBA
	Marker color.RGBA
	Text   color.RGBA

	// Scale enlarges the output so small gauge crops stay legible.
	Scale int
}

// DefaultStyle returns the standard overlay palette.
func DefaultStyle() Style {
	return Style{
		Ring:   colorutil.Cyan,
		Arc:    colorutil.Yellow,
		Center: colorutil.Red,
		Marker: colorutil.Magenta,
		Text:   colorutil.White,
		Scale:  4,
	}
}

// Render returns a new image showing res drawn over img.
func Render(img image.Image, res *gauge.Result, style Style) (*image.NRGBA, error) {
	if img == nil || img.Bounds().Empty() {
		return nil, gauge.ErrEmptyImage
	}
	if res == nil {
		return nil, fmt.Errorf("overlay: no result to draw")
	}
	scale := style.Scale
	if scale < 1 {
		scale = 1
	}

	src := imageToMat(img)
	defer src.Close()

	mat := src
	if scale > 1 {
		mat = gocv.NewMat()
		defer mat.Close()
		gocv.Resize(src, &mat, image.Point{}, float64(scale), float64(scale), gocv.InterpolationNearestNeighbor)
	}

	origin := img.Bounds().Min
	pt := func(x, y float64) image.Point {
		return image.Pt(
			int(math.Round((x-float64(origin.X))*float64(scale))),
			int(math.Round((y-float64(origin.Y))*float64(scale))),
		)
	}
	center := pt(res.Center.Point.X, res.Center.Point.Y)

	for _, r := range res.Center.Radii {
		gocv.Circle(&mat, center, int(math.Round(r*float64(scale))), style.Ring, 1)
	}

	// Ellipse angles run clockwise from 3 o'clock; rotate by 270 to start
	// at 12 o'clock like the scanner.
	if res.Arc.Degrees > 0 && len(res.Center.Radii) > 0 {
		r := int(math.Round(meanRadius(res.Center.Radii) * float64(scale)))
		gocv.Ellipse(&mat, center, image.Pt(r, r), 270, 0, res.Arc.Degrees, style.Arc, 2)
	}

	for _, m := range res.Center.Markers {
		gocv.Circle(&mat, pt(m.X, m.Y), 2*scale, style.Marker, 1)
	}
	gocv.Circle(&mat, center, scale, style.Center, -1)

	label := res.Reading.Health.String()
	gocv.PutText(&mat, label, image.Pt(2*scale, mat.Rows()-2*scale),
		gocv.FontHersheyPlain, 0.3*float64(scale), style.Text, 1)

	return matToImage(mat), nil
}

// Save renders the overlay and writes it with OpenCV's encoder, chosen by
// the extension of path.
func Save(path string, img image.Image, res *gauge.Result, style Style) error {
	out, err := Render(img, res, style)
	if err != nil {
		return err
	}
	mat := imageToMat(out)
	defer mat.Close()

	if ok := gocv.IMWrite(path, mat); !ok {
		return fmt.Errorf("overlay: failed to write %s", path)
	}
	return nil
}

func meanRadius(radii []float64) float64 {
	var sum float64
	for _, r := range radii {
		sum += r
	}
	return sum / float64(len(radii))
}

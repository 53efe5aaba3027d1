package overlay

import (
	"image"
	"runtime"
	"sync"

	"gocv.io/x/gocv"
)

// forStripes runs fn over horizontal row stripes of height rows, one stripe
// per CPU.
func forStripes(rows int, fn func(yStart, yEnd int)) {
	numWorkers := runtime.NumCPU()
	rowsPerWorker := (rows + numWorkers - 1) / numWorkers

	var wg sync.WaitGroup
	for w := 0; w < numWorkers; w++ {
		startY := w * rowsPerWorker
		endY := startY + rowsPerWorker
		if endY > rows {
			endY = rows
		}
		if startY >= rows {
			break
		}

		wg.Add(1)
		go func(yStart, yEnd int) {
			defer wg.Done()
			fn(yStart, yEnd)
		}(startY, endY)
	}
	wg.Wait()
}

// imageToMat converts img to a BGR Mat. The caller owns the Mat.
func imageToMat(img image.Image) gocv.Mat {
	bounds := img.Bounds()
	width := bounds.Dx()
	height := bounds.Dy()

	mat := gocv.NewMatWithSize(height, width, gocv.MatTypeCV8UC3)
	forStripes(height, func(yStart, yEnd int) {
		for y := yStart; y < yEnd; y++ {
			for x := 0; x < width; x++ {
				r, g, b, _ := img.At(x+bounds.Min.X, y+bounds.Min.Y).RGBA()
				mat.SetUCharAt(y, x*3+0, uint8(b>>8))
				mat.SetUCharAt(y, x*3+1, uint8(g>>8))
				mat.SetUCharAt(y, x*3+2, uint8(r>>8))
			}
		}
	})
	return mat
}

// matToImage converts a BGR Mat back to an opaque image.
func matToImage(mat gocv.Mat) *image.NRGBA {
	h := mat.Rows()
	w := mat.Cols()

	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	stride := img.Stride
	forStripes(h, func(yStart, yEnd int) {
		for y := yStart; y < yEnd; y++ {
			rowOffset := y * stride
			for x := 0; x < w; x++ {
				pixOffset := rowOffset + x*4
				img.Pix[pixOffset+0] = mat.GetUCharAt(y, x*3+2)
				img.Pix[pixOffset+1] = mat.GetUCharAt(y, x*3+1)
				img.Pix[pixOffset+2] = mat.GetUCharAt(y, x*3+0)
				img.Pix[pixOffset+3] = 255
			}
		}
	})
	return img
}

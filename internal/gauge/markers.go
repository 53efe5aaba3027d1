package gauge

import (
	"fmt"
	"image"
	"math"

	"gauge-tracker/pkg/colorutil"
	"gauge-tracker/pkg/geometry"
)

// MarkerCluster is a connected group of marker-colored pixels.
type MarkerCluster struct {
	Size     int
	Centroid geometry.Point2D
}

// MarkerCalibrator locates the gauge center from four pale corner markers:
// one per quadrant, the true center being where the diagonals cross.
// Use it when the gauge is not known to be pixel-centered in the capture.
type MarkerCalibrator struct {
	Markers  MarkerConfig
	AlphaMin uint8
	Radii    []float64 // used when Markers.RadiusScale is zero
}

// Calibrate finds the marker clusters and intersects their diagonals.
// It never falls back to a default center.
func (m *MarkerCalibrator) Calibrate(img image.Image) (Center, error) {
	pixels := m.markerPixels(img)
	if len(pixels) < m.Markers.MinPixels {
		return Center{}, fmt.Errorf("%w: found %d, need %d", ErrTooFewMarkerPixels, len(pixels), m.Markers.MinPixels)
	}

	var clusters []MarkerCluster
	for _, c := range FindClusters(pixels, m.Markers.JoinDistance) {
		if c.Size >= m.Markers.MinClusterSize {
			clusters = append(clusters, c)
		}
	}
	if len(clusters) < 4 {
		return Center{}, fmt.Errorf("%w: found %d", ErrTooFewClusters, len(clusters))
	}

	centroids := make([]geometry.Point2D, len(clusters))
	for i, c := range clusters {
		centroids[i] = c.Centroid
	}

	inliers := rejectOutliers(centroids, m.Markers.OutlierFactor)
	if len(inliers) < 4 {
		return Center{}, fmt.Errorf("%w: %d of %d clusters kept", ErrUnstableCenter, len(inliers), len(centroids))
	}
	rough := geometry.Centroid(inliers)

	corners, ok := quadrantExtremes(inliers, rough)
	if !ok {
		return Center{}, ErrEmptyQuadrant
	}
	tl, tr, br, bl := corners[0], corners[1], corners[2], corners[3]

	center, ok := geometry.Intersect(tl, br, tr, bl)
	if !ok {
		return Center{}, ErrDegenerateCenter
	}
	// A dented marker layout still has crossing diagonal lines, but the
	// crossing falls outside the markers.
	if !geometry.IsConvex(corners) || !geometry.PointInPolygon(center, corners) {
		return Center{}, fmt.Errorf("%w: markers do not form a convex quadrilateral", ErrDegenerateCenter)
	}

	radii := append([]float64(nil), m.Radii...)
	if m.Markers.RadiusScale > 0 {
		var sum float64
		for _, p := range corners {
			sum += p.Distance(center)
		}
		radii = []float64{sum / 4 * m.Markers.RadiusScale}
	}

	return Center{Point: center, Radii: radii, Markers: corners}, nil
}

// markerPixels returns every opaque pixel close to one of the marker colors.
func (m *MarkerCalibrator) markerPixels(img image.Image) []image.Point {
	b := img.Bounds()
	var out []image.Point
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			p := colorutil.NRGBA(img.At(x, y))
			if p.A < m.AlphaMin {
				continue
			}
			for _, mc := range m.Markers.Colors {
				if colorutil.Distance(p, mc) < m.Markers.MaxColorDistance {
					out = append(out, image.Point{X: x, Y: y})
					break
				}
			}
		}
	}
	return out
}

// rejectOutliers drops points whose distance from the rough centroid is at
// least factor times the mean distance.
func rejectOutliers(points []geometry.Point2D, factor float64) []geometry.Point2D {
	rough := geometry.Centroid(points)
	dists := make([]float64, len(points))
	var sum float64
	for i, p := range points {
		dists[i] = p.Distance(rough)
		sum += dists[i]
	}
	limit := sum / float64(len(points)) * factor

	var kept []geometry.Point2D
	for i, p := range points {
		if dists[i] < limit {
			kept = append(kept, p)
		}
	}
	return kept
}

// quadrantExtremes classifies points by quadrant around center and returns
// the farthest point in each, ordered TL, TR, BR, BL. Points on an axis
// belong to no quadrant.
func quadrantExtremes(points []geometry.Point2D, center geometry.Point2D) ([]geometry.Point2D, bool) {
	const (
		tl = iota
		tr
		br
		bl
	)
	best := make([]geometry.Point2D, 4)
	bestDist := []float64{-1, -1, -1, -1}

	for _, p := range points {
		q := -1
		switch {
		case p.X < center.X && p.Y < center.Y:
			q = tl
		case p.X > center.X && p.Y < center.Y:
			q = tr
		case p.X > center.X && p.Y > center.Y:
			q = br
		case p.X < center.X && p.Y > center.Y:
			q = bl
		}
		if q < 0 {
			continue
		}
		if d := p.DistanceSq(center); d > bestDist[q] {
			bestDist[q] = d
			best[q] = p
		}
	}

	for _, d := range bestDist {
		if d < 0 {
			return nil, false
		}
	}
	return best, true
}

// FindClusters groups points whose squared distance is below join² into
// connected clusters. Neighbor lookups go through a grid of join-sized
// buckets, so only the 3x3 surrounding cells are searched per point.
func FindClusters(points []image.Point, join float64) []MarkerCluster {
	if len(points) == 0 || join <= 0 {
		return nil
	}

	cell := int(math.Ceil(join))
	joinSq := join * join
	grid := make(map[image.Point][]int, len(points))
	for i, p := range points {
		k := bucket(p, cell)
		grid[k] = append(grid[k], i)
	}

	visited := make([]bool, len(points))
	var clusters []MarkerCluster
	queue := make([]int, 0, 64)

	for start := range points {
		if visited[start] {
			continue
		}
		visited[start] = true
		queue = append(queue[:0], start)

		var sumX, sumY float64
		size := 0
		for head := 0; head < len(queue); head++ {
			cur := points[queue[head]]
			sumX += float64(cur.X)
			sumY += float64(cur.Y)
			size++

			k := bucket(cur, cell)
			for dy := -1; dy <= 1; dy++ {
				for dx := -1; dx <= 1; dx++ {
					for _, j := range grid[image.Point{X: k.X + dx, Y: k.Y + dy}] {
						if visited[j] {
							continue
						}
						ddx := float64(points[j].X - cur.X)
						ddy := float64(points[j].Y - cur.Y)
						if ddx*ddx+ddy*ddy < joinSq {
							visited[j] = true
							queue = append(queue, j)
						}
					}
				}
			}
		}

		clusters = append(clusters, MarkerCluster{
			Size:     size,
			Centroid: geometry.Point2D{X: sumX / float64(size), Y: sumY / float64(size)},
		})
	}
	return clusters
}

// bucket returns the grid cell for p, flooring for negative coordinates.
func bucket(p image.Point, cell int) image.Point {
	return image.Point{X: floorDiv(p.X, cell), Y: floorDiv(p.Y, cell)}
}

func floorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}

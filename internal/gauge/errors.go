package gauge

import "errors"

var (
	// ErrInvalidConfig marks a configuration that cannot produce a reading.
	ErrInvalidConfig = errors.New("invalid gauge config")

	// ErrEmptyImage is returned for a nil or zero-sized pixel source.
	ErrEmptyImage = errors.New("empty image")

	// ErrCalibration is wrapped by every marker calibration failure.
	ErrCalibration = errors.New("calibration failed")

	ErrTooFewMarkerPixels = calibrationError("not enough marker-colored pixels")
	ErrTooFewClusters     = calibrationError("fewer than four marker clusters")
	ErrUnstableCenter     = calibrationError("too many outlier markers for a stable center")
	ErrEmptyQuadrant      = calibrationError("could not isolate a marker in each quadrant")
	ErrDegenerateCenter   = calibrationError("marker diagonals do not intersect")
)

type calError struct{ msg string }

func calibrationError(msg string) error { return &calError{msg: msg} }

func (e *calError) Error() string { return e.msg }

func (e *calError) Is(target error) bool { return target == ErrCalibration }

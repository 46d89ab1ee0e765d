// Package aim converts bed coordinates into camera servo angles.
package aim

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"
)

// Bearing returns the planar angle in degrees from one point to another
func Bearing(from, to Point) float64 {
	d := r2.Sub(to, from)
	return math.Atan2(d.Y, d.X) * 180.0 / math.Pi
}

// NormalizeDelta folds an angular difference into (-180, +180]
func NormalizeDelta(delta float64) float64 {
	for delta > 180 {
		delta -= 360
	}
	for delta <= -180 {
		delta += 360
	}
	return delta
}

// Angle computes the servo angle that aims a camera at camera towards target,
// relative to the calibrated angle that aims it at bedCenter.
//
// Targets beyond the servo travel saturate at 0 or the range limit. With
// Invert set, the clamped angle is mirrored over the range.
func Angle(camera, target, bedCenter Point, calib Calibration) float64 {
	reference := Bearing(camera, bedCenter)
	delta := NormalizeDelta(Bearing(camera, target) - reference)

	limit := calib.Range.Degrees()
	angle := math.Max(0, math.Min(limit, calib.CenterAngle+delta))

	if calib.Invert {
		angle = limit - angle
	}
	return angle
}

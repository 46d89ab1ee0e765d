package aim

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const tolerance = 1e-9

func squareBed(size float64) Calibration {
	c := DefaultCalibration()
	c.BedWidth = size
	c.BedDepth = size
	return c
}

func TestBearing(t *testing.T) {
	tests := []struct {
		to   Point
		want float64
	}{
		{Point{X: 10, Y: 0}, 0},
		{Point{X: 10, Y: 10}, 45},
		{Point{X: 0, Y: 10}, 90},
		{Point{X: -10, Y: 0}, 180},
		{Point{X: 0, Y: -10}, -90},
	}

	for _, test := range tests {
		assert.InDelta(t, test.want, Bearing(Point{}, test.to), tolerance, "bearing to %v", test.to)
	}
}

func TestNormalizeDelta(t *testing.T) {
	tests := []struct {
		in, want float64
	}{
		{0, 0},
		{45, 45},
		{180, 180},
		{-180, 180},
		{190, -170},
		{-190, 170},
		{540, 180},
		{-359, 1},
	}

	for _, test := range tests {
		assert.InDelta(t, test.want, NormalizeDelta(test.in), tolerance, "normalize %v", test.in)
	}
}

func TestAngleBedCenterIsCenterAngle(t *testing.T) {
	calib := squareBed(100)
	for _, center := range []float64{0, 30, 90, 135, 180} {
		calib.CenterAngle = center
		got := Angle(Point{X: -20, Y: 5}, calib.BedCenter(), calib.BedCenter(), calib)
		assert.InDelta(t, center, got, tolerance)
	}
}

func TestAngleRelativeToCenter(t *testing.T) {
	calib := squareBed(100)

	// Camera at origin sees bed center at 45 degrees
	assert.InDelta(t, 45.0, calib.AngleTo(Point{X: 100, Y: 0}), tolerance)
	assert.InDelta(t, 135.0, calib.AngleTo(Point{X: 0, Y: 100}), tolerance)
	assert.InDelta(t, 90.0, calib.AngleTo(Point{X: 80, Y: 80}), tolerance)
}

func TestAngleSaturates(t *testing.T) {
	calib := squareBed(100)
	calib.Range = Range90
	calib.CenterAngle = 45

	// Behind the camera needs 135 degrees of travel from center
	assert.Equal(t, 90.0, calib.AngleTo(Point{X: -10, Y: 0.0001}))
	assert.Equal(t, 0.0, calib.AngleTo(Point{X: 0.0001, Y: -10}))
}

func TestAngleInvert(t *testing.T) {
	calib := squareBed(100)
	inverted := calib
	inverted.Invert = true

	assert.InDelta(t, 45.0, inverted.AngleTo(Point{X: 0, Y: 100}), tolerance)
	assert.InDelta(t, 90.0, inverted.AngleTo(calib.BedCenter()), tolerance)
}

func TestAngleProperties(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	coord := func() float64 { return rng.Float64()*1000 - 500 }

	for i := 0; i < 2000; i++ {
		calib := DefaultCalibration()
		if i%2 == 0 {
			calib.Range = Range90
		}
		calib.Camera = Point{X: coord(), Y: coord()}
		calib.BedWidth = rng.Float64()*400 + 1
		calib.BedDepth = rng.Float64()*400 + 1
		calib.CenterAngle = rng.Float64() * calib.Range.Degrees()
		target := Point{X: coord(), Y: coord()}

		plain := calib.AngleTo(target)
		require.GreaterOrEqual(t, plain, 0.0)
		require.LessOrEqual(t, plain, calib.Range.Degrees())

		calib.Invert = true
		inverted := calib.AngleTo(target)
		require.InDelta(t, calib.Range.Degrees()-plain, inverted, tolerance)
	}
}

func TestCalibrationValidate(t *testing.T) {
	require.NoError(t, DefaultCalibration().Validate())

	tests := []struct {
		name   string
		modify func(c *Calibration)
	}{
		{"range", func(c *Calibration) { c.Range = 270 }},
		{"bed width", func(c *Calibration) { c.BedWidth = 0 }},
		{"bed depth", func(c *Calibration) { c.BedDepth = -1 }},
		{"center above range", func(c *Calibration) { c.Range = Range90; c.CenterAngle = 91 }},
		{"center negative", func(c *Calibration) { c.CenterAngle = -1 }},
		{"empty servo", func(c *Calibration) { c.ServoName = "" }},
		{"servo whitespace", func(c *Calibration) { c.ServoName = "camera servo" }},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			calib := DefaultCalibration()
			test.modify(&calib)
			assert.Error(t, calib.Validate())
		})
	}
}

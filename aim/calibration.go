package aim

import (
	"errors"
	"fmt"
	"strings"

	"gonum.org/v1/gonum/spatial/r2"
)

// Point is a planar bed coordinate in millimeters
type Point = r2.Vec

// Range is the travel of the camera servo in degrees
type Range int

const (
	Range90  Range = 90
	Range180 Range = 180
)

// Degrees returns the range as a float for angle arithmetic
func (r Range) Degrees() float64 {
	return float64(r)
}

// Valid reports whether r is one of the supported servo ranges
func (r Range) Valid() bool {
	return r == Range90 || r == Range180
}

// Calibration describes where the camera sits and how its servo is set up.
// It is fixed at startup and passed by value into everything that aims.
type Calibration struct {
	Camera      Point   // Camera mount position relative to bed 0,0 (mm)
	BedWidth    float64 // X dimension of the bed (mm)
	BedDepth    float64 // Y dimension of the bed (mm)
	Range       Range   // Servo travel, 90 or 180 degrees
	CenterAngle float64 // Servo angle that points the camera at bed center
	Invert      bool    // Servo mounted upside down
	ServoName   string  // Klipper [servo <name>] section name
}

// DefaultCalibration returns the calibration for a 350x350 bed with the
// camera at the origin and a 180 degree servo centered at 90
func DefaultCalibration() Calibration {
	return Calibration{
		Camera:      Point{X: 0, Y: 0},
		BedWidth:    350.0,
		BedDepth:    350.0,
		Range:       Range180,
		CenterAngle: 90.0,
		Invert:      false,
		ServoName:   "camera_servo",
	}
}

// BedCenter returns the geometric center of the bed
func (c Calibration) BedCenter() Point {
	return Point{X: c.BedWidth / 2.0, Y: c.BedDepth / 2.0}
}

// AngleTo returns the servo angle that aims the camera at target
func (c Calibration) AngleTo(target Point) float64 {
	return Angle(c.Camera, target, c.BedCenter(), c)
}

// Validate checks the calibration for values the servo cannot use
func (c Calibration) Validate() error {
	if !c.Range.Valid() {
		return fmt.Errorf("servo range must be 90 or 180, got %d", c.Range)
	}
	if c.BedWidth <= 0 || c.BedDepth <= 0 {
		return fmt.Errorf("bed dimensions must be positive, got %gx%g", c.BedWidth, c.BedDepth)
	}
	if c.CenterAngle < 0 || c.CenterAngle > c.Range.Degrees() {
		return fmt.Errorf("center angle %g outside servo range 0-%d", c.CenterAngle, c.Range)
	}
	if c.ServoName == "" {
		return errors.New("servo name cannot be empty")
	}
	if strings.ContainsAny(c.ServoName, " \t\r\n") {
		return fmt.Errorf("servo name %q contains whitespace", c.ServoName)
	}
	return nil
}

// Package postproc runs the camera aiming transform over a whole G-code file.
package postproc

import (
	"errors"
	"fmt"

	"pointprint/aim"
	"pointprint/gcode"
)

// ErrNoObjects is returned when the file declares no objects to aim at
var ErrNoObjects = errors.New("no objects found in " + gcode.BlockStartMarker + " section")

// ObjectAim is the computed aim for one declared object
type ObjectAim struct {
	Name   string
	Center aim.Point
	Angle  float64
}

// Result is the outcome of one run
type Result struct {
	Lines      []string    // Transformed program
	Objects    []ObjectAim // Declared objects in declaration order
	Directives int         // SET_SERVO lines for the configured servo in the output
}

// Processor sequences object extraction and directive injection
type Processor struct {
	calib aim.Calibration
	logf  func(format string, v ...interface{})
}

// NewProcessor creates a processor for the given calibration. A nil logf
// reports warnings through monitoring.Logf.
func NewProcessor(calib aim.Calibration, logf func(format string, v ...interface{})) *Processor {
	return &Processor{
		calib: calib,
		logf:  logf,
	}
}

// Calibration returns the calibration the processor aims with
func (p *Processor) Calibration() aim.Calibration {
	return p.calib
}

// Run transforms a fully loaded program. It fails with ErrNoObjects before
// touching the program if the declaration block yields nothing.
func (p *Processor) Run(lines []string) (*Result, error) {
	table := gcode.Extract(lines)
	if table.Len() == 0 {
		return nil, fmt.Errorf("%w (scanned %d lines)", ErrNoObjects, len(lines))
	}

	objects := make([]ObjectAim, 0, table.Len())
	for _, name := range table.Names() {
		center, _ := table.Center(name)
		objects = append(objects, ObjectAim{
			Name:   name,
			Center: center,
			Angle:  p.calib.AngleTo(center),
		})
	}

	out := gcode.Inject(lines, table, p.calib, p.logf)

	return &Result{
		Lines:      out,
		Objects:    objects,
		Directives: CountDirectives(out, p.calib.ServoName),
	}, nil
}

// CountDirectives counts lines that drive the named servo
func CountDirectives(lines []string, servo string) int {
	count := 0
	for _, line := range lines {
		if gcode.IsServoDirective(line, servo) {
			count++
		}
	}
	return count
}

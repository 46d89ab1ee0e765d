package gcode

import (
	"pointprint/aim"
	"pointprint/monitoring"
)

// Phase is the injector's position in the aim cycle
type Phase int

const (
	// Idle means no directive is waiting to be placed
	Idle Phase = iota
	// AimPending means a directive waits for the next move
	AimPending
)

func (p Phase) String() string {
	switch p {
	case Idle:
		return "idle"
	case AimPending:
		return "aim-pending"
	}
	return "unknown"
}

// State is carried from line to line while injecting.
// Pending holds the staged directive without its line terminator.
type State struct {
	Phase     Phase
	Pending   string
	LastAimed string
}

// Injector places SET_SERVO directives after the first move of each
// newly entered object
type Injector struct {
	table *ObjectTable
	calib aim.Calibration
	logf  func(format string, v ...interface{})
}

// NewInjector creates an injector. A nil logf reports through monitoring.Logf.
func NewInjector(table *ObjectTable, calib aim.Calibration, logf func(format string, v ...interface{})) *Injector {
	if logf == nil {
		logf = func(format string, v ...interface{}) { monitoring.Logf(format, v...) }
	}
	return &Injector{
		table: table,
		calib: calib,
		logf:  logf,
	}
}

// Step advances the state over one line and returns the directive, if any,
// that belongs directly after that line
func (inj *Injector) Step(st State, line string) (State, string) {
	if name, ok := ParseExcludeStart(line); ok {
		if name == st.LastAimed {
			return st, ""
		}

		center, known := inj.table.Center(name)
		if !known {
			inj.logf("Warning: object %q not found in %s section", name, BlockStartMarker)
			return st, ""
		}

		// A boundary for another object before any move replaces the staged directive
		return State{
			Phase:     AimPending,
			Pending:   FormatServo(inj.calib.ServoName, inj.calib.AngleTo(center), ""),
			LastAimed: name,
		}, ""
	}

	if st.Phase == AimPending && IsMove(line) {
		eol := lineEnding(line)
		if eol == "" {
			eol = "\n"
		}
		directive := st.Pending + eol
		return State{Phase: Idle, LastAimed: st.LastAimed}, directive
	}

	return st, ""
}

// Run copies lines to a new slice with directives inserted. A directive
// still pending at the end of the input is dropped.
func (inj *Injector) Run(lines []string) []string {
	out := make([]string, 0, len(lines)+inj.table.Len())
	var st State

	for _, line := range lines {
		out = append(out, line)

		var directive string
		st, directive = inj.Step(st, line)
		if directive == "" {
			continue
		}

		// Keep the directive on its own line after an unterminated last line
		if lineEnding(line) == "" {
			out[len(out)-1] = line + "\n"
		}
		out = append(out, directive)
	}

	return out
}

// Inject is shorthand for NewInjector(table, calib, logf).Run(lines)
func Inject(lines []string, table *ObjectTable, calib aim.Calibration, logf func(format string, v ...interface{})) []string {
	return NewInjector(table, calib, logf).Run(lines)
}

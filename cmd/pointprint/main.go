package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"pointprint/aim"
	"pointprint/config"
	"pointprint/host/printer"
	"pointprint/host/serial"
	"pointprint/monitoring"
	"pointprint/postproc"
)

type options struct {
	configPath string
	output     string
	dryRun     bool
	verbose    bool

	device  string
	aim     float64
	aimAt   string
	timeout time.Duration
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("pointprint", flag.ContinueOnError)
	fs.SetOutput(stderr)

	var opts options
	fs.StringVar(&opts.configPath, "config", "", "Camera calibration file (.json, .yaml)")
	fs.StringVar(&opts.output, "o", "", "Output path (default: modify the input file in place)")
	fs.BoolVar(&opts.dryRun, "dry-run", false, "Report what would be inserted without writing")
	fs.BoolVar(&opts.verbose, "verbose", false, "Enable verbose output")
	fs.StringVar(&opts.device, "device", serial.DefaultDevice, "Klipper virtual serial port for -aim/-aim-at")
	fs.Float64Var(&opts.aim, "aim", -1, "Send the servo to this angle and exit (calibration)")
	fs.StringVar(&opts.aimAt, "aim-at", "", "Aim the servo at bed point X,Y and exit (calibration)")
	fs.DurationVar(&opts.timeout, "timeout", 5*time.Second, "How long to wait for klippy to acknowledge")
	fs.Usage = func() { printUsage(fs) }

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 1
	}

	monitoring.SetLogger(log.New(stderr, "", 0).Printf)

	calib := aim.DefaultCalibration()
	if opts.configPath != "" {
		var err error
		if calib, err = config.Load(opts.configPath); err != nil {
			fmt.Fprintf(stderr, "Error: %v\n", err)
			return 1
		}
	}

	if opts.aim >= 0 || opts.aimAt != "" {
		if fs.NArg() != 0 {
			fs.Usage()
			return 1
		}
		if err := aimServo(opts, calib, stdout); err != nil {
			fmt.Fprintf(stderr, "Error: %v\n", err)
			return 1
		}
		return 0
	}

	if fs.NArg() != 1 {
		fs.Usage()
		return 1
	}

	if err := processFile(fs.Arg(0), opts, calib, stdout); err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		if errors.Is(err, postproc.ErrNoObjects) {
			fmt.Fprintln(stderr, "Please verify the gcode file format")
		}
		return 1
	}
	return 0
}

func printUsage(fs *flag.FlagSet) {
	out := fs.Output()
	fmt.Fprintln(out, "Usage: pointprint [flags] <gcode_file>")
	fmt.Fprintln(out, "       pointprint [-device path] -aim <angle> | -aim-at <x,y>")
	fmt.Fprintln(out, "\nThis tool will:")
	fmt.Fprintln(out, "  1. Parse object names and center points from EXECUTABLE_BLOCK_START")
	fmt.Fprintln(out, "  2. Insert SET_SERVO commands after the first move of each EXCLUDE_OBJECT_START")
	fmt.Fprintln(out, "  3. Save the modified gcode to the original file (or -o)")
	fmt.Fprintln(out, "\nFlags:")
	fs.PrintDefaults()
}

func processFile(path string, opts options, calib aim.Calibration, stdout io.Writer) error {
	fmt.Fprintf(stdout, "Processing file: %s\n", path)

	lines, err := postproc.ReadFile(path)
	if err != nil {
		return err
	}
	center := calib.BedCenter()
	fmt.Fprintf(stdout, "Read %d lines\n", len(lines))
	if opts.verbose {
		fmt.Fprintf(stdout, "Camera position: (%g, %g)\n", calib.Camera.X, calib.Camera.Y)
		fmt.Fprintf(stdout, "Bed size: %gx%g mm, center: (%g, %g)\n", calib.BedWidth, calib.BedDepth, center.X, center.Y)
		fmt.Fprintf(stdout, "Servo range: %d° (center angle %g° points to bed center)\n", calib.Range, calib.CenterAngle)
	}

	proc := postproc.NewProcessor(calib, nil)
	result, err := proc.Run(lines)
	if err != nil {
		return err
	}

	fmt.Fprintf(stdout, "Found %d objects:\n", len(result.Objects))
	for _, obj := range result.Objects {
		fmt.Fprintf(stdout, "  %s: center=(%g, %g), servo angle=%.2f°\n", obj.Name, obj.Center.X, obj.Center.Y, obj.Angle)
	}
	fmt.Fprintf(stdout, "Inserted %d SET_SERVO commands\n", result.Directives)

	if opts.dryRun {
		fmt.Fprintln(stdout, "Dry run, nothing written")
		return nil
	}

	out := opts.output
	if out == "" {
		out = path
	}
	if err := postproc.WriteFile(out, result.Lines); err != nil {
		return err
	}
	fmt.Fprintf(stdout, "Successfully saved modified gcode to: %s\n", out)
	return nil
}

func aimServo(opts options, calib aim.Calibration, stdout io.Writer) error {
	angle := opts.aim
	if opts.aimAt != "" {
		target, err := parsePoint(opts.aimAt)
		if err != nil {
			return err
		}
		angle = calib.AngleTo(target)
		fmt.Fprintf(stdout, "Bed point (%g, %g) -> servo angle %.2f°\n", target.X, target.Y, angle)
	} else if angle > calib.Range.Degrees() {
		return fmt.Errorf("angle %g outside servo range 0-%d", angle, calib.Range)
	}

	var logf func(string, ...interface{})
	if opts.verbose {
		logf = func(format string, v ...interface{}) { fmt.Fprintf(stdout, format+"\n", v...) }
	}

	fmt.Fprintf(stdout, "Connecting to %s...\n", opts.device)
	p, err := printer.Connect(serial.DefaultConfig(opts.device), logf)
	if err != nil {
		return err
	}
	defer p.Close()

	ctx, cancel := context.WithTimeout(context.Background(), opts.timeout)
	defer cancel()

	if err := p.SetServo(ctx, calib.ServoName, angle); err != nil {
		return err
	}
	fmt.Fprintf(stdout, "SET_SERVO SERVO=%s ANGLE=%.2f acknowledged\n", calib.ServoName, angle)
	return nil
}

// parsePoint parses "X,Y" in millimeters
func parsePoint(s string) (aim.Point, error) {
	xs, ys, found := strings.Cut(s, ",")
	if !found {
		return aim.Point{}, fmt.Errorf("invalid point %q, want X,Y", s)
	}
	x, err := strconv.ParseFloat(strings.TrimSpace(xs), 64)
	if err != nil {
		return aim.Point{}, fmt.Errorf("invalid X in %q: %w", s, err)
	}
	y, err := strconv.ParseFloat(strings.TrimSpace(ys), 64)
	if err != nil {
		return aim.Point{}, fmt.Errorf("invalid Y in %q: %w", s, err)
	}
	return aim.Point{X: x, Y: y}, nil
}

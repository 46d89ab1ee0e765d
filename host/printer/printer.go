// Package printer talks G-code to a running Klipper host over its virtual
// serial port. It is used to try servo angles while calibrating the camera.
package printer

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"pointprint/gcode"
	"pointprint/host/serial"
)

// Printer is a line-oriented G-code connection
type Printer struct {
	port   serial.Port
	reader *bufio.Reader

	// Informational lines (klippy "//" echoes) seen while waiting for ok
	logf func(format string, v ...interface{})
}

// New wraps an open port
func New(port serial.Port, logf func(format string, v ...interface{})) *Printer {
	if logf == nil {
		logf = func(string, ...interface{}) {}
	}
	return &Printer{
		port:   port,
		reader: bufio.NewReader(port),
		logf:   logf,
	}
}

// Connect opens the port described by cfg
func Connect(cfg *serial.Config, logf func(format string, v ...interface{})) (*Printer, error) {
	port, err := serial.Open(cfg)
	if err != nil {
		return nil, err
	}
	if err := port.Flush(); err != nil {
		port.Close()
		return nil, fmt.Errorf("failed to flush %s: %w", cfg.Device, err)
	}
	return New(port, logf), nil
}

// Close closes the underlying port
func (p *Printer) Close() error {
	return p.port.Close()
}

// Send writes one G-code line and waits for klippy to acknowledge it.
// Lines starting with "!!" or "Error:" before the ok fail the command.
func (p *Printer) Send(ctx context.Context, line string) error {
	line = strings.TrimSpace(line)
	if line == "" {
		return errors.New("empty command")
	}

	if _, err := io.WriteString(p.port, line+"\n"); err != nil {
		return fmt.Errorf("failed to send %q: %w", line, err)
	}

	var cmdErr error
	for {
		resp, err := p.readLine(ctx)
		if err != nil {
			return fmt.Errorf("waiting for response to %q: %w", line, err)
		}

		switch {
		case resp == "ok" || strings.HasPrefix(resp, "ok "):
			return cmdErr
		case strings.HasPrefix(resp, "!!"):
			cmdErr = fmt.Errorf("%s: %s", line, strings.TrimSpace(strings.TrimPrefix(resp, "!!")))
		case strings.HasPrefix(resp, "Error:"):
			cmdErr = fmt.Errorf("%s: %s", line, strings.TrimSpace(strings.TrimPrefix(resp, "Error:")))
		case resp != "":
			p.logf("%s", resp)
		}
	}
}

// SetServo moves the named servo to angle
func (p *Printer) SetServo(ctx context.Context, servo string, angle float64) error {
	return p.Send(ctx, gcode.FormatServo(servo, angle, ""))
}

// readLine returns the next response line. Read timeouts on the port surface
// as io.EOF, so partial data is kept and reading resumes until ctx is done.
func (p *Printer) readLine(ctx context.Context) (string, error) {
	var sb strings.Builder
	for {
		if err := ctx.Err(); err != nil {
			return "", err
		}

		chunk, err := p.reader.ReadString('\n')
		sb.WriteString(chunk)
		if err == nil {
			return strings.TrimSpace(sb.String()), nil
		}
		if !errors.Is(err, io.EOF) {
			return "", err
		}
	}
}

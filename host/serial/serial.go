package serial

import (
	"io"
)

// Port is a G-code capable serial connection.
// Implementations:
// - Native serial over github.com/tarm/serial, including Klipper's
//   virtual printer port (/tmp/printer)
// - In-memory ports for testing
type Port interface {
	io.ReadWriteCloser

	// Flush flushes any buffered data
	Flush() error
}

// DefaultDevice is the pseudo-terminal klippy exposes for G-code
const DefaultDevice = "/tmp/printer"

// Config holds serial port configuration
type Config struct {
	// Device path (e.g., "/tmp/printer", "/dev/ttyUSB0")
	Device string

	// Baud rate (ignored by pseudo-terminals)
	Baud int

	// Read timeout in milliseconds (0 = blocking)
	ReadTimeout int
}

// DefaultConfig returns a configuration for the given device, or for
// DefaultDevice when device is empty
func DefaultConfig(device string) *Config {
	if device == "" {
		device = DefaultDevice
	}
	return &Config{
		Device:      device,
		Baud:        115200,
		ReadTimeout: 100,
	}
}

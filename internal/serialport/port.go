package serialport

import (
	"fmt"
	"time"

	"go.bug.st/serial"
)

// Port is the minimal surface the ingestion loop needs from a serial
// connection. go.bug.st/serial's Port satisfies it; tests use an in-memory
// fake. A Read that hits the configured timeout returns (0, nil).
type Port interface {
	Read(p []byte) (int, error)
	SetReadTimeout(t time.Duration) error
	Close() error
}

// Opener opens a connection to the sensor endpoint.
type Opener func() (Port, error)

// NewOpener returns an Opener for a named port at the given baud rate.
func NewOpener(portName string, baudRate int) Opener {
	return func() (Port, error) {
		port, err := serial.Open(portName, &serial.Mode{BaudRate: baudRate})
		if err != nil {
			return nil, fmt.Errorf("failed to open serial port %s: %w", portName, err)
		}
		return port, nil
	}
}

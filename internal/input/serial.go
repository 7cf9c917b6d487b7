package input

import (
	"fmt"

	"github.com/tarm/serial"

	"github.com/cjeanneret/ScaraGo/internal/debug"
)

// Serial reads coordinate pairs from a serial port, same line format as the
// console source.
type Serial struct {
	*Console
	port *serial.Port
}

// OpenSerial opens the serial device and wraps it in a line reader.
// Blocking reads; the caller owns pacing.
func OpenSerial(device string, baud int) (*Serial, error) {
	port, err := serial.OpenPort(&serial.Config{
		Name: device,
		Baud: baud,
	})
	if err != nil {
		return nil, fmt.Errorf("open serial port %s: %w", device, err)
	}

	debug.Info("Serial input on %s @ %d baud", device, baud)

	return &Serial{
		Console: NewConsole(port),
		port:    port,
	}, nil
}

func (s *Serial) Close() error {
	return s.port.Close()
}

// Package gpio abstracts the Raspberry Pi pins that drive the joint motor
// drivers (STEP/DIR/ENABLE lines).
package gpio

import (
	"github.com/cjeanneret/ScaraGo/internal/debug"
)

// Level represents the logical state of a GPIO pin.
type Level bool

const (
	Low  Level = false
	High Level = true
)

// PinMode indicates whether a GPIO is input or output.
type PinMode int

const (
	Input PinMode = iota
	Output
)

// Driver is the pin interface the joint steppers run on. A real Raspberry
// Pi implementation and a mock for development away from the arm both
// satisfy it.
type Driver interface {
	SetupPin(pin int, mode PinMode) error
	WritePin(pin int, level Level) error
	ReadPin(pin int) (Level, error)
	Close() error
}

// MockDriver traces pin activity without touching hardware, so the motion
// cycle can run on a development machine with mock_gpio enabled.
type MockDriver struct{}

// NewDriver selects the pin driver: MockDriver when mock is true, the real
// RPiDriver otherwise.
func NewDriver(mock bool) (Driver, error) {
	if mock {
		debug.Info("Using MOCK GPIO driver (development mode)")
		return &MockDriver{}, nil
	}
	return NewRPiRealDriver()
}

func (m *MockDriver) SetupPin(pin int, mode PinMode) error {
	debug.GPIO("SetupPin", pin, mode)
	return nil
}

func (m *MockDriver) WritePin(pin int, level Level) error {
	debug.GPIO("WritePin", pin, level)
	return nil
}

func (m *MockDriver) ReadPin(pin int) (Level, error) {
	debug.GPIO("ReadPin", pin, nil)
	return Low, nil
}

func (m *MockDriver) Close() error {
	debug.Trace("GPIO Close (mock)")
	return nil
}

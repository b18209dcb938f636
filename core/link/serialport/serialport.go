// Package serialport attaches a link.Link to hardware serial ports through
// go.bug.st/serial.
package serialport

import (
	"fmt"

	"github.com/koscakluka/morse-client/core/link"
	"go.bug.st/serial"
)

type Driver struct{}

func NewDriver() *Driver {
	return &Driver{}
}

func (d *Driver) ListPorts() ([]string, error) {
	ports, err := serial.GetPortsList()
	if err != nil {
		return nil, fmt.Errorf("failed to enumerate serial ports: %w", err)
	}
	return ports, nil
}

func (d *Driver) Open(name string, mode link.Mode) (link.Port, error) {
	serialMode, err := convertMode(mode)
	if err != nil {
		return nil, err
	}

	port, err := serial.Open(name, serialMode)
	if err != nil {
		return nil, fmt.Errorf("failed to open serial port: %w", err)
	}

	if mode.ReadTimeout > 0 {
		if err := port.SetReadTimeout(mode.ReadTimeout); err != nil {
			port.Close()
			return nil, fmt.Errorf("failed to set read timeout: %w", err)
		}
	}

	return port, nil
}

func convertMode(mode link.Mode) (*serial.Mode, error) {
	serialMode := &serial.Mode{
		BaudRate: mode.BaudRate,
		DataBits: mode.DataBits,
	}

	switch mode.StopBits {
	case 1:
		serialMode.StopBits = serial.OneStopBit
	case 2:
		serialMode.StopBits = serial.TwoStopBits
	default:
		return nil, fmt.Errorf("unsupported stop bits: %d", mode.StopBits)
	}

	switch mode.Parity {
	case link.ParityNone:
		serialMode.Parity = serial.NoParity
	case link.ParityOdd:
		serialMode.Parity = serial.OddParity
	case link.ParityEven:
		serialMode.Parity = serial.EvenParity
	default:
		return nil, fmt.Errorf("unsupported parity: %s", mode.Parity)
	}

	return serialMode, nil
}

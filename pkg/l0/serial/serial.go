// Package serial opens the AHRS serial link.
package serial

import (
	"fmt"
	"io"
	"sort"
	"time"

	"go.bug.st/serial"
)

// Opener opens serial ports with fixed line settings, 8N1.
type Opener struct {
	BaudRate int
	// ReadTimeout bounds each Read, which returns 0 bytes on expiry.
	ReadTimeout time.Duration
}

// Mode returns the line settings.
func (o *Opener) Mode() *serial.Mode {
	return &serial.Mode{
		BaudRate: o.BaudRate,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	}
}

// Open implements session.Opener.
func (o *Opener) Open(port string) (io.ReadCloser, error) {
	conn, err := serial.Open(port, o.Mode())
	if err != nil {
		return nil, fmt.Errorf("open serial port %s: %w", port, err)
	}
	if o.ReadTimeout > 0 {
		if err := conn.SetReadTimeout(o.ReadTimeout); err != nil {
			conn.Close()
			return nil, fmt.Errorf("set read timeout: %w", err)
		}
	}
	return conn, nil
}

// OpenWriter opens a port for writing, used to feed simulated frames.
func (o *Opener) OpenWriter(port string) (io.WriteCloser, error) {
	conn, err := serial.Open(port, o.Mode())
	if err != nil {
		return nil, fmt.Errorf("open serial port %s: %w", port, err)
	}
	return conn, nil
}

// Ports lists the available serial ports, sorted by name.
func Ports() ([]string, error) {
	ports, err := serial.GetPortsList()
	if err != nil {
		return nil, fmt.Errorf("list serial ports: %w", err)
	}
	sort.Strings(ports)
	return ports, nil
}

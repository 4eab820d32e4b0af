// Package serialport opens and discovers the serial link to a DV3K
// device. It is a thin wrapper around go.bug.st/serial; all protocol
// logic lives elsewhere.
package serialport

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.bug.st/serial"
)

// Baud is the fixed AMBE-3000R UART rate.
const Baud = 460800

// DefaultReadTimeout bounds blocking reads on a freshly opened port.
const DefaultReadTimeout = 5 * time.Second

// devicePrefix matches the FTDI adapter the ZUM AMBE3000 boards
// enumerate as.
const devicePrefix = "usb-FTDI_ZUM_AMBE3000_"

// byIDDir is the stable-name device directory scanned by Find.
const byIDDir = "/dev/serial/by-id"

// Find scans /dev/serial/by-id for the first attached DV3K adapter and
// returns its device path.
func Find() (string, error) {
	entries, err := os.ReadDir(byIDDir)
	if err != nil {
		return "", fmt.Errorf("scan %s: %w", byIDDir, err)
	}

	for _, e := range entries {
		if strings.HasPrefix(e.Name(), devicePrefix) {
			return filepath.Join(byIDDir, e.Name()), nil
		}
	}

	return "", fmt.Errorf("no %s* device under %s", devicePrefix, byIDDir)
}

// Open opens the serial port at the chip's fixed settings: 460800
// baud, 8 data bits, no parity, one stop bit, no flow control. Pending
// input and output are flushed so the first exchange starts
// frame-aligned.
func Open(path string) (serial.Port, error) {
	mode := &serial.Mode{
		BaudRate: Baud,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	}

	port, err := serial.Open(path, mode)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}

	if err := port.SetReadTimeout(DefaultReadTimeout); err != nil {
		port.Close()
		return nil, fmt.Errorf("set read timeout: %w", err)
	}
	if err := port.ResetInputBuffer(); err != nil {
		port.Close()
		return nil, fmt.Errorf("flush input: %w", err)
	}
	if err := port.ResetOutputBuffer(); err != nil {
		port.Close()
		return nil, fmt.Errorf("flush output: %w", err)
	}

	return port, nil
}

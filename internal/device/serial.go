package device

import (
	"fmt"
	"sync"
	"time"

	serial "go.bug.st/serial"
)

// SerialDevice implements Device using go.bug.st/serial.
type SerialDevice struct {
	mu   sync.Mutex
	port serial.Port
	lr   *lineReader
	dev  string
	baud int
}

// NewSerialDevice creates and opens a serial device with the given path and baudrate.
func NewSerialDevice(dev string, baud int) (*SerialDevice, error) {
	s := &SerialDevice{dev: dev, baud: baud}
	if err := s.Open(); err != nil {
		return nil, err
	}
	return s, nil
}

// Open ensures that the serial port is ready for use.
func (s *SerialDevice) Open() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.port != nil {
		return nil
	}
	p, err := serial.Open(s.dev, &serial.Mode{BaudRate: s.baud})
	if err != nil {
		return fmt.Errorf("open serial %s: %w", s.dev, err)
	}
	s.port = p
	s.lr = newLineReader(p)
	return nil
}

// Close closes the underlying serial connection.
func (s *SerialDevice) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.port == nil {
		return nil
	}
	s.lr.close()
	err := s.port.Close()
	s.port, s.lr = nil, nil
	return err
}

// ReadLine reads a single line from the serial port, blocking until newline or timeout.
func (s *SerialDevice) ReadLine(timeout time.Duration) (string, error) {
	s.mu.Lock()
	lr := s.lr
	s.mu.Unlock()
	if lr == nil {
		return "", ErrNotOpen
	}
	return lr.ReadLine(timeout)
}

// WriteLine writes a single line followed by '\n' to the serial port.
func (s *SerialDevice) WriteLine(line string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.port == nil {
		return ErrNotOpen
	}
	_, err := s.port.Write(append([]byte(line), '\n'))
	return err
}

// String identifies the port in logs.
func (s *SerialDevice) String() string {
	return fmt.Sprintf("serial:%s@%d", s.dev, s.baud)
}

// Ports lists the serial ports visible on this host.
func Ports() ([]string, error) {
	return serial.GetPortsList()
}

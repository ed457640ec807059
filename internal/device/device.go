// Package device defines a unified interface for line sources such as serial ports or log files.
// It abstracts reading and writing line-based data with optional timeouts.
package device

import (
	"bufio"
	"errors"
	"io"
	"strings"
	"sync"
	"time"
)

var (
	// ErrNotOpen is returned when a device is used before Open or after Close.
	ErrNotOpen = errors.New("device not open")
	// ErrReadTimeout is returned when no full line arrived within the timeout.
	ErrReadTimeout = errors.New("read timeout")
)

// Device defines an abstract interface for line sources (e.g., serial, file).
type Device interface {
	// ReadLine reads a single line terminated by '\n', without the terminator.
	// If timeout > 0, it must return after timeout even if no data available.
	// io.EOF means the source is exhausted and will not produce more lines.
	ReadLine(timeout time.Duration) (string, error)

	// WriteLine writes s followed by '\n' to the device.
	WriteLine(s string) error

	// Close closes the device and releases underlying resources.
	Close() error
}

// lineReader owns the only goroutine reading from r. Lines are handed over
// on an unbuffered channel, so a line is never consumed by a ReadLine that
// already timed out.
type lineReader struct {
	r     *bufio.Reader
	lines chan string
	done  chan struct{}
	err   error // terminal read error, set before lines is closed

	startOnce sync.Once
	closeOnce sync.Once
}

func newLineReader(r io.Reader) *lineReader {
	return &lineReader{
		r:     bufio.NewReader(r),
		lines: make(chan string),
		done:  make(chan struct{}),
	}
}

// run feeds lines until the reader fails or close is called. A trailing
// partial line at EOF is delivered before the error.
func (lr *lineReader) run() {
	defer close(lr.lines)
	for {
		line, err := lr.r.ReadString('\n')
		if line != "" && (err == nil || err == io.EOF) {
			select {
			case lr.lines <- trimEOL(line):
			case <-lr.done:
				lr.err = ErrNotOpen
				return
			}
		}
		if err != nil {
			lr.err = err
			return
		}
	}
}

// ReadLine waits for the next line. It returns ErrNotOpen once close was
// called, even when the underlying read is still blocked.
func (lr *lineReader) ReadLine(timeout time.Duration) (string, error) {
	lr.startOnce.Do(func() { go lr.run() })

	var expired <-chan time.Time
	if timeout > 0 {
		t := time.NewTimer(timeout)
		defer t.Stop()
		expired = t.C
	}

	select {
	case <-lr.done:
		return "", ErrNotOpen
	default:
	}

	select {
	case line, ok := <-lr.lines:
		if !ok {
			return "", lr.err
		}
		return line, nil
	case <-lr.done:
		return "", ErrNotOpen
	case <-expired:
		return "", ErrReadTimeout
	}
}

func (lr *lineReader) close() {
	lr.closeOnce.Do(func() { close(lr.done) })
}

func trimEOL(s string) string {
	return strings.TrimRight(s, "\r\n")
}

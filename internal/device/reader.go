package device

import (
	"io"
	"sync"
	"time"
)

// ReaderDevice adapts any io.Reader (and optional io.Writer) into a Device.
// It backs the stdin source and tests.
type ReaderDevice struct {
	mu     sync.Mutex
	lr     *lineReader
	w      io.Writer
	closer io.Closer
	closed bool
}

// NewReaderDevice wraps r for reading and w for writing. w may be nil.
// If r implements io.Closer it is closed by Close.
func NewReaderDevice(r io.Reader, w io.Writer) *ReaderDevice {
	d := &ReaderDevice{lr: newLineReader(r), w: w}
	if c, ok := r.(io.Closer); ok {
		d.closer = c
	}
	return d
}

// ReadLine reads the next line from the wrapped reader. Close wakes a
// pending ReadLine even if the reader itself cannot be interrupted.
func (d *ReaderDevice) ReadLine(timeout time.Duration) (string, error) {
	return d.lr.ReadLine(timeout)
}

// WriteLine writes s + '\n' to the wrapped writer.
func (d *ReaderDevice) WriteLine(s string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed || d.w == nil {
		return ErrNotOpen
	}
	_, err := io.WriteString(d.w, s+"\n")
	return err
}

// Close marks the device closed and closes the reader if it can be closed.
func (d *ReaderDevice) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return nil
	}
	d.closed = true
	d.lr.close()
	if d.closer != nil {
		return d.closer.Close()
	}
	return nil
}

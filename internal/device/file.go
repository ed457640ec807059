package device

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"sync"
	"time"
)

// DefaultLogPath is the log file read when no path is configured.
const DefaultLogPath = "log.txt"

// pollInterval is how long a following FileDevice waits for the file to grow.
const pollInterval = 200 * time.Millisecond

// FileDevice reads lines from a log file. With Follow set it tails the file,
// waiting for new data at EOF instead of reporting io.EOF.
type FileDevice struct {
	Path   string
	Follow bool

	mu      sync.Mutex
	f       *os.File
	r       *bufio.Reader
	w       *os.File
	pending string
}

// NewFileDevice opens path for reading, creating it when missing.
func NewFileDevice(path string, follow bool) (*FileDevice, error) {
	if path == "" {
		path = DefaultLogPath
	}
	d := &FileDevice{Path: path, Follow: follow}
	if err := d.Open(); err != nil {
		return nil, err
	}
	return d, nil
}

// Open opens the file if it is not open already.
func (d *FileDevice) Open() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.f != nil {
		return nil
	}
	f, err := os.OpenFile(d.Path, os.O_RDONLY|os.O_CREATE, 0o644)
	if err != nil {
		return fmt.Errorf("open log file %s: %w", d.Path, err)
	}
	d.f = f
	d.r = bufio.NewReader(f)
	return nil
}

// ReadLine returns the next complete line. A following device keeps partial
// lines buffered until their newline arrives.
func (d *FileDevice) ReadLine(timeout time.Duration) (string, error) {
	var deadline time.Time
	if timeout > 0 {
		deadline = time.Now().Add(timeout)
	}
	for {
		d.mu.Lock()
		if d.f == nil {
			d.mu.Unlock()
			return "", ErrNotOpen
		}
		chunk, err := d.r.ReadString('\n')
		d.pending += chunk
		if err == nil {
			line := trimEOL(d.pending)
			d.pending = ""
			d.mu.Unlock()
			return line, nil
		}
		if err != io.EOF {
			d.mu.Unlock()
			return "", err
		}
		if !d.Follow {
			line := d.pending
			d.pending = ""
			d.mu.Unlock()
			if line == "" {
				return "", io.EOF
			}
			return trimEOL(line), nil
		}
		d.mu.Unlock()

		if !deadline.IsZero() && time.Now().After(deadline) {
			return "", ErrReadTimeout
		}
		time.Sleep(pollInterval)
	}
}

// WriteLine appends s + '\n' to the file through a separate append handle,
// so the read position is not disturbed.
func (d *FileDevice) WriteLine(s string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.f == nil {
		return ErrNotOpen
	}
	if d.w == nil {
		w, err := os.OpenFile(d.Path, os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return fmt.Errorf("open log file %s for append: %w", d.Path, err)
		}
		d.w = w
	}
	_, err := d.w.WriteString(s + "\n")
	return err
}

// Close closes the file.
func (d *FileDevice) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.f == nil {
		return nil
	}
	err := d.f.Close()
	if d.w != nil {
		if werr := d.w.Close(); err == nil {
			err = werr
		}
	}
	d.f, d.r, d.w = nil, nil, nil
	return err
}

func (d *FileDevice) String() string {
	return "file:" + d.Path
}

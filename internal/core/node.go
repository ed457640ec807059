package core

import (
	"errors"
	"io"
	"sync"
	"sync/atomic"
	"time"

	"SerialNode/internal/device"
	"SerialNode/internal/model"
	"SerialNode/internal/observability"
	"SerialNode/internal/parser"

	"github.com/rs/zerolog"
)

const (
	// retryDelay is the pause after a transient read error.
	retryDelay = 100 * time.Millisecond
	// readTimeout bounds each read so the loop notices Stop.
	readTimeout = 250 * time.Millisecond
)

// Publisher receives every decoded frame.
type Publisher interface {
	Publish(fi model.FrameInfo)
}

// PublisherFunc adapts a function into a Publisher.
type PublisherFunc func(fi model.FrameInfo)

// Publish calls f(fi).
func (f PublisherFunc) Publish(fi model.FrameInfo) { f(fi) }

// Node reads raw lines from a Device, decodes them into frames, numbers them
// and hands them to a Publisher.
type Node struct {
	ID     string
	Device device.Device
	Out    Publisher

	now      func() time.Time
	seq      atomic.Uint64
	log      zerolog.Logger
	stop     chan struct{}
	stopOnce sync.Once
	done     chan struct{}
	wg       sync.WaitGroup
}

// NewNode constructs a Node. dev may be nil, in which case Start is a no-op.
func NewNode(id string, dev device.Device, out Publisher) *Node {
	return &Node{
		ID:     id,
		Device: dev,
		Out:    out,
		now:    time.Now,
		log:    observability.NodeLogger(id),
		stop:   make(chan struct{}),
		done:   make(chan struct{}),
	}
}

// Start begins the read/decode loop in a background goroutine.
// Returns nil even if the underlying device is nil (no-op for headless runs).
func (n *Node) Start() error {
	if n.Device == nil {
		n.log.Warn().Msg("[node] no device, not starting")
		close(n.done)
		return nil
	}
	n.wg.Add(1)
	go n.loop()
	return nil
}

// Done is closed once the read loop has exited.
func (n *Node) Done() <-chan struct{} { return n.done }

// Frames returns how many frames this node has produced.
func (n *Node) Frames() uint64 { return n.seq.Load() }

func (n *Node) loop() {
	defer n.wg.Done()
	defer close(n.done)
	n.log.Info().Msg("[node] started")
	for {
		select {
		case <-n.stop:
			return
		default:
		}

		line, err := n.Device.ReadLine(readTimeout)
		switch {
		case err == nil:
			n.Handle(line)
		case errors.Is(err, device.ErrReadTimeout):
		case errors.Is(err, io.EOF):
			n.log.Info().Uint64("frames", n.Frames()).Msg("[node] source exhausted")
			return
		case errors.Is(err, device.ErrNotOpen):
			return
		default:
			n.log.Warn().Err(err).Msg("[node] read error")
			select {
			case <-n.stop:
				return
			case <-time.After(retryDelay):
			}
		}
	}
}

// Handle decodes one line. When it yields a frame, the frame is numbered,
// published and returned with ok set.
func (n *Node) Handle(line string) (model.FrameInfo, bool) {
	observability.RecordLine(n.ID)

	start := time.Now()
	frame, ok := parser.DecodeFrame(line)
	observability.RecordDecode(n.ID, frame.Kind(), ok, time.Since(start))
	if !ok {
		n.log.Debug().Str("line", line).Msg("[node] no frame")
		return model.FrameInfo{}, false
	}

	fi := model.FrameInfo{
		Number: n.seq.Add(1),
		Time:   n.now(),
		Source: n.ID,
		Frame:  frame,
	}
	if n.Out != nil {
		n.Out.Publish(fi)
	}
	return fi, true
}

// Stop stops the loop and closes the device. It is safe to call more than once.
func (n *Node) Stop() {
	n.stopOnce.Do(func() {
		close(n.stop)
		if n.Device != nil {
			if err := n.Device.Close(); err != nil {
				n.log.Warn().Err(err).Msg("[node] close device")
			}
		}
	})
	n.wg.Wait()
}

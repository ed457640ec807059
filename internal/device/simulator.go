package device

import (
	"context"
	"fmt"
	"math/rand"
	"strconv"
	"strings"
	"time"

	"SerialNode/internal/model"
	"SerialNode/internal/parser"

	"github.com/rs/zerolog/log"
)

// simulatedKinds is the rotation of kind tags the simulator emits.
var simulatedKinds = parser.Kinds()

var simulatedStates = []string{"IDLE", "RUN", "RAMP", "FAULT"}

// Simulator writes synthetic instrument lines to a Device, one per Interval,
// for testing without real hardware.
type Simulator struct {
	ID       string
	Device   Device
	Interval time.Duration
	Rand     *rand.Rand
	Now      func() time.Time
}

// NewSimulator creates a simulator with a time-seeded random source.
func NewSimulator(id string, dev Device, interval time.Duration) *Simulator {
	if interval <= 0 {
		interval = time.Second
	}
	return &Simulator{
		ID:       id,
		Device:   dev,
		Interval: interval,
		Rand:     rand.New(rand.NewSource(time.Now().UnixNano())),
		Now:      time.Now,
	}
}

// Line renders the tick-th simulated line with a bracketed timestamp prefix.
func (s *Simulator) Line(tick int) string {
	kind := simulatedKinds[tick%len(simulatedKinds)]
	plottable, _ := parser.Plottable(kind)
	f := model.Frame{
		Type: model.FrameType,
		Groups: []model.Group{{
			Kind:     kind,
			Datasets: []model.Dataset{{Value: s.payload(kind), Plottable: plottable}},
		}},
	}
	ts := s.Now().Format("2006-01-02 15:04:05.000")
	return "[" + ts + "] " + parser.FrameToLine(strconv.Itoa(tick), f)
}

func (s *Simulator) payload(kind string) string {
	switch kind {
	case "state":
		return simulatedStates[s.Rand.Intn(len(simulatedStates))]
	case "qidata":
		n := 3 + s.Rand.Intn(4)
		parts := make([]string, n)
		for i := range parts {
			parts[i] = fmt.Sprintf("%02x", s.Rand.Intn(256))
		}
		return strings.Join(parts, " ")
	case "freq":
		return fmt.Sprintf("%.2f", 50+(s.Rand.Float64()-0.5))
	case "temp":
		return fmt.Sprintf("%.1f", 25+s.Rand.Float64()*15)
	case "dcvolt":
		return fmt.Sprintf("%.2f", 11.5+s.Rand.Float64())
	case "ptx", "prx":
		return fmt.Sprintf("%.1f", -90+s.Rand.Float64()*80)
	default:
		return fmt.Sprintf("%.3f", s.Rand.Float64()*10)
	}
}

// Run writes lines until ctx is cancelled. Write errors are logged and the
// loop continues.
func (s *Simulator) Run(ctx context.Context) error {
	log.Info().Str("sim", s.ID).Dur("interval", s.Interval).Msg("[sim] simulator started")

	ticker := time.NewTicker(s.Interval)
	defer ticker.Stop()

	for tick := 0; ; tick++ {
		line := s.Line(tick)
		if err := s.Device.WriteLine(line); err != nil {
			log.Error().Err(err).Str("sim", s.ID).Msg("[sim] write error")
		} else {
			log.Debug().Str("sim", s.ID).Str("line", line).Msg("[sim] write")
		}

		select {
		case <-ctx.Done():
			log.Info().Str("sim", s.ID).Msg("[sim] simulation stopped")
			return nil
		case <-ticker.C:
		}
	}
}

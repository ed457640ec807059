// Package core contains the main runtime logic and orchestration layer for SerialNode.
// It defines the Node, Hub and System types that manage their lifecycle.
package core

import (
	"fmt"
	"os"
	"sync"

	"SerialNode/internal/config"
	"SerialNode/internal/device"
	"SerialNode/internal/model"

	"github.com/rs/zerolog/log"
)

// DeviceOpener opens the line source described by a node config.
type DeviceOpener func(nc model.NodeConfig) (device.Device, error)

// System manages lifecycle of the main components (Hub, Nodes).
// It loads configuration from a YAML file and constructs objects accordingly.
type System struct {
	cfg   *model.Config
	Hub   *Hub
	Nodes []*Node

	started   bool
	startLock sync.Mutex
	hubDone   chan struct{}
}

// NewSystem reads the YAML configuration at cfgPath and creates a System instance.
func NewSystem(cfgPath string) (*System, error) {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, err
	}
	return NewSystemFromConfig(cfg, OpenDevice), nil
}

// NewSystemFromConfig builds the hub and one node per configured source.
// A node whose device fails to open is kept with a nil device, so the rest
// of the system still runs (e.g. a serial adapter is unplugged).
func NewSystemFromConfig(cfg *model.Config, open DeviceOpener) *System {
	s := &System{cfg: cfg, Hub: NewHub(cfg.Global.HubAddr)}
	for _, nc := range cfg.Nodes {
		dev, err := open(nc)
		if err != nil {
			log.Error().Err(err).Str("node", nc.ID).Msg("[system] open source failed")
			dev = nil
		}
		s.Nodes = append(s.Nodes, NewNode(nc.ID, dev, s.Hub))
	}
	return s
}

// OpenDevice opens the real device for a node config.
func OpenDevice(nc model.NodeConfig) (device.Device, error) {
	switch nc.Source {
	case model.SourceSerial:
		return device.NewSerialDevice(nc.Device, nc.Baud)
	case model.SourceFile:
		return device.NewFileDevice(nc.Path, nc.Follow)
	case model.SourceStdin:
		return device.NewReaderDevice(os.Stdin, nil), nil
	default:
		return nil, fmt.Errorf("unknown source %q", nc.Source)
	}
}

// Config returns the configuration the system was built from.
func (s *System) Config() *model.Config { return s.cfg }

// StartAll starts the Hub and all Nodes.
func (s *System) StartAll() error {
	s.startLock.Lock()
	defer s.startLock.Unlock()
	if s.started {
		return nil
	}

	s.hubDone = make(chan struct{})
	go func() {
		defer close(s.hubDone)
		if err := s.Hub.Start(); err != nil {
			log.Error().Err(err).Msg("[system] hub stopped")
		}
	}()

	for _, n := range s.Nodes {
		if err := n.Start(); err != nil {
			log.Error().Err(err).Str("node", n.ID).Msg("[system] node start")
		}
	}
	s.started = true
	return nil
}

// StopAll stops all running components gracefully.
func (s *System) StopAll() {
	s.startLock.Lock()
	defer s.startLock.Unlock()
	if !s.started {
		return
	}
	for _, n := range s.Nodes {
		n.Stop()
	}
	s.Hub.Stop()
	<-s.hubDone
	s.started = false
}

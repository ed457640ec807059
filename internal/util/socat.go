package util

import (
	"fmt"
	"os"
	"os/exec"
	"sync"

	"github.com/rs/zerolog/log"
)

// SocatManager manages lifecycle of socat-created virtual serial pairs,
// letting the simulator write into one end while a node reads the other.
type SocatManager struct {
	mu     sync.Mutex
	bin    string
	cmds   []*exec.Cmd
	links  []string
	closed bool
}

// NewSocatManager initializes an empty manager using socat from PATH.
func NewSocatManager() *SocatManager {
	return &SocatManager{bin: "socat"}
}

// pairArgs returns the socat arguments linking two raw PTYs.
func pairArgs(left, right string) []string {
	return []string{
		"-d", "-d",
		fmt.Sprintf("pty,raw,echo=0,link=%s", left),
		fmt.Sprintf("pty,raw,echo=0,link=%s", right),
	}
}

// CreatePair starts a socat process that links two PTYs (bidirectional).
func (m *SocatManager) CreatePair(left, right string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return fmt.Errorf("socat manager closed")
	}

	cmd := exec.Command(m.bin, pairArgs(left, right)...)
	cmd.Stdout = os.Stderr
	cmd.Stderr = os.Stderr

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("failed to start socat: %w", err)
	}

	log.Info().Int("pid", cmd.Process.Pid).Str("left", left).Str("right", right).
		Msg("[virt-serial] started socat")

	m.cmds = append(m.cmds, cmd)
	m.links = append(m.links, left, right)
	return nil
}

// Cleanup stops all socat processes and removes created links.
func (m *SocatManager) Cleanup() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return
	}
	m.closed = true

	for _, cmd := range m.cmds {
		if cmd.Process != nil {
			_ = cmd.Process.Kill()
			_, _ = cmd.Process.Wait()
		}
	}

	for _, path := range m.links {
		if _, err := os.Lstat(path); err == nil {
			_ = os.Remove(path)
		}
	}

	log.Info().Int("pairs", len(m.links)/2).Msg("[virt-serial] cleanup complete")
}

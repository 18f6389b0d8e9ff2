package pidfile

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"syscall"
)

// ErrLocked is returned when another live process holds the PID file
var ErrLocked = errors.New("already running")

// PIDFile keeps one long-running price updater per host
type PIDFile struct {
	path string
	held bool
}

func New(path string) *PIDFile {
	return &PIDFile{path: path}
}

// Path returns the PID file location
func (p *PIDFile) Path() string {
	return p.path
}

// Acquire writes the current PID. A file left by a dead process, or one that does
// not hold a PID, is replaced.
func (p *PIDFile) Acquire() error {
	if pid, ok := p.owner(); ok {
		if pid != os.Getpid() && isProcessRunning(pid) {
			return fmt.Errorf("price updater %w (PID %d, %s)", ErrLocked, pid, p.path)
		}
	}

	data := []byte(strconv.Itoa(os.Getpid()) + "\n")
	if err := os.WriteFile(p.path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write PID file: %w", err)
	}
	p.held = true
	return nil
}

// Release removes the file if this process acquired it
func (p *PIDFile) Release() error {
	if !p.held {
		return nil
	}
	p.held = false
	if err := os.Remove(p.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove PID file: %w", err)
	}
	return nil
}

func (p *PIDFile) owner() (int, bool) {
	data, err := os.ReadFile(p.path)
	if err != nil {
		return 0, false
	}
	pid, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil || pid <= 0 {
		return 0, false
	}
	return pid, true
}

// isProcessRunning checks pid with signal 0
func isProcessRunning(pid int) bool {
	process, err := os.FindProcess(pid)
	if err != nil {
		return false
	}

	err = process.Signal(syscall.Signal(0))
	switch {
	case err == nil:
		return true
	case errors.Is(err, syscall.EPERM):
		// exists but owned by another user
		return true
	default:
		return false
	}
}

package tray

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"

	"github.com/butterflysky/elgato-keylight/internal/config"
)

// LockFilename is the PID lockfile name.
const LockFilename = "elgato-tray.pid"

// ErrAlreadyRunning is returned by AcquireLock when another live process
// holds the lockfile.
var ErrAlreadyRunning = errors.New("already running")

// LockPath is the lockfile in the XDG runtime directory.
func LockPath() string {
	return filepath.Join(config.GetRuntimeDir(), LockFilename)
}

// AcquireLock writes our PID to path. A lockfile left by a dead process
// is replaced. The returned func removes the lockfile.
func AcquireLock(path string) (func(), error) {
	if data, err := os.ReadFile(path); err == nil {
		if pid, err := strconv.Atoi(strings.TrimSpace(string(data))); err == nil && pid != os.Getpid() && alive(pid) {
			return nil, fmt.Errorf("%w (pid %d)", ErrAlreadyRunning, pid)
		}
		// stale
		_ = os.Remove(path)
	}

	if err := os.WriteFile(path, []byte(strconv.Itoa(os.Getpid())), 0o644); err != nil {
		return nil, fmt.Errorf("failed to create lockfile %s: %w", path, err)
	}
	return func() { _ = os.Remove(path) }, nil
}

func alive(pid int) bool {
	p, err := os.FindProcess(pid)
	if err != nil {
		return false
	}
	// signal 0 checks existence without delivering anything
	return p.Signal(syscall.Signal(0)) == nil
}

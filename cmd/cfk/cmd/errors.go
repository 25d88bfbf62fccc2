package cmd

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"syscall"

	bolt "go.etcd.io/bbolt"

	"github.com/corey/cfk/internal/app"
)

// isDBLockError returns true if the error chain contains a bbolt lock timeout.
// bbolt returns the string "timeout" when it cannot acquire the file lock
// within the configured deadline.
func isDBLockError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, bolt.ErrTimeout) {
		return true
	}
	return strings.Contains(err.Error(), "timeout")
}

// readPID returns the PID recorded by `cfk watch`, or 0.
func readPID(path string) int {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0
	}
	pid, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil || pid <= 0 {
		return 0
	}
	return pid
}

func processAlive(pid int) bool {
	proc, err := os.FindProcess(pid)
	if err != nil {
		return false
	}
	return proc.Signal(syscall.Signal(0)) == nil
}

// diagnoseDBLock returns actionable guidance when the journal cannot be
// opened because another process holds the lock. It distinguishes a live
// watcher, a stale PID file and an unknown holder.
func diagnoseDBLock(root string) string {
	paths := app.NewPaths(root)
	pid := readPID(paths.PIDFile)

	if pid > 0 && processAlive(pid) {
		return fmt.Sprintf("journal is locked by the running watcher (pid %d)\n"+
			"  → stop it first:  kill %d\n"+
			"  → then retry your command", pid, pid)
	}

	if pid > 0 {
		return fmt.Sprintf("journal is locked — watcher pid file exists but pid %d is gone\n"+
			"  → another process may hold %s\n"+
			"  → find it:          ps aux | grep cfk\n"+
			"  → clean up:         rm %s", pid, paths.DB, paths.PIDFile)
	}

	return "journal is locked by another process\n" +
		"  → find the process:  ps aux | grep cfk\n" +
		"  → kill it:           kill <PID>\n" +
		"  → then retry your command"
}

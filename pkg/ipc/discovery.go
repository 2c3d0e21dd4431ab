package ipc

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/shirou/gopsutil/v4/process"
)

// ErrNoInstance is reported when no running instance can be located: the
// discovery file is absent or unreadable, names a dead process, or the
// connection it points at is refused. Viewers surface it and stop; they do
// not retry.
var ErrNoInstance = errors.New("no running reqlens instance")

const discoveryName = "reqlens-ipc.json"

// DiscoveryRecord is the on-disk pointer a viewer uses to locate a running
// instance's IPC endpoint.
type DiscoveryRecord struct {
	PID       int       `json:"pid"`
	Port      int       `json:"port"`
	CreatedAt time.Time `json:"createdAt"`
}

// DefaultDiscoveryPath returns the well-known discovery file location.
func DefaultDiscoveryPath() string {
	return filepath.Join(os.TempDir(), discoveryName)
}

func writeDiscovery(path string, port int) error {
	rec := DiscoveryRecord{
		PID:       os.Getpid(),
		Port:      port,
		CreatedAt: time.Now(),
	}
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encoding discovery record: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("writing discovery file: %w", err)
	}
	return nil
}

// removeDiscovery deletes the discovery file only when this process still
// owns it. A record written by another live process is never touched.
func removeDiscovery(path string) {
	data, err := os.ReadFile(path)
	if err != nil {
		return
	}
	var rec DiscoveryRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return
	}
	if rec.PID != os.Getpid() {
		return
	}
	_ = os.Remove(path)
}

// Discover reads the discovery file at path (the default location when path
// is empty) and verifies the recorded process is still alive. A missing or
// corrupt file and a dead owner both yield ErrNoInstance.
func Discover(path string) (DiscoveryRecord, error) {
	if path == "" {
		path = DefaultDiscoveryPath()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return DiscoveryRecord{}, fmt.Errorf("%w: no discovery file at %s", ErrNoInstance, path)
	}
	var rec DiscoveryRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return DiscoveryRecord{}, fmt.Errorf("%w: discovery file unreadable", ErrNoInstance)
	}

	alive, err := process.PidExists(int32(rec.PID))
	if err == nil && !alive {
		// Stale record from a crashed or killed instance.
		return DiscoveryRecord{}, fmt.Errorf("%w: pid %d is gone", ErrNoInstance, rec.PID)
	}
	return rec, nil
}

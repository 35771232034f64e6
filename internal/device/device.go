package device

import (
	"fmt"
	"os"
	"os/exec"
	"runtime"
	"strings"

	"github.com/janis-commerce/app-tracking-shift-sub000/internal/storage"

	"github.com/google/uuid"
)

// DeviceManager resolves the stable id the device reports to the staff service
// and scopes its local event log with
type DeviceManager struct {
	kv storage.KeyValueStore

	// machineID is overridden in tests
	machineID func() (string, error)
}

// NewDeviceManager creates a device manager that remembers the resolved id in kv
func NewDeviceManager(kv storage.KeyValueStore) *DeviceManager {
	return &DeviceManager{
		kv:        kv,
		machineID: platformDeviceID,
	}
}

// Resolve returns the configured id when set. Otherwise it reuses the id
// stored by a previous run, then the platform machine id, then a new UUID.
// Resolved ids are stored so they survive restarts.
func (dm *DeviceManager) Resolve(configuredID string) (string, error) {
	if configuredID != "" {
		return configuredID, nil
	}

	stored, err := storage.GetString(dm.kv, storage.KeyDeviceID)
	if err != nil {
		return "", err
	}
	if stored != "" {
		return stored, nil
	}

	id, err := dm.machineID()
	if err != nil || id == "" {
		id = uuid.NewString()
	}

	if err := storage.SetString(dm.kv, storage.KeyDeviceID, id); err != nil {
		return "", err
	}
	return id, nil
}

func platformDeviceID() (string, error) {
	switch runtime.GOOS {
	case "linux":
		for _, path := range []string{"/etc/machine-id", "/var/lib/dbus/machine-id"} {
			if b, err := os.ReadFile(path); err == nil && len(strings.TrimSpace(string(b))) > 0 {
				return strings.TrimSpace(string(b)), nil
			}
		}
	case "darwin":
		out, err := exec.Command("ioreg", "-rd1", "-c", "IOPlatformExpertDevice").Output()
		if err == nil {
			for _, line := range strings.Split(string(out), "\n") {
				if strings.Contains(line, "IOPlatformUUID") {
					if parts := strings.Split(line, "="); len(parts) > 1 {
						return strings.Trim(strings.TrimSpace(parts[1]), `"`), nil
					}
				}
			}
		}
	case "windows":
		out, err := exec.Command("wmic", "csproduct", "get", "uuid").Output()
		if err == nil {
			for _, line := range strings.Split(string(out), "\n") {
				line = strings.TrimSpace(line)
				if line != "" && line != "UUID" && len(line) > 10 {
					return line, nil
				}
			}
		}
	default:
		return "", fmt.Errorf("unsupported platform: %s", runtime.GOOS)
	}

	// Fallback to hostname
	hostname, err := os.Hostname()
	if err == nil && hostname != "" {
		return runtime.GOOS + "-" + hostname, nil
	}
	return "", fmt.Errorf("could not determine %s device ID", runtime.GOOS)
}

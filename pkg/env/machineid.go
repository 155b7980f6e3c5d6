// Package env exposes facts about the host the process runs on.
package env

import (
	"os"

	"github.com/denisbrodbeck/machineid"
	"github.com/golang/glog"
)

// appID scopes the hashed machine ID so it can't be correlated with other
// applications on the same host.
const appID = "bahrs"

// MachineID retrieves the unique ID identifying the machine.
// It falls back to the hostname when the platform ID is unavailable.
func MachineID() string {
	id, err := machineid.ProtectedID(appID)
	if err == nil && id != "" {
		return id[:16]
	}
	glog.Warningf("machine ID unavailable: %v", err)
	return Hostname()
}

// Hostname returns the hostname or "localhost".
func Hostname() string {
	if name, err := os.Hostname(); err == nil && name != "" {
		return name
	}
	return "localhost"
}

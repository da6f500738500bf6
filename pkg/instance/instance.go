package instance

import (
	"os"

	"github.com/angelmondragon/pharmacy-backend/pkg/env"
)

// GetID returns the process instance identifier, falling back to the hostname.
func GetID() string {
	if id := env.Get("PHARMACY_INSTANCE_ID", ""); id != "" {
		return id
	}
	if host, err := os.Hostname(); err == nil && host != "" {
		return host
	}
	return "api-0"
}

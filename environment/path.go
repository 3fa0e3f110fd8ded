package environment

import (
	"os"
	"path/filepath"
)

const (
	KeyConfig = "FANTASIAD_CONFIG"
	KeySocket = "FANTASIAD_SOCKET"
)

// GetEnvPath returns the path held by the environment variable key, or fallback when unset.
func GetEnvPath(key, fallback string, elem ...string) (v string) {
	v = os.Getenv(key)
	if v == "" {
		v = fallback
	}

	return filepath.Join(append([]string{v}, elem...)...)
}

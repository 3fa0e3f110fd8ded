package environment

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGetEnvPath(t *testing.T) {
	t.Setenv(KeyConfig, "")
	assert.Equal(t, "/etc/fantasiad/fantasiad.yml", GetEnvPath(KeyConfig, "/etc/fantasiad/fantasiad.yml"))

	t.Setenv(KeyConfig, "/tmp/fan.yml")
	assert.Equal(t, "/tmp/fan.yml", GetEnvPath(KeyConfig, "/etc/fantasiad/fantasiad.yml"))

	t.Setenv(KeySocket, "/run/user/1000")
	assert.Equal(t, "/run/user/1000/fantasiad.sock", GetEnvPath(KeySocket, "/run/fantasiad", "fantasiad.sock"))
}

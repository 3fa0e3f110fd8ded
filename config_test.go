package fantasiad

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/thoukydides/fantasiad/fantasia"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "fantasiad.yml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
debug: true
update_delay: 250ms
pilight:
  host: pilight.lan
fans:
  bedroom:
    name: Bedroom Fan
    address: [false, true, false, false]
  lounge:
    port: 5002
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.True(t, cfg.Debug)
	assert.Equal(t, DefaultSocket, cfg.Socket)
	assert.Equal(t, 250*time.Millisecond, cfg.UpdateDelay.Duration)
	assert.Equal(t, TransmitterPilight, cfg.Transmitter)
	assert.Equal(t, []string{"bedroom", "lounge"}, cfg.FanIDs())

	bedroom := cfg.Fans["bedroom"]
	assert.Equal(t, "bedroom", bedroom.ID)
	assert.Equal(t, "Bedroom Fan", bedroom.Name)
	assert.Equal(t, fantasia.Address{false, true, false, false}, bedroom.Address)
	assert.Equal(t, "pilight.lan", bedroom.Host)
	assert.Equal(t, 5001, bedroom.Port)

	lounge := cfg.Fans["lounge"]
	assert.Equal(t, DefaultName, lounge.Name)
	assert.Equal(t, fantasia.Address{}, lounge.Address)
	assert.Equal(t, 5002, lounge.Port)
}

func TestLoadEmptyFan(t *testing.T) {
	path := writeConfig(t, `
update_delay: 100
fans:
  fan:
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 100*time.Millisecond, cfg.UpdateDelay.Duration)
	assert.Equal(t, "localhost", cfg.Fans["fan"].Host)
	assert.Equal(t, 5001, cfg.Fans["fan"].Port)
}

func TestLoadInvalidAddress(t *testing.T) {
	path := writeConfig(t, `
fans:
  bedroom:
    address: [true, false]
`)

	_, err := Load(path)
	assert.ErrorIs(t, err, fantasia.ErrInvalidAddress)
}

func TestLoadErrors(t *testing.T) {
	for name, content := range map[string]string{
		"no fans":     "debug: true\n",
		"transmitter": "transmitter: lirc\nfans:\n  fan: {}\n",
		"identifier":  "fans:\n  Bed Room: {}\n",
		"port":        "fans:\n  fan: {port: 70000}\n",
		"delay":       "update_delay: -1s\nfans:\n  fan: {}\n",
	} {
		t.Run(name, func(t *testing.T) {
			_, err := Load(writeConfig(t, content))
			assert.Error(t, err)
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

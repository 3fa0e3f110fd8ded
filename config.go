package fantasiad

import (
	"fmt"
	"os"
	"regexp"
	"slices"
	"strings"
	"time"

	"github.com/thoukydides/fantasiad/fantasia"
	"github.com/thoukydides/fantasiad/pilight"
	"go.yaml.in/yaml/v4"
)

const (
	DefaultName        = "Fan"
	DefaultSocket      = "/run/fantasiad/fantasiad.sock"
	DefaultUpdateDelay = 100 * time.Millisecond

	TransmitterPilight = "pilight"
	TransmitterSerial  = "serial"
)

type Config struct {
	Debug       bool            `yaml:"debug"`
	Socket      string          `yaml:"socket"`
	UpdateDelay Duration        `yaml:"update_delay"`
	Transmitter string          `yaml:"transmitter"`
	Pilight     PilightConfig   `yaml:"pilight"`
	Serial      SerialConfig    `yaml:"serial"`
	Fans        map[string]*Fan `yaml:"fans"`
}

type PilightConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

type SerialConfig struct {
	Port string `yaml:"port"` // Empty means auto-detection using VID/PID
	VID  string `yaml:"vid"`
	PID  string `yaml:"pid"`
}

// Fan is the configuration of a single fan.
type Fan struct {
	ID          string           `yaml:"-"`
	Name        string           `yaml:"name"`
	AddressYAML []bool           `yaml:"address"`
	Address     fantasia.Address `yaml:"-"`
	Host        string           `yaml:"host"`
	Port        int              `yaml:"port"`
}

func DefaultConfig() Config {
	return Config{
		Socket:      DefaultSocket,
		UpdateDelay: Duration{DefaultUpdateDelay},
		Transmitter: TransmitterPilight,
		Pilight: PilightConfig{
			Host: pilight.DefaultHost,
			Port: pilight.DefaultPort,
		},
		Serial: SerialConfig{
			VID: "2341", // Arduino
			PID: "0043",
		},
		Fans: map[string]*Fan{},
	}
}

func Load(path string) (Config, error) {
	c := DefaultConfig()

	f, err := os.Open(path)
	if err != nil {
		return c, err
	}
	defer f.Close()

	codec := yaml.NewDecoder(f)
	err = codec.Decode(&c)
	if err != nil {
		return c, err
	}

	return c, c.normalize()
}

var reID = regexp.MustCompile(`^[a-z0-9][a-z0-9_-]*$`)

func (c *Config) normalize() error {
	switch c.Transmitter {
	case "":
		c.Transmitter = TransmitterPilight
	case TransmitterPilight, TransmitterSerial:
	default:
		return fmt.Errorf("transmitter: %s: unsupported", c.Transmitter)
	}

	if c.UpdateDelay.Duration < 0 {
		return fmt.Errorf("update_delay: %s: must be positive", c.UpdateDelay)
	}
	if c.Socket == "" {
		c.Socket = DefaultSocket
	}

	if len(c.Fans) == 0 {
		return fmt.Errorf("fans: no fan configured")
	}

	for id, fan := range c.Fans {
		if !reID.MatchString(id) {
			return fmt.Errorf("%s: invalid fan identifier", id)
		}
		if fan == nil {
			fan = &Fan{}
			c.Fans[id] = fan
		}
		fan.ID = id

		if fan.Name == "" {
			fan.Name = DefaultName
		}

		if fan.AddressYAML != nil { // All dip-switches off otherwise
			var err error
			fan.Address, err = fantasia.NewAddress(fan.AddressYAML)
			if err != nil {
				return fmt.Errorf("%s: address: %w", id, err)
			}
		}

		if fan.Host == "" {
			fan.Host = c.Pilight.Host
		}
		if fan.Port == 0 {
			fan.Port = c.Pilight.Port
		}
		if fan.Port < 0 || fan.Port > 65535 {
			return fmt.Errorf("%s: port: %d: out of range", id, fan.Port)
		}
	}

	return nil
}

// FanIDs returns the configured fan identifiers in a stable order.
func (c Config) FanIDs() []string {
	ids := make([]string, 0, len(c.Fans))
	for id := range c.Fans {
		ids = append(ids, id)
	}
	slices.SortFunc(ids, func(a, b string) int {
		return strings.Compare(a, b)
	})

	return ids
}

package fantasiad

import (
	"fmt"

	"github.com/thoukydides/fantasiad/fantasia"
)

// Speed is a rotation speed in percent, restricted to the levels supported by the remote.
type Speed int

const (
	SpeedOff    Speed = 0
	SpeedLow    Speed = 25
	SpeedMedium Speed = 50
	SpeedHigh   Speed = 100

	SpeedMinStep = 25
)

// SnapSpeed returns the supported speed closest to percent.
// Thresholds are the midpoints between adjacent levels, a midpoint snaps upwards.
func SnapSpeed(percent float64) Speed {
	switch {
	case percent <= float64(SpeedOff):
		return SpeedOff
	case percent < float64(SpeedLow+SpeedMedium)/2:
		return SpeedLow
	case percent < float64(SpeedMedium+SpeedHigh)/2:
		return SpeedMedium
	default:
		return SpeedHigh
	}
}

// Button returns the remote button selecting this speed.
func (s Speed) Button() fantasia.Button {
	switch s {
	case SpeedLow:
		return fantasia.ButtonLow
	case SpeedMedium:
		return fantasia.ButtonMedium
	case SpeedHigh:
		return fantasia.ButtonHigh
	default:
		return fantasia.ButtonOff
	}
}

func (s Speed) String() string {
	switch s {
	case SpeedOff:
		return "Off"
	case SpeedLow:
		return "Low"
	case SpeedMedium:
		return "Medium"
	case SpeedHigh:
		return "High"
	default:
		return fmt.Sprintf("%d%%", int(s))
	}
}

package fantasiad

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/thoukydides/fantasiad/fantasia"
)

// A Transmitter sends an OOK pulse train on air.
type Transmitter interface {
	Transmit(ctx context.Context, tx fantasia.Timings) error
}

// State is the desired logical state of a fan.
type State struct {
	On    bool  `json:"on"`
	Speed Speed `json:"speed"`
}

// Target is the speed the fan must be set to, Off unless powered.
func (s State) Target() Speed {
	if !s.On {
		return SpeedOff
	}
	return s.Speed
}

type Transmission struct {
	ID     string          `json:"id"`
	At     time.Time       `json:"at"`
	Button fantasia.Button `json:"button"`
	Error  string          `json:"error,omitempty"`
}

type Status struct {
	ID     string        `json:"id"`
	Name   string        `json:"name"`
	Serial string        `json:"serial"`
	State  State         `json:"state"`
	Phase  Phase         `json:"phase"`
	Last   *Transmission `json:"last,omitempty"`
}

func ToPtr[T any](v T) *T {
	return &v
}

const (
	eventRefreshWatchers = "refresh-watchers"
	eventWatch           = "watch"
	eventUnwatch         = "unwatch"
)

type event struct {
	name      string
	monitorID string
	monitor   chan<- []byte
}

func genID() string {
	return uuid.NewString()
}

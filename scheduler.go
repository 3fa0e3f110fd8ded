package fantasiad

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/mdouchement/logger"
)

// Phase is the state of a Scheduler.
type Phase uint8

const (
	PhaseIdle Phase = iota
	PhaseDebouncing
	PhaseTransmitting
)

func (p Phase) String() string {
	switch p {
	case PhaseDebouncing:
		return "debouncing"
	case PhaseTransmitting:
		return "transmitting"
	default:
		return "idle"
	}
}

func (p Phase) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

func (p *Phase) UnmarshalText(text []byte) error {
	for _, v := range []Phase{PhaseIdle, PhaseDebouncing, PhaseTransmitting} {
		if v.String() == string(text) {
			*p = v
			return nil
		}
	}

	return fmt.Errorf("%q: invalid phase", text)
}

// TransmitFunc sends the remote command reaching s.
type TransmitFunc func(ctx context.Context, s State) error

// A Scheduler owns the state of a fan and coalesces bursts of updates into as few
// transmissions as possible. At most one transmission is in flight at any time.
//
// Every update is resolved exactly once, with the outcome of the first transmission
// started after it was requested.
type Scheduler struct {
	ctx      context.Context
	delay    time.Duration
	transmit TransmitFunc
	log      logger.Logger

	mu      sync.Mutex
	phase   Phase
	state   State
	pending []chan<- error
	changed func()
}

// NewScheduler returns an idle Scheduler. Cancelling ctx does not abort pending
// transmissions, it only carries the logger.
func NewScheduler(ctx context.Context, delay time.Duration, transmit TransmitFunc) *Scheduler {
	return &Scheduler{
		ctx:      context.WithoutCancel(ctx),
		delay:    delay,
		transmit: transmit,
		log:      logger.LogWith(ctx),
	}
}

// OnChange registers fn to be called after every state or phase change.
// fn must not block.
func (s *Scheduler) OnChange(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.changed = fn
}

// Update applies mutate to the state and returns a channel receiving the outcome of
// the transmission covering it. It never blocks.
func (s *Scheduler) Update(mutate func(*State)) <-chan error {
	ch := make(chan error, 1)

	s.mu.Lock()
	mutate(&s.state)
	s.pending = append(s.pending, ch)
	if s.phase == PhaseIdle {
		s.arm()
	}
	changed := s.changed
	s.mu.Unlock()

	if changed != nil {
		changed()
	}
	return ch
}

func (s *Scheduler) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.state
}

func (s *Scheduler) Phase() Phase {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.phase
}

// arm must be called with mu held.
func (s *Scheduler) arm() {
	s.phase = PhaseDebouncing
	time.AfterFunc(s.delay, s.fire)
}

func (s *Scheduler) fire() {
	// Any update request after this point triggers another transmission.
	s.mu.Lock()
	s.phase = PhaseTransmitting
	batch := s.pending
	s.pending = nil
	state := s.state
	changed := s.changed
	s.mu.Unlock()

	if changed != nil {
		changed()
	}

	err := s.transmit(s.ctx, state)
	if err != nil {
		s.log.WithError(err).Errorf("Could not update fan for %d request(s)", len(batch))
	}

	for _, ch := range batch {
		ch <- err
	}

	s.mu.Lock()
	if len(s.pending) > 0 {
		s.arm()
	} else {
		s.phase = PhaseIdle
	}
	s.mu.Unlock()

	if changed != nil {
		changed()
	}
}

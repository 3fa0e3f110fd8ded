package fantasiad

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testDelay = 50 * time.Millisecond

// fakeLink records every transmission and lets tests hold one in flight.
type fakeLink struct {
	mu      sync.Mutex
	states  []State
	started chan State
	release chan error
}

func newFakeLink(blocking bool) *fakeLink {
	l := &fakeLink{started: make(chan State, 10)}
	if blocking {
		l.release = make(chan error)
	}
	return l
}

func (l *fakeLink) transmit(_ context.Context, s State) error {
	l.mu.Lock()
	l.states = append(l.states, s)
	l.mu.Unlock()

	l.started <- s
	if l.release == nil {
		return nil
	}
	return <-l.release
}

func (l *fakeLink) count() int {
	l.mu.Lock()
	defer l.mu.Unlock()

	return len(l.states)
}

func TestSchedulerCoalescing(t *testing.T) {
	link := newFakeLink(false)
	s := NewScheduler(testContext(), testDelay, link.transmit)

	var chs []<-chan error
	chs = append(chs, s.Update(func(st *State) { st.On = true }))
	for _, speed := range []Speed{SpeedLow, SpeedHigh, SpeedMedium, SpeedLow} {
		chs = append(chs, s.Update(func(st *State) { st.Speed = speed }))
	}

	for _, ch := range chs {
		assert.NoError(t, receive(t, ch))
	}

	assert.Equal(t, 1, link.count())
	assert.Equal(t, State{On: true, Speed: SpeedLow}, receive(t, link.started))

	time.Sleep(2 * testDelay)
	assert.Equal(t, 1, link.count())
	assert.Equal(t, PhaseIdle, s.Phase())
}

func TestSchedulerQueuedDuringTransmission(t *testing.T) {
	link := newFakeLink(true)
	s := NewScheduler(testContext(), testDelay, link.transmit)

	first := s.Update(func(st *State) { st.On = true; st.Speed = SpeedLow })
	assert.Equal(t, PhaseDebouncing, s.Phase())

	assert.Equal(t, State{On: true, Speed: SpeedLow}, receive(t, link.started))
	assert.Equal(t, PhaseTransmitting, s.Phase())

	second := s.Update(func(st *State) { st.Speed = SpeedHigh })
	select {
	case <-first:
		require.FailNow(t, "first request resolved before its transmission completed")
	default:
	}

	link.release <- nil
	assert.NoError(t, receive(t, first))

	// The follow-up cycle reflects the state at the time it fires.
	assert.Equal(t, State{On: true, Speed: SpeedHigh}, receive(t, link.started))
	select {
	case <-second:
		require.FailNow(t, "second request resolved before its transmission completed")
	default:
	}

	link.release <- nil
	assert.NoError(t, receive(t, second))
	assert.Equal(t, 2, link.count())
}

func TestSchedulerFailureFanOut(t *testing.T) {
	errBoom := errors.New("boom")
	link := newFakeLink(true)
	s := NewScheduler(testContext(), testDelay, link.transmit)

	chs := []<-chan error{
		s.Update(func(st *State) { st.On = true }),
		s.Update(func(st *State) { st.Speed = SpeedMedium }),
		s.Update(func(st *State) { st.Speed = SpeedHigh }),
	}

	receive(t, link.started)
	link.release <- errBoom

	for _, ch := range chs {
		assert.ErrorIs(t, receive(t, ch), errBoom)
	}

	// No rollback, no retry.
	assert.Equal(t, State{On: true, Speed: SpeedHigh}, s.State())
	time.Sleep(2 * testDelay)
	assert.Equal(t, 1, link.count())
	assert.Equal(t, PhaseIdle, s.Phase())
}

func TestSchedulerSeparateBursts(t *testing.T) {
	link := newFakeLink(false)
	s := NewScheduler(testContext(), testDelay, link.transmit)

	assert.NoError(t, receive(t, s.Update(func(st *State) { st.On = true })))
	assert.NoError(t, receive(t, s.Update(func(st *State) { st.On = false })))

	assert.Equal(t, 2, link.count())
	assert.Equal(t, State{On: true}, receive(t, link.started))
	assert.Equal(t, State{On: false}, receive(t, link.started))
}

func TestSchedulerOnChange(t *testing.T) {
	link := newFakeLink(false)
	s := NewScheduler(testContext(), testDelay, link.transmit)

	var mu sync.Mutex
	var phases []Phase
	s.OnChange(func() {
		mu.Lock()
		phases = append(phases, s.Phase())
		mu.Unlock()
	})

	assert.NoError(t, receive(t, s.Update(func(st *State) { st.On = true })))
	assert.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(phases) == 3
	}, time.Second, 10*time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []Phase{PhaseDebouncing, PhaseTransmitting, PhaseIdle}, phases)
}

func TestPhaseString(t *testing.T) {
	assert.Equal(t, "idle", PhaseIdle.String())
	assert.Equal(t, "debouncing", PhaseDebouncing.String())
	assert.Equal(t, "transmitting", PhaseTransmitting.String())
}

func TestPhaseText(t *testing.T) {
	for _, p := range []Phase{PhaseIdle, PhaseDebouncing, PhaseTransmitting} {
		text, err := p.MarshalText()
		require.NoError(t, err)

		var v Phase
		require.NoError(t, v.UnmarshalText(text))
		assert.Equal(t, p, v)
	}

	var v Phase
	assert.Error(t, v.UnmarshalText([]byte("sleeping")))
}

package fantasiad

import (
	"context"
	"sync"

	"github.com/mdouchement/logger"
	"github.com/thoukydides/fantasiad/fantasia"
)

// A DummyTransmitter should only be used for dev & tests.
type DummyTransmitter struct {
	sync sync.Mutex
	sent []fantasia.Timings
	err  error
	log  logger.Logger
}

func NewDummyTransmitter() *DummyTransmitter {
	return &DummyTransmitter{}
}

func (t *DummyTransmitter) SetLogger(l logger.Logger) {
	t.log = l
}

// SetError makes the next transmissions fail with err, nil restores success.
func (t *DummyTransmitter) SetError(err error) {
	t.sync.Lock()
	defer t.sync.Unlock()

	t.err = err
}

func (t *DummyTransmitter) Addr() string {
	return "x-testing"
}

func (t *DummyTransmitter) Transmit(_ context.Context, tx fantasia.Timings) error {
	t.sync.Lock()
	defer t.sync.Unlock()

	if t.log != nil {
		t.log.Debugf("dummy-transmit: %d pulses", len(tx))
	}

	if t.err != nil {
		return t.err
	}

	t.sent = append(t.sent, tx)
	return nil
}

// Sent returns the transmissions received so far.
func (t *DummyTransmitter) Sent() []fantasia.Timings {
	t.sync.Lock()
	defer t.sync.Unlock()

	return append([]fantasia.Timings(nil), t.sent...)
}

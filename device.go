package fantasiad

import (
	"context"
	"sync"
	"time"

	"github.com/mdouchement/logger"
	"github.com/thoukydides/fantasiad/fantasia"
)

// A Device controls a single fan receiver through its remote protocol.
// The fan state is write-only: it is never read back from the fan.
type Device struct {
	cfg       Fan
	tx        Transmitter
	log       logger.Logger
	scheduler *Scheduler

	txmu sync.Mutex // At most one transmission in flight

	mu      sync.Mutex
	last    *Transmission
	changed func()
}

func NewDevice(ctx context.Context, cfg Fan, tx Transmitter, delay time.Duration) *Device {
	log := logger.LogWith(ctx).WithPrefix("[" + cfg.ID + "]")

	d := &Device{
		cfg: cfg,
		tx:  tx,
		log: log,
	}
	d.scheduler = NewScheduler(logger.WithLogger(ctx, log), delay, d.update)

	log.Infof("New fan %q (%s via %s)", cfg.Name, d.Serial(), describe(tx))
	return d
}

func (d *Device) ID() string {
	return d.cfg.ID
}

func (d *Device) Name() string {
	return d.cfg.Name
}

// Serial is the dip-switch address rendered as a serial number.
func (d *Device) Serial() string {
	return d.cfg.Address.Serial()
}

// OnChange registers fn to be called on every status change. fn must not block.
func (d *Device) OnChange(fn func()) {
	d.mu.Lock()
	d.changed = fn
	d.mu.Unlock()

	d.scheduler.OnChange(fn)
}

// SetPower switches the fan on or off. The returned channel receives the transmission outcome.
func (d *Device) SetPower(on bool) <-chan error {
	d.log.Infof("On = %t", on)

	return d.scheduler.Update(func(s *State) {
		s.On = on
	})
}

// SetSpeed sets the rotation speed in percent, snapped to a supported level.
// The returned channel receives the transmission outcome.
func (d *Device) SetSpeed(percent float64) <-chan error {
	speed := SnapSpeed(percent)
	if float64(speed) == percent {
		d.log.Infof("RotationSpeed = %d", speed)
	} else {
		d.log.Infof("RotationSpeed = %d (snapped from %g)", speed, percent)
	}

	return d.scheduler.Update(func(s *State) {
		s.Speed = speed
	})
}

// Press transmits a single button press without altering the fan state.
// It is meant for buttons not covered by power and speed (light, dim and reverse).
func (d *Device) Press(ctx context.Context, b fantasia.Button) error {
	if !b.Valid() {
		return fantasia.ErrInvalidButton
	}

	d.log.Infof("Pressing %s button", b)
	return d.press(ctx, b)
}

func (d *Device) State() State {
	return d.scheduler.State()
}

func (d *Device) Status() Status {
	d.mu.Lock()
	last := d.last
	d.mu.Unlock()

	return Status{
		ID:     d.cfg.ID,
		Name:   d.cfg.Name,
		Serial: d.Serial(),
		State:  d.scheduler.State(),
		Phase:  d.scheduler.Phase(),
		Last:   last,
	}
}

func (d *Device) update(ctx context.Context, s State) error {
	switch target := s.Target(); target {
	case SpeedOff:
		d.log.Info("Switching fan Off")
	default:
		d.log.Infof("Setting fan speed to %s", target)
	}

	return d.press(ctx, s.Target().Button())
}

func (d *Device) press(ctx context.Context, b fantasia.Button) error {
	d.txmu.Lock()
	defer d.txmu.Unlock()

	word := fantasia.EncodeWord(b, d.cfg.Address)
	d.log.Debugf("Transmit bits: %s (inverted)", word)

	tx := fantasia.EncodeTimings(word.Invert())
	d.log.Debugf("Transmit timings: %s (microseconds)", tx.Code())

	t := &Transmission{
		ID:     genID(),
		At:     time.Now(),
		Button: b,
	}

	err := d.tx.Transmit(ctx, tx)
	if err != nil {
		t.Error = err.Error()
	}

	d.mu.Lock()
	d.last = t
	changed := d.changed
	d.mu.Unlock()

	if changed != nil {
		changed()
	}
	return err
}

func describe(tx Transmitter) string {
	if s, ok := tx.(interface{ Addr() string }); ok {
		return s.Addr()
	}
	if s, ok := tx.(interface{ Port() string }); ok {
		return s.Port()
	}
	return "unknown transmitter"
}

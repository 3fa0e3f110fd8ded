package fantasiad

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/thoukydides/fantasiad/fantasia"
)

func newTestDevice(t *testing.T, address fantasia.Address) (*Device, *DummyTransmitter) {
	t.Helper()

	tx := NewDummyTransmitter()
	cfg := Fan{ID: "bedroom", Name: "Bedroom", Address: address}
	return NewDevice(testContext(), cfg, tx, testDelay), tx
}

func TestDevicePowerThenSpeed(t *testing.T) {
	d, tx := newTestDevice(t, fantasia.Address{})

	on := d.SetPower(true)
	speed := d.SetSpeed(50)

	assert.NoError(t, receive(t, on))
	assert.NoError(t, receive(t, speed))

	sent := tx.Sent()
	require.Len(t, sent, 1)
	assert.Equal(t, fantasia.Press(fantasia.ButtonMedium, fantasia.Address{}), sent[0])

	status := d.Status()
	require.NotNil(t, status.Last)
	assert.Equal(t, fantasia.ButtonMedium, status.Last.Button)
	assert.Empty(t, status.Last.Error)
	assert.Equal(t, State{On: true, Speed: SpeedMedium}, status.State)
}

func TestDeviceSpeedWhileOff(t *testing.T) {
	d, tx := newTestDevice(t, fantasia.Address{true, false, false, true})

	assert.NoError(t, receive(t, d.SetSpeed(100)))

	sent := tx.Sent()
	require.Len(t, sent, 1)
	assert.Equal(t, fantasia.Press(fantasia.ButtonOff, fantasia.Address{true, false, false, true}), sent[0])
}

func TestDeviceSpeedSnapping(t *testing.T) {
	d, tx := newTestDevice(t, fantasia.Address{})

	assert.NoError(t, receive(t, d.SetPower(true)))
	assert.NoError(t, receive(t, d.SetSpeed(80)))
	assert.Equal(t, SpeedHigh, d.State().Speed)

	assert.NoError(t, receive(t, d.SetSpeed(0)))
	assert.Equal(t, SpeedOff, d.State().Speed)
	assert.True(t, d.State().On)

	sent := tx.Sent()
	require.Len(t, sent, 3)
	assert.Equal(t, fantasia.Press(fantasia.ButtonOff, fantasia.Address{}), sent[0])
	assert.Equal(t, fantasia.Press(fantasia.ButtonHigh, fantasia.Address{}), sent[1])
	assert.Equal(t, fantasia.Press(fantasia.ButtonOff, fantasia.Address{}), sent[2])
}

func TestDeviceFailureKeepsState(t *testing.T) {
	errDown := errors.New("daemon down")
	d, tx := newTestDevice(t, fantasia.Address{})
	tx.SetError(errDown)

	on := d.SetPower(true)
	speed := d.SetSpeed(25)
	assert.ErrorIs(t, receive(t, on), errDown)
	assert.ErrorIs(t, receive(t, speed), errDown)
	assert.Equal(t, State{On: true, Speed: SpeedLow}, d.State())

	status := d.Status()
	require.NotNil(t, status.Last)
	assert.Equal(t, "daemon down", status.Last.Error)

	// Next request transmits the then-current state.
	tx.SetError(nil)
	assert.NoError(t, receive(t, d.SetSpeed(50)))
	sent := tx.Sent()
	require.Len(t, sent, 1)
	assert.Equal(t, fantasia.Press(fantasia.ButtonMedium, fantasia.Address{}), sent[0])
}

func TestDevicePress(t *testing.T) {
	d, tx := newTestDevice(t, fantasia.Address{false, true, false, false})

	require.NoError(t, d.Press(context.Background(), fantasia.ButtonLight))
	assert.ErrorIs(t, d.Press(context.Background(), fantasia.Button(6)), fantasia.ErrInvalidButton)

	sent := tx.Sent()
	require.Len(t, sent, 1)
	assert.Equal(t, fantasia.Press(fantasia.ButtonLight, fantasia.Address{false, true, false, false}), sent[0])
	assert.Equal(t, State{}, d.State())
}

func TestDeviceStatus(t *testing.T) {
	d, _ := newTestDevice(t, fantasia.Address{false, true, false, false})

	status := d.Status()
	assert.Equal(t, "bedroom", status.ID)
	assert.Equal(t, "Bedroom", status.Name)
	assert.Equal(t, "off-ON-off-off", status.Serial)
	assert.Equal(t, PhaseIdle, status.Phase)
	assert.Nil(t, status.Last)
}

func TestDeviceOnChange(t *testing.T) {
	d, _ := newTestDevice(t, fantasia.Address{})

	changes := make(chan struct{}, 10)
	d.OnChange(func() {
		select {
		case changes <- struct{}{}:
		default:
		}
	})

	assert.NoError(t, receive(t, d.SetPower(true)))
	assert.Eventually(t, func() bool {
		return len(changes) >= 3
	}, time.Second, 10*time.Millisecond)
}

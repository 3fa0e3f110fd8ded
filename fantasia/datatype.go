package fantasia

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var (
	ErrInvalidAddress = errors.New("invalid address")
	ErrInvalidButton  = errors.New("invalid button")
)

type (
	// Button is the pin index of a remote button.
	Button uint8

	// Address is the dip-switch setting shared by a remote and its receiver.
	Address [AddressLength]bool

	// Word is the logical (inverted) bit sequence of a button press.
	Word []bool

	// Timings is a sequence of mark/space durations in microseconds.
	Timings []int
)

var buttons = map[Button]string{
	ButtonLow:     "low",
	ButtonLight:   "light",
	ButtonDim:     "dim",
	ButtonMedium:  "medium",
	ButtonHigh:    "high",
	ButtonOff:     "off",
	ButtonReverse: "reverse",
}

// Buttons returns all the buttons of the remote ordered by pin.
func Buttons() []Button {
	return []Button{ButtonLow, ButtonLight, ButtonDim, ButtonMedium, ButtonHigh, ButtonOff, ButtonReverse}
}

func (b Button) Valid() bool {
	_, ok := buttons[b]
	return ok
}

func (b Button) String() string {
	if name, ok := buttons[b]; ok {
		return name
	}
	return "button" + strconv.Itoa(int(b))
}

func (b Button) MarshalText() ([]byte, error) {
	if !b.Valid() {
		return nil, fmt.Errorf("%d: %w", b, ErrInvalidButton)
	}
	return []byte(b.String()), nil
}

func (b *Button) UnmarshalText(text []byte) error {
	v, err := ParseButton(string(text))
	if err != nil {
		return err
	}

	*b = v
	return nil
}

// ParseButton resolves a button from its case-insensitive name.
func ParseButton(name string) (Button, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	for b, n := range buttons {
		if n == name {
			return b, nil
		}
	}

	return 0, fmt.Errorf("%s: %w", strconv.Quote(name), ErrInvalidButton)
}

// NewAddress builds an Address from dip-switch positions.
// It fails when the number of switches does not match the remote.
func NewAddress(switches []bool) (Address, error) {
	var a Address
	if len(switches) != AddressLength {
		return a, fmt.Errorf("%d switches, expected %d: %w", len(switches), AddressLength, ErrInvalidAddress)
	}

	copy(a[:], switches)
	return a, nil
}

// Serial renders the address the way switches are printed on the remote, e.g. "off-ON-off-off".
func (a Address) Serial() string {
	sw := make([]string, len(a))
	for i, on := range a {
		sw[i] = "off"
		if on {
			sw[i] = "ON"
		}
	}

	return strings.Join(sw, "-")
}

func (w Word) String() string {
	var sb strings.Builder
	for _, bit := range w {
		if bit {
			sb.WriteByte('1')
		} else {
			sb.WriteByte('0')
		}
	}

	return sb.String()
}

// Code serializes the timings as a pilight raw code.
func (t Timings) Code() string {
	s := make([]string, len(t))
	for i, d := range t {
		s[i] = strconv.Itoa(d)
	}

	return strings.Join(s, " ")
}

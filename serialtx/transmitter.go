package serialtx

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/mdouchement/logger"
	"github.com/thoukydides/fantasiad/fantasia"
	"go.bug.st/serial"
	"go.bug.st/serial/enumerator"
)

var (
	ErrNotFound        = errors.New("transmitter not found/plugged")
	ErrInvalidResponse = errors.New("invalid response")
)

// An Error is returned when the transmitter board refused or failed a command.
type Error struct {
	Message string
	Latency time.Duration
}

func (e *Error) Error() string {
	return fmt.Sprintf("serial transmitter error: %s (+%dms)", e.Message, e.Latency.Milliseconds())
}

// port is the subset of serial.Port used by the Transmitter.
type port interface {
	Read(p []byte) (int, error)
	Write(p []byte) (int, error)
	ResetInputBuffer() error
	ResetOutputBuffer() error
	Close() error
}

// A Transmitter drives an OOK transmitter board attached to a serial line.
// The board accepts `>RAW <durations>` and answers `<OK` or `<ERR <message>`.
type Transmitter struct {
	sync   sync.Mutex
	pname  string
	serial port
	log    logger.Logger
	rbuf   []byte
}

func OpenAuto(vid, pid string) (*Transmitter, error) {
	ports, err := enumerator.GetDetailedPortsList()
	if err != nil {
		return nil, err
	}

	var found *enumerator.PortDetails
	for _, p := range ports {
		if strings.EqualFold(p.VID, vid) && strings.EqualFold(p.PID, pid) {
			found = p
			break
		}
	}
	if found == nil {
		return nil, ErrNotFound
	}

	return Open(found.Name)
}

func Open(name string) (*Transmitter, error) {
	p, err := serial.Open(name, &serial.Mode{
		BaudRate: 115200,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	})
	if err != nil {
		return nil, err
	}

	// A raw code takes less than 200ms on air, the board answers once done.
	if err = p.SetReadTimeout(2 * time.Second); err != nil {
		return nil, err
	}

	return newTransmitter(name, p)
}

func newTransmitter(name string, p port) (*Transmitter, error) {
	t := &Transmitter{
		pname:  name,
		serial: p,
		rbuf:   make([]byte, CommRxBufferLen),
	}

	if err := p.ResetInputBuffer(); err != nil {
		return nil, err
	}

	if err := p.ResetOutputBuffer(); err != nil {
		return nil, err
	}

	return t, nil
}

func (t *Transmitter) SetLogger(l logger.Logger) {
	t.log = l
}

func (t *Transmitter) Port() string {
	return t.pname
}

func (t *Transmitter) Close() error {
	if err := t.serial.ResetInputBuffer(); err != nil {
		return err
	}

	if err := t.serial.ResetOutputBuffer(); err != nil {
		return err
	}

	return t.serial.Close()
}

// Version returns the firmware version reported by the board.
func (t *Transmitter) Version() (string, error) {
	response, err := t.Run(CommandVersion)
	if err != nil {
		return "", fmt.Errorf("version: %w", err)
	}

	return response, nil
}

// Transmit sends timings as a raw code.
func (t *Transmitter) Transmit(_ context.Context, tx fantasia.Timings) error {
	start := time.Now()
	_, err := t.Run(CommandRaw, tx.Code())
	if err != nil {
		return &Error{Message: err.Error(), Latency: time.Since(start)}
	}

	if t.log != nil {
		t.log.Debugf("serial-raw: %s +%dms", ReplyOK, time.Since(start).Milliseconds())
	}
	return nil
}

// Run sends a command and returns the payload of the board's reply.
func (t *Transmitter) Run(command string, args ...string) (string, error) {
	t.sync.Lock()
	defer t.sync.Unlock()

	var wbuf bytes.Buffer
	wbuf.WriteByte(CommRequestCharacter)
	wbuf.WriteString(command)
	for _, arg := range args {
		wbuf.WriteByte(' ')
		wbuf.WriteString(arg)
	}
	wbuf.WriteByte(CommAltEndCharacter)
	wbuf.WriteByte(CommEndCharacter)

	n, err := t.serial.Write(wbuf.Bytes())
	if err != nil {
		return "", fmt.Errorf("write: %w", err)
	}
	if n != wbuf.Len() && t.log != nil {
		t.log.Warnf("Invalid write: %d of %d", n, wbuf.Len())
	}

	//

	line, err := t.readResponse()
	if err != nil {
		return "", err
	}

	//

	status, payload, _ := strings.Cut(string(line[1:]), " ")
	switch status {
	case ReplyOK:
		return payload, nil
	case ReplyError:
		if payload == "" {
			payload = "unknown error"
		}
		return "", errors.New(payload)
	default:
		return "", fmt.Errorf("%q: %w", line, ErrInvalidResponse)
	}
}

// readResponse reads lines until the one carrying the response marker.
// Anything else sent by the board is logging.
func (t *Transmitter) readResponse() ([]byte, error) {
	var buf []byte
	for {
		n, err := t.serial.Read(t.rbuf)
		if err != nil {
			return nil, fmt.Errorf("read: %w", err)
		}
		if n == 0 {
			// go.bug.st/serial returns 0 bytes on read timeout.
			return nil, errors.New("read: timeout")
		}
		buf = append(buf, t.rbuf[:n]...)

		for {
			i := bytes.IndexByte(buf, CommEndCharacter)
			if i < 0 {
				break
			}

			line := bytes.TrimSpace(buf[:i])
			buf = buf[i+1:]
			if len(line) == 0 {
				continue
			}

			if line[0] == CommResponseCharacter {
				return line, nil
			}
			if t.log != nil {
				t.log.Debug(string(line))
			}
		}
	}
}

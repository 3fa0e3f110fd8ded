package fantasia

import "fmt"

// EncodeWord builds the logical word for pressing b on a remote set to address a.
// The first ButtonFieldLength bits select the button, the remaining ones copy the address.
func EncodeWord(b Button, a Address) Word {
	if !b.Valid() {
		panic(fmt.Sprintf("fantasia: %d: %s", b, ErrInvalidButton))
	}

	w := make(Word, ButtonFieldLength+len(a))
	w[b] = true
	copy(w[ButtonFieldLength:], a[:])
	return w
}

// Invert returns the on-air form of the word.
func (w Word) Invert() Word {
	inv := make(Word, len(w))
	for i, bit := range w {
		inv[i] = !bit
	}

	return inv
}

// EncodeFrame converts bits to a single OOK frame: sync, one long-short (1) or short-long (0)
// pair per bit, then the pilot gap.
func EncodeFrame(bits Word) Timings {
	if len(bits) == 0 {
		panic("fantasia: empty word")
	}

	frame := make(Timings, 0, FrameLength(len(bits)))
	frame = append(frame, TxSync)
	for _, bit := range bits {
		if bit {
			frame = append(frame, 2*TxClock, TxClock)
		} else {
			frame = append(frame, TxClock, 2*TxClock)
		}
	}

	return append(frame, TxPilot)
}

// EncodeTimings repeats the frame of bits TxRepeat times.
func EncodeTimings(bits Word) Timings {
	frame := EncodeFrame(bits)

	tx := make(Timings, 0, len(frame)*TxRepeat)
	for range TxRepeat {
		tx = append(tx, frame...)
	}

	return tx
}

// FrameLength is the number of pulses in a frame carrying n bits.
func FrameLength(n int) int {
	return 1 + 2*n + 1
}

// Press returns the full transmission for pressing b on a remote set to address a.
func Press(b Button, a Address) Timings {
	return EncodeTimings(EncodeWord(b, a).Invert())
}

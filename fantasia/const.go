package fantasia

const (
	ButtonLow    Button = 0
	ButtonLight  Button = 1
	ButtonDim    Button = 2
	ButtonMedium Button = 3
	ButtonHigh   Button = 4
	ButtonOff    Button = 5
	// There is no button 6
	ButtonReverse Button = 7 // Viper Plus only
)

const (
	// AddressLength is the number of dip-switches on the remote and the receiver.
	AddressLength = 4

	// ButtonFieldLength is the size of the one-hot button field at the start of a Word.
	ButtonFieldLength = 8
)

// Transmitter timings in microseconds for a 4.4kHz oscillator.
const (
	TxClock  = 225
	TxSync   = TxClock
	TxPilot  = 20 * TxClock // 12 should suffice for the pilot period
	TxRepeat = 5            // 4 should suffice
)

package serialtx

const (
	CommRequestCharacter  = '>'
	CommResponseCharacter = '<'
	CommEndCharacter      = '\n'
	CommAltEndCharacter   = '\r'
	CommRxBufferLen       = 128
)

const (
	CommandRaw     = "RAW"
	CommandVersion = "VER"

	ReplyOK    = "OK"
	ReplyError = "ERR"
)

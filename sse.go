package fantasiad

import "io"

// WriteSSE writes payload as a single event terminated by an empty line.
func WriteSSE(w io.Writer, payload []byte) error {
	_, err := w.Write(append(payload, '\n', '\n'))
	return err
}

func ReadSSE(r io.Reader) ([]byte, error) {
	buf := make([]byte, 64<<10) // 64kB is far enough to read the status of a few fans.

	var n int
	var lf uint8
	var err error
	for {
		if n == len(buf) {
			buf = append(buf, make([]byte, len(buf))...)
		}

		_, err = r.Read(buf[n : n+1])
		if err != nil {
			return buf[:n], err
		}

		if buf[n] == '\n' {
			lf++
		} else {
			lf = 0
		}

		if lf == 2 {
			return buf[:n-1], nil
		}

		n++
	}
}

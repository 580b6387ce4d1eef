package arm

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"time"

	"go.bug.st/serial"
)

// readPoll is how long each blocking read on the port may last before the
// loop rechecks the context. Short enough that cancellation is prompt,
// long enough to avoid spinning.
const readPoll = 50 * time.Millisecond

// SerialChannel talks to the arm firmware over a serial port using
// newline-terminated command tokens and single-line acknowledgements.
type SerialChannel struct {
	port serial.Port
	buf  bytes.Buffer
}

// OpenSerial opens the named serial port at the given baud rate, 8N1.
func OpenSerial(name string, baud int) (*SerialChannel, error) {
	mode := &serial.Mode{
		BaudRate: baud,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	}
	port, err := serial.Open(name, mode)
	if err != nil {
		return nil, fmt.Errorf("open serial port %s: %w", name, err)
	}
	if err := port.SetReadTimeout(readPoll); err != nil {
		port.Close()
		return nil, fmt.Errorf("set read timeout on %s: %w", name, err)
	}
	return &SerialChannel{port: port}, nil
}

// Send writes the command token and reads the acknowledgement line. The
// caller bounds the wait through ctx; transport reads poll so cancellation
// takes effect within readPoll.
func (s *SerialChannel) Send(ctx context.Context, cmd Command) (string, error) {
	if err := cmd.Validate(); err != nil {
		return "", err
	}

	line := cmd.Encode() + "\n"
	if _, err := s.port.Write([]byte(line)); err != nil {
		return "", fmt.Errorf("write %s: %w", cmd.Encode(), err)
	}

	ack, err := s.readLine(ctx)
	if err != nil {
		return "", fmt.Errorf("read ack for %s: %w", cmd.Encode(), err)
	}
	if ack != AckOK {
		return ack, fmt.Errorf("%w: %s replied %q", ErrNak, cmd.Encode(), ack)
	}
	return ack, nil
}

// readLine accumulates bytes from the port until a newline arrives. Bytes
// past the newline stay buffered for the next call.
func (s *SerialChannel) readLine(ctx context.Context) (string, error) {
	chunk := make([]byte, 64)
	for {
		if i := bytes.IndexByte(s.buf.Bytes(), '\n'); i >= 0 {
			line := string(bytes.TrimRight(s.buf.Next(i+1), "\r\n"))
			return line, nil
		}
		if err := ctx.Err(); err != nil {
			return "", err
		}
		n, err := s.port.Read(chunk)
		if n > 0 {
			s.buf.Write(chunk[:n])
		}
		if err != nil && err != io.EOF {
			return "", err
		}
	}
}

// Close releases the serial port.
func (s *SerialChannel) Close() error {
	return s.port.Close()
}

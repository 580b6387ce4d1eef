package arm

import (
	"context"
	"errors"
)

// AckOK is the acknowledgement the arm firmware returns for an accepted
// command.
const AckOK = "OK"

// ErrNak is returned when the arm acknowledges a command with anything other
// than AckOK.
var ErrNak = errors.New("arm rejected command")

// Channel is a transport to the arm hardware. Send transmits one validated
// command and blocks until the arm acknowledges it, the context is done, or
// the transport fails; it returns the raw acknowledgement line.
//
// Implementations are not required to be safe for concurrent Send calls; the
// Dispatcher serializes access.
type Channel interface {
	Send(ctx context.Context, cmd Command) (string, error)
	Close() error
}

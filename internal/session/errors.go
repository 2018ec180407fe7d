package session

import (
	"errors"
	"fmt"
)

var (
	// ErrProtocolMismatch means the two endpoints were configured with
	// different protocol names. This is a build/config error, never retried.
	ErrProtocolMismatch = errors.New("session: protocol mismatch")
	// ErrClosed is returned for any exchange attempted after the session
	// reached Closed.
	ErrClosed = errors.New("session: closed")
	// ErrOutOfTurn is returned for a send that violates the strict
	// request/response alternation.
	ErrOutOfTurn = errors.New("session: out of turn")
	// ErrEnded reports clean termination by the peer.
	ErrEnded = errors.New("session: ended by peer")
	// ErrHandshakeRequired is returned when a step exchange is attempted
	// before the handshake completed.
	ErrHandshakeRequired = errors.New("session: handshake required")
)

// AbnormalError reports a negative-ID abnormal signal from the peer. A
// server receiving one in place of a request treats the client as gone and
// the session closes; a client receiving one as a step response keeps a
// usable session and decides for itself whether the failure is fatal.
type AbnormalError struct {
	Code   int32
	Reason string
}

func (e *AbnormalError) Error() string {
	if e.Reason == "" {
		return fmt.Sprintf("session: abnormal termination from peer (code %d)", e.Code)
	}
	return fmt.Sprintf("session: abnormal termination from peer (code %d): %s", e.Code, e.Reason)
}

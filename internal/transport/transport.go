package transport

import (
	"context"
	"errors"
	"fmt"
)

var (
	ErrUnavailable     = errors.New("transport: unavailable")
	ErrPeerClosed      = errors.New("transport: peer closed")
	ErrClosed          = errors.New("transport: closed")
	ErrMessageTooLarge = errors.New("transport: message too large")
)

// Role names which end of the coupling pair a transport serves.
type Role int

const (
	RoleClient Role = iota + 1
	RoleServer
)

func (r Role) String() string {
	switch r {
	case RoleClient:
		return "client"
	case RoleServer:
		return "server"
	}
	return "unknown"
}

// Mode selects the byte-channel implementation.
type Mode string

const (
	ModeSocket Mode = "socket"
	ModeFile   Mode = "file"
)

// Transport delivers ordered, complete messages between exactly two
// endpoints. Recv blocks until a full message is available.
type Transport interface {
	Send(payload []byte) error
	Recv() ([]byte, error)
	Close() error
}

// Open connects the configured channel for the given role.
//
// Socket mode: the server binds and waits for the one peer connection, the
// client dials with backoff until ctx expires. File mode: address is a base
// path from which the two per-direction file names are derived.
func Open(ctx context.Context, role Role, mode Mode, address string, cfg Config) (Transport, error) {
	switch mode {
	case ModeSocket:
		if role == RoleServer {
			return listenSocket(ctx, address, cfg)
		}
		return dialSocket(ctx, address, cfg)
	case ModeFile:
		return openFilePair(role, address, cfg)
	default:
		return nil, fmt.Errorf("%w: unknown mode %q", ErrUnavailable, mode)
	}
}

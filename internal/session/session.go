package session

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/nicholaskarlsen/mdcouple/internal/protocol"
	"github.com/nicholaskarlsen/mdcouple/internal/transport"
)

// State is one node of the exchange state machine.
type State int

const (
	StateUnopened State = iota
	StateHandshaking
	StateReady
	StateStepPending
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateUnopened:
		return "unopened"
	case StateHandshaking:
		return "handshaking"
	case StateReady:
		return "ready"
	case StateStepPending:
		return "step_pending"
	case StateClosed:
		return "closed"
	}
	return "unknown"
}

// Handshake and abnormal-exit field IDs shared by all protocol variants.
const (
	handshakeProtocolField int32 = 1
	abortReasonField       int32 = 1
)

// Session drives the message exchange over an exclusively owned transport:
// handshake, alternating step exchanges, termination handshake. It is not
// safe for concurrent use; the coupling protocol has exactly one exchange
// in flight by construction.
type Session struct {
	id       string
	tr       transport.Transport
	role     transport.Role
	protocol string
	log      zerolog.Logger

	state     State
	termSent  bool
	termRecvd bool
}

// Open performs the handshake for the given role and returns a Ready
// session. The client sends an ID-0 message naming the protocol variant;
// the server validates it against its own configured name and acks with an
// ID-0 zero-field message. A name mismatch is fatal and never retried.
func Open(tr transport.Transport, role transport.Role, protocolName string, logger zerolog.Logger) (*Session, error) {
	s := &Session{
		id:       uuid.NewString(),
		tr:       tr,
		role:     role,
		protocol: protocolName,
		state:    StateHandshaking,
	}
	s.log = logger.With().
		Str("session_id", s.id).
		Str("role", role.String()).
		Str("protocol", protocolName).
		Logger()

	var err error
	switch role {
	case transport.RoleClient:
		err = s.handshakeClient()
	case transport.RoleServer:
		err = s.handshakeServer()
	default:
		err = fmt.Errorf("session: unknown role %v", role)
	}
	if err != nil {
		s.state = StateClosed
		s.tr.Close()
		return nil, err
	}

	s.state = StateReady
	s.log.Info().Msg("session established")
	return s, nil
}

func (s *Session) handshakeClient() error {
	hello := &protocol.Message{
		ID:     0,
		Fields: []protocol.Field{protocol.NewStringField(handshakeProtocolField, s.protocol)},
	}
	if err := s.write(hello); err != nil {
		return fmt.Errorf("handshake send: %w", err)
	}
	ack, err := s.read()
	if err != nil {
		return fmt.Errorf("handshake recv: %w", err)
	}
	if ack.ID != 0 {
		return fmt.Errorf("%w: unexpected handshake ack id %d", ErrProtocolMismatch, ack.ID)
	}
	return nil
}

func (s *Session) handshakeServer() error {
	hello, err := s.read()
	if err != nil {
		return fmt.Errorf("handshake recv: %w", err)
	}
	if hello.ID != 0 {
		return fmt.Errorf("%w: first message id %d, want 0", ErrProtocolMismatch, hello.ID)
	}
	field, ok := hello.Field(handshakeProtocolField)
	if !ok {
		return fmt.Errorf("%w: handshake carries no protocol name", ErrProtocolMismatch)
	}
	name, err := field.String()
	if err != nil {
		return fmt.Errorf("%w: protocol name field: %v", ErrProtocolMismatch, err)
	}
	if name != s.protocol {
		s.log.Error().
			Str("client_protocol", name).
			Msg("protocol name mismatch")
		return fmt.Errorf("%w: client %q, server %q", ErrProtocolMismatch, name, s.protocol)
	}
	if err := s.write(&protocol.Message{ID: 0}); err != nil {
		return fmt.Errorf("handshake ack: %w", err)
	}
	return nil
}

// Send transmits one step request (client) or step response (server).
// Termination belongs to Close and abnormal exits to Abort; both are
// rejected here so the sequence state stays coherent.
func (s *Session) Send(msg *protocol.Message) error {
	switch s.state {
	case StateClosed:
		return ErrClosed
	case StateUnopened, StateHandshaking:
		return ErrHandshakeRequired
	}
	if msg.IsTermination() {
		return fmt.Errorf("%w: termination is sent by Close", ErrOutOfTurn)
	}

	switch s.role {
	case transport.RoleClient:
		if s.state != StateReady {
			return fmt.Errorf("%w: client send with response outstanding", ErrOutOfTurn)
		}
	case transport.RoleServer:
		if s.state != StateStepPending {
			return fmt.Errorf("%w: server send without pending request", ErrOutOfTurn)
		}
	}

	if err := s.write(msg); err != nil {
		s.fail()
		return err
	}

	if s.role == transport.RoleClient {
		s.state = StateStepPending
	} else {
		s.state = StateReady
	}
	return nil
}

// Recv blocks for the peer's next message.
//
// Clean termination surfaces as ErrEnded after the terminator is echoed
// back and the transport released. A negative-ID message surfaces as
// *AbnormalError: for a client it is a failed step response and the
// session stays usable, for a server it is an abnormal client exit and the
// session closes.
func (s *Session) Recv() (*protocol.Message, error) {
	switch s.state {
	case StateClosed:
		return nil, ErrClosed
	case StateUnopened, StateHandshaking:
		return nil, ErrHandshakeRequired
	}

	switch s.role {
	case transport.RoleClient:
		if s.state != StateStepPending {
			return nil, fmt.Errorf("%w: client recv without outstanding request", ErrOutOfTurn)
		}
	case transport.RoleServer:
		if s.state != StateReady {
			return nil, fmt.Errorf("%w: server recv with response pending", ErrOutOfTurn)
		}
	}

	msg, err := s.read()
	if err != nil {
		s.fail()
		return nil, err
	}

	if msg.IsTermination() {
		s.termRecvd = true
		if !s.termSent {
			// Termination handshake: echo the terminator so the peer's
			// final receive completes and file-mode channels drain.
			if err := s.write(&protocol.Message{ID: 0}); err == nil {
				s.termSent = true
			}
		}
		s.state = StateClosed
		s.tr.Close()
		s.log.Info().Msg("session ended by peer")
		return nil, ErrEnded
	}

	if msg.IsAbnormal() {
		abnormal := &AbnormalError{Code: msg.ID}
		if f, ok := msg.Field(abortReasonField); ok {
			if reason, err := f.String(); err == nil {
				abnormal.Reason = reason
			}
		}
		if s.role == transport.RoleServer {
			// In place of a request this is an abnormal client exit.
			s.fail()
			s.log.Warn().Int32("code", abnormal.Code).Msg("abnormal client exit")
			return nil, abnormal
		}
		// A failed step response; the client decides whether to go on.
		s.state = StateReady
		return nil, abnormal
	}

	if msg.ID == 0 {
		// An ID-0 message with fields is only legal during handshake.
		s.fail()
		return nil, fmt.Errorf("%w: control message after handshake", protocol.ErrMalformed)
	}

	if s.role == transport.RoleClient {
		s.state = StateReady
	} else {
		s.state = StateStepPending
	}
	return msg, nil
}

// Abort signals abnormal termination with a negative code and closes the
// session. The code must be negative.
func (s *Session) Abort(code int32, reason string) error {
	if s.state == StateClosed {
		return ErrClosed
	}
	if code >= 0 {
		return fmt.Errorf("session: abort code must be negative, got %d", code)
	}
	msg := &protocol.Message{ID: code}
	if reason != "" {
		msg.Fields = append(msg.Fields, protocol.NewStringField(abortReasonField, reason))
	}
	err := s.write(msg)
	s.state = StateClosed
	s.tr.Close()
	s.log.Warn().Int32("code", code).Str("reason", reason).Msg("session aborted")
	return err
}

// Close performs the termination handshake and releases the transport. It
// is idempotent; after it returns, every Send and Recv fails with
// ErrClosed.
func (s *Session) Close() error {
	if s.state == StateClosed {
		return nil
	}
	defer func() {
		s.state = StateClosed
		s.tr.Close()
	}()

	if s.state == StateUnopened || s.state == StateHandshaking {
		return nil
	}

	if !s.termSent {
		if err := s.write(&protocol.Message{ID: 0}); err != nil {
			return err
		}
		s.termSent = true
	}
	if !s.termRecvd {
		// Wait for the peer's terminator so both directions observe the
		// full termination handshake before the channel is torn down.
		if payload, err := s.tr.Recv(); err == nil {
			if msg, err := protocol.Decode(payload); err == nil && msg.IsTermination() {
				s.termRecvd = true
			}
		}
	}
	s.log.Info().Msg("session closed")
	return nil
}

// ID returns the session's local identifier used in logs and status.
func (s *Session) ID() string { return s.id }

// State returns the current sequence state.
func (s *Session) State() State { return s.state }

// Protocol returns the configured protocol variant name.
func (s *Session) Protocol() string { return s.protocol }

// Role returns which end of the pair this session drives.
func (s *Session) Role() transport.Role { return s.role }

func (s *Session) write(msg *protocol.Message) error {
	payload, err := protocol.Encode(msg)
	if err != nil {
		return err
	}
	return s.tr.Send(payload)
}

func (s *Session) read() (*protocol.Message, error) {
	payload, err := s.tr.Recv()
	if err != nil {
		return nil, err
	}
	msg, err := protocol.Decode(payload)
	if err != nil {
		// Wire offsets are unrecoverable once a buffer fails to parse.
		return nil, err
	}
	return msg, nil
}

func (s *Session) fail() {
	s.state = StateClosed
	s.tr.Close()
}

// IsFatal reports whether err ends the session for wire-level reasons
// (mismatch, malformed bytes, transport loss) rather than domain-level
// ones. Wire-level failures are configuration or build mismatches between
// the endpoints and must never be retried.
func IsFatal(err error) bool {
	return errors.Is(err, ErrProtocolMismatch) ||
		errors.Is(err, protocol.ErrMalformed) ||
		errors.Is(err, transport.ErrUnavailable) ||
		errors.Is(err, transport.ErrPeerClosed) ||
		errors.Is(err, transport.ErrMessageTooLarge)
}

package transport

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"net"
)

const lengthHeaderLen = 4

// Stream frames messages over any ordered byte channel with a big-endian
// uint32 length prefix, so message boundaries survive partial reads and
// writes on a stream socket. NewStream is also the seam tests use to run a
// full session over net.Pipe.
type Stream struct {
	rwc    io.ReadWriteCloser
	limits Config
	closed bool
}

func NewStream(rwc io.ReadWriteCloser, cfg Config) *Stream {
	return &Stream{rwc: rwc, limits: cfg}
}

func (s *Stream) Send(payload []byte) error {
	if s.closed {
		return ErrClosed
	}
	if uint64(len(payload)) > s.limits.MaxMessageBytes {
		return fmt.Errorf("%w: %d bytes", ErrMessageTooLarge, len(payload))
	}
	var header [lengthHeaderLen]byte
	binary.BigEndian.PutUint32(header[:], uint32(len(payload)))
	if _, err := s.rwc.Write(header[:]); err != nil {
		return classifyStreamErr(err)
	}
	if len(payload) == 0 {
		return nil
	}
	if _, err := s.rwc.Write(payload); err != nil {
		return classifyStreamErr(err)
	}
	return nil
}

func (s *Stream) Recv() ([]byte, error) {
	if s.closed {
		return nil, ErrClosed
	}
	var header [lengthHeaderLen]byte
	if _, err := io.ReadFull(s.rwc, header[:]); err != nil {
		return nil, classifyStreamErr(err)
	}
	length := uint64(binary.BigEndian.Uint32(header[:]))
	if length > s.limits.MaxMessageBytes {
		return nil, fmt.Errorf("%w: %d bytes", ErrMessageTooLarge, length)
	}
	payload := make([]byte, length)
	if length > 0 {
		if _, err := io.ReadFull(s.rwc, payload); err != nil {
			return nil, classifyStreamErr(err)
		}
	}
	return payload, nil
}

func (s *Stream) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	return s.rwc.Close()
}

// classifyStreamErr maps channel loss onto ErrPeerClosed so the session
// layer can treat it as abnormal termination rather than a protocol bug.
func classifyStreamErr(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, io.EOF), errors.Is(err, io.ErrUnexpectedEOF),
		errors.Is(err, io.ErrClosedPipe), errors.Is(err, net.ErrClosed):
		return fmt.Errorf("%w: %v", ErrPeerClosed, err)
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return fmt.Errorf("%w: %v", ErrPeerClosed, err)
	}
	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return fmt.Errorf("%w: %v", ErrPeerClosed, err)
	}
	return err
}

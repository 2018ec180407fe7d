package transport

import (
	"context"
	"fmt"
	"math/rand"
	"net"
	"strings"
	"time"
)

// listenSocket binds the configured address and waits for the one peer
// connection of the session, then stops listening.
func listenSocket(ctx context.Context, address string, cfg Config) (Transport, error) {
	listener, err := net.Listen("tcp", bindAddress(address))
	if err != nil {
		return nil, fmt.Errorf("%w: bind %s: %v", ErrUnavailable, address, err)
	}
	defer listener.Close()

	if cfg.ConnectTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.ConnectTimeout)
		defer cancel()
	}

	type acceptResult struct {
		conn net.Conn
		err  error
	}
	done := make(chan acceptResult, 1)
	go func() {
		conn, err := listener.Accept()
		done <- acceptResult{conn: conn, err: err}
	}()

	select {
	case <-ctx.Done():
		listener.Close()
		<-done
		return nil, fmt.Errorf("%w: accept on %s: %v", ErrUnavailable, address, ctx.Err())
	case res := <-done:
		if res.err != nil {
			return nil, fmt.Errorf("%w: accept on %s: %v", ErrUnavailable, address, res.err)
		}
		return NewStream(res.conn, cfg), nil
	}
}

// dialSocket connects to the server endpoint, retrying with backoff until
// the connect window closes. The server side of a coupling run is routinely
// started a moment after the client, so refusal is retried rather than
// failed on the first attempt.
func dialSocket(ctx context.Context, address string, cfg Config) (Transport, error) {
	if cfg.ConnectTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.ConnectTimeout)
		defer cancel()
	}

	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	dialer := &net.Dialer{}
	var lastErr error
	for attempt := 1; ; attempt++ {
		conn, err := dialer.DialContext(ctx, "tcp", address)
		if err == nil {
			return NewStream(conn, cfg), nil
		}
		lastErr = err
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("%w: dial %s: %v", ErrUnavailable, address, lastErr)
		case <-time.After(nextBackoffDelay(cfg.Backoff, attempt, rng)):
		}
	}
}

// bindAddress translates the wildcard form "*:port" into a Go listen address.
func bindAddress(address string) string {
	if host, port, ok := strings.Cut(address, ":"); ok && host == "*" {
		return ":" + port
	}
	return address
}

// Package client owns the driving side of a coupling run: the typed MD
// step API over a client-role session. The caller owns the step loop and
// all retry policy; this package only builds requests, parses responses,
// and keeps the exchange well-ordered.
package client

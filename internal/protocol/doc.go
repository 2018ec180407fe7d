// Package protocol owns the coupling wire contract and parsing primitives.
//
// Ownership boundary:
// - message/field types and typed payload access
// - binary encode/decode of complete messages
// - md-variant field registry constants
//
// The wire format is schema-less: both endpoints agree on field meaning
// through the protocol name exchanged at handshake, never on the wire.
package protocol

// Package dns implements the DNS wire format: the byte-level codec, the
// label/domain-name model, the resource record catalogue, and the
// in-memory Message (including its EDNS(0) state).
//
// Standards Compliance:
//
//   - RFC 1035: Domain Names - Implementation and Specification (core DNS protocol)
//   - RFC 1982: Serial Number Arithmetic
//   - RFC 3596: DNS Extensions to Support IPv6 (AAAA records)
//   - RFC 6891: Extension Mechanisms for DNS (EDNS, OPT records)
//
// Type-Oriented Design:
//
// Each DNS record type is represented by an explicit type (IPRecord, NameRecord,
// SOARecord, ...) implementing the Record interface, rather than a generic
// struct keyed by an `any` rdata field. Unknown (class, type) pairs fall
// through to OpaqueRecord, which preserves the rdata octets verbatim.
//
// Error Handling:
//
// Errors are returned as the typed values below (UnexpectedEndError,
// InvalidLengthError, UnsupportedFormatError, ...), each of which
// matches ErrDNSError under errors.Is.
package dns

import (
	"errors"
	"fmt"
)

// ErrDNSError is a sentinel error type for DNS protocol violations.
// Wrap this with fmt.Errorf("context: %w", ErrDNSError) to add context.
var ErrDNSError = errors.New("dns wire error")

// UnexpectedEndError is returned when a read would exceed the buffer.
type UnexpectedEndError struct {
	Size  int // total buffer size
	Tried int // offset the read attempted to reach
}

func (e *UnexpectedEndError) Error() string {
	return fmt.Sprintf("dns: unexpected end of message: size=%d tried=%d", e.Size, e.Tried)
}

func (e *UnexpectedEndError) Unwrap() error { return ErrDNSError }

// InvalidLengthError is returned when a type's declared rdlen disagrees
// with what it actually consumed while decoding.
type InvalidLengthError struct {
	Expected int
	Actual   int
}

func (e *InvalidLengthError) Error() string {
	return fmt.Sprintf("dns: invalid rdata length: expected=%d actual=%d", e.Expected, e.Actual)
}

func (e *InvalidLengthError) Unwrap() error { return ErrDNSError }

// UnsupportedFormatError is returned for rejected wire shapes: pointer
// cycles, unknown label-type top bits, multiple OPT records, and the like.
type UnsupportedFormatError struct {
	Reason string
}

func (e *UnsupportedFormatError) Error() string {
	return fmt.Sprintf("dns: unsupported format: %s", e.Reason)
}

func (e *UnsupportedFormatError) Unwrap() error { return ErrDNSError }

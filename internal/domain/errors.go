package domain

import (
	"errors"
	"strconv"
)

// Error taxonomy for the session pipeline. Categories determine how a
// Session reacts: some are fatal and tear the session down, others are
// logged and the session continues.
var (
	// ErrTruncatedFrame is returned by the Framer when a sub-packet's
	// declared length runs past the remaining bytes in a batch.
	ErrTruncatedFrame = errors.New("framing: truncated frame")

	// ErrUnsupportedCompression is returned when a batch names a
	// compression method byte the implementation does not carry.
	ErrUnsupportedCompression = errors.New("compress: unsupported method")

	// ErrEncryptionIntegrity is returned when a decrypted message's
	// trailing checksum does not match. Fatal: the session must close
	// without sending a Disconnect packet.
	ErrEncryptionIntegrity = errors.New("cipher: integrity checksum mismatch")

	// ErrWrongState is returned when a packet arrives while the
	// session is not in a state that permits it.
	ErrWrongState = errors.New("session: packet received in wrong state")

	// ErrChainNotTrusted is returned by chain verification when no
	// link in the identity chain matches the trusted root, and the
	// caller required trust.
	ErrChainNotTrusted = errors.New("auth: identity chain root not trusted")
)

// TransportError wraps a failure from the RakNet collaborator:
// connect failure, timeout, or a socket closed out from under a
// Session. Fatal; the session moves to Disconnected with no
// Disconnect packet sent.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string { return "transport: " + e.Op + ": " + e.Err.Error() }
func (e *TransportError) Unwrap() error { return e.Err }

// DecodeError describes a malformed frame, a truncated varint, or a
// deserialize failure for one specific packet. Per-packet; logged and
// dropped, the session continues.
type DecodeError struct {
	PacketID uint32
	Err      error
}

func (e *DecodeError) Error() string {
	return "decode: packet id " + strconv.FormatUint(uint64(e.PacketID), 10) + ": " + e.Err.Error()
}
func (e *DecodeError) Unwrap() error { return e.Err }

// ProtocolError signals a packet arriving in the wrong session state.
// Fatal; triggers a Disconnect with reason "protocol".
type ProtocolError struct {
	State string
	Event string
}

func (e *ProtocolError) Error() string {
	return "protocol: " + e.Event + " not valid in state " + e.State
}

// AuthError covers JWT signature failures, untrusted chain roots when
// trust is required, missing claims, and unsupported curves. Fatal;
// triggers a Disconnect with reason "version mismatch" for maximum
// client compatibility, then close.
type AuthError struct {
	Reason string
	Err    error
}

func (e *AuthError) Error() string {
	if e.Err != nil {
		return "auth: " + e.Reason + ": " + e.Err.Error()
	}
	return "auth: " + e.Reason
}
func (e *AuthError) Unwrap() error { return e.Err }

// EncryptionError covers checksum mismatch, counter desync, and key
// derivation failure. Fatal; close without a Disconnect packet.
type EncryptionError struct {
	Reason string
	Err    error
}

func (e *EncryptionError) Error() string { return "encryption: " + e.Reason }
func (e *EncryptionError) Unwrap() error { return e.Err }

// IntegrationError wraps a failure propagated from the external Auth
// Broker online path (2FA required, no Xbox profile, etc). Surfaced
// to the caller of Connect; the session is torn down before the
// transport is opened.
type IntegrationError struct {
	Err error
}

func (e *IntegrationError) Error() string { return "integration: " + e.Err.Error() }
func (e *IntegrationError) Unwrap() error { return e.Err }

package domain

import (
	"crypto/ecdh"

	"bedrock/internal/util/memzero"
)

// LoginData is the per-session secrets bag described by the login
// handshake: the ECDH P-384 keypair, the self-signed SPKI encoding of
// the public half (used as the x5u JWT header), and, once the
// handshake completes, the shared secret material derived from it.
//
// The ECDH private key never leaves the Session that owns it.
type LoginData struct {
	ECDHPrivate *ecdh.PrivateKey
	ECDHPublic  *ecdh.PublicKey

	// SelfSignedX5U is the base64 SPKI DER encoding of ECDHPublic,
	// carried as the x5u header of self-signed JWTs this session mints.
	SelfSignedX5U string

	// Populated once the handshake completes.
	SharedSecret []byte // 48 bytes, raw ECDH output
	SecretHash   []byte // 32 bytes, SHA-256(salt || shared secret)
	IV           []byte // 16 bytes, SecretHash[:16]
}

// Zero clears secret material. Call on session teardown.
func (l *LoginData) Zero() {
	memzero.Zero(l.SharedSecret)
	memzero.Zero(l.SecretHash)
	memzero.Zero(l.IV)
}

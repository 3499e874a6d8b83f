// Package cipher implements the Encryptor: AES-256-CFB8 per direction
// with independent monotonic counters and a SHA-256 checksum trailer,
// keyed by the handshake in internal/session (ECDH from internal/keys).
package cipher

import (
	"crypto/aes"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/binary"

	"bedrock/internal/domain"
	"bedrock/internal/util/memzero"
)

// Salt is the fixed ASCII bytes mixed into the key-derivation hash to
// bind the symmetric key to this protocol.
var Salt = []byte("\xf0\x9f\xa7\x82") // U+1F9C2, the "salt" emoji, UTF-8

// Encryptor holds the one cipher state a Session owns once encryption
// is enabled: independent send/recv counters over the same key and
// IV-derived stream.
type Encryptor struct {
	key  []byte
	enc  *cfb8
	dec  *cfb8
	send uint64
	recv uint64
}

// New builds an Encryptor from the 32-byte secret hash and 16-byte IV
// derived by the handshake (spec.md §4.5/§4.7).
func New(key, iv []byte) (*Encryptor, error) {
	if len(key) != 32 {
		return nil, &domain.EncryptionError{Reason: "key must be 32 bytes"}
	}
	if len(iv) != 16 {
		return nil, &domain.EncryptionError{Reason: "iv must be 16 bytes"}
	}
	encBlock, err := aes.NewCipher(key)
	if err != nil {
		return nil, &domain.EncryptionError{Reason: "aes init", Err: err}
	}
	decBlock, err := aes.NewCipher(key)
	if err != nil {
		return nil, &domain.EncryptionError{Reason: "aes init", Err: err}
	}
	k := make([]byte, len(key))
	copy(k, key)
	return &Encryptor{
		key: k,
		enc: newCFB8(encBlock, iv, false),
		dec: newCFB8(decBlock, iv, true),
	}, nil
}

// Encrypt appends an 8-byte checksum to plaintext, encrypts the
// result under the evolving CFB8 stream, and advances the send
// counter. The IV continues the same stream across calls by design;
// there is no per-message reset.
func (e *Encryptor) Encrypt(plaintext []byte) []byte {
	checksum := e.checksum(e.send, plaintext)
	payload := make([]byte, len(plaintext)+len(checksum))
	copy(payload, plaintext)
	copy(payload[len(plaintext):], checksum)

	ct := make([]byte, len(payload))
	e.enc.XORKeyStream(ct, payload)
	e.send++
	return ct
}

// Decrypt reverses Encrypt: decrypt, split off the trailing checksum,
// recompute using the receive counter, and compare in constant time.
// A mismatch is fatal: domain.ErrEncryptionIntegrity, and the caller
// must terminate the session without sending a Disconnect packet.
func (e *Encryptor) Decrypt(ciphertext []byte) ([]byte, error) {
	if len(ciphertext) < 8 {
		return nil, domain.ErrEncryptionIntegrity
	}
	pt := make([]byte, len(ciphertext))
	e.dec.XORKeyStream(pt, ciphertext)

	plaintext := pt[:len(pt)-8]
	gotChecksum := pt[len(pt)-8:]
	wantChecksum := e.checksum(e.recv, plaintext)

	if subtle.ConstantTimeCompare(gotChecksum, wantChecksum) != 1 {
		return nil, domain.ErrEncryptionIntegrity
	}
	e.recv++
	return plaintext, nil
}

func (e *Encryptor) checksum(counter uint64, plaintext []byte) []byte {
	var counterLE [8]byte
	binary.LittleEndian.PutUint64(counterLE[:], counter)

	h := sha256.New()
	h.Write(counterLE[:])
	h.Write(plaintext)
	h.Write(e.key)
	sum := h.Sum(nil)
	return sum[:8]
}

// Counters reports the current send/recv counter pair, mainly for
// tests asserting monotonic growth.
func (e *Encryptor) Counters() domain.CounterPair {
	return domain.CounterPair{Send: e.send, Recv: e.recv}
}

// Close zeroizes key material. Call when the owning Session leaves
// the Encrypted family of states.
func (e *Encryptor) Close() {
	memzero.Zero(e.key)
}

package store

import (
	"crypto/rand"
	"encoding/json"
	"errors"
	"fmt"

	"golang.org/x/crypto/chacha20poly1305"
	"golang.org/x/crypto/scrypt"
)

// envelopeFormatVersion is the current on-disk blob format version.
const envelopeFormatVersion = 1

// errWrongKey is returned when the configured key is wrong or the
// ciphertext has been modified or corrupted.
var errWrongKey = errors.New("store: wrong key or corrupted cache entry")

// envelope is the on-disk JSON structure holding ciphertext and KDF
// parameters for an at-rest-encrypted cache entry.
type envelope struct {
	V      int    `json:"v"`
	Salt   []byte `json:"salt"`
	N      int    `json:"scrypt_n"`
	R      int    `json:"scrypt_r"`
	P      int    `json:"scrypt_p"`
	Cipher []byte `json:"cipher"`
}

func scryptParamsDefault() (N, r, p int) { return 1 << 15, 8, 1 }

// sealEnvelope derives a key from key via scrypt and seals raw into a
// JSON blob with chacha20poly1305, salt bound as AEAD additional data.
func sealEnvelope(key string, raw []byte) ([]byte, error) {
	N, r, p := scryptParamsDefault()
	var salt [16]byte
	if _, err := rand.Read(salt[:]); err != nil {
		return nil, err
	}
	derived, err := scrypt.Key([]byte(key), salt[:], N, r, p, chacha20poly1305.KeySize)
	if err != nil {
		return nil, err
	}
	aead, err := chacha20poly1305.New(derived)
	if err != nil {
		return nil, err
	}
	var nonce [12]byte // zero nonce; the per-blob salt keys derivation uniquely
	ct := aead.Seal(nil, nonce[:], raw, salt[:])

	return json.Marshal(envelope{
		V:      envelopeFormatVersion,
		Salt:   salt[:],
		N:      N,
		R:      r,
		P:      p,
		Cipher: ct,
	})
}

// openEnvelope reverses sealEnvelope.
func openEnvelope(key string, blob []byte) ([]byte, error) {
	var env envelope
	if err := json.Unmarshal(blob, &env); err != nil {
		return nil, err
	}
	if env.V > envelopeFormatVersion {
		return nil, fmt.Errorf("store: unsupported cache envelope version %d", env.V)
	}
	derived, err := scrypt.Key([]byte(key), env.Salt, env.N, env.R, env.P, chacha20poly1305.KeySize)
	if err != nil {
		return nil, err
	}
	aead, err := chacha20poly1305.New(derived)
	if err != nil {
		return nil, err
	}
	var nonce [12]byte
	pt, err := aead.Open(nil, nonce[:], env.Cipher, env.Salt)
	if err != nil {
		return nil, errWrongKey
	}
	return pt, nil
}

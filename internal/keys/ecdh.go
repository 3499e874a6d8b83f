// Package keys implements the Key & JWT services: secp384r1 ECDH
// keypair generation and shared-secret computation, and ES384 JWT
// sign/verify with the chain-of-trust rules the login handshake needs.
package keys

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/x509"
	"encoding/base64"
	"fmt"
)

// GenerateKeypair returns a fresh NIST P-384 ECDSA keypair. The same
// key doubles as an ECDH keypair via (*ecdsa.PrivateKey).ECDH(), which
// is how the shared secret in §4.5/§4.7 is computed.
func GenerateKeypair() (*ecdsa.PrivateKey, error) {
	return ecdsa.GenerateKey(elliptic.P384(), rand.Reader)
}

// EncodeSPKI returns the base64 standard encoding of the public key's
// SubjectPublicKeyInfo DER form — the value carried as a JWT's x5u
// header.
func EncodeSPKI(pub *ecdsa.PublicKey) (string, error) {
	der, err := x509.MarshalPKIXPublicKey(pub)
	if err != nil {
		return "", fmt.Errorf("marshal spki: %w", err)
	}
	return base64.StdEncoding.EncodeToString(der), nil
}

// DecodeSPKI parses a base64 SPKI DER string (an x5u value) into an
// ECDSA public key. Returns an error if the key is not on a NIST
// curve (the handshake only ever carries P-384 keys).
func DecodeSPKI(x5u string) (*ecdsa.PublicKey, error) {
	der, err := base64.StdEncoding.DecodeString(x5u)
	if err != nil {
		return nil, fmt.Errorf("decode x5u: %w", err)
	}
	pub, err := x509.ParsePKIXPublicKey(der)
	if err != nil {
		return nil, fmt.Errorf("parse spki: %w", err)
	}
	ecPub, ok := pub.(*ecdsa.PublicKey)
	if !ok {
		return nil, fmt.Errorf("x5u key is %T, want *ecdsa.PublicKey", pub)
	}
	return ecPub, nil
}

// DH computes the raw ECDH shared secret between priv and peerPub,
// both on P-384. Accepts peer keys normalized from either SPKI DER or
// a JWK {x,y} pair by the caller before invoking DH.
func DH(priv *ecdsa.PrivateKey, peerPub *ecdsa.PublicKey) ([]byte, error) {
	privECDH, err := priv.ECDH()
	if err != nil {
		return nil, fmt.Errorf("private key to ecdh: %w", err)
	}
	pubECDH, err := peerPub.ECDH()
	if err != nil {
		return nil, fmt.Errorf("public key to ecdh: %w", err)
	}
	secret, err := privECDH.ECDH(pubECDH)
	if err != nil {
		return nil, fmt.Errorf("ecdh: %w", err)
	}
	return secret, nil
}

// NormalizeCurveName maps the curve aliases a peer's JWK might carry
// ("p-384", "P-384", "secp384r1") onto the canonical name used
// internally.
func NormalizeCurveName(name string) string {
	switch name {
	case "p-384", "P-384", "secp384r1", "SECP384R1":
		return "P-384"
	default:
		return name
	}
}

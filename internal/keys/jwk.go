package keys

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"encoding/base64"
	"fmt"
	"math/big"
)

// JWK is the subset of a JSON Web Key this service needs to accept a
// peer's public key inlined in a JOSE header instead of an x5u.
type JWK struct {
	Curve string `json:"crv"`
	X     string `json:"x"`
	Y     string `json:"y"`
}

// PublicKey decodes the JWK's base64url x/y coordinates into an ECDSA
// public key on P-384. Returns an error for any other curve.
func (j JWK) PublicKey() (*ecdsa.PublicKey, error) {
	if NormalizeCurveName(j.Curve) != "P-384" {
		return nil, fmt.Errorf("jwk: unsupported curve %q", j.Curve)
	}
	x, err := base64.RawURLEncoding.DecodeString(j.X)
	if err != nil {
		return nil, fmt.Errorf("jwk: decode x: %w", err)
	}
	y, err := base64.RawURLEncoding.DecodeString(j.Y)
	if err != nil {
		return nil, fmt.Errorf("jwk: decode y: %w", err)
	}
	return &ecdsa.PublicKey{
		Curve: elliptic.P384(),
		X:     new(big.Int).SetBytes(x),
		Y:     new(big.Int).SetBytes(y),
	}, nil
}

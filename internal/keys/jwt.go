package keys

import (
	"crypto/ecdsa"
	"fmt"

	"github.com/golang-jwt/jwt/v5"
)

// TrustedRootX5U is the fixed Mojang public key compared against
// during chain verification. A chain containing it at any position is
// marked verified; real deployments would seed this with Mojang's
// published root. The toolkit ships a clearly-marked placeholder so
// offline/self-signed chains (which never contain it) remain
// parseable with verified=false, exactly as spec.md requires.
var TrustedRootX5U = "REPLACE_WITH_MOJANG_ROOT_SPKI_BASE64"

// Claims is the minimal claim set the handshake reads out of either
// chain link: the identity JWT's extraData and the linking
// identityPublicKey used to validate the next token.
type Claims struct {
	jwt.RegisteredClaims
	ExtraData struct {
		DisplayName string `json:"displayName"`
		Identity    string `json:"identity"`
		XUID        string `json:"XUID"`
		TitleID     string `json:"titleId"`
	} `json:"extraData"`
	IdentityPublicKey    string `json:"identityPublicKey"`
	CertificateAuthority bool   `json:"certificateAuthority,omitempty"`
}

// Sign produces an ES384 JWT with the given x5u header and no typ
// header, signed by priv. claims may be any jwt.Claims implementation;
// the identity chain uses Claims below, the user chain signs its
// Payload fields directly as jwt.MapClaims.
func Sign(priv *ecdsa.PrivateKey, x5u string, claims jwt.Claims) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodES384, claims)
	delete(token.Header, "typ")
	token.Header["x5u"] = x5u
	return token.SignedString(priv)
}

// VerifyLink verifies a single token's ES384 signature using the
// public key embedded in its own x5u header (the self-signed scheme
// every chain link uses) and returns its parsed claims plus that x5u.
func VerifyLink(tokenString string) (Claims, string, error) {
	var claims Claims
	x5u, err := verifyWithHeaderX5U(tokenString, &claims)
	if err != nil {
		return Claims{}, "", err
	}
	return claims, x5u, nil
}

// HandshakeClaims is the payload carried by a ServerToClientHandshake
// token: the salt used in the shared-secret derivation, and a copy of
// the signer's own x5u (redundant with the header, but that is what a
// real handshake token carries).
type HandshakeClaims struct {
	jwt.RegisteredClaims
	Salt        string `json:"salt"`
	SignedToken string `json:"signedToken"`
}

// VerifyHandshake verifies a ServerToClientHandshake token and returns
// its claims plus the x5u carried in the header (the signer's ECDH
// public key).
func VerifyHandshake(tokenString string) (HandshakeClaims, string, error) {
	var claims HandshakeClaims
	x5u, err := verifyWithHeaderX5U(tokenString, &claims)
	if err != nil {
		return HandshakeClaims{}, "", err
	}
	return claims, x5u, nil
}

func verifyWithHeaderX5U(tokenString string, claims jwt.Claims) (string, error) {
	var x5u string
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		v, ok := t.Header["x5u"].(string)
		if !ok {
			return nil, fmt.Errorf("jwt: missing x5u header")
		}
		x5u = v
		return DecodeSPKI(v)
	}, jwt.WithValidMethods([]string{"ES384"}))
	if err != nil {
		return "", fmt.Errorf("jwt: verify: %w", err)
	}
	if !token.Valid {
		return "", fmt.Errorf("jwt: invalid token")
	}
	return x5u, nil
}

// VerifyMapClaims verifies a token signed against a known public key
// (rather than the self-signed x5u-header scheme) and returns its raw
// claim set. The user chain's Payload fields are signed this way, so
// a server that already knows the client's identity public key can
// recover them without re-deriving trust from the token itself.
func VerifyMapClaims(tokenString string, pubKeyX5U string) (jwt.MapClaims, error) {
	pub, err := DecodeSPKI(pubKeyX5U)
	if err != nil {
		return nil, fmt.Errorf("jwt: decode pubkey: %w", err)
	}
	var claims jwt.MapClaims
	token, err := jwt.ParseWithClaims(tokenString, &claims, func(t *jwt.Token) (any, error) {
		return pub, nil
	}, jwt.WithValidMethods([]string{"ES384"}))
	if err != nil {
		return nil, fmt.Errorf("jwt: verify: %w", err)
	}
	if !token.Valid {
		return nil, fmt.Errorf("jwt: invalid token")
	}
	return claims, nil
}

// ChainResult is the outcome of verifying an identity chain.
type ChainResult struct {
	Verified bool
	Claims   []Claims
}

// VerifyChain walks an ordered list of JWTs, checking that the x5u of
// token i+1 equals the identityPublicKey claim of the verified payload
// of token i, and that each token's own signature checks out against
// its own x5u. A chain containing TrustedRootX5U at any link's x5u is
// marked Verified; otherwise it is still fully parsed but Verified is
// false (offline/self-signed chains never match the trusted root).
func VerifyChain(tokens []string) (ChainResult, error) {
	if len(tokens) == 0 {
		return ChainResult{}, fmt.Errorf("jwt: empty chain")
	}

	result := ChainResult{Claims: make([]Claims, 0, len(tokens))}
	var prevClaims *Claims

	for i, tok := range tokens {
		claims, x5u, err := VerifyLink(tok)
		if err != nil {
			return ChainResult{}, fmt.Errorf("jwt: chain link %d: %w", i, err)
		}
		if x5u == TrustedRootX5U {
			result.Verified = true
		}
		if prevClaims != nil && prevClaims.IdentityPublicKey != x5u {
			return ChainResult{}, fmt.Errorf("jwt: chain link %d: x5u does not match prior identityPublicKey", i)
		}
		result.Claims = append(result.Claims, claims)
		prevClaims = &result.Claims[len(result.Claims)-1]
	}
	return result, nil
}

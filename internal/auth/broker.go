// Package auth implements the Auth Broker: producing identity and
// user JWT chains either offline (self-signed) or from an external
// identity provider.
package auth

import (
	"context"
	"crypto/ecdsa"
	"encoding/json"
	"fmt"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"bedrock/internal/domain"
	"bedrock/internal/keys"
)

// offlineNamespace is the fixed UUID namespace offline profiles derive
// their UUIDv3 from.
var offlineNamespace = uuid.MustParse("6ba7b811-9dad-11d1-80b4-00c04fd430c8")

// titleID is the fixed client title id self-signed identity tokens
// advertise.
const titleID = "89692877"

// OfflineUUID returns the deterministic UUIDv3 an offline profile for
// name resolves to, exported so callers (and tests) can check a
// profile without re-deriving the namespace.
func OfflineUUID(name string) string {
	return uuid.NewMD5(offlineNamespace, []byte(name)).String()
}

// Credentials is the opaque input to the online path; the concrete
// Xbox Live OAuth flow is out of scope and lives behind OnlineProvider.
type Credentials struct {
	Token string
}

// OnlineProvider is the external collaborator the online path defers
// to. It is a black box to this package: it returns already-signed
// identity-chain JWTs from an upstream authority.
type OnlineProvider interface {
	Authenticate(ctx context.Context, creds Credentials) (identityChain []string, profile domain.Profile, err error)
}

// Broker implements both the offline and online Auth Broker paths.
type Broker struct {
	online OnlineProvider
}

// New builds a Broker. online may be nil if only the offline path is
// used.
func New(online OnlineProvider) *Broker {
	return &Broker{online: online}
}

// CreateOffline synthesizes a deterministic profile and signs both the
// identity chain and the user chain with the session's own key.
func (b *Broker) CreateOffline(sessionKey *ecdsa.PrivateKey, x5u string, payload domain.Payload, name string) (domain.IdentityChain, domain.UserChain, domain.Profile, error) {
	profile := domain.Profile{
		DisplayName: name,
		UUID:        uuid.NewMD5(offlineNamespace, []byte(name)).String(),
		XUID:        "0",
	}

	var identityClaims keys.Claims
	identityClaims.ExtraData.DisplayName = profile.DisplayName
	identityClaims.ExtraData.Identity = profile.UUID
	identityClaims.ExtraData.XUID = profile.XUID
	identityClaims.ExtraData.TitleID = titleID
	identityClaims.CertificateAuthority = true
	identityClaims.IdentityPublicKey = x5u

	identityTok, err := keys.Sign(sessionKey, x5u, identityClaims)
	if err != nil {
		return domain.IdentityChain{}, domain.UserChain{}, domain.Profile{}, &domain.AuthError{Reason: "sign identity jwt", Err: err}
	}

	userTok, err := signUserChain(sessionKey, x5u, payload)
	if err != nil {
		return domain.IdentityChain{}, domain.UserChain{}, domain.Profile{}, err
	}

	return domain.IdentityChain{Tokens: []string{identityTok}}, domain.UserChain{Token: userTok}, profile, nil
}

// CreateOnline defers entirely to the configured OnlineProvider. The
// core only verifies the returned chain with internal/keys and
// extracts the innermost profile; it never speaks to Xbox Live itself.
func (b *Broker) CreateOnline(ctx context.Context, creds Credentials, sessionKey *ecdsa.PrivateKey, x5u string, payload domain.Payload) (domain.IdentityChain, domain.UserChain, domain.Profile, error) {
	if b.online == nil {
		return domain.IdentityChain{}, domain.UserChain{}, domain.Profile{}, &domain.IntegrationError{Err: fmt.Errorf("auth: no online provider configured")}
	}
	chain, profile, err := b.online.Authenticate(ctx, creds)
	if err != nil {
		return domain.IdentityChain{}, domain.UserChain{}, domain.Profile{}, &domain.IntegrationError{Err: err}
	}
	userTok, err := signUserChain(sessionKey, x5u, payload)
	if err != nil {
		return domain.IdentityChain{}, domain.UserChain{}, domain.Profile{}, err
	}
	return domain.IdentityChain{Tokens: chain}, domain.UserChain{Token: userTok}, profile, nil
}

// signUserChain signs the user-chain JWT: the Payload record carried
// directly as claims, with no "iat"/"exp" (noTimestamp=true in the
// original source's terms — the user chain never expires on its own).
func signUserChain(sessionKey *ecdsa.PrivateKey, x5u string, payload domain.Payload) (string, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return "", &domain.AuthError{Reason: "marshal payload", Err: err}
	}
	var claims jwt.MapClaims
	if err := json.Unmarshal(raw, &claims); err != nil {
		return "", &domain.AuthError{Reason: "unmarshal payload", Err: err}
	}

	tok, err := keys.Sign(sessionKey, x5u, claims)
	if err != nil {
		return "", &domain.AuthError{Reason: "sign user jwt", Err: err}
	}
	return tok, nil
}

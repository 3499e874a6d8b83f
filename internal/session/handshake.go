package session

import (
	"crypto/ecdsa"
	"encoding/base64"
	"encoding/json"

	"bedrock/internal/catalog"
	"bedrock/internal/cipher"
	"bedrock/internal/compress"
	"bedrock/internal/domain"
	"bedrock/internal/keys"
)

// DefaultChunkRadius is the radius a client requests once StartGame
// arrives, standing in for a real client's view-distance setting.
const DefaultChunkRadius = 8

func methodFromWire(v uint16) compress.Method {
	switch v {
	case 1:
		return compress.MethodSnappy
	case 0xFFFF:
		return compress.MethodNone
	default:
		return compress.MethodZlib
	}
}

func wireFromMethod(m compress.Method) uint16 {
	switch m {
	case compress.MethodSnappy:
		return 1
	case compress.MethodNone:
		return 0xFFFF
	default:
		return 0
	}
}

func (s *Session) protoErr(event string) error {
	return &domain.ProtocolError{State: s.State().String(), Event: event}
}

// clientBegin kicks off the handshake from CONNECTING: send
// RequestNetworkSettings and move to AWAIT_NETSET.
func (s *Session) clientBegin() error {
	s.setState(domain.StateAwaitNetworkSettings)
	return s.Send(catalog.RequestNetworkSettings{ClientProtocol: ClientProtocol})
}

// handle advances the state machine for one decoded packet, ahead of
// the packet also reaching ordinary Dispatcher listeners.
func (s *Session) handle(name string, pk domain.Packet) error {
	if s.cfg.Role == domain.RoleServer {
		return s.serverHandle(name, pk)
	}
	return s.clientHandle(name, pk)
}

func (s *Session) clientHandle(name string, pk domain.Packet) error {
	switch name {
	case "NetworkSettings":
		if s.State() != domain.StateAwaitNetworkSettings {
			return s.protoErr(name)
		}
		ns := pk.(catalog.NetworkSettings)
		s.mu.Lock()
		s.compressor = compress.New(methodFromWire(ns.CompressionMethod), int(ns.CompressionThreshold))
		s.compEnable = true
		s.mu.Unlock()
		s.setState(domain.StateAwaitLogin)
		return s.sendLogin()

	case "ServerToClientHandshake":
		if s.State() != domain.StateAwaitHandshake {
			return s.protoErr(name)
		}
		hs := pk.(catalog.ServerToClientHandshake)
		peerX5U, salt, err := parseHandshakeToken(hs.Token)
		if err != nil {
			return err
		}
		if err := s.enableEncryption(peerX5U, salt); err != nil {
			return err
		}
		s.setState(domain.StateEncrypted)
		s.mu.Lock()
		s.encEnabled = true
		s.mu.Unlock()
		return s.Send(catalog.ClientToServerHandshake{})

	case "PlayStatus":
		ps := pk.(catalog.PlayStatus)
		switch ps.Status {
		case catalog.PlayStatusLoginSuccess:
			if s.State() == domain.StateEncrypted {
				s.setState(domain.StateLoggedIn)
			}
		case catalog.PlayStatusPlayerSpawn:
			s.setState(domain.StateSpawned)
			if s.cfg.SuppressAutoResponses {
				return nil
			}
			if err := s.Send(catalog.SetLocalPlayerAsInitialized{}); err != nil {
				return err
			}
			return s.Send(catalog.ServerboundLoadingScreen{})
		}
		return nil

	case "ResourcePacksInfo", "ResourcePackStack":
		if s.cfg.SuppressAutoResponses {
			return nil
		}
		return s.Send(catalog.ResourcePackClientResponse{Status: 1})

	case "StartGame":
		s.setState(domain.StateInGame)
		if s.cfg.SuppressAutoResponses {
			return nil
		}
		return s.Send(catalog.RequestChunkRadius{Radius: DefaultChunkRadius})
	}
	return nil
}

// sendLogin builds the identity/user chains through the Auth Broker
// and sends the Login packet, moving to AWAIT_HANDSHAKE.
func (s *Session) sendLogin() error {
	identity, user, profile, err := s.cfg.Broker.CreateOffline(s.sessionKey, s.login.SelfSignedX5U, s.cfg.Payload, s.cfg.OfflineName)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.profile = profile
	s.mu.Unlock()
	s.setState(domain.StateAwaitHandshake)
	return s.Send(catalog.Login{
		ClientProtocol: ClientProtocol,
		IdentityChain:  identity.Tokens,
		UserChain:      user.Token,
	})
}

func (s *Session) serverHandle(name string, pk domain.Packet) error {
	switch name {
	case "RequestNetworkSettings":
		if s.State() != domain.StateAwaitNetworkSettings {
			return s.protoErr(name)
		}
		threshold := s.cfg.CompressionThreshold
		if threshold == 0 {
			threshold = DefaultCompressionThreshold
		}
		method := s.cfg.CompressionMethod
		s.setState(domain.StateAwaitLogin)
		// NetworkSettings itself travels uncompressed: both sides only
		// start deflating batches once this packet has been exchanged.
		if err := s.Send(catalog.NetworkSettings{
			CompressionThreshold: uint16(threshold),
			CompressionMethod:    wireFromMethod(method),
		}); err != nil {
			return err
		}
		s.mu.Lock()
		s.compressor = compress.New(method, threshold)
		s.compEnable = true
		s.mu.Unlock()
		return nil

	case "Login":
		if s.State() != domain.StateAwaitLogin {
			return s.protoErr(name)
		}
		login := pk.(catalog.Login)
		return s.acceptLogin(login)

	case "ClientToServerHandshake":
		if s.State() != domain.StateAwaitHandshake {
			return s.protoErr(name)
		}
		s.setState(domain.StateLoggedIn)
		if s.cfg.SuppressAutoResponses {
			return nil
		}
		if err := s.Send(catalog.PlayStatus{Status: catalog.PlayStatusLoginSuccess}); err != nil {
			return err
		}
		return s.Send(catalog.ResourcePacksInfo{MustAccept: false})

	case "ResourcePackClientResponse":
		if s.State() != domain.StateLoggedIn {
			return nil
		}
		if s.cfg.SuppressAutoResponses {
			// A bridged downstream session never runs its own resource-pack
			// dance: the real content comes from the upstream session
			// instead. Only the InGame transition still matters here, since
			// RequestChunkRadius below is gated on it.
			s.setState(domain.StateInGame)
			return nil
		}
		s.mu.Lock()
		s.rpStage++
		stage := s.rpStage
		s.mu.Unlock()
		if stage == 1 {
			return s.Send(catalog.ResourcePackStack{MustAccept: false})
		}
		s.setState(domain.StateInGame)
		return s.Send(catalog.StartGame{WorldName: "world"})

	case "RequestChunkRadius":
		if s.State() != domain.StateInGame {
			return nil
		}
		if s.cfg.SuppressAutoResponses {
			return nil
		}
		return s.Send(catalog.PlayStatus{Status: catalog.PlayStatusPlayerSpawn})
	}
	return nil
}

// acceptLogin verifies the identity chain, derives the shared secret
// against the client's identityPublicKey, and sends the signed
// ServerToClientHandshake token.
func (s *Session) acceptLogin(login catalog.Login) error {
	result, err := keys.VerifyChain(login.IdentityChain)
	if err != nil {
		return &domain.AuthError{Reason: "verify identity chain", Err: err}
	}
	last := result.Claims[len(result.Claims)-1]
	s.mu.Lock()
	s.profile = domain.Profile{
		DisplayName: last.ExtraData.DisplayName,
		UUID:        last.ExtraData.Identity,
		XUID:        last.ExtraData.XUID,
	}
	s.mu.Unlock()

	clientX5U := last.IdentityPublicKey
	if clientX5U == "" {
		return &domain.AuthError{Reason: "identity chain missing identityPublicKey"}
	}
	if err := s.enableEncryption(clientX5U, cipher.Salt); err != nil {
		return err
	}

	if payload, err := decodeUserChainPayload(login.UserChain, clientX5U); err == nil {
		s.mu.Lock()
		s.receivedPayload = payload
		s.mu.Unlock()
	} else {
		s.log.Warn("session: could not recover client payload from user chain", "err", err)
	}

	token, err := buildHandshakeToken(s.sessionKey, s.login.SelfSignedX5U, cipher.Salt)
	if err != nil {
		return err
	}
	s.setState(domain.StateAwaitHandshake)
	if err := s.Send(catalog.ServerToClientHandshake{Token: token}); err != nil {
		return err
	}
	s.mu.Lock()
	s.encEnabled = true
	s.mu.Unlock()
	return nil
}

// buildHandshakeToken signs {salt, signedToken: <own x5u>} with ES384,
// header {alg: "ES384", x5u: <own x5u>}, per spec.md's handshake
// generation rule. salt is always the fixed salt-emoji bytes; callers
// pass it rather than reaching into internal/cipher from this package.
func buildHandshakeToken(sessionKey *ecdsa.PrivateKey, selfX5U string, salt []byte) (string, error) {
	claims := keys.HandshakeClaims{
		Salt:        base64.StdEncoding.EncodeToString(salt),
		SignedToken: selfX5U,
	}
	return keys.Sign(sessionKey, selfX5U, claims)
}

// decodeUserChainPayload recovers the domain.Payload a client signed
// directly as the user chain's claim set, verifying it against the
// identity chain's own public key (the user chain is signed by the
// same session key as the identity chain it rides alongside).
func decodeUserChainPayload(userChainToken, clientX5U string) (domain.Payload, error) {
	claims, err := keys.VerifyMapClaims(userChainToken, clientX5U)
	if err != nil {
		return domain.Payload{}, err
	}
	raw, err := json.Marshal(claims)
	if err != nil {
		return domain.Payload{}, err
	}
	var payload domain.Payload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return domain.Payload{}, err
	}
	return payload, nil
}

// parseHandshakeToken verifies the peer's self-signed handshake token
// and returns its ECDH public key (the header x5u) and the salt bytes
// carried in the payload.
func parseHandshakeToken(token string) (x5u string, salt []byte, err error) {
	claims, headerX5U, err := keys.VerifyHandshake(token)
	if err != nil {
		return "", nil, &domain.AuthError{Reason: "verify handshake token", Err: err}
	}
	salt, err = base64.StdEncoding.DecodeString(claims.Salt)
	if err != nil {
		return "", nil, &domain.AuthError{Reason: "decode handshake salt", Err: err}
	}
	return headerX5U, salt, nil
}

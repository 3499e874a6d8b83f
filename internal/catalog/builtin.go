package catalog

import "bedrock/internal/domain"

// Default returns a Catalog pre-loaded with the handshake family and
// the small set of everyday game packets this toolkit ships typed
// records for. Registration happens explicitly here rather than via
// hidden init-time decorators, so the set of known packets is always
// visible at one call site.
func Default() *Catalog {
	c := New()

	c.Register(IDRequestNetworkSettings, "RequestNetworkSettings",
		func(body []byte) (domain.Packet, error) {
			r := newReader(body)
			proto, err := r.Int32()
			return RequestNetworkSettings{ClientProtocol: proto}, err
		},
		func(p domain.Packet) ([]byte, error) {
			pk := p.(RequestNetworkSettings)
			w := &writer{}
			w.Int32(pk.ClientProtocol)
			return w.Out(), nil
		})

	c.Register(IDNetworkSettings, "NetworkSettings",
		func(body []byte) (domain.Packet, error) {
			r := newReader(body)
			threshold, err := r.Uint32()
			if err != nil {
				return nil, err
			}
			method, err := r.Uint32()
			return NetworkSettings{CompressionThreshold: uint16(threshold), CompressionMethod: uint16(method)}, err
		},
		func(p domain.Packet) ([]byte, error) {
			pk := p.(NetworkSettings)
			w := &writer{}
			w.Uint32(uint32(pk.CompressionThreshold))
			w.Uint32(uint32(pk.CompressionMethod))
			return w.Out(), nil
		})

	c.Register(IDLogin, "Login",
		func(body []byte) (domain.Packet, error) {
			r := newReader(body)
			proto, err := r.Int32()
			if err != nil {
				return nil, err
			}
			n, err := r.Uint32()
			if err != nil {
				return nil, err
			}
			chain := make([]string, n)
			for i := range chain {
				chain[i], err = r.String()
				if err != nil {
					return nil, err
				}
			}
			user, err := r.String()
			return Login{ClientProtocol: proto, IdentityChain: chain, UserChain: user}, err
		},
		func(p domain.Packet) ([]byte, error) {
			pk := p.(Login)
			w := &writer{}
			w.Int32(pk.ClientProtocol)
			w.Uint32(uint32(len(pk.IdentityChain)))
			for _, tok := range pk.IdentityChain {
				w.String(tok)
			}
			w.String(pk.UserChain)
			return w.Out(), nil
		})

	c.Register(IDServerToClientHandshake, "ServerToClientHandshake",
		func(body []byte) (domain.Packet, error) {
			r := newReader(body)
			tok, err := r.String()
			return ServerToClientHandshake{Token: tok}, err
		},
		func(p domain.Packet) ([]byte, error) {
			w := &writer{}
			w.String(p.(ServerToClientHandshake).Token)
			return w.Out(), nil
		})

	c.Register(IDClientToServerHandshake, "ClientToServerHandshake",
		func(body []byte) (domain.Packet, error) { return ClientToServerHandshake{}, nil },
		func(p domain.Packet) ([]byte, error) { return nil, nil })

	c.Register(IDPlayStatus, "PlayStatus",
		func(body []byte) (domain.Packet, error) {
			r := newReader(body)
			status, err := r.Int32()
			return PlayStatus{Status: status}, err
		},
		func(p domain.Packet) ([]byte, error) {
			w := &writer{}
			w.Int32(p.(PlayStatus).Status)
			return w.Out(), nil
		})

	c.Register(IDDisconnect, "Disconnect",
		func(body []byte) (domain.Packet, error) {
			r := newReader(body)
			hide, err := r.Bool()
			if err != nil {
				return nil, err
			}
			msg, err := r.String()
			return Disconnect{HideDisconnectScreen: hide, Message: msg}, err
		},
		func(p domain.Packet) ([]byte, error) {
			pk := p.(Disconnect)
			w := &writer{}
			w.Bool(pk.HideDisconnectScreen)
			w.String(pk.Message)
			return w.Out(), nil
		})

	c.Register(IDResourcePacksInfo, "ResourcePacksInfo",
		func(body []byte) (domain.Packet, error) {
			r := newReader(body)
			must, err := r.Bool()
			return ResourcePacksInfo{MustAccept: must}, err
		},
		func(p domain.Packet) ([]byte, error) {
			w := &writer{}
			w.Bool(p.(ResourcePacksInfo).MustAccept)
			return w.Out(), nil
		})

	c.Register(IDResourcePackStack, "ResourcePackStack",
		func(body []byte) (domain.Packet, error) {
			r := newReader(body)
			must, err := r.Bool()
			return ResourcePackStack{MustAccept: must}, err
		},
		func(p domain.Packet) ([]byte, error) {
			w := &writer{}
			w.Bool(p.(ResourcePackStack).MustAccept)
			return w.Out(), nil
		})

	c.Register(IDResourcePackClientResponse, "ResourcePackClientResponse",
		func(body []byte) (domain.Packet, error) {
			r := newReader(body)
			status, err := r.Uint8()
			return ResourcePackClientResponse{Status: status}, err
		},
		func(p domain.Packet) ([]byte, error) {
			w := &writer{}
			w.Uint8(p.(ResourcePackClientResponse).Status)
			return w.Out(), nil
		})

	c.Register(IDStartGame, "StartGame",
		func(body []byte) (domain.Packet, error) {
			r := newReader(body)
			name, err := r.String()
			return StartGame{WorldName: name}, err
		},
		func(p domain.Packet) ([]byte, error) {
			w := &writer{}
			w.String(p.(StartGame).WorldName)
			return w.Out(), nil
		})

	c.Register(IDRequestChunkRadius, "RequestChunkRadius",
		func(body []byte) (domain.Packet, error) {
			r := newReader(body)
			radius, err := r.Int32()
			return RequestChunkRadius{Radius: radius}, err
		},
		func(p domain.Packet) ([]byte, error) {
			w := &writer{}
			w.Int32(p.(RequestChunkRadius).Radius)
			return w.Out(), nil
		})

	c.Register(IDSetLocalPlayerAsInitialized, "SetLocalPlayerAsInitialized",
		func(body []byte) (domain.Packet, error) {
			r := newReader(body)
			id, err := r.Uint64()
			return SetLocalPlayerAsInitialized{EntityRuntimeID: id}, err
		},
		func(p domain.Packet) ([]byte, error) {
			w := &writer{}
			w.Uint64(p.(SetLocalPlayerAsInitialized).EntityRuntimeID)
			return w.Out(), nil
		})

	c.Register(IDServerboundLoadingScreen, "ServerboundLoadingScreen",
		func(body []byte) (domain.Packet, error) {
			r := newReader(body)
			stage, err := r.Int32()
			return ServerboundLoadingScreen{Stage: stage}, err
		},
		func(p domain.Packet) ([]byte, error) {
			w := &writer{}
			w.Int32(p.(ServerboundLoadingScreen).Stage)
			return w.Out(), nil
		})

	c.Register(IDText, "Text",
		func(body []byte) (domain.Packet, error) {
			r := newReader(body)
			msg, err := r.String()
			return Text{Message: msg}, err
		},
		func(p domain.Packet) ([]byte, error) {
			w := &writer{}
			w.String(p.(Text).Message)
			return w.Out(), nil
		})

	c.Register(IDLevelChunk, "LevelChunk",
		func(body []byte) (domain.Packet, error) {
			r := newReader(body)
			x, err := r.Int32()
			if err != nil {
				return nil, err
			}
			z, err := r.Int32()
			if err != nil {
				return nil, err
			}
			payload, err := r.Bytes()
			return LevelChunk{ChunkX: x, ChunkZ: z, Payload: payload}, err
		},
		func(p domain.Packet) ([]byte, error) {
			pk := p.(LevelChunk)
			w := &writer{}
			w.Int32(pk.ChunkX)
			w.Int32(pk.ChunkZ)
			w.Bytes(pk.Payload)
			return w.Out(), nil
		})

	c.Register(IDClientCacheStatus, "ClientCacheStatus",
		func(body []byte) (domain.Packet, error) {
			r := newReader(body)
			enabled, err := r.Bool()
			return ClientCacheStatus{Enabled: enabled}, err
		},
		func(p domain.Packet) ([]byte, error) {
			w := &writer{}
			w.Bool(p.(ClientCacheStatus).Enabled)
			return w.Out(), nil
		})

	return c
}

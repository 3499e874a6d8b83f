package catalog

// Handshake-family packets named by spec.md §4.7/§6.5, plus a small
// set of everyday game packets (Text, LevelChunk, ClientCacheStatus)
// used to exercise the Dispatcher and Bridge Pair in tests. Anything
// else the wire carries is opaque and travels as domain.RawPacket.

type RequestNetworkSettings struct {
	ClientProtocol int32
}

func (RequestNetworkSettings) ID() uint32   { return IDRequestNetworkSettings }
func (RequestNetworkSettings) Name() string { return "RequestNetworkSettings" }

type NetworkSettings struct {
	CompressionThreshold uint16
	CompressionMethod    uint16 // 0 = zlib, 1 = snappy, 0xFFFF = none
}

func (NetworkSettings) ID() uint32   { return IDNetworkSettings }
func (NetworkSettings) Name() string { return "NetworkSettings" }

// Login carries the identity and user JWT chains as raw strings; the
// catalog does not itself verify them (internal/keys does).
type Login struct {
	ClientProtocol int32
	IdentityChain  []string
	UserChain      string
}

func (Login) ID() uint32   { return IDLogin }
func (Login) Name() string { return "Login" }

// ServerToClientHandshake carries the server's signed token (a JWS
// string): x5u header + {salt, signedToken} payload, per spec.md
// §4.7.
type ServerToClientHandshake struct {
	Token string
}

func (ServerToClientHandshake) ID() uint32   { return IDServerToClientHandshake }
func (ServerToClientHandshake) Name() string { return "ServerToClientHandshake" }

// ClientToServerHandshake is a zero-body packet: its mere presence, as
// the first encrypted frame, signals the client enabled encryption.
type ClientToServerHandshake struct{}

func (ClientToServerHandshake) ID() uint32   { return IDClientToServerHandshake }
func (ClientToServerHandshake) Name() string { return "ClientToServerHandshake" }

type PlayStatus struct {
	Status int32
}

func (PlayStatus) ID() uint32   { return IDPlayStatus }
func (PlayStatus) Name() string { return "PlayStatus" }

type Disconnect struct {
	HideDisconnectScreen bool
	Message              string
}

func (Disconnect) ID() uint32   { return IDDisconnect }
func (Disconnect) Name() string { return "Disconnect" }

type ResourcePacksInfo struct {
	MustAccept bool
}

func (ResourcePacksInfo) ID() uint32   { return IDResourcePacksInfo }
func (ResourcePacksInfo) Name() string { return "ResourcePacksInfo" }

type ResourcePackStack struct {
	MustAccept bool
}

func (ResourcePackStack) ID() uint32   { return IDResourcePackStack }
func (ResourcePackStack) Name() string { return "ResourcePackStack" }

type ResourcePackClientResponse struct {
	Status uint8
}

func (ResourcePackClientResponse) ID() uint32   { return IDResourcePackClientResponse }
func (ResourcePackClientResponse) Name() string { return "ResourcePackClientResponse" }

type StartGame struct {
	WorldName string
}

func (StartGame) ID() uint32   { return IDStartGame }
func (StartGame) Name() string { return "StartGame" }

type RequestChunkRadius struct {
	Radius int32
}

func (RequestChunkRadius) ID() uint32   { return IDRequestChunkRadius }
func (RequestChunkRadius) Name() string { return "RequestChunkRadius" }

type SetLocalPlayerAsInitialized struct {
	EntityRuntimeID uint64
}

func (SetLocalPlayerAsInitialized) ID() uint32   { return IDSetLocalPlayerAsInitialized }
func (SetLocalPlayerAsInitialized) Name() string { return "SetLocalPlayerAsInitialized" }

type ServerboundLoadingScreen struct {
	Stage int32
}

func (ServerboundLoadingScreen) ID() uint32   { return IDServerboundLoadingScreen }
func (ServerboundLoadingScreen) Name() string { return "ServerboundLoadingScreen" }

// Text is a day-to-day game packet, used throughout tests to exercise
// the Encryptor and Dispatcher once a session is past the handshake.
type Text struct {
	Message string
}

func (Text) ID() uint32   { return IDText }
func (Text) Name() string { return "Text" }

// LevelChunk stands in for the real chunk-load packet; only its id is
// load-bearing for the Bridge Pair's pre-StartGame queueing rule.
type LevelChunk struct {
	ChunkX, ChunkZ int32
	Payload        []byte
}

func (LevelChunk) ID() uint32   { return IDLevelChunk }
func (LevelChunk) Name() string { return "LevelChunk" }

// ClientCacheStatus resolves the spec's open question in favor of the
// field name Enabled over Supported. The bridge always forces this to
// false (§4.9): it cannot honor chunk-blob caching.
type ClientCacheStatus struct {
	Enabled bool
}

func (ClientCacheStatus) ID() uint32   { return IDClientCacheStatus }
func (ClientCacheStatus) Name() string { return "ClientCacheStatus" }

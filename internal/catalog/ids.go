package catalog

// Packet ids for the handshake family spec.md names explicitly
// (§6.5), matching the real Bedrock wire protocol's numbering. Game
// packets beyond these are opaque to the core and travel as
// domain.RawPacket.
const (
	IDLogin                       uint32 = 0x01
	IDPlayStatus                  uint32 = 0x02
	IDServerToClientHandshake     uint32 = 0x03
	IDClientToServerHandshake     uint32 = 0x04
	IDDisconnect                  uint32 = 0x05
	IDResourcePacksInfo           uint32 = 0x06
	IDResourcePackStack           uint32 = 0x07
	IDResourcePackClientResponse  uint32 = 0x08
	IDText                        uint32 = 0x09
	IDStartGame                   uint32 = 0x0B
	IDRequestChunkRadius          uint32 = 0x45
	IDSetLocalPlayerAsInitialized uint32 = 0x71
	IDNetworkSettings             uint32 = 0x8F
	IDRequestNetworkSettings      uint32 = 0xC1
	IDServerboundLoadingScreen    uint32 = 0x138
	IDLevelChunk                  uint32 = 0x3A
	IDClientCacheStatus           uint32 = 0x81
)

// PlayStatus values carried as a PlayStatus packet's sole payload.
const (
	PlayStatusLoginSuccess       int32 = 0
	PlayStatusFailedClient       int32 = 1
	PlayStatusFailedServer       int32 = 2
	PlayStatusPlayerSpawn        int32 = 3
	PlayStatusLoginFailedNoPerms int32 = 4
)

package catalog

import (
	"bytes"
	"reflect"
	"testing"

	"bedrock/internal/domain"
)

func TestSerializeLookupRoundTrip(t *testing.T) {
	t.Parallel()
	c := Default()

	cases := []domain.Packet{
		RequestNetworkSettings{ClientProtocol: 712},
		NetworkSettings{CompressionThreshold: 256, CompressionMethod: 0},
		Login{ClientProtocol: 712, IdentityChain: []string{"a", "bb"}, UserChain: "ccc"},
		ServerToClientHandshake{Token: "jws-token"},
		ClientToServerHandshake{},
		PlayStatus{Status: 3},
		Disconnect{HideDisconnectScreen: true, Message: "bye"},
		StartGame{WorldName: "world"},
		Text{Message: "hello"},
		LevelChunk{ChunkX: 1, ChunkZ: -2, Payload: []byte{1, 2, 3}},
		ClientCacheStatus{Enabled: false},
	}

	for _, pk := range cases {
		buf, err := c.Serialize(pk)
		if err != nil {
			t.Fatalf("serialize %T: %v", pk, err)
		}
		got, name, err := c.Lookup(buf)
		if err != nil {
			t.Fatalf("lookup %T: %v", pk, err)
		}
		if name != pk.Name() {
			t.Fatalf("name = %s, want %s", name, pk.Name())
		}
		if !reflect.DeepEqual(got, pk) {
			t.Fatalf("round trip mismatch for %T: got %#v want %#v", pk, got, pk)
		}
	}
}

func TestLookupUnknownIDIsNotFatal(t *testing.T) {
	t.Parallel()
	c := Default()
	buf := append(writePacketID(400), []byte{0xDE, 0xAD}...)
	pk, _, err := c.Lookup(buf)
	if err != nil {
		t.Fatalf("unexpected error for unknown id: %v", err)
	}
	raw, ok := pk.(domain.RawPacket)
	if !ok {
		t.Fatalf("expected domain.RawPacket, got %T", pk)
	}
	if raw.IDValue != 400 || !bytes.Equal(raw.Bytes, []byte{0xDE, 0xAD}) {
		t.Fatalf("unexpected raw packet: %+v", raw)
	}
}

func TestLookupDeserializeFailureReturnsRawBytes(t *testing.T) {
	t.Parallel()
	c := Default()
	// RequestNetworkSettings expects a 4-byte int32 body; give it one byte.
	buf := append(writePacketID(IDRequestNetworkSettings), 0x01)
	pk, name, err := c.Lookup(buf)
	if err == nil {
		t.Fatal("expected decode error")
	}
	if name != "RequestNetworkSettings" {
		t.Fatalf("name = %s, want RequestNetworkSettings", name)
	}
	if _, ok := pk.(domain.RawPacket); !ok {
		t.Fatalf("expected raw bytes fallback, got %T", pk)
	}
}

func TestOverrideReplacesDecoder(t *testing.T) {
	t.Parallel()
	c := Default()
	c.Register(IDClientCacheStatus, "ClientCacheStatus",
		func(body []byte) (domain.Packet, error) {
			return ClientCacheStatus{Enabled: false}, nil // forgiving: always decodes to disabled
		},
		func(p domain.Packet) ([]byte, error) { return []byte{0}, nil })

	buf := append(writePacketID(IDClientCacheStatus), 0xFF) // malformed bool byte
	pk, _, err := c.Lookup(buf)
	if err != nil {
		t.Fatalf("overridden decoder should not fail: %v", err)
	}
	if pk.(ClientCacheStatus).Enabled {
		t.Fatal("expected overridden decoder to force Enabled=false")
	}
}

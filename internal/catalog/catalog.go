// Package catalog maps between numeric packet ids and typed records.
// Default builds a catalog pre-loaded with the built-in entries;
// individual ids may be overridden by registering them again. The
// bridge decodes with the same entries as every other caller and
// installs no overrides of its own.
package catalog

import (
	"fmt"
	"sync"

	"bedrock/internal/domain"
)

// Deserializer turns a packet body (everything after the id byte)
// into a typed domain.Packet.
type Deserializer func(body []byte) (domain.Packet, error)

// Serializer turns a typed domain.Packet into a wire body (without
// the leading id byte — Catalog.Serialize prepends it).
type Serializer func(p domain.Packet) ([]byte, error)

type entry struct {
	name         string
	deserializer Deserializer
	serializer   Serializer
}

// Catalog is the process-wide id <-> record registry.
type Catalog struct {
	mu       sync.RWMutex
	byID     map[uint32]entry
	nameToID map[string]uint32
}

// New returns an empty Catalog. Use Default() for the one pre-loaded
// with the handshake family.
func New() *Catalog {
	return &Catalog{
		byID:     make(map[uint32]entry),
		nameToID: make(map[string]uint32),
	}
}

// Register adds or replaces the entry for id; overriding a built-in
// decoder goes through this same call.
func (c *Catalog) Register(id uint32, name string, des Deserializer, ser Serializer) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.byID[id] = entry{name: name, deserializer: des, serializer: ser}
	c.nameToID[name] = id
}

// Lookup resolves the leading varint-encoded id of buf (ids fall in
// [0, 511], per spec) and decodes the remainder. Neither unknown ids
// nor deserialize failures are fatal: an unknown id yields a RawPacket
// with an empty name and a nil err; a deserialize failure yields a
// RawPacket, the registered name, and a non-nil *domain.DecodeError,
// so pass-through paths can still route by id.
func (c *Catalog) Lookup(buf []byte) (pk domain.Packet, name string, err error) {
	id, n, err := readPacketID(buf)
	if err != nil {
		return nil, "", err
	}
	body := buf[n:]

	c.mu.RLock()
	e, known := c.byID[id]
	c.mu.RUnlock()

	if !known {
		return domain.RawPacket{IDValue: id, Bytes: body}, "", nil
	}
	pk, err = e.deserializer(body)
	if err != nil {
		return domain.RawPacket{IDValue: id, Bytes: body}, e.name, &domain.DecodeError{PacketID: id, Err: err}
	}
	return pk, e.name, nil
}

// Serialize returns an owned byte buffer whose leading bytes are the
// packet's varint-encoded id.
func (c *Catalog) Serialize(p domain.Packet) ([]byte, error) {
	if raw, ok := p.(domain.RawPacket); ok {
		return append(writePacketID(raw.IDValue), raw.Bytes...), nil
	}

	c.mu.RLock()
	e, known := c.byID[p.ID()]
	c.mu.RUnlock()
	if !known {
		return nil, fmt.Errorf("catalog: no serializer registered for id %d", p.ID())
	}
	body, err := e.serializer(p)
	if err != nil {
		return nil, &domain.DecodeError{PacketID: p.ID(), Err: err}
	}
	return append(writePacketID(p.ID()), body...), nil
}

// readPacketID decodes a varint id from the front of buf and reports
// how many bytes it consumed.
func readPacketID(buf []byte) (id uint32, consumed int, err error) {
	var value uint32
	var shift uint
	for i, b := range buf {
		value |= uint32(b&0x7F) << shift
		if b&0x80 == 0 {
			return value, i + 1, nil
		}
		shift += 7
		if shift >= 32 {
			return 0, 0, fmt.Errorf("catalog: packet id varint overflow")
		}
	}
	return 0, 0, fmt.Errorf("catalog: truncated packet id")
}

func writePacketID(id uint32) []byte {
	var out []byte
	v := id
	for {
		b := byte(v & 0x7F)
		v >>= 7
		if v != 0 {
			b |= 0x80
		}
		out = append(out, b)
		if v == 0 {
			return out
		}
	}
}

// PeekID decodes only the leading varint id of buf and reports its
// registered name, without deserializing the body. Bridge code uses
// this to decide whether a packet needs decoding at all before
// forwarding it.
func (c *Catalog) PeekID(buf []byte) (id uint32, name string, err error) {
	id, _, err = readPacketID(buf)
	if err != nil {
		return 0, "", err
	}
	c.mu.RLock()
	e, known := c.byID[id]
	c.mu.RUnlock()
	if !known {
		return id, "", nil
	}
	return id, e.name, nil
}

// NameForID reports the registered name for id, if any.
func (c *Catalog) NameForID(id uint32) (string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.byID[id]
	return e.name, ok
}

// Package dispatch implements the per-Session typed event bus:
// listeners subscribe by packet name or by the generic "packet" name,
// with a has-listener fast path that lets the session skip
// deserialization when nobody is watching.
package dispatch

import (
	"log/slog"
	"sync"

	"bedrock/internal/domain"
)

// Generic is the catch-all listener name that fires after every
// specific-name listener, for every packet.
const Generic = "packet"

// Signal is passed to bridge listeners alongside the packet, letting
// them cancel delivery or flag that they mutated the record in place.
type Signal struct {
	Cancelled bool
	Modified  bool
}

// ListenerFunc observes one packet. sig is nil for ordinary (non-
// bridge) Dispatcher.On subscribers.
type ListenerFunc func(pk domain.Packet, sig *Signal)

// Dispatcher is one Session's event bus.
type Dispatcher struct {
	mu        sync.RWMutex
	listeners map[string][]ListenerFunc
	log       *slog.Logger
}

// New builds a Dispatcher. log may be nil, in which case a disabled
// logger is used internally.
func New(log *slog.Logger) *Dispatcher {
	if log == nil {
		log = slog.New(slog.NewTextHandler(discard{}, &slog.HandlerOptions{Level: slog.LevelError + 1}))
	}
	return &Dispatcher{listeners: make(map[string][]ListenerFunc), log: log}
}

// On registers fn under name, in addition to any existing listeners
// for that name. Registration order is fan-out order.
func (d *Dispatcher) On(name string, fn ListenerFunc) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.listeners[name] = append(d.listeners[name], fn)
}

// HasListeners reports whether name or the generic "packet" name has
// at least one subscriber. This is a performance contract: callers
// may skip deserializing a packet entirely when it returns false.
func (d *Dispatcher) HasListeners(name string) bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.listeners[name]) > 0 || len(d.listeners[Generic]) > 0
}

// Emit fans a decoded packet out to its specific-name listeners, then
// the generic listeners, in registration order. Listener panics are
// recovered and logged; they never halt dispatch or fault the caller.
func (d *Dispatcher) Emit(name string, pk domain.Packet, sig *Signal) {
	d.mu.RLock()
	specific := append([]ListenerFunc(nil), d.listeners[name]...)
	generic := append([]ListenerFunc(nil), d.listeners[Generic]...)
	d.mu.RUnlock()

	for _, fn := range specific {
		d.invoke(fn, pk, sig)
	}
	for _, fn := range generic {
		d.invoke(fn, pk, sig)
	}
}

func (d *Dispatcher) invoke(fn ListenerFunc, pk domain.Packet, sig *Signal) {
	defer func() {
		if r := recover(); r != nil {
			d.log.Error("dispatch: listener panic", "packet", pk.Name(), "recover", r)
		}
	}()
	fn(pk, sig)
}

type discard struct{}

func (discard) Write(p []byte) (int, error) { return len(p), nil }

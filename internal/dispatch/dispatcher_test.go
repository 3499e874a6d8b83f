package dispatch

import (
	"testing"

	"bedrock/internal/catalog"
	"bedrock/internal/domain"
)

func TestHasListenersFastPath(t *testing.T) {
	t.Parallel()
	d := New(nil)
	if d.HasListeners("TextPacket") {
		t.Fatal("expected no listeners initially")
	}
	d.On("TextPacket", func(pk domain.Packet, sig *Signal) {})
	if !d.HasListeners("TextPacket") {
		t.Fatal("expected a listener after On")
	}
	if d.HasListeners("PlayStatus") {
		t.Fatal("unrelated name should report no listeners")
	}

	d.On(Generic, func(pk domain.Packet, sig *Signal) {})
	if !d.HasListeners("PlayStatus") {
		t.Fatal("generic listener should make HasListeners true for any name")
	}
}

func TestOrderingSpecificBeforeGenericThenRegistrationOrder(t *testing.T) {
	t.Parallel()
	d := New(nil)
	var order []string

	d.On(Generic, func(pk domain.Packet, sig *Signal) { order = append(order, "generic") })
	d.On("TextPacket", func(pk domain.Packet, sig *Signal) { order = append(order, "specific-1") })
	d.On("TextPacket", func(pk domain.Packet, sig *Signal) { order = append(order, "specific-2") })

	d.Emit("TextPacket", catalog.Text{Message: "hi"}, nil)

	want := []string{"specific-1", "specific-2", "generic"}
	if len(order) != len(want) {
		t.Fatalf("got %v, want %v", order, want)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("got %v, want %v", order, want)
		}
	}
}

func TestListenerPanicDoesNotHaltDispatch(t *testing.T) {
	t.Parallel()
	d := New(nil)
	var secondRan bool

	d.On("TextPacket", func(pk domain.Packet, sig *Signal) { panic("boom") })
	d.On("TextPacket", func(pk domain.Packet, sig *Signal) { secondRan = true })

	d.Emit("TextPacket", catalog.Text{Message: "hi"}, nil)

	if !secondRan {
		t.Fatal("expected dispatch to continue after a listener panic")
	}
}

func TestSignalCancelAndModify(t *testing.T) {
	t.Parallel()
	d := New(nil)
	d.On("TextPacket", func(pk domain.Packet, sig *Signal) {
		sig.Cancelled = true
		sig.Modified = true
	})

	sig := &Signal{}
	d.Emit("TextPacket", catalog.Text{Message: "hi"}, sig)

	if !sig.Cancelled || !sig.Modified {
		t.Fatalf("expected listener mutation to propagate, got %+v", sig)
	}
}

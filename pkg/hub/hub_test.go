package hub

import (
	"testing"
	"time"
)

func TestHubLifecycle(t *testing.T) {
	h := New("test", nil)
	if h.IsRunning() {
		t.Error("hub running before Run")
	}

	go h.Run()
	deadline := time.Now().Add(time.Second)
	for !h.IsRunning() {
		if time.Now().After(deadline) {
			t.Fatal("hub never started")
		}
		time.Sleep(time.Millisecond)
	}

	if got := h.ClientCount(); got != 0 {
		t.Errorf("client count = %d, want 0", got)
	}

	// Broadcasting with no clients is a no-op.
	h.BroadcastBinary([]byte{0xff, 0xd8})
	if err := h.BroadcastJSON(map[string]string{"mode": "idle"}); err != nil {
		t.Errorf("BroadcastJSON error: %v", err)
	}

	h.Stop()
	for h.IsRunning() {
		if time.Now().After(deadline) {
			t.Fatal("hub never stopped")
		}
		time.Sleep(time.Millisecond)
	}

	// Stop twice is safe; shutdown paths can be re-entered.
	h.Stop()
}

func TestBroadcastJSONRejectsUnencodable(t *testing.T) {
	h := New("test", nil)
	if err := h.BroadcastJSON(make(chan int)); err == nil {
		t.Error("expected marshal error")
	}
}

func TestMessageConstructors(t *testing.T) {
	if m := NewJSONMessage([]byte(`{}`)); m.Type != JSONMessage {
		t.Errorf("type = %v, want JSONMessage", m.Type)
	}
	if m := NewBinaryMessage([]byte{1}); m.Type != BinaryMessage {
		t.Errorf("type = %v, want BinaryMessage", m.Type)
	}
}

package notify

import (
	"encoding/json"
	"testing"
)

func newTestClient(roomID string) *client {
	return &client{send: make(chan []byte, clientSendBuffer), roomID: roomID}
}

func recvEnvelope(t *testing.T, c *client) envelope {
	t.Helper()
	select {
	case payload := <-c.send:
		var env envelope
		if err := json.Unmarshal(payload, &env); err != nil {
			t.Fatalf("unmarshal envelope: %v", err)
		}
		return env
	default:
		t.Fatalf("no message queued")
		return envelope{}
	}
}

func TestEmitToRoomTargetsRoomAndGlobal(t *testing.T) {
	h := NewHub()
	inRoom := newTestClient("room-1")
	otherRoom := newTestClient("room-2")
	global := newTestClient("")
	h.register(inRoom)
	h.register(otherRoom)
	h.register(global)

	h.EmitToRoom("room-1", EventRoomStatus, RoomStatus{RoomID: "room-1", Status: "active", ParticipantCount: 3})

	env := recvEnvelope(t, inRoom)
	if env.Event != EventRoomStatus || env.RoomID != "room-1" {
		t.Fatalf("unexpected envelope: %+v", env)
	}
	if env = recvEnvelope(t, global); env.Event != EventRoomStatus {
		t.Fatalf("global subscriber missed room event: %+v", env)
	}
	select {
	case <-otherRoom.send:
		t.Fatalf("other room received foreign event")
	default:
	}
}

func TestEmitGlobalReachesEveryone(t *testing.T) {
	h := NewHub()
	inRoom := newTestClient("room-1")
	global := newTestClient("")
	h.register(inRoom)
	h.register(global)

	h.EmitGlobal(EventBalanceChanged, BalanceChanged{UserID: "u1", NewBalance: 100, Delta: -50, Reason: "stake"})

	recvEnvelope(t, inRoom)
	recvEnvelope(t, global)
}

func TestSlowClientDropsInsteadOfBlocking(t *testing.T) {
	h := NewHub()
	slow := &client{send: make(chan []byte, 1), roomID: "room-1"}
	h.register(slow)

	for i := 0; i < 5; i++ {
		h.EmitToRoom("room-1", EventRoomStatus, RoomStatus{RoomID: "room-1"})
	}
	// Buffer holds one message; the rest must have been dropped silently.
	if got := len(slow.send); got != 1 {
		t.Fatalf("expected 1 buffered message, got %d", got)
	}
}

func TestUnregisterRemovesClient(t *testing.T) {
	h := NewHub()
	c := newTestClient("room-1")
	h.register(c)
	h.unregister(c)

	h.EmitToRoom("room-1", EventRoomStatus, RoomStatus{})
	select {
	case <-c.send:
		t.Fatalf("unregistered client still receives events")
	default:
	}
}

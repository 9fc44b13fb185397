package realtime

import "testing"

func TestRoomName(t *testing.T) {
	if got := RoomName(42); got != "match_42" {
		t.Fatalf("unexpected room name: %s", got)
	}
}

func TestBroadcastRoomIsIsolatedPerMatch(t *testing.T) {
	b := NewBroker(nil)
	a := &sessionStub{id: "s1", userID: 101}
	c := &sessionStub{id: "s2", userID: 202}
	outsider := &sessionStub{id: "s3", userID: 303}
	b.Join(a, 7)
	b.Join(c, 7)
	b.Join(outsider, 8)

	b.BroadcastRoom(7, Event{Name: EventMessageReceived})

	if len(a.events) != 1 || len(c.events) != 1 {
		t.Fatalf("room members must receive the broadcast: a=%d c=%d", len(a.events), len(c.events))
	}
	if len(outsider.events) != 0 {
		t.Fatalf("sessions in other rooms must not receive the broadcast, got %d", len(outsider.events))
	}
}

func TestBroadcastRoomExceptSkipsSender(t *testing.T) {
	b := NewBroker(nil)
	sender := &sessionStub{id: "s1", userID: 101}
	receiver := &sessionStub{id: "s2", userID: 202}
	b.Join(sender, 7)
	b.Join(receiver, 7)

	b.BroadcastRoomExcept(7, sender.ID(), Event{Name: EventTyping})

	if len(sender.events) != 0 {
		t.Fatalf("typing must not echo to the sender, got %d events", len(sender.events))
	}
	if len(receiver.events) != 1 {
		t.Fatalf("the other member must receive the typing event, got %d", len(receiver.events))
	}
}

func TestJoinIsIdempotent(t *testing.T) {
	b := NewBroker(nil)
	s := &sessionStub{id: "s1", userID: 101}
	b.Join(s, 7)
	b.Join(s, 7)

	if got := b.RoomSize(7); got != 1 {
		t.Fatalf("double join must not duplicate membership, got %d", got)
	}

	b.BroadcastRoom(7, Event{Name: EventMessageReceived})
	if len(s.events) != 1 {
		t.Fatalf("expected a single delivery, got %d", len(s.events))
	}
}

func TestLeaveAllRemovesFromEveryRoom(t *testing.T) {
	b := NewBroker(nil)
	s := &sessionStub{id: "s1", userID: 101}
	b.Join(s, 7)
	b.Join(s, 8)

	b.LeaveAll(s)
	b.LeaveAll(s)

	if b.InRoom(s.ID(), 7) || b.InRoom(s.ID(), 8) {
		t.Fatalf("session must be out of every room after LeaveAll")
	}
	if b.RoomSize(7) != 0 || b.RoomSize(8) != 0 {
		t.Fatalf("empty rooms must be dropped: room7=%d room8=%d", b.RoomSize(7), b.RoomSize(8))
	}
}

func TestRoomBroadcastClosesOnlyDeadSession(t *testing.T) {
	b := NewBroker(nil)
	dead := &sessionStub{id: "s1", userID: 101, reject: true}
	alive := &sessionStub{id: "s2", userID: 202}
	b.Join(dead, 7)
	b.Join(alive, 7)

	b.BroadcastRoom(7, Event{Name: EventMessageReceived})

	if !dead.closed {
		t.Fatalf("session that rejects the event must be closed")
	}
	if alive.closed {
		t.Fatalf("healthy session must stay open")
	}
	if len(alive.events) != 1 {
		t.Fatalf("healthy session must still receive the event, got %d", len(alive.events))
	}
}

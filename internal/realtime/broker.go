package realtime

import (
	"fmt"
	"sync"

	"go.uber.org/zap"
)

// Broker manages match-scoped rooms: ephemeral broadcast groups of live
// sessions. Membership checks against the match record happen in the
// hub before Join is called; the broker itself only moves events.
type Broker struct {
	mu      sync.RWMutex
	rooms   map[int64]map[string]Session
	joined  map[string]map[int64]struct{}
	log     *zap.Logger
}

func NewBroker(log *zap.Logger) *Broker {
	if log == nil {
		log = zap.NewNop()
	}
	return &Broker{
		rooms:  make(map[int64]map[string]Session),
		joined: make(map[string]map[int64]struct{}),
		log:    log,
	}
}

func RoomName(matchID int64) string {
	return fmt.Sprintf("match_%d", matchID)
}

func (b *Broker) Join(s Session, matchID int64) {
	if s == nil || matchID <= 0 {
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	room, ok := b.rooms[matchID]
	if !ok {
		room = make(map[string]Session)
		b.rooms[matchID] = room
	}
	room[s.ID()] = s

	rooms, ok := b.joined[s.ID()]
	if !ok {
		rooms = make(map[int64]struct{})
		b.joined[s.ID()] = rooms
	}
	rooms[matchID] = struct{}{}
}

func (b *Broker) Leave(s Session, matchID int64) {
	if s == nil {
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	b.leaveLocked(s.ID(), matchID)
}

// LeaveAll removes the session from every room it joined. Called on
// disconnect; idempotent.
func (b *Broker) LeaveAll(s Session) {
	if s == nil {
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	for matchID := range b.joined[s.ID()] {
		b.leaveLocked(s.ID(), matchID)
	}
	delete(b.joined, s.ID())
}

func (b *Broker) leaveLocked(sessionID string, matchID int64) {
	room, ok := b.rooms[matchID]
	if !ok {
		return
	}
	delete(room, sessionID)
	if len(room) == 0 {
		delete(b.rooms, matchID)
	}
	if rooms, ok := b.joined[sessionID]; ok {
		delete(rooms, matchID)
		if len(rooms) == 0 {
			delete(b.joined, sessionID)
		}
	}
}

// BroadcastRoom fans the event out to every session in the room,
// including the sender's other devices. Membership is snapshotted under
// the read lock; enqueueing happens outside it.
func (b *Broker) BroadcastRoom(matchID int64, ev Event) {
	b.sendRoom(matchID, "", ev)
}

// BroadcastRoomExcept relays to everyone in the room but the named
// session. Used for typing signals, which never echo to the sender.
func (b *Broker) BroadcastRoomExcept(matchID int64, exceptSessionID string, ev Event) {
	b.sendRoom(matchID, exceptSessionID, ev)
}

func (b *Broker) sendRoom(matchID int64, exceptSessionID string, ev Event) {
	b.mu.RLock()
	sessions := make([]Session, 0, len(b.rooms[matchID]))
	for id, s := range b.rooms[matchID] {
		if id == exceptSessionID {
			continue
		}
		sessions = append(sessions, s)
	}
	b.mu.RUnlock()

	for _, s := range sessions {
		if !s.Enqueue(ev) {
			b.log.Debug("dropping unresponsive room session",
				zap.Int64("match_id", matchID),
				zap.String("session_id", s.ID()),
				zap.String("event", ev.Name),
			)
			s.Close()
		}
	}
}

func (b *Broker) RoomSize(matchID int64) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.rooms[matchID])
}

func (b *Broker) InRoom(sessionID string, matchID int64) bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	_, ok := b.rooms[matchID][sessionID]
	return ok
}

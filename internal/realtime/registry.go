package realtime

import (
	"sync"

	"go.uber.org/zap"
)

// Registry tracks which user owns which live sessions and supports
// targeted push by user id. Delivery is best effort: with no live
// session the event is dropped, the durable notification row is the
// fallback record.
type Registry struct {
	mu     sync.RWMutex
	byUser map[int64]map[string]Session
	log    *zap.Logger
}

func NewRegistry(log *zap.Logger) *Registry {
	if log == nil {
		log = zap.NewNop()
	}
	return &Registry{
		byUser: make(map[int64]map[string]Session),
		log:    log,
	}
}

func (r *Registry) Register(s Session) {
	if s == nil || s.UserID() <= 0 {
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	sessions, ok := r.byUser[s.UserID()]
	if !ok {
		sessions = make(map[string]Session)
		r.byUser[s.UserID()] = sessions
	}
	sessions[s.ID()] = s
}

func (r *Registry) Unregister(s Session) {
	if s == nil {
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	sessions, ok := r.byUser[s.UserID()]
	if !ok {
		return
	}
	delete(sessions, s.ID())
	if len(sessions) == 0 {
		delete(r.byUser, s.UserID())
	}
}

// SendToUser delivers the event to every live session of userID.
// Membership is snapshotted under the read lock and delivery happens
// outside it, so a slow session never stalls an unrelated caller. A
// session that cannot accept the event is closed as disconnected.
func (r *Registry) SendToUser(userID int64, ev Event) {
	r.mu.RLock()
	sessions := make([]Session, 0, len(r.byUser[userID]))
	for _, s := range r.byUser[userID] {
		sessions = append(sessions, s)
	}
	r.mu.RUnlock()

	for _, s := range sessions {
		if !s.Enqueue(ev) {
			r.log.Debug("dropping unresponsive session",
				zap.Int64("user_id", userID),
				zap.String("session_id", s.ID()),
				zap.String("event", ev.Name),
			)
			s.Close()
		}
	}
}

func (r *Registry) SessionCount(userID int64) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.byUser[userID])
}

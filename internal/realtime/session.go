package realtime

// Session is one live connection owned by an authenticated user. A user
// may hold several sessions at once (multiple devices).
type Session interface {
	ID() string
	UserID() int64

	// Enqueue hands the event to the session's outbound mailbox without
	// blocking. It reports false when the mailbox is full or closed; the
	// caller treats that as a dead connection.
	Enqueue(ev Event) bool

	// Close tears the session down. Safe to call more than once.
	Close()
}

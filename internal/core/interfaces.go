package core

import "github.com/dkeye/Chat/internal/domain"

// SessionID is the transport-assigned identifier of one live connection.
type SessionID string

// Frame is one encoded outbound message.
type Frame []byte

// SignalConnection abstracts for a system messaging transport
// Owned by the adapter; the adapter must Close() it.
type SignalConnection interface {
	TrySend(Frame) error
	Close()
}

// Channel is the named-event transport the coordinator drives.
// Room tags are kept by the transport itself and are independent of
// the membership registry, so a connection shadowed by a duplicate
// username still receives room broadcasts.
type Channel interface {
	Emit(sid SessionID, event string, payload any)
	JoinRoom(sid SessionID, room domain.RoomName)
	LeaveRoom(sid SessionID, room domain.RoomName)
	// BroadcastRoom delivers to every connection tagged with room except
	// the one given; an empty except delivers to all of them.
	BroadcastRoom(room domain.RoomName, event string, payload any, except SessionID)
}

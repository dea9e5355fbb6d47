package domain

// Wire-level event names. Clients match on these strings exactly.
const (
	EventJoinRoom     = "join room"
	EventChatMessage  = "chat message"
	EventLeaveRoom    = "leave room"
	EventRoomJoined   = "room joined"
	EventAdminMessage = "admin message"
	EventUserJoined   = "user joined"
	EventUserLeft     = "user left"

	// EventConnect hands the client its connection id right after the upgrade.
	EventConnect = "connect"
	// EventError reports a join request the boundary refused.
	EventError = "error"
)

type RoomJoined struct {
	Room     RoomName   `json:"room"`
	Username Username   `json:"username"`
	Users    []Username `json:"users"`
}

type AdminMessage struct {
	Message   string `json:"message"`
	Timestamp string `json:"timestamp"`
}

// RosterUpdate is sent with both "user joined" and "user left".
type RosterUpdate struct {
	Username Username   `json:"username"`
	Users    []Username `json:"users"`
}

type ChatMessage struct {
	Username     Username `json:"username"`
	Message      string   `json:"message"`
	Timestamp    string   `json:"timestamp"`
	ConnectionID string   `json:"connectionId"`
}

type Connected struct {
	ConnectionID string `json:"connectionId"`
}

type ErrorNotice struct {
	Message string `json:"message"`
}

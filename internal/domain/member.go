package domain

// Member is a connection's current room assignment.
// Room and Username are either both set or both empty.
type Member struct {
	Room     RoomName
	Username Username
}

// Joined reports whether the assignment points at a room.
func (m Member) Joined() bool {
	return m.Room != "" && m.Username != ""
}

package domain

type RoomName string

// RoomInfo is a read-only view for APIs.
type RoomInfo struct {
	Name        RoomName `json:"name"`
	MemberCount int      `json:"member_count"`
}

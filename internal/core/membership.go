package core

import (
	"maps"
	"slices"

	"github.com/dkeye/Chat/internal/domain"
	"github.com/rs/zerolog/log"
)

// Membership maps room names to their current members.
// A room with no members is never kept.
//
// It holds no lock: every call must come from the single event loop.
type Membership struct {
	rooms map[domain.RoomName]map[domain.Username]SessionID
}

func NewMembership() *Membership {
	return &Membership{rooms: make(map[domain.RoomName]map[domain.Username]SessionID)}
}

// AddMember inserts or overwrites username in room, creating the room.
// A second connection using the same username replaces the first one's entry.
func (m *Membership) AddMember(room domain.RoomName, username domain.Username, sid SessionID) {
	members, ok := m.rooms[room]
	if !ok {
		members = make(map[domain.Username]SessionID)
		m.rooms[room] = members
	}
	if prev, taken := members[username]; taken && prev != sid {
		log.Warn().
			Str("module", "core.membership").
			Str("room", string(room)).
			Str("username", string(username)).
			Str("prev_sid", string(prev)).
			Str("sid", string(sid)).
			Msg("username already in room, overwriting")
	}
	members[username] = sid
}

// RemoveMember deletes username from room and drops the room once empty.
// Absent rooms or usernames are ignored.
func (m *Membership) RemoveMember(room domain.RoomName, username domain.Username) {
	members, ok := m.rooms[room]
	if !ok {
		return
	}
	delete(members, username)
	if len(members) == 0 {
		delete(m.rooms, room)
		log.Debug().Str("module", "core.membership").Str("room", string(room)).Msg("room emptied")
	}
}

// ListMembers returns the usernames in room in no particular order.
func (m *Membership) ListMembers(room domain.RoomName) []domain.Username {
	members := m.rooms[room]
	out := make([]domain.Username, 0, len(members))
	for u := range members {
		out = append(out, u)
	}
	return out
}

// Owner returns the connection currently mapped to username in room.
func (m *Membership) Owner(room domain.RoomName, username domain.Username) (SessionID, bool) {
	sid, ok := m.rooms[room][username]
	return sid, ok
}

func (m *Membership) Has(room domain.RoomName) bool {
	_, ok := m.rooms[room]
	return ok
}

// Len is the number of live rooms.
func (m *Membership) Len() int { return len(m.rooms) }

// List returns every live room sorted by name.
func (m *Membership) List() []domain.RoomInfo {
	names := slices.Sorted(maps.Keys(m.rooms))
	out := make([]domain.RoomInfo, 0, len(names))
	for _, name := range names {
		out = append(out, domain.RoomInfo{Name: name, MemberCount: len(m.rooms[name])})
	}
	return out
}

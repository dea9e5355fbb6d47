package orch

import (
	"fmt"

	"github.com/dkeye/Chat/internal/core"
	"github.com/dkeye/Chat/internal/domain"
	"github.com/rs/zerolog/log"
)

// Join places the session in room as username, leaving its previous room first.
func (o *Orchestrator) Join(sid core.SessionID, username domain.Username, room domain.RoomName) {
	if _, ok := o.Sessions.Get(sid); !ok {
		log.Warn().Str("module", "orch").Str("sid", string(sid)).Msg("join from unknown session")
		return
	}
	if prev, ok := o.Sessions.RoomOf(sid); ok {
		o.leave(sid, prev, "%s has left!")
		log.Info().Str("module", "orch").Str("sid", string(sid)).Str("from_room", string(prev.Room)).Msg("left previous room")
	}

	o.Channel.JoinRoom(sid, room)
	o.Members.AddMember(room, username, sid)
	o.Sessions.Assign(sid, domain.Member{Room: room, Username: username})
	o.Metrics.Joins.Inc()
	o.Metrics.Rooms.Set(float64(o.Members.Len()))

	users := o.Members.ListMembers(room)
	ts := o.timestamp()

	o.Channel.Emit(sid, domain.EventRoomJoined, domain.RoomJoined{
		Room:     room,
		Username: username,
		Users:    users,
	})
	o.Channel.Emit(sid, domain.EventAdminMessage, domain.AdminMessage{
		Message:   fmt.Sprintf("Welcome, %s!", username),
		Timestamp: ts,
	})
	o.Channel.BroadcastRoom(room, domain.EventAdminMessage, domain.AdminMessage{
		Message:   fmt.Sprintf("%s has joined!", username),
		Timestamp: ts,
	}, sid)
	o.Channel.BroadcastRoom(room, domain.EventUserJoined, domain.RosterUpdate{
		Username: username,
		Users:    users,
	}, sid)

	log.Info().Str("module", "orch").Str("sid", string(sid)).Str("username", string(username)).Str("room", string(room)).Msg("joined room")
}

// Leave takes the session out of its room. Unjoined sessions are ignored.
func (o *Orchestrator) Leave(sid core.SessionID) {
	m, ok := o.Sessions.RoomOf(sid)
	if !ok {
		return
	}
	o.leave(sid, m, "%s has left!")
	log.Info().Str("module", "orch").Str("sid", string(sid)).Str("username", string(m.Username)).Str("room", string(m.Room)).Msg("left room")
}

// leave removes m from its room, tells the remaining members and clears the
// session. notice is a format string taking the username.
func (o *Orchestrator) leave(sid core.SessionID, m domain.Member, notice string) {
	o.Channel.LeaveRoom(sid, m.Room)
	o.Members.RemoveMember(m.Room, m.Username)
	o.Metrics.Rooms.Set(float64(o.Members.Len()))

	o.Channel.BroadcastRoom(m.Room, domain.EventAdminMessage, domain.AdminMessage{
		Message:   fmt.Sprintf(notice, m.Username),
		Timestamp: o.timestamp(),
	}, sid)
	o.Channel.BroadcastRoom(m.Room, domain.EventUserLeft, domain.RosterUpdate{
		Username: m.Username,
		Users:    o.Members.ListMembers(m.Room),
	}, sid)

	o.Sessions.Clear(sid)
}

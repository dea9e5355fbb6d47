package orch

import (
	"github.com/dkeye/Chat/internal/core"
	"github.com/dkeye/Chat/internal/domain"
	"github.com/rs/zerolog/log"
)

// Send broadcasts message to everyone in the session's room, sender included.
// Messages from unjoined sessions are dropped.
func (o *Orchestrator) Send(sid core.SessionID, message string) {
	m, ok := o.Sessions.RoomOf(sid)
	if !ok {
		log.Debug().Str("module", "orch").Str("sid", string(sid)).Msg("chat message while unjoined, dropped")
		return
	}
	o.Channel.BroadcastRoom(m.Room, domain.EventChatMessage, domain.ChatMessage{
		Username:     m.Username,
		Message:      message,
		Timestamp:    o.timestamp(),
		ConnectionID: string(sid),
	}, "")
	o.Metrics.Messages.Inc()
	log.Info().Str("module", "orch").Str("username", string(m.Username)).Str("room", string(m.Room)).Msg("chat message")
}

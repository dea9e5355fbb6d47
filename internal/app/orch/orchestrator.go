// Package orch is the session coordinator: it turns inbound protocol events
// into membership changes and room broadcasts.
//
// Every method must be called from the app.Loop goroutine.
package orch

import (
	"time"

	"github.com/dkeye/Chat/internal/app"
	"github.com/dkeye/Chat/internal/core"
	"github.com/dkeye/Chat/internal/domain"
	"github.com/dkeye/Chat/internal/observability"
	"github.com/rs/zerolog/log"
)

// clockLayout renders timestamps for display only.
const clockLayout = "3:04:05 PM"

type Orchestrator struct {
	Members  *core.Membership
	Sessions *app.Sessions
	Channel  core.Channel
	Metrics  *observability.Metrics

	// Now defaults to time.Now.
	Now func() time.Time
}

func New(ch core.Channel, metrics *observability.Metrics) *Orchestrator {
	return &Orchestrator{
		Members:  core.NewMembership(),
		Sessions: app.NewSessions(),
		Channel:  ch,
		Metrics:  metrics,
		Now:      time.Now,
	}
}

func (o *Orchestrator) timestamp() string {
	now := time.Now
	if o.Now != nil {
		now = o.Now
	}
	return now().Format(clockLayout)
}

// Connect registers an unjoined session for a new connection.
func (o *Orchestrator) Connect(sid core.SessionID) {
	if !o.Sessions.Bind(sid) {
		log.Warn().Str("module", "orch").Str("sid", string(sid)).Msg("connection already bound")
		return
	}
	o.Metrics.Connections.Inc()
	log.Info().Str("module", "orch").Str("sid", string(sid)).Msg("user connected")
}

// Disconnect handles transport teardown. It acts like Leave and then forgets
// the session, so a repeated call finds nothing to do.
func (o *Orchestrator) Disconnect(sid core.SessionID) {
	if _, ok := o.Sessions.Get(sid); !ok {
		return
	}
	if m, ok := o.Sessions.RoomOf(sid); ok {
		o.leave(sid, m, "%s has disconnected!")
	}
	o.Sessions.Unbind(sid)
	o.Metrics.Connections.Dec()
	log.Info().Str("module", "orch").Str("sid", string(sid)).Msg("user disconnected")
}

// Rooms lists live rooms.
func (o *Orchestrator) Rooms() []domain.RoomInfo {
	return o.Members.List()
}

// Roster returns the usernames in room, or false if the room does not exist.
func (o *Orchestrator) Roster(room domain.RoomName) ([]domain.Username, bool) {
	if !o.Members.Has(room) {
		return nil, false
	}
	return o.Members.ListMembers(room), true
}

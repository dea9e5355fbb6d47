package app

import (
	"github.com/dkeye/Chat/internal/core"
	"github.com/dkeye/Chat/internal/domain"
	"github.com/rs/zerolog/log"
)

type sessionEntry struct {
	Member domain.Member
}

// Sessions is the per-connection record table, keyed by connection id.
// Like core.Membership it is only used from the event loop.
type Sessions struct {
	entries map[core.SessionID]*sessionEntry
}

func NewSessions() *Sessions {
	return &Sessions{entries: make(map[core.SessionID]*sessionEntry)}
}

// Bind registers a fresh, unjoined session. Returns false if sid is already bound.
func (s *Sessions) Bind(sid core.SessionID) bool {
	if _, ok := s.entries[sid]; ok {
		return false
	}
	s.entries[sid] = &sessionEntry{}
	log.Debug().Str("module", "app.sessions").Str("sid", string(sid)).Msg("bound session")
	return true
}

func (s *Sessions) Get(sid core.SessionID) (domain.Member, bool) {
	e, ok := s.entries[sid]
	if !ok {
		return domain.Member{}, false
	}
	return e.Member, true
}

// RoomOf returns the session's room assignment if it has one.
func (s *Sessions) RoomOf(sid core.SessionID) (domain.Member, bool) {
	e, ok := s.entries[sid]
	if !ok || !e.Member.Joined() {
		return domain.Member{}, false
	}
	return e.Member, true
}

// Assign moves the session into room as username. Both fields change together.
func (s *Sessions) Assign(sid core.SessionID, m domain.Member) bool {
	e, ok := s.entries[sid]
	if !ok {
		return false
	}
	e.Member = m
	log.Debug().Str("module", "app.sessions").Str("sid", string(sid)).Str("room", string(m.Room)).Msg("assigned room")
	return true
}

// Clear returns the session to the unjoined state.
func (s *Sessions) Clear(sid core.SessionID) {
	if e, ok := s.entries[sid]; ok {
		e.Member = domain.Member{}
	}
}

// Unbind forgets the session. Returns false if it was not bound.
func (s *Sessions) Unbind(sid core.SessionID) bool {
	if _, ok := s.entries[sid]; !ok {
		return false
	}
	delete(s.entries, sid)
	log.Debug().Str("module", "app.sessions").Str("sid", string(sid)).Msg("unbind session")
	return true
}

func (s *Sessions) Len() int { return len(s.entries) }

package signal

import (
	"encoding/json"
	"errors"

	"github.com/dkeye/Chat/internal/core"
	"github.com/dkeye/Chat/internal/domain"
	"github.com/dkeye/Chat/internal/observability"
	"github.com/rs/zerolog/log"
)

// Hub is the core.Channel over live websocket connections.
// It keeps its own room tags, separate from core.Membership.
// Like the registry it is only touched from the event loop.
type Hub struct {
	conns   map[core.SessionID]core.SignalConnection
	rooms   map[domain.RoomName]map[core.SessionID]struct{}
	metrics *observability.Metrics
}

var _ core.Channel = (*Hub)(nil)

func NewHub(metrics *observability.Metrics) *Hub {
	return &Hub{
		conns:   make(map[core.SessionID]core.SignalConnection),
		rooms:   make(map[domain.RoomName]map[core.SessionID]struct{}),
		metrics: metrics,
	}
}

type outbound struct {
	Event string `json:"event"`
	Data  any    `json:"data,omitempty"`
}

func encode(event string, payload any) (core.Frame, error) {
	return json.Marshal(outbound{Event: event, Data: payload})
}

func (h *Hub) Register(sid core.SessionID, conn core.SignalConnection) {
	h.conns[sid] = conn
}

// Unregister drops every room tag of sid and closes its connection.
func (h *Hub) Unregister(sid core.SessionID) {
	conn, ok := h.conns[sid]
	if !ok {
		return
	}
	delete(h.conns, sid)
	for room := range h.rooms {
		h.LeaveRoom(sid, room)
	}
	conn.Close()
}

func (h *Hub) JoinRoom(sid core.SessionID, room domain.RoomName) {
	tagged, ok := h.rooms[room]
	if !ok {
		tagged = make(map[core.SessionID]struct{})
		h.rooms[room] = tagged
	}
	tagged[sid] = struct{}{}
}

func (h *Hub) LeaveRoom(sid core.SessionID, room domain.RoomName) {
	tagged, ok := h.rooms[room]
	if !ok {
		return
	}
	delete(tagged, sid)
	if len(tagged) == 0 {
		delete(h.rooms, room)
	}
}

func (h *Hub) Emit(sid core.SessionID, event string, payload any) {
	conn, ok := h.conns[sid]
	if !ok {
		return
	}
	frame, err := encode(event, payload)
	if err != nil {
		log.Error().Err(err).Str("module", "signal").Str("event", event).Msg("encode frame")
		return
	}
	h.send(sid, conn, event, frame)
}

func (h *Hub) BroadcastRoom(room domain.RoomName, event string, payload any, except core.SessionID) {
	tagged := h.rooms[room]
	if len(tagged) == 0 {
		return
	}
	frame, err := encode(event, payload)
	if err != nil {
		log.Error().Err(err).Str("module", "signal").Str("event", event).Msg("encode frame")
		return
	}
	for sid := range tagged {
		if sid == except {
			continue
		}
		if conn, ok := h.conns[sid]; ok {
			h.send(sid, conn, event, frame)
		}
	}
}

func (h *Hub) send(sid core.SessionID, conn core.SignalConnection, event string, frame core.Frame) {
	err := conn.TrySend(frame)
	if err == nil {
		return
	}
	h.metrics.DroppedFrames.Inc()
	ev := log.Warn()
	if errors.Is(err, ErrConnClosed) {
		ev = log.Debug()
	}
	ev.Err(err).Str("module", "signal").Str("sid", string(sid)).Str("event", event).Msg("frame dropped")
}

package signal

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/dkeye/Chat/internal/core"
	"github.com/dkeye/Chat/internal/domain"
	"github.com/rs/zerolog/log"
)

type joinPayload struct {
	Username string `json:"username" validate:"required,min=2,max=20"`
	Room     string `json:"room" validate:"required,min=2,max=20"`
}

func (ctl *SignalWSController) handleJoin(ctx context.Context, sid core.SessionID, data json.RawMessage) {
	var p joinPayload
	if err := json.Unmarshal(data, &p); err != nil {
		log.Warn().Err(err).Str("module", "signal").Str("sid", string(sid)).Msg("bad join payload")
		ctl.reject(ctx, sid, "Please enter both username and room name")
		return
	}
	p.Username = strings.TrimSpace(p.Username)
	p.Room = strings.TrimSpace(p.Room)
	if err := ctl.validate.Struct(&p); err != nil {
		log.Info().Err(err).Str("module", "signal").Str("sid", string(sid)).Msg("join rejected")
		ctl.reject(ctx, sid, joinProblem(err))
		return
	}

	username, room := domain.Username(p.Username), domain.RoomName(p.Room)
	ctl.submit(ctx, sid, domain.EventJoinRoom, func() {
		ctl.Orch.Join(sid, username, room)
	})
}

func (ctl *SignalWSController) handleLeave(ctx context.Context, sid core.SessionID) {
	ctl.submit(ctx, sid, domain.EventLeaveRoom, func() {
		ctl.Orch.Leave(sid)
	})
}

// reject tells only this connection why its request was refused.
func (ctl *SignalWSController) reject(ctx context.Context, sid core.SessionID, msg string) {
	ctl.submit(ctx, sid, domain.EventError, func() {
		ctl.Hub.Emit(sid, domain.EventError, domain.ErrorNotice{Message: msg})
	})
}

package signal

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/dkeye/Chat/internal/core"
	"github.com/dkeye/Chat/internal/domain"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

type inbound struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

func (ctl *SignalWSController) writePump(ctx context.Context, sid core.SessionID, c *WsSignalConn) {
	ticker := time.NewTicker(ctl.cfg.PingPeriod)
	defer func() {
		ticker.Stop()
		c.Close()
		_ = c.conn.Close()
	}()

	for {
		select {
		case <-ctx.Done():
			log.Debug().Str("module", "signal").Str("sid", string(sid)).Msg("writePump ctx done")
			return
		case data, ok := <-c.send:
			if err := c.conn.SetWriteDeadline(time.Now().Add(ctl.cfg.WriteWait)); err != nil {
				log.Error().Err(err).Str("module", "signal").Str("sid", string(sid)).Msg("writePump set deadline")
				return
			}
			if !ok {
				msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
				if err := c.conn.WriteMessage(websocket.CloseMessage, msg); err != nil {
					log.Debug().Err(err).Str("module", "signal").Str("sid", string(sid)).Msg("writePump close frame")
				}
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				log.Error().Err(err).Str("module", "signal").Str("sid", string(sid)).Msg("writePump write error")
				return
			}
		case <-ticker.C:
			if err := c.conn.SetWriteDeadline(time.Now().Add(ctl.cfg.WriteWait)); err != nil {
				return
			}
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				log.Debug().Err(err).Str("module", "signal").Str("sid", string(sid)).Msg("writePump ping failed")
				return
			}
		}
	}
}

// readPump decodes inbound frames until the socket fails, then queues the
// single disconnect for this connection.
func (ctl *SignalWSController) readPump(ctx context.Context, cancel context.CancelFunc, sid core.SessionID, c *WsSignalConn) {
	defer func() {
		log.Info().Str("module", "signal").Str("sid", string(sid)).Msg("readPump closing")
		cancel()
		// ctx is already canceled here; the disconnect must still be queued.
		err := ctl.Loop.Submit(context.Background(), func() {
			ctl.Orch.Disconnect(sid)
			ctl.Hub.Unregister(sid)
		})
		if err != nil {
			log.Warn().Err(err).Str("module", "signal").Str("sid", string(sid)).Msg("disconnect not delivered")
			c.Close()
		}
	}()

	c.conn.SetReadLimit(max(ctl.cfg.ReadLimit, int64(MaxFrameSize)))
	_ = c.conn.SetReadDeadline(time.Now().Add(ctl.cfg.PongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(ctl.cfg.PongWait))
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			logReadError(sid, err)
			return
		}
		ctl.handleSignal(ctx, sid, data)
	}
}

func logReadError(sid core.SessionID, err error) {
	switch {
	case errors.Is(err, websocket.ErrReadLimit):
		log.Warn().Err(err).Str("module", "signal").Str("sid", string(sid)).Msg("frame exceeds read limit")
	case websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway):
		log.Debug().Str("module", "signal").Str("sid", string(sid)).Msg("client closed connection")
	default:
		log.Info().Err(err).Str("module", "signal").Str("sid", string(sid)).Msg("readPump read error")
	}
}

func (ctl *SignalWSController) handleSignal(ctx context.Context, sid core.SessionID, data []byte) {
	var env inbound
	if err := json.Unmarshal(data, &env); err != nil {
		log.Warn().Err(err).Str("module", "signal").Str("sid", string(sid)).Msg("bad json")
		return
	}

	switch env.Event {
	case domain.EventJoinRoom:
		ctl.handleJoin(ctx, sid, env.Data)
	case domain.EventChatMessage:
		ctl.handleChat(ctx, sid, env.Data)
	case domain.EventLeaveRoom:
		ctl.handleLeave(ctx, sid)
	default:
		log.Warn().Str("module", "signal").Str("sid", string(sid)).Str("event", env.Event).Msg("unknown event")
	}
}

// submit hands fn to the event loop, logging when it cannot be queued.
func (ctl *SignalWSController) submit(ctx context.Context, sid core.SessionID, event string, fn func()) {
	if err := ctl.Loop.Submit(ctx, fn); err != nil {
		log.Warn().Err(err).Str("module", "signal").Str("sid", string(sid)).Str("event", event).Msg("event not queued")
	}
}

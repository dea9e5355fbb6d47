package signal

import (
	"context"
	"errors"
	"sync"

	"github.com/dkeye/Chat/internal/app"
	"github.com/dkeye/Chat/internal/app/orch"
	"github.com/dkeye/Chat/internal/config"
	"github.com/dkeye/Chat/internal/core"
	"github.com/dkeye/Chat/internal/domain"
	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

var (
	ErrBackpressure = errors.New("backpressure")
	ErrConnClosed   = errors.New("connection closed")
)

type SignalWSController struct {
	Orch *orch.Orchestrator
	Loop *app.Loop
	Hub  *Hub

	cfg      *config.Config
	upgrader websocket.Upgrader
	validate *validator.Validate
}

func NewSignalWSController(cfg *config.Config, loop *app.Loop, hub *Hub, o *orch.Orchestrator) *SignalWSController {
	return &SignalWSController{
		Orch: o,
		Loop: loop,
		Hub:  hub,
		cfg:  cfg,
		upgrader: websocket.Upgrader{
			CheckOrigin: originChecker(cfg.AllowedOrigins),
		},
		validate: newValidator(),
	}
}

type WsSignalConn struct {
	conn *websocket.Conn
	send chan core.Frame

	mu     sync.RWMutex
	closed bool
}

func newWsSignalConn(ws *websocket.Conn, buffer int) *WsSignalConn {
	return &WsSignalConn{
		conn: ws,
		send: make(chan core.Frame, buffer),
	}
}

func (c *WsSignalConn) TrySend(f core.Frame) error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		return ErrConnClosed
	}
	select {
	case c.send <- f:
	default:
		return ErrBackpressure
	}
	return nil
}

// Close stops accepting frames. The write pump drains what is queued, sends
// a close frame and then closes the socket.
func (c *WsSignalConn) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	close(c.send)
}

// HandleSignal upgrades the request and starts the connection pumps.
// ctx bounds the connection's lifetime; canceling it tears the socket down.
func (ctl *SignalWSController) HandleSignal(ctx context.Context, c *gin.Context) {
	ws, err := ctl.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Error().Err(err).Str("module", "signal").Str("remote", c.ClientIP()).Msg("ws upgrade")
		return
	}

	sid := core.SessionID(uuid.NewString())
	conn := newWsSignalConn(ws, ctl.cfg.SendBuffer)
	log.Info().Str("module", "signal").Str("sid", string(sid)).Str("remote", c.ClientIP()).Msg("new WS connection")

	ctx, cancel := context.WithCancel(ctx)
	err = ctl.Loop.Submit(ctx, func() {
		ctl.Hub.Register(sid, conn)
		ctl.Orch.Connect(sid)
		ctl.Hub.Emit(sid, domain.EventConnect, domain.Connected{ConnectionID: string(sid)})
	})
	if err != nil {
		log.Error().Err(err).Str("module", "signal").Str("sid", string(sid)).Msg("register connection")
		cancel()
		conn.Close()
		_ = ws.Close()
		return
	}

	go ctl.writePump(ctx, sid, conn)
	go ctl.readPump(ctx, cancel, sid, conn)
}

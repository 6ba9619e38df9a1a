package signal

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/JDav117/Sports-Event-LIVE/internal/app"
	"github.com/JDav117/Sports-Event-LIVE/internal/core"
	"github.com/JDav117/Sports-Event-LIVE/internal/domain"
)

var ErrBackpressure = errors.New("backpressure")

// Controller owns the live websocket endpoint.
type Controller struct {
	Gw         *app.Gateway
	ReadLimit  int64
	PingPeriod time.Duration
}

func NewController(gw *app.Gateway, readLimit int64, pingPeriod time.Duration) *Controller {
	if pingPeriod <= 0 {
		pingPeriod = 54 * time.Second
	}
	return &Controller{Gw: gw, ReadLimit: readLimit, PingPeriod: pingPeriod}
}

// WsConn wraps one websocket with a bounded send queue. TrySend never
// blocks: a full queue drops the frame and reports backpressure.
type WsConn struct {
	conn *websocket.Conn
	send chan core.Frame

	mu     sync.RWMutex
	closed bool
}

func (c *WsConn) TrySend(f core.Frame) error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		return errors.New("connection closed")
	}
	select {
	case c.send <- f:
	default:
		return ErrBackpressure
	}
	return nil
}

func (c *WsConn) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	close(c.send)
	_ = c.conn.Close()
	c.mu.Unlock()
}

// client is the per-connection state the handlers work against.
type client struct {
	id         domain.ConnID
	conn       *WsConn
	limiter    *core.ConnLimiter
	remoteAddr string
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// HandleLive upgrades the request and runs the connection's pumps
// until the client goes away, then resolves the disconnect against
// every room the connection was a member of.
func (ctl *Controller) HandleLive(ctx context.Context, c *gin.Context) {
	token := c.GetString("client_token")
	connID := domain.ConnID(uuid.NewString())
	log.Info().Str("module", "signal").
		Str("client_token", token).
		Str("conn_id", string(connID)).
		Msg("new WS connection")

	ws, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("ws upgrade")
		return
	}
	if ctl.ReadLimit > 0 {
		ws.SetReadLimit(ctl.ReadLimit)
	}

	conn := &WsConn{
		conn: ws,
		send: make(chan core.Frame, 32),
	}
	cl := &client{
		id:         connID,
		conn:       conn,
		limiter:    ctl.Gw.NewLimiter(),
		remoteAddr: c.ClientIP(),
	}

	ctx, cancel := context.WithCancel(ctx)
	go ctl.writePump(ctx, conn)
	go func() {
		defer cancel()
		ctl.readPump(ctx, cl)
		ctl.Gw.Disconnect(cl.id)
		conn.Close()
	}()
}

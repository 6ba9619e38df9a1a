package signal

import (
	"context"
	"encoding/json"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

var validate = validator.New()

func (ctl *Controller) writePump(ctx context.Context, c *WsConn) {
	ping := time.NewTicker(ctl.PingPeriod)
	defer ping.Stop()
	for {
		select {
		case <-ctx.Done():
			log.Info().Str("module", "signal").Msg("writePump ctx done")
			return
		case <-ping.C:
			if err := c.conn.SetWriteDeadline(time.Now().Add(5 * time.Second)); err != nil {
				return
			}
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				log.Warn().Err(err).Str("module", "signal").Msg("writePump ping error")
				return
			}
		case data, ok := <-c.send:
			if !ok {
				log.Warn().Str("module", "signal").Msg("writePump channel closed")
				return
			}
			if err := c.conn.SetWriteDeadline(time.Now().Add(5 * time.Second)); err != nil {
				log.Error().Err(err).Str("module", "signal").Msg("writePump set deadline")
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				log.Error().Err(err).Str("module", "signal").Msg("writePump write error")
				return
			}
		}
	}
}

func (ctl *Controller) readPump(ctx context.Context, cl *client) {
	defer log.Info().Str("module", "signal").
		Str("conn_id", string(cl.id)).
		Msg("readPump closing")

	// A peer that stops answering pings is dead; the expiring read
	// deadline unblocks ReadMessage so the disconnect resolves.
	pongWait := ctl.PingPeriod * 10 / 9
	_ = cl.conn.conn.SetReadDeadline(time.Now().Add(pongWait))
	cl.conn.conn.SetPongHandler(func(string) error {
		return cl.conn.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		select {
		case <-ctx.Done():
			log.Info().Str("module", "signal").
				Str("conn_id", string(cl.id)).
				Msg("readPump ctx done")
			return
		default:
			_, data, err := cl.conn.conn.ReadMessage()
			if err != nil {
				log.Info().Err(err).Str("module", "signal").
					Str("conn_id", string(cl.id)).
					Msg("readPump read error")
				return
			}
			ctl.handleMessage(ctx, cl, data)
		}
	}
}

func (ctl *Controller) handleMessage(ctx context.Context, cl *client, data []byte) {
	var env struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(data, &env); err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("bad json")
		return
	}

	switch env.Type {
	case "join":
		ctl.handleJoin(ctx, cl, data)
	case "leave":
		ctl.handleLeave(cl, data)
	case "chat":
		ctl.handleChat(cl, data)
	case "substitution":
		ctl.handleSubstitution(cl, data)
	case "timeout":
		ctl.handleTimeout(cl, data)
	case "ping":
		ctl.handlePing(cl.conn)
	default:
		log.Warn().Str("module", "signal").Str("type", env.Type).Msg("unknown signal")
	}
}

func (ctl *Controller) sendJSON(c *WsConn, v any) {
	b, err := json.Marshal(v)
	if err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("sendJSON marshal")
		return
	}
	_ = c.TrySend(b)
}

// sendError reports a request-local failure to the sender only.
func (ctl *Controller) sendError(c *WsConn, code string) {
	ctl.sendJSON(c, map[string]any{
		"type":  "error",
		"error": code,
	})
}

// decode unmarshals and field-validates an inbound payload. A failure
// is answered to the sender alone; nothing reaches the room.
func (ctl *Controller) decode(c *WsConn, data []byte, v any) bool {
	if err := json.Unmarshal(data, v); err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("bad payload")
		ctl.sendError(c, "bad_payload")
		return false
	}
	if err := validate.Struct(v); err != nil {
		log.Warn().Err(err).Str("module", "signal").Msg("invalid payload")
		ctl.sendError(c, "bad_payload")
		return false
	}
	return true
}

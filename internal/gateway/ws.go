package gateway

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/coder/websocket"
)

// handleStatsStream upgrades to WebSocket and pushes a stats snapshot
// every StatsInterval until the client disconnects. Consumed by the ops
// dashboard; one frame per tick, JSON-encoded manager.Stats.
func (g *Gateway) handleStatsStream() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := websocket.Accept(w, r, nil)
		if err != nil {
			g.logger.Warn("gateway: websocket accept failed", "error", err)
			return
		}
		defer func() {
			_ = conn.Close(websocket.StatusInternalError, "unexpected close")
		}()

		ctx := r.Context()
		ticker := time.NewTicker(g.config.StatsInterval)
		defer ticker.Stop()

		// First snapshot immediately so clients render without waiting a tick.
		for {
			data, err := json.Marshal(g.manager.Stats())
			if err != nil {
				_ = conn.Close(websocket.StatusInternalError, "stats encoding failed")
				return
			}
			if err := conn.Write(ctx, websocket.MessageText, data); err != nil {
				// Client went away; nothing to log at error level.
				g.logger.Debug("gateway: stats stream closed", "error", err)
				return
			}

			select {
			case <-ctx.Done():
				_ = conn.Close(websocket.StatusGoingAway, "server shutting down")
				return
			case <-ticker.C:
			}
		}
	}
}

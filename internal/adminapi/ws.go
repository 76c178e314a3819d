package adminapi

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/sonicrain/matchd/internal/engine"
)

const liveFeedInterval = 2 * time.Second

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// liveSnapshots upgrades to a WebSocket and pushes an engine.Snapshot every
// liveFeedInterval until the client disconnects. The handler goroutine does
// the ticker-driven writes; a second goroutine per connection only reads, to
// notice the client closing, since the admin dashboard never sends anything
// back.
func liveSnapshots(e *engine.Engine, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			return
		}
		defer conn.Close()

		closed := make(chan struct{})
		go func() {
			defer close(closed)
			for {
				if _, _, err := conn.ReadMessage(); err != nil {
					return
				}
			}
		}()

		ticker := time.NewTicker(liveFeedInterval)
		defer ticker.Stop()

		ctx := c.Request.Context()
		for {
			select {
			case <-closed:
				return
			case <-ctx.Done():
				return
			case <-ticker.C:
				snap, err := e.Stats(ctx)
				if err != nil {
					return
				}
				payload, err := json.Marshal(snap)
				if err != nil {
					log.Error("adminapi: marshal snapshot failed", zap.Error(err))
					continue
				}
				if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
					return
				}
			}
		}
	}
}

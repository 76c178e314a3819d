// Package adminapi exposes the operator-facing HTTP surface: login, a
// point-in-time snapshot of the matchmaking queues, Prometheus metrics, and
// a WebSocket feed for a live dashboard. It never touches the arena
// directly — every read goes through engine.Engine.Stats, which hands the
// request across the engine's command channel.
package adminapi

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/sonicrain/matchd/internal/config"
	"github.com/sonicrain/matchd/internal/engine"
)

// Server wraps the gin router and the http.Server built from it.
type Server struct {
	httpSrv *http.Server
	log     *zap.Logger
}

// New builds the admin HTTP server. It doesn't start listening; call Run.
func New(cfg *config.Config, e *engine.Engine, log *zap.Logger) *Server {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	r.POST("/login", loginHandler(cfg))

	api := r.Group("/api/v1")
	api.Use(requireToken(cfg.Admin.JWTSecret))
	api.GET("/snapshot", snapshotHandler(e))

	ws := r.Group("/ws")
	ws.Use(requireToken(cfg.Admin.JWTSecret))
	ws.GET("/live", liveSnapshots(e, log))

	return &Server{
		httpSrv: &http.Server{
			Addr:              cfg.Admin.Addr,
			Handler:           r,
			ReadHeaderTimeout: 5 * time.Second,
		},
		log: log,
	}
}

// Run starts serving and blocks until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		if err := s.httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return s.httpSrv.Shutdown(shutdownCtx)
	}
}

type loginRequest struct {
	User     string `json:"user" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func loginHandler(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req loginRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "user and password required"})
			return
		}
		if req.User != cfg.Admin.User || req.Password != cfg.Admin.Password {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
			return
		}
		token, err := issueToken(cfg.Admin.JWTSecret, req.User)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not issue token"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"token": token})
	}
}

func snapshotHandler(e *engine.Engine) gin.HandlerFunc {
	return func(c *gin.Context) {
		snap, err := e.Stats(c.Request.Context())
		if err != nil {
			c.JSON(http.StatusGatewayTimeout, gin.H{"error": "engine did not respond"})
			return
		}
		c.JSON(http.StatusOK, snap)
	}
}

package worker

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/nicholaskarlsen/mdcouple/internal/auth"
	"github.com/nicholaskarlsen/mdcouple/internal/observability"
)

// StatusServer exposes worker health, session state and Prometheus
// metrics over HTTP for the supervising layer. It never touches the
// coupling transport.
type StatusServer struct {
	node    string
	loop    *Loop
	started time.Time
	router  *gin.Engine
}

// StatusOptions tunes the HTTP surface. The zero value serves every
// route unauthenticated with no cross-origin access.
type StatusOptions struct {
	CorsOrigins []string
	// AuthToken, when set, gates /session behind a bearer token.
	AuthToken string
}

func NewStatusServer(node string, loop *Loop, logger zerolog.Logger, opts StatusOptions) *StatusServer {
	observability.RegisterMetrics()
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(observability.RequestTelemetry(node, logger))
	if len(opts.CorsOrigins) > 0 {
		r.Use(cors.New(cors.Config{
			AllowOrigins: opts.CorsOrigins,
			AllowMethods: []string{"GET"},
			AllowHeaders: []string{"Origin", "Content-Type"},
			MaxAge:       12 * time.Hour,
		}))
	}
	_ = r.SetTrustedProxies([]string{"127.0.0.1", "::1"})

	s := &StatusServer{
		node:    node,
		loop:    loop,
		started: time.Now(),
		router:  r,
	}
	s.registerRoutes(opts)
	return s
}

func (s *StatusServer) registerRoutes(opts StatusOptions) {
	s.router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status": "ok",
			"uptime": time.Since(s.started).String(),
			"node":   s.node,
		})
	})

	s.router.GET("/ready", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ready": true})
	})

	s.router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	session := s.router.Group("/")
	if opts.AuthToken != "" {
		session.Use(auth.Middleware(auth.StaticToken{Token: opts.AuthToken}))
	}
	session.GET("/session", func(c *gin.Context) {
		sess := s.loop.Session()
		c.JSON(http.StatusOK, gin.H{
			"session_id": sess.ID(),
			"protocol":   sess.Protocol(),
			"role":       sess.Role().String(),
			"state":      sess.State().String(),
			"steps":      s.loop.Steps(),
		})
	})
}

// Router exposes the gin engine for tests and embedding.
func (s *StatusServer) Router() *gin.Engine { return s.router }

// Serve blocks on the status listener; run it on its own goroutine.
func (s *StatusServer) Serve(addr string) error {
	return s.router.Run(addr)
}

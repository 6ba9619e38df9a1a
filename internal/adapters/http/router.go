package http

import (
	"context"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/JDav117/Sports-Event-LIVE/internal/adapters/signal"
	"github.com/JDav117/Sports-Event-LIVE/internal/app"
	"github.com/JDav117/Sports-Event-LIVE/internal/config"
)

func genClientToken() string {
	return uuid.NewString()
}

// ClientTokenMiddleware pins an opaque token to the browser so
// reconnects are attributable in the logs. Identity is asserted, not
// verified; the token is not an authentication credential.
func ClientTokenMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, _ := c.Cookie("ct")
		if token == "" {
			token = genClientToken()
			c.SetCookie("ct", token, 3600*24*7, "/", "", false, true)
		}
		c.Set("client_token", token)
		c.Next()
	}
}

func SetupRouter(
	ctx context.Context,
	cfg *config.Config,
	gw *app.Gateway,
	enrollments *app.EnrollmentStore,
) *gin.Engine {
	if cfg.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	if cfg.Mode == "debug" {
		r.Use(gin.Logger())
	}
	r.Use(gin.Recovery())

	store := cookie.NewStore([]byte(cfg.Secret))
	r.Use(sessions.Sessions("EventLiveSessions", store))
	r.Use(ClientTokenMiddleware())

	log.Info().Str("module", "adapters.http").Msg("router setup")

	h := &Handlers{Gw: gw, Enrollments: enrollments}
	ws := signal.NewController(gw, cfg.ReadLimit, cfg.PingPeriod)

	api := r.Group("/api")

	api.GET("/ws/live", func(c *gin.Context) {
		log.Info().Str("module", "adapters.http").
			Str("client_token", c.GetString("client_token")).
			Msg("ws live endpoint hit")
		ws.HandleLive(ctx, c)
	})

	api.PATCH("/events/:id/status", h.UpdateEventStatus)
	api.GET("/events/:id/members", h.ListMembers)
	api.GET("/events/:id/attendance", h.EventAttendance)
	api.GET("/rooms", h.ListRooms)
	api.GET("/audit", h.QueryAudit)

	api.POST("/enrollments", h.CreateEnrollment)
	api.PATCH("/enrollments/:id/status", h.UpdateEnrollmentStatus)
	api.GET("/events/:id/enrollments", h.EventEnrollments)

	return r
}

package http

import (
	"github.com/fasthttp/router"
	"github.com/rs/zerolog"

	"github.com/Conte777/MemberFlow/pkg/httputil"
)

// Router registers participant-related HTTP routes
type Router struct {
	participants *ParticipantHandler
	health       *HealthHandler
	logger       zerolog.Logger
}

// NewRouter creates a new participant router
func NewRouter(participants *ParticipantHandler, health *HealthHandler, logger zerolog.Logger) *Router {
	return &Router{
		participants: participants,
		health:       health,
		logger:       logger,
	}
}

// RegisterRoutes registers all routes on the router
func (r *Router) RegisterRoutes(rt *router.Router) {
	log := httputil.RequestLogger(r.logger)

	rt.GET("/health", r.health.Handle)

	api := rt.Group("/api/v1")
	api.GET("/entities/{ref}/participants", httputil.Chain(r.participants.ListParticipants, log))
	api.POST("/entities/{ref}/census", httputil.Chain(r.participants.RunCensus, log))
	api.GET("/entities/{ref}/snapshots", httputil.Chain(r.participants.ListSnapshots, log))
}

package server

import (
	"github.com/danielgtaylor/huma/v2"
	"github.com/go-chi/chi/v5"

	v1 "github.com/gosuda/tempora/internal/api/v1"
	"github.com/gosuda/tempora/internal/api/ws"
	"github.com/gosuda/tempora/internal/store/postgres"
	redisstore "github.com/gosuda/tempora/internal/store/redis"
)

func registerAuthRoutes(api huma.API, authSvc v1.AuthService) {
	v1.RegisterAuthRoutes(api, authSvc)
}

func registerAPIRoutes(api huma.API, store *postgres.Store, pubsub *redisstore.PubSub, plannerAPI *v1.Planner) {
	v1.RegisterTaskRoutes(api, store, pubsub)
	v1.RegisterPlannerRoutes(api, plannerAPI)
}

func registerWSRoutes(r chi.Router, hub *ws.Hub) {
	r.Get("/planner", hub.ServePlanner)
	r.Get("/tasks", hub.ServeTasks)
}

package ws

import (
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/coder/websocket"

	"github.com/gosuda/tempora/internal/server/middleware"
	redisstore "github.com/gosuda/tempora/internal/store/redis"
)

// Hub manages WebSocket connections backed by Redis pub/sub.
type Hub struct {
	pubsub *redisstore.PubSub
}

// NewHub creates a new WebSocket hub.
func NewHub(pubsub *redisstore.PubSub) *Hub {
	return &Hub{pubsub: pubsub}
}

// ServePlanner handles WebSocket connections for live planner refresh.
// Subscribes to Redis channel "planner:<userID>". Every open planner view of
// the same user receives a message when a task is moved, undone or completed.
func (h *Hub) ServePlanner(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, func(r *http.Request) (string, bool) {
		userID, ok := middleware.UserIDFromContext(r.Context())
		if !ok {
			return "", false
		}
		return redisstore.PlannerChannel(userID), true
	})
}

// ServeTasks handles WebSocket connections for task list refresh.
// Subscribes to Redis channel "tasks:<userID>".
func (h *Hub) ServeTasks(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, func(r *http.Request) (string, bool) {
		userID, ok := middleware.UserIDFromContext(r.Context())
		if !ok {
			return "", false
		}
		return redisstore.TasksChannel(userID), true
	})
}

func (h *Hub) serve(w http.ResponseWriter, r *http.Request, channelFor func(*http.Request) (string, bool)) {
	channel, ok := channelFor(r)
	if !ok {
		http.Error(w, "missing user", http.StatusBadRequest)
		return
	}

	conn, err := websocket.Accept(w, r, nil)
	if err != nil {
		log.Error().Err(err).Msg("websocket accept")
		return
	}
	defer conn.CloseNow()

	ctx := r.Context()

	messages, cleanup, err := h.pubsub.Subscribe(ctx, channel)
	if err != nil {
		log.Error().Err(err).Msg("websocket subscribe")
		_ = conn.Close(websocket.StatusInternalError, "subscribe failed")
		return
	}
	defer cleanup()

	for {
		select {
		case <-ctx.Done():
			_ = conn.Close(websocket.StatusNormalClosure, "connection closed")
			return
		case msg, msgOK := <-messages:
			if !msgOK {
				_ = conn.Close(websocket.StatusNormalClosure, "channel closed")
				return
			}
			if writeErr := conn.Write(ctx, websocket.MessageText, msg); writeErr != nil {
				log.Debug().Err(writeErr).Msg("websocket write")
				return
			}
		}
	}
}

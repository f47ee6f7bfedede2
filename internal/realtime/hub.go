package realtime

import (
	"encoding/json"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/enqueta/backend/internal/models"
)

const (
	// PingInterval and PongWait are used for heartbeat, in seconds.
	PingInterval = 30
	PongWait     = 60
)

// EventResponseCreated is pushed to watchers when a survey receives a
// response.
const EventResponseCreated = "response.created"

// Publisher publishes survey events for cross-instance broadcast.
type Publisher interface {
	PublishSurveyEvent(surveyID uuid.UUID, event string, payload []byte) error
}

// Subscriber subscribes to a survey's event channel.
type Subscriber interface {
	SubscribeSurvey(surveyID uuid.UUID, handler func(event string, payload []byte)) (cancel func(), err error)
}

// Hub maintains survey_id -> set of admin watcher connections and broadcasts
// response events to them. Redis pub/sub carries events between instances;
// without Redis the hub still works for a single instance.
type Hub struct {
	rooms  map[uuid.UUID]map[string]*Client
	subs   map[uuid.UUID]func()
	mu     sync.RWMutex
	logger *zap.Logger
	pub    Publisher
	sub    Subscriber
}

// NewHub creates a watcher hub. pub and sub may be nil.
func NewHub(logger *zap.Logger, pub Publisher, sub Subscriber) *Hub {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Hub{
		rooms:  make(map[uuid.UUID]map[string]*Client),
		subs:   make(map[uuid.UUID]func()),
		logger: logger,
		pub:    pub,
		sub:    sub,
	}
}

// Register adds a watcher to a survey room. The first watcher of a survey
// starts the Redis subscription for it.
func (h *Hub) Register(c *Client) {
	h.mu.Lock()
	if h.rooms[c.SurveyID] == nil {
		h.rooms[c.SurveyID] = make(map[string]*Client)
		if h.sub != nil {
			cancel, err := h.sub.SubscribeSurvey(c.SurveyID, func(event string, payload []byte) {
				h.broadcastLocal(c.SurveyID, event, json.RawMessage(payload))
			})
			if err == nil {
				h.subs[c.SurveyID] = cancel
			}
		}
	}
	h.rooms[c.SurveyID][c.ID] = c
	h.mu.Unlock()
	h.logger.Debug("watcher joined survey",
		zap.String("client_id", c.ID),
		zap.String("survey_id", c.SurveyID.String()),
	)
}

// Unregister removes a watcher. The Redis subscription stops when the last
// watcher of a survey leaves.
func (h *Hub) Unregister(c *Client) {
	h.mu.Lock()
	if m, ok := h.rooms[c.SurveyID]; ok {
		delete(m, c.ID)
		if len(m) == 0 {
			delete(h.rooms, c.SurveyID)
			if cancel, ok := h.subs[c.SurveyID]; ok {
				cancel()
				delete(h.subs, c.SurveyID)
			}
		}
	}
	h.mu.Unlock()
	h.logger.Debug("watcher left survey",
		zap.String("client_id", c.ID),
		zap.String("survey_id", c.SurveyID.String()),
	)
}

// WatcherCount returns the number of connected watchers for a survey.
func (h *Hub) WatcherCount(surveyID uuid.UUID) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[surveyID])
}

// ResponseCreated broadcasts a new response to the survey's watchers, local
// and remote. It satisfies the submission workflow's broadcaster dependency.
func (h *Hub) ResponseCreated(surveyID uuid.UUID, resp *models.Response) {
	h.Broadcast(surveyID, EventResponseCreated, resp)
}

// Broadcast sends an event to local watchers and publishes it for other
// instances.
func (h *Hub) Broadcast(surveyID uuid.UUID, event string, payload interface{}) {
	data, err := json.Marshal(payload)
	if err != nil {
		return
	}
	h.broadcastLocal(surveyID, event, json.RawMessage(data))
	if h.pub != nil {
		_ = h.pub.PublishSurveyEvent(surveyID, event, data)
	}
}

func (h *Hub) broadcastLocal(surveyID uuid.UUID, event string, data json.RawMessage) {
	msg := WSMessage{Event: event, Data: data}

	h.mu.RLock()
	clients := h.rooms[surveyID]
	h.mu.RUnlock()

	for _, c := range clients {
		select {
		case c.send <- msg:
		default:
			// buffer full, skip
		}
	}
}

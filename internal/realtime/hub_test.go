package realtime

import (
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/enqueta/backend/internal/models"
)

type fakePublisher struct {
	events []string
}

func (f *fakePublisher) PublishSurveyEvent(surveyID uuid.UUID, event string, payload []byte) error {
	f.events = append(f.events, event)
	return nil
}

type fakeSubscriber struct {
	subscribed int
	cancelled  int
}

func (f *fakeSubscriber) SubscribeSurvey(surveyID uuid.UUID, handler func(event string, payload []byte)) (func(), error) {
	f.subscribed++
	return func() { f.cancelled++ }, nil
}

func watcher(surveyID uuid.UUID) *Client {
	return &Client{
		ID:       uuid.New().String(),
		SurveyID: surveyID,
		send:     make(chan WSMessage, 8),
	}
}

func TestHubBroadcastsToWatchers(t *testing.T) {
	pub := &fakePublisher{}
	hub := NewHub(zap.NewNop(), pub, nil)
	surveyID := uuid.New()

	a, b := watcher(surveyID), watcher(surveyID)
	other := watcher(uuid.New())
	hub.Register(a)
	hub.Register(b)
	hub.Register(other)

	resp := &models.Response{ID: uuid.New(), SurveyID: surveyID, UserID: "visitor-1"}
	hub.ResponseCreated(surveyID, resp)

	for _, c := range []*Client{a, b} {
		select {
		case msg := <-c.send:
			if msg.Event != EventResponseCreated {
				t.Fatalf("unexpected event %q", msg.Event)
			}
			var got models.Response
			if err := json.Unmarshal(msg.Data, &got); err != nil {
				t.Fatal(err)
			}
			if got.ID != resp.ID {
				t.Fatal("payload response id mismatch")
			}
		default:
			t.Fatal("watcher did not receive the event")
		}
	}
	select {
	case <-other.send:
		t.Fatal("watcher of another survey received the event")
	default:
	}

	if len(pub.events) != 1 || pub.events[0] != EventResponseCreated {
		t.Fatalf("expected one published event, got %v", pub.events)
	}
}

func TestHubSubscriptionLifecycle(t *testing.T) {
	sub := &fakeSubscriber{}
	hub := NewHub(zap.NewNop(), nil, sub)
	surveyID := uuid.New()

	a, b := watcher(surveyID), watcher(surveyID)
	hub.Register(a)
	hub.Register(b)
	if sub.subscribed != 1 {
		t.Fatalf("expected one subscription, got %d", sub.subscribed)
	}
	if hub.WatcherCount(surveyID) != 2 {
		t.Fatalf("expected 2 watchers, got %d", hub.WatcherCount(surveyID))
	}

	hub.Unregister(a)
	if sub.cancelled != 0 {
		t.Fatal("subscription cancelled while watchers remain")
	}
	hub.Unregister(b)
	if sub.cancelled != 1 {
		t.Fatalf("expected subscription cancelled, got %d", sub.cancelled)
	}
	if hub.WatcherCount(surveyID) != 0 {
		t.Fatal("expected empty room")
	}
}

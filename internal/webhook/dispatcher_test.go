package webhook

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"go.uber.org/zap"
)

func samplePayload() Payload {
	return Payload{
		Event:     EventResponseCreated,
		Timestamp: "2026-04-01T09:00:00Z",
		Data: PayloadData{
			SurveyID:    "sv-1",
			SurveyTitle: "Onboarding feedback",
			ResponseID:  "rs-1",
			UserID:      "u-42",
			SubmittedAt: "2026-04-01T09:00:00Z",
			Answers: []PayloadAnswer{
				{QuestionID: "q-1", QuestionLabel: "How did it go?", Value: "Great"},
			},
		},
	}
}

func TestSendSuccess(t *testing.T) {
	var gotBody Payload
	var gotContentType, gotUserAgent string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotContentType = r.Header.Get("Content-Type")
		gotUserAgent = r.Header.Get("User-Agent")
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Fatal(err)
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	d := NewDispatcher(time.Second, "Enqueta-Webhook/1.0", zap.NewNop())
	if !d.Send(context.Background(), srv.URL, samplePayload()) {
		t.Fatal("expected delivery to succeed")
	}
	if gotContentType != "application/json" {
		t.Fatalf("unexpected content type: %q", gotContentType)
	}
	if gotUserAgent != "Enqueta-Webhook/1.0" {
		t.Fatalf("unexpected user agent: %q", gotUserAgent)
	}
	if gotBody.Event != EventResponseCreated || gotBody.Data.ResponseID != "rs-1" {
		t.Fatalf("unexpected body: %+v", gotBody)
	}
}

func TestSendNon2xx(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	d := NewDispatcher(time.Second, "", zap.NewNop())
	if d.Send(context.Background(), srv.URL, samplePayload()) {
		t.Fatal("expected delivery to fail on 500")
	}
}

func TestSendNetworkError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	d := NewDispatcher(time.Second, "", zap.NewNop())
	if d.Send(context.Background(), srv.URL, samplePayload()) {
		t.Fatal("expected delivery to fail on connection error")
	}
}

func TestSendTimeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
	}))
	defer func() {
		close(release)
		srv.Close()
	}()

	d := NewDispatcher(50*time.Millisecond, "", zap.NewNop())
	start := time.Now()
	if d.Send(context.Background(), srv.URL, samplePayload()) {
		t.Fatal("expected delivery to fail on timeout")
	}
	if time.Since(start) > 2*time.Second {
		t.Fatal("timeout not enforced")
	}
}

func TestSendInvalidURL(t *testing.T) {
	d := NewDispatcher(time.Second, "", zap.NewNop())
	if d.Send(context.Background(), "http://[::1]:namedport", samplePayload()) {
		t.Fatal("expected delivery to fail on invalid url")
	}
}

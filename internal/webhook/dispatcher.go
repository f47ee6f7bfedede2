package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"time"

	"go.uber.org/zap"
)

// EventResponseCreated is the event name for survey response notifications.
const EventResponseCreated = "survey.response.created"

// PayloadAnswer is one answered question in the notification body.
type PayloadAnswer struct {
	QuestionID    string `json:"questionId"`
	QuestionLabel string `json:"questionLabel"`
	Value         string `json:"value"`
}

// PayloadData carries the response details of a notification.
type PayloadData struct {
	SurveyID    string          `json:"surveyId"`
	SurveyTitle string          `json:"surveyTitle"`
	ResponseID  string          `json:"responseId"`
	UserID      string          `json:"userId"`
	SubmittedAt string          `json:"submittedAt"`
	Answers     []PayloadAnswer `json:"answers"`
}

// Payload is the JSON body POSTed to a survey's webhook URL.
type Payload struct {
	Event     string      `json:"event"`
	Timestamp string      `json:"timestamp"`
	Data      PayloadData `json:"data"`
}

// Dispatcher delivers response-created notifications. Delivery is at-most-once
// and best-effort: no retries, and Send never fails the caller.
type Dispatcher struct {
	client    *http.Client
	userAgent string
	logger    *zap.Logger
}

// NewDispatcher creates a dispatcher. The timeout bounds the whole POST,
// connection included.
func NewDispatcher(timeout time.Duration, userAgent string, logger *zap.Logger) *Dispatcher {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	if userAgent == "" {
		userAgent = "Enqueta-Webhook/1.0"
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Dispatcher{
		client:    &http.Client{Timeout: timeout},
		userAgent: userAgent,
		logger:    logger,
	}
}

// Send POSTs the payload as JSON to url. It returns true only on an HTTP 2xx
// response; timeouts, network errors and non-2xx statuses are logged and
// reported as false. Send never panics and never returns an error.
func (d *Dispatcher) Send(ctx context.Context, url string, payload Payload) bool {
	body, err := json.Marshal(payload)
	if err != nil {
		d.logger.Error("webhook payload marshal failed", zap.Error(err), zap.String("url", url))
		return false
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		d.logger.Error("webhook request build failed", zap.Error(err), zap.String("url", url))
		return false
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", d.userAgent)

	resp, err := d.client.Do(req)
	if err != nil {
		d.logger.Warn("webhook delivery failed", zap.Error(err), zap.String("url", url))
		return false
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		d.logger.Warn("webhook delivery non-2xx",
			zap.Int("status", resp.StatusCode),
			zap.String("url", url),
			zap.String("event", payload.Event),
		)
		return false
	}

	d.logger.Debug("webhook delivered", zap.String("url", url), zap.String("event", payload.Event))
	return true
}

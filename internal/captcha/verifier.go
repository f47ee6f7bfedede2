package captcha

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"
)

// ReplayGuard remembers recently verified tokens so a token cannot be reused.
type ReplayGuard interface {
	// Seen marks the token and reports whether it was already used.
	Seen(ctx context.Context, token string) bool
}

// HTTPVerifier verifies challenge tokens against a third-party verification API
// (hCaptcha/Turnstile-compatible siteverify endpoint). It is treated as an
// opaque boolean oracle: any failure verifies as false.
type HTTPVerifier struct {
	verifyURL string
	secret    string
	client    *http.Client
	guard     ReplayGuard
	logger    *zap.Logger
}

// NewHTTPVerifier creates a verifier. An empty secret disables verification
// (every token passes), intended for local development only.
func NewHTTPVerifier(verifyURL, secret string, timeout time.Duration, guard ReplayGuard, logger *zap.Logger) *HTTPVerifier {
	if logger == nil {
		logger = zap.NewNop()
	}
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &HTTPVerifier{
		verifyURL: verifyURL,
		secret:    secret,
		client:    &http.Client{Timeout: timeout},
		guard:     guard,
		logger:    logger,
	}
}

type verifyResult struct {
	Success bool `json:"success"`
}

// Verify checks the token with the verification API. Returns true only when
// the API confirms the challenge; network errors, non-2xx responses and
// replayed tokens all verify as false.
func (v *HTTPVerifier) Verify(ctx context.Context, token, remoteIP string) bool {
	if v.secret == "" {
		return true
	}
	if token == "" {
		return false
	}
	if v.guard != nil && v.guard.Seen(ctx, token) {
		v.logger.Warn("captcha token replayed", zap.String("remote_ip", remoteIP))
		return false
	}

	form := url.Values{}
	form.Set("secret", v.secret)
	form.Set("response", token)
	if remoteIP != "" {
		form.Set("remoteip", remoteIP)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, v.verifyURL, strings.NewReader(form.Encode()))
	if err != nil {
		v.logger.Error("captcha request build failed", zap.Error(err))
		return false
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := v.client.Do(req)
	if err != nil {
		v.logger.Error("captcha verification request failed", zap.Error(err))
		return false
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		v.logger.Warn("captcha verification non-2xx", zap.Int("status", resp.StatusCode))
		return false
	}

	var result verifyResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		v.logger.Error("captcha response decode failed", zap.Error(err))
		return false
	}
	return result.Success
}

package captcha

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"go.uber.org/zap"
)

func TestVerifySuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			t.Fatal(err)
		}
		if r.PostForm.Get("secret") != "s3cret" || r.PostForm.Get("response") != "tok" {
			t.Fatalf("unexpected form: %v", r.PostForm)
		}
		w.Write([]byte(`{"success":true}`))
	}))
	defer srv.Close()

	v := NewHTTPVerifier(srv.URL, "s3cret", time.Second, nil, zap.NewNop())
	if !v.Verify(context.Background(), "tok", "198.51.100.1") {
		t.Fatal("expected verification to pass")
	}
}

func TestVerifyRejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"success":false}`))
	}))
	defer srv.Close()

	v := NewHTTPVerifier(srv.URL, "s3cret", time.Second, nil, zap.NewNop())
	if v.Verify(context.Background(), "tok", "") {
		t.Fatal("expected verification to fail")
	}
}

func TestVerifyNon2xxAndNetworkError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	v := NewHTTPVerifier(srv.URL, "s3cret", time.Second, nil, zap.NewNop())
	if v.Verify(context.Background(), "tok", "") {
		t.Fatal("expected failure on non-2xx")
	}

	srv.Close() // connection refused from here on
	if v.Verify(context.Background(), "tok", "") {
		t.Fatal("expected failure on network error")
	}
}

func TestVerifyDisabledWithoutSecret(t *testing.T) {
	v := NewHTTPVerifier("http://unused.invalid", "", time.Second, nil, zap.NewNop())
	if !v.Verify(context.Background(), "anything", "") {
		t.Fatal("expected disabled verifier to pass")
	}
}

func TestVerifyEmptyToken(t *testing.T) {
	v := NewHTTPVerifier("http://unused.invalid", "s3cret", time.Second, nil, zap.NewNop())
	if v.Verify(context.Background(), "", "") {
		t.Fatal("expected empty token to fail")
	}
}

type fakeGuard struct{ seen bool }

func (g *fakeGuard) Seen(ctx context.Context, token string) bool { return g.seen }

func TestVerifyReplayedToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"success":true}`))
	}))
	defer srv.Close()

	v := NewHTTPVerifier(srv.URL, "s3cret", time.Second, &fakeGuard{seen: true}, zap.NewNop())
	if v.Verify(context.Background(), "tok", "") {
		t.Fatal("expected replayed token to fail")
	}
}

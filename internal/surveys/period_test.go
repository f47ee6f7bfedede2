package surveys

import (
	"errors"
	"strings"
	"testing"
	"time"
)

var fixedNow = time.Date(2026, 6, 15, 12, 0, 0, 0, time.UTC)

func tp(t time.Time) *time.Time { return &t }

func TestEvaluatePeriodNotStarted(t *testing.T) {
	start := fixedNow.Add(24 * time.Hour)
	end := fixedNow.Add(48 * time.Hour)

	p, err := EvaluatePeriod(fixedNow, tp(start), tp(end))
	if err != nil {
		t.Fatal(err)
	}
	if !p.IsNotStarted || p.IsActive || p.IsExpired {
		t.Fatalf("expected not-started, got %+v", p)
	}
	if !strings.Contains(p.Message, "opens at") {
		t.Fatalf("unexpected message: %q", p.Message)
	}
}

func TestEvaluatePeriodExpired(t *testing.T) {
	start := fixedNow.Add(-48 * time.Hour)
	end := fixedNow.Add(-24 * time.Hour)

	p, err := EvaluatePeriod(fixedNow, tp(start), tp(end))
	if err != nil {
		t.Fatal(err)
	}
	if p.IsNotStarted || p.IsActive || !p.IsExpired {
		t.Fatalf("expected expired, got %+v", p)
	}
	if p.Message != "This survey has ended." {
		t.Fatalf("unexpected message: %q", p.Message)
	}
}

func TestEvaluatePeriodActive(t *testing.T) {
	start := fixedNow.Add(-time.Hour)
	end := fixedNow.Add(time.Hour)

	p, err := EvaluatePeriod(fixedNow, tp(start), tp(end))
	if err != nil {
		t.Fatal(err)
	}
	if p.IsNotStarted || !p.IsActive || p.IsExpired {
		t.Fatalf("expected active, got %+v", p)
	}
	if !strings.Contains(p.Message, "open until") {
		t.Fatalf("unexpected message: %q", p.Message)
	}
}

func TestEvaluatePeriodNoBounds(t *testing.T) {
	p, err := EvaluatePeriod(fixedNow, nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	if !p.IsActive || p.Message != "" {
		t.Fatalf("expected unconditionally active with no message, got %+v", p)
	}
}

func TestEvaluatePeriodSingleBoundIsError(t *testing.T) {
	if _, err := EvaluatePeriod(fixedNow, tp(fixedNow), nil); !errors.Is(err, ErrPeriodBounds) {
		t.Fatalf("expected ErrPeriodBounds, got %v", err)
	}
	if _, err := EvaluatePeriod(fixedNow, nil, tp(fixedNow)); !errors.Is(err, ErrPeriodBounds) {
		t.Fatalf("expected ErrPeriodBounds, got %v", err)
	}
}

func TestEvaluatePeriodExactlyOneStateTrue(t *testing.T) {
	cases := []struct {
		name       string
		start, end time.Time
	}{
		{"before", fixedNow.Add(time.Minute), fixedNow.Add(time.Hour)},
		{"inside", fixedNow.Add(-time.Hour), fixedNow.Add(time.Hour)},
		{"after", fixedNow.Add(-time.Hour), fixedNow.Add(-time.Minute)},
	}
	for _, c := range cases {
		p, err := EvaluatePeriod(fixedNow, tp(c.start), tp(c.end))
		if err != nil {
			t.Fatalf("%s: %v", c.name, err)
		}
		states := 0
		for _, s := range []bool{p.IsNotStarted, p.IsActive, p.IsExpired} {
			if s {
				states++
			}
		}
		if states != 1 {
			t.Fatalf("%s: expected exactly one state, got %+v", c.name, p)
		}
	}
}

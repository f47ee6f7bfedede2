package surveys

import (
	"math/rand"
	"testing"
)

func TestGenerateSlugPattern(t *testing.T) {
	for i := 0; i < 200; i++ {
		slug := GenerateSlug()
		if !SlugPattern.MatchString(slug) {
			t.Fatalf("slug %q does not match %v", slug, SlugPattern)
		}
	}
}

func TestGenerateSlugDeterministic(t *testing.T) {
	r1 := rand.New(rand.NewSource(7))
	r2 := rand.New(rand.NewSource(7))
	if a, b := generateSlug(r1.Intn), generateSlug(r2.Intn); a != b {
		t.Fatalf("same seed produced different slugs: %q vs %q", a, b)
	}
}

func TestGenerateSlugZeroPadding(t *testing.T) {
	// Force the numeric part to a small value; it must still be 4 digits.
	intn := func(n int) int {
		if n == 10000 {
			return 7
		}
		return 0
	}
	if slug := generateSlug(intn); slug != "enq-0007-AAA" {
		t.Fatalf("unexpected slug: %q", slug)
	}
}

package surveys

import (
	"fmt"
	"math/rand"
	"regexp"
)

const slugLetters = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz"

// SlugPattern matches generated survey slugs: enq-, four digits, three
// mixed-case letters (~1.7M combinations).
var SlugPattern = regexp.MustCompile(`^enq-\d{4}-[A-Za-z]{3}$`)

// GenerateSlug returns a fresh random survey slug. The top-level math/rand
// source is locked, so this is safe for concurrent callers.
func GenerateSlug() string {
	return generateSlug(rand.Intn)
}

func generateSlug(intn func(int) int) string {
	letters := make([]byte, 3)
	for i := range letters {
		letters[i] = slugLetters[intn(len(slugLetters))]
	}
	return fmt.Sprintf("enq-%04d-%s", intn(10000), letters)
}

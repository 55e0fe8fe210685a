package repository

import (
	"strings"
	"testing"
)

func TestExampleCacheKey(t *testing.T) {
	a := exampleCacheKey("Morning  Routine ideas", "TikTok", 5)
	b := exampleCacheKey("morning routine ideas", "tiktok", 5)
	if a != b {
		t.Errorf("keys differ for equivalent queries: %s vs %s", a, b)
	}
	if !strings.HasPrefix(a, exampleCachePrefix) {
		t.Errorf("key %s lacks prefix", a)
	}
	if a == exampleCacheKey("morning routine ideas", "tiktok", 3) {
		t.Error("topK must be part of the key")
	}
	if a == exampleCacheKey("morning routine ideas", "youtube", 5) {
		t.Error("platform must be part of the key")
	}
}

package handlers

import (
	"strings"
	"testing"
)

func TestLookupCacheKeysShareInvalidationPrefix(t *testing.T) {
	keys := []string{districtsCacheKey, upazilasCacheKey, recommendationsCacheKey}
	for _, key := range keys {
		if !strings.HasPrefix(key, LookupCachePrefix) {
			t.Fatalf("key %q escapes the invalidation prefix %q", key, LookupCachePrefix)
		}
	}
}

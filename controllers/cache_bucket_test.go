package controllers

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCacheBucketRolls(t *testing.T) {
	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

	// The whole bucket window shares one key suffix.
	assert.Equal(t, cacheBucket(base), cacheBucket(base.Add(cacheBucketSize-time.Second)))

	// Crossing the window yields a fresh key, so anonymous listings pick up
	// posts whose publish date has passed in the meantime.
	assert.NotEqual(t, cacheBucket(base), cacheBucket(base.Add(cacheBucketSize)))
}

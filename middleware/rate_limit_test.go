package middleware

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"golang.org/x/time/rate"
)

func TestVisitorsThrottlePerIP(t *testing.T) {
	v := &visitors{m: map[string]*visitor{}}
	limit := rate.Every(time.Minute)

	assert.True(t, v.allow("10.0.0.1", limit, 1))
	assert.False(t, v.allow("10.0.0.1", limit, 1))

	// A different client has its own bucket.
	assert.True(t, v.allow("10.0.0.2", limit, 1))
}

func TestVisitorsSweepDropsIdle(t *testing.T) {
	v := &visitors{m: map[string]*visitor{}}
	v.m["stale"] = &visitor{lim: rate.NewLimiter(1, 1), seen: time.Now().Add(-time.Hour)}
	v.m["fresh"] = &visitor{lim: rate.NewLimiter(1, 1), seen: time.Now()}

	v.sweep(time.Now())

	assert.NotContains(t, v.m, "stale")
	assert.Contains(t, v.m, "fresh")
}

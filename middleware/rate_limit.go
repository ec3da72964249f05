package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"github.com/blogicum/blogicum/config"
	"github.com/blogicum/blogicum/utils"
)

// idleVisitorTTL is how long a client IP keeps its token bucket after its
// last request before the sweep reclaims it.
const idleVisitorTTL = 10 * time.Minute

type visitor struct {
	lim  *rate.Limiter
	seen time.Time
}

// visitors tracks one token bucket per client IP.
type visitors struct {
	mu sync.Mutex
	m  map[string]*visitor
}

func (v *visitors) allow(ip string, limit rate.Limit, burst int) bool {
	v.mu.Lock()
	defer v.mu.Unlock()

	now := time.Now()
	vis, ok := v.m[ip]
	if !ok {
		if len(v.m) >= 1024 {
			v.sweep(now)
		}
		vis = &visitor{lim: rate.NewLimiter(limit, burst)}
		v.m[ip] = vis
	}
	vis.seen = now
	return vis.lim.Allow()
}

func (v *visitors) sweep(now time.Time) {
	for ip, vis := range v.m {
		if now.Sub(vis.seen) > idleVisitorTTL {
			delete(v.m, ip)
		}
	}
}

// RateLimitMiddleware throttles requests per client IP. The budget comes
// from RateLimitPerMinute; bursts of half a minute's budget are tolerated.
func RateLimitMiddleware() gin.HandlerFunc {
	perMinute := config.Get().RateLimitPerMinute
	if perMinute < 1 {
		perMinute = 1
	}
	limit := rate.Every(time.Minute / time.Duration(perMinute))
	burst := perMinute / 2
	if burst < 1 {
		burst = 1
	}

	v := &visitors{m: map[string]*visitor{}}
	return func(ctx *gin.Context) {
		if !v.allow(ctx.ClientIP(), limit, burst) {
			utils.Error(ctx, http.StatusTooManyRequests, 42901, "rate limit exceeded")
			ctx.Abort()
			return
		}
		ctx.Next()
	}
}

// Package rate_limiter keeps one token bucket per client address.
package rate_limiter

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

type clientLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// Registry hands out per-client limiters and evicts idle ones.
type Registry struct {
	mu       sync.Mutex
	visitors map[string]*clientLimiter
	limit    rate.Limit
	burst    int
}

// NewRegistry builds a registry minting limiters at perSecond tokens per
// second with the given burst.
func NewRegistry(perSecond float64, burst int) *Registry {
	return &Registry{
		visitors: make(map[string]*clientLimiter),
		limit:    rate.Limit(perSecond),
		burst:    burst,
	}
}

// Visitor returns the limiter for ip, creating it on first sight.
func (g *Registry) Visitor(ip string) *rate.Limiter {
	g.mu.Lock()
	defer g.mu.Unlock()

	v, exists := g.visitors[ip]
	if !exists {
		limiter := rate.NewLimiter(g.limit, g.burst)
		g.visitors[ip] = &clientLimiter{limiter, time.Now()}
		return limiter
	}

	v.lastSeen = time.Now()
	return v.limiter
}

// StartCleanupLoop drops visitors idle for more than five minutes. Run it
// in its own goroutine.
func (g *Registry) StartCleanupLoop() {
	for {
		time.Sleep(time.Minute)
		g.mu.Lock()
		for ip, v := range g.visitors {
			if time.Since(v.lastSeen) > 5*time.Minute {
				delete(g.visitors, ip)
			}
		}
		g.mu.Unlock()
	}
}

package middleware

import (
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// RateLimiter throttles each client IP with two budgets: one for reads and
// a usually tighter one for writes, since the user upsert routes take no
// session.
type RateLimiter struct {
	reads  *budget
	writes *budget
	idle   time.Duration
	now    func() time.Time

	mu        sync.Mutex
	buckets   map[string]*bucket
	lastSweep time.Time
}

type budget struct {
	class      string
	limit      rate.Limit
	burst      int
	retryAfter string
}

type bucket struct {
	limiter *rate.Limiter
	seen    time.Time
}

// NewRateLimiter builds a limiter from per-minute budgets. A budget of zero
// or less leaves that class unlimited; nil is returned when both are.
func NewRateLimiter(readRPM, writeRPM int) *RateLimiter {
	reads, writes := newBudget("read", readRPM), newBudget("write", writeRPM)
	if reads == nil && writes == nil {
		return nil
	}
	return &RateLimiter{
		reads:   reads,
		writes:  writes,
		idle:    5 * time.Minute,
		now:     time.Now,
		buckets: make(map[string]*bucket),
	}
}

func newBudget(class string, rpm int) *budget {
	if rpm <= 0 {
		return nil
	}
	interval := time.Minute / time.Duration(rpm)
	refill := max(int(math.Ceil(interval.Seconds())), 1)
	return &budget{
		class:      class,
		limit:      rate.Every(interval),
		burst:      max(rpm/10, 1),
		retryAfter: strconv.Itoa(refill),
	}
}

// Handler returns the gin middleware.
func (r *RateLimiter) Handler() gin.HandlerFunc {
	if r == nil {
		return func(c *gin.Context) {
			c.Next()
		}
	}

	return func(c *gin.Context) {
		b := r.reads
		if isWrite(c.Request.Method) {
			b = r.writes
		}
		if b == nil || r.allow(b, c.ClientIP()) {
			c.Next()
			return
		}
		c.Header("Retry-After", b.retryAfter)
		c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "Too many requests"})
	}
}

func (r *RateLimiter) allow(b *budget, ip string) bool {
	now := r.now()
	key := b.class + "|" + ip

	r.mu.Lock()
	defer r.mu.Unlock()

	if now.Sub(r.lastSweep) > r.idle {
		for k, entry := range r.buckets {
			if now.Sub(entry.seen) > r.idle {
				delete(r.buckets, k)
			}
		}
		r.lastSweep = now
	}

	entry, ok := r.buckets[key]
	if !ok {
		entry = &bucket{limiter: rate.NewLimiter(b.limit, b.burst)}
		r.buckets[key] = entry
	}
	entry.seen = now
	return entry.limiter.AllowN(now, 1)
}

func isWrite(method string) bool {
	switch method {
	case http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete:
		return true
	}
	return false
}

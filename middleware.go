package main

import (
	"crypto/subtle"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/olgasafonova/trello-mcp-server/metrics"
)

// RateLimiter keeps one token bucket per client IP. Each bucket holds n
// tokens and refills n per interval.
type RateLimiter struct {
	mu       sync.Mutex
	visitors map[string]*visitor
	n        int
	interval time.Duration
	stopCh   chan struct{}
	stopOnce sync.Once
}

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// NewRateLimiter creates a limiter and starts its idle-visitor sweeper.
func NewRateLimiter(n int, interval time.Duration) *RateLimiter {
	rl := &RateLimiter{
		visitors: make(map[string]*visitor),
		n:        n,
		interval: interval,
		stopCh:   make(chan struct{}),
	}
	go rl.sweep()
	return rl
}

// Allow reports whether a request from ip may proceed and spends a token.
func (rl *RateLimiter) Allow(ip string) bool {
	rl.mu.Lock()
	v, ok := rl.visitors[ip]
	if !ok {
		v = &visitor{limiter: rate.NewLimiter(rate.Every(rl.interval/time.Duration(rl.n)), rl.n)}
		rl.visitors[ip] = v
	}
	v.lastSeen = time.Now()
	rl.mu.Unlock()

	return v.limiter.Allow()
}

// Close stops the sweeper. It is safe to call more than once.
func (rl *RateLimiter) Close() {
	rl.stopOnce.Do(func() {
		close(rl.stopCh)
	})
}

// sweep forgets visitors idle for a full interval; their bucket would be
// full again anyway.
func (rl *RateLimiter) sweep() {
	ticker := time.NewTicker(rl.interval)
	defer ticker.Stop()

	for {
		select {
		case <-rl.stopCh:
			return
		case now := <-ticker.C:
			rl.mu.Lock()
			for ip, v := range rl.visitors {
				if now.Sub(v.lastSeen) > rl.interval {
					delete(rl.visitors, ip)
				}
			}
			rl.mu.Unlock()
		}
	}
}

// visitorCount reports how many IPs are tracked.
func (rl *RateLimiter) visitorCount() int {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	return len(rl.visitors)
}

// SecurityConfig configures the HTTP-mode middleware.
type SecurityConfig struct {
	RateLimit   int    // requests per minute per IP; 0 disables limiting
	MaxBodySize int64  // bytes; 0 disables the limit
	AuthToken   string // bearer token; "" disables authentication
}

// SecurityMiddleware applies rate limiting, bearer authentication and body
// size limits in front of the MCP handler.
type SecurityMiddleware struct {
	next    http.Handler
	logger  *slog.Logger
	config  SecurityConfig
	limiter *RateLimiter
}

// NewSecurityMiddleware wraps handler.
func NewSecurityMiddleware(handler http.Handler, logger *slog.Logger, config SecurityConfig) *SecurityMiddleware {
	sm := &SecurityMiddleware{
		next:   handler,
		logger: logger,
		config: config,
	}
	if config.RateLimit > 0 {
		sm.limiter = NewRateLimiter(config.RateLimit, time.Minute)
	}
	return sm
}

// Close releases the rate limiter.
func (sm *SecurityMiddleware) Close() {
	if sm.limiter != nil {
		sm.limiter.Close()
	}
}

func (sm *SecurityMiddleware) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
	defer func() {
		metrics.HTTPRequestsTotal.WithLabelValues(r.Method, strconv.Itoa(rec.status)).Inc()
		metrics.HTTPRequestDuration.WithLabelValues(r.Method, routeLabel(r.URL.Path)).Observe(time.Since(start).Seconds())
	}()

	ip := clientIP(r)

	if sm.limiter != nil && !sm.limiter.Allow(ip) {
		metrics.RateLimitRejections.Inc()
		sm.logger.Warn("Rate limit exceeded", "ip", ip, "path", r.URL.Path)
		rec.Header().Set("Retry-After", "60")
		http.Error(rec, "rate limit exceeded", http.StatusTooManyRequests)
		return
	}

	if sm.config.AuthToken != "" {
		if reason := sm.checkAuth(r); reason != "" {
			metrics.AuthFailures.WithLabelValues(reason).Inc()
			sm.logger.Warn("Authentication failed", "ip", ip, "reason", reason)
			rec.Header().Set("WWW-Authenticate", `Bearer realm="trello-mcp-server"`)
			http.Error(rec, "unauthorized", http.StatusUnauthorized)
			return
		}
	}

	if sm.config.MaxBodySize > 0 {
		if r.ContentLength > sm.config.MaxBodySize {
			http.Error(rec, "request body too large", http.StatusRequestEntityTooLarge)
			return
		}
		r.Body = http.MaxBytesReader(rec, r.Body, sm.config.MaxBodySize)
	}

	sm.next.ServeHTTP(rec, r)
}

// checkAuth returns a failure reason, or "" when the bearer token matches.
func (sm *SecurityMiddleware) checkAuth(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if header == "" {
		return "missing"
	}
	token, ok := strings.CutPrefix(header, "Bearer ")
	if !ok {
		return "malformed"
	}
	if subtle.ConstantTimeCompare([]byte(token), []byte(sm.config.AuthToken)) != 1 {
		return "invalid"
	}
	return ""
}

// routeLabel maps a request path onto the fixed set of served routes.
func routeLabel(path string) string {
	switch path {
	case "/mcp", "/health", "/metrics":
		return path
	}
	return "other"
}

// clientIP returns the peer address; forwarding headers are ignored.
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// statusRecorder captures the response status for metrics.
type statusRecorder struct {
	http.ResponseWriter
	status      int
	wroteHeader bool
}

func (s *statusRecorder) WriteHeader(code int) {
	if !s.wroteHeader {
		s.status = code
		s.wroteHeader = true
	}
	s.ResponseWriter.WriteHeader(code)
}

// Flush supports streaming responses.
func (s *statusRecorder) Flush() {
	if f, ok := s.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

// Unwrap lets http.ResponseController reach the underlying writer.
func (s *statusRecorder) Unwrap() http.ResponseWriter {
	return s.ResponseWriter
}

package httpx

import (
	"bytes"
	"encoding/json"
	"io"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/marcos777-ux/Newsick-public/pkg/slogx"
	"golang.org/x/time/rate"
)

// RateLimitConfig is a token bucket: RequestsPerWindow refill over Window,
// at most Burst at once. The env tags are relative, callers parse it with a
// prefix such as RATELIMIT_STRICT_.
type RateLimitConfig struct {
	RequestsPerWindow int           `env:"REQUESTS"`
	Window            time.Duration `env:"WINDOW"`
	Burst             int           `env:"BURST"`
}

// Default profiles.
var (
	// StrictLimit guards credential endpoints against brute force.
	StrictLimit = RateLimitConfig{RequestsPerWindow: 5, Window: time.Minute, Burst: 5}

	// ModerateLimit is for authenticated reads.
	ModerateLimit = RateLimitConfig{RequestsPerWindow: 60, Window: time.Minute, Burst: 20}

	// PublicLimit is for health checks and metrics.
	PublicLimit = RateLimitConfig{RequestsPerWindow: 1000, Window: time.Minute, Burst: 1000}
)

// Valid reports whether the config can build a limiter.
func (c RateLimitConfig) Valid() bool {
	return c.RequestsPerWindow > 0 && c.Window > 0 && c.Burst > 0
}

func (c RateLimitConfig) limit() rate.Limit {
	return rate.Limit(float64(c.RequestsPerWindow) / c.Window.Seconds())
}

// KeyExtractor picks the bucket a request is counted against. An empty key
// means the request is not limited.
type KeyExtractor func(*http.Request) string

// IPKeyExtractor keys on the client IP, honouring X-Forwarded-For and
// X-Real-IP for proxied requests.
func IPKeyExtractor(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		return strings.TrimSpace(first)
	}
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return strings.TrimSpace(xri)
	}

	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}

// JSONFieldKeyExtractor keys on a top level string field of a JSON body,
// lower cased. The body is put back for the next handler.
func JSONFieldKeyExtractor(field string) KeyExtractor {
	return func(r *http.Request) string {
		if r.Body == nil {
			return ""
		}
		raw, err := io.ReadAll(io.LimitReader(r.Body, MaxBodyBytes))
		_ = r.Body.Close()
		r.Body = io.NopCloser(bytes.NewReader(raw))
		if err != nil {
			return ""
		}

		var fields map[string]json.RawMessage
		if err := json.Unmarshal(raw, &fields); err != nil {
			return ""
		}
		var v string
		if err := json.Unmarshal(fields[field], &v); err != nil {
			return ""
		}
		return strings.ToLower(strings.TrimSpace(v))
	}
}

// CompositeKeyExtractor joins the non-empty keys of extractors with sep.
func CompositeKeyExtractor(sep string, extractors ...KeyExtractor) KeyExtractor {
	return func(r *http.Request) string {
		parts := make([]string, 0, len(extractors))
		for _, extract := range extractors {
			if key := extract(r); key != "" {
				parts = append(parts, key)
			}
		}
		return strings.Join(parts, sep)
	}
}

// DenyFunc writes the reply for a limited request.
type DenyFunc func(w http.ResponseWriter, r *http.Request, retryAfter time.Duration)

// DefaultDeny answers with a bare JSON error.
func DefaultDeny(w http.ResponseWriter, _ *http.Request, _ time.Duration) {
	WriteJSON(w, http.StatusTooManyRequests, map[string]string{
		"error":             "rate_limit_exceeded",
		"error_description": "Too many requests. Please try again later.",
	})
}

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// limiterStore keeps one bucket per key and forgets keys idle for longer
// than ttl.
type limiterStore struct {
	cfg RateLimitConfig
	ttl time.Duration

	mu          sync.Mutex
	visitors    map[string]*visitor
	lastCleanup time.Time
}

func newLimiterStore(cfg RateLimitConfig) *limiterStore {
	return &limiterStore{
		cfg:         cfg,
		ttl:         max(cfg.Window, 5*time.Minute),
		visitors:    make(map[string]*visitor),
		lastCleanup: time.Now(),
	}
}

// reserve takes a token for key. It returns 0 when the request may go ahead
// and otherwise how long until it would.
func (s *limiterStore) reserve(key string, now time.Time) time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()

	if now.Sub(s.lastCleanup) > s.ttl {
		for k, v := range s.visitors {
			if now.Sub(v.lastSeen) > s.ttl {
				delete(s.visitors, k)
			}
		}
		s.lastCleanup = now
	}

	v, ok := s.visitors[key]
	if !ok {
		v = &visitor{limiter: rate.NewLimiter(s.cfg.limit(), s.cfg.Burst)}
		s.visitors[key] = v
	}
	v.lastSeen = now

	if v.limiter.AllowN(now, 1) {
		return 0
	}
	res := v.limiter.ReserveN(now, 1)
	delay := res.DelayFrom(now)
	res.CancelAt(now)
	return delay
}

// RateLimit limits requests per key. A nil deny uses DefaultDeny.
func RateLimit(cfg RateLimitConfig, key KeyExtractor, deny DenyFunc) Middleware {
	if deny == nil {
		deny = DefaultDeny
	}
	store := newLimiterStore(cfg)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			k := key(r)
			if k == "" {
				slogx.FromContext(r.Context()).Warn("rate limit: no key, allowing request")
				next.ServeHTTP(w, r)
				return
			}

			delay := store.reserve(k, time.Now())
			if delay == 0 {
				next.ServeHTTP(w, r)
				return
			}

			retryAfter := max(int(delay.Round(time.Second).Seconds()), 1)
			w.Header().Set("Retry-After", strconv.Itoa(retryAfter))
			w.Header().Set("X-RateLimit-Limit", strconv.Itoa(cfg.RequestsPerWindow))
			w.Header().Set("X-RateLimit-Window", cfg.Window.String())

			slogx.FromContext(r.Context()).Warn("rate limit exceeded",
				"endpoint", r.URL.Path,
				"retry_after", retryAfter,
			)
			deny(w, r, delay)
		})
	}
}

// RateLimitByIP limits by client IP only.
func RateLimitByIP(cfg RateLimitConfig, deny DenyFunc) Middleware {
	return RateLimit(cfg, IPKeyExtractor, deny)
}

// RateLimitByIPAndField limits by client IP plus a JSON body field, e.g. the
// identifier of a login attempt.
func RateLimitByIPAndField(cfg RateLimitConfig, field string, deny DenyFunc) Middleware {
	return RateLimit(cfg, CompositeKeyExtractor(":", IPKeyExtractor, JSONFieldKeyExtractor(field)), deny)
}

// RateLimitByField limits by a JSON body field alone, whatever address the
// request comes from. Requests without the field are not limited here.
func RateLimitByField(cfg RateLimitConfig, field string, deny DenyFunc) Middleware {
	return RateLimit(cfg, JSONFieldKeyExtractor(field), deny)
}

// RateLimitBySubject limits by authenticated account, falling back to IP.
// It must run after AuthnMiddleware.
func RateLimitBySubject(cfg RateLimitConfig, deny DenyFunc) Middleware {
	return RateLimit(cfg, func(r *http.Request) string {
		if sub := SubjectFromContext(r.Context()); sub != "" {
			return "sub:" + sub
		}
		return IPKeyExtractor(r)
	}, deny)
}

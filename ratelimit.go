package codeshift

import (
	"context"
	"sync"
	"time"
)

// RateLimitConfig bounds how often the shared model endpoint is called.
type RateLimitConfig struct {
	RequestsPerMinute int // Sustained rate; 60 when not positive
	BurstSize         int // Requests allowed back to back; RequestsPerMinute when not positive
	// Timeout bounds the queue wait and the model call together;
	// DefaultModelTimeout when not positive.
	Timeout time.Duration
}

// DefaultModelTimeout is the hard limit on one model round trip.
const DefaultModelTimeout = 180 * time.Second

// RateLimiter is a token bucket. Tokens accrue continuously at the
// configured rate up to the burst size; each model request spends one.
type RateLimiter struct {
	mu       sync.Mutex
	tokens   float64
	capacity float64
	perSec   float64
	updated  time.Time
	now      func() time.Time
}

// NewRateLimiter creates a limiter that starts with a full bucket.
func NewRateLimiter(cfg RateLimitConfig) *RateLimiter {
	rpm := cfg.RequestsPerMinute
	if rpm <= 0 {
		rpm = 60
	}
	burst := cfg.BurstSize
	if burst <= 0 {
		burst = rpm
	}

	l := &RateLimiter{
		tokens:   float64(burst),
		capacity: float64(burst),
		perSec:   float64(rpm) / 60,
		now:      time.Now,
	}
	l.updated = l.now()
	return l
}

// Wait blocks until a token is spent or ctx is done.
func (r *RateLimiter) Wait(ctx context.Context) error {
	for {
		ok, delay := r.reserve()
		if ok {
			return nil
		}

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
}

// TryAcquire spends a token if one is available.
func (r *RateLimiter) TryAcquire() bool {
	ok, _ := r.reserve()
	return ok
}

// reserve spends a token, or reports how long until the next one accrues.
func (r *RateLimiter) reserve() (bool, time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.advanceLocked()
	if r.tokens >= 1 {
		r.tokens--
		return true, 0
	}
	delay := time.Duration((1 - r.tokens) / r.perSec * float64(time.Second))
	if delay < time.Millisecond {
		delay = time.Millisecond
	}
	return false, delay
}

func (r *RateLimiter) advanceLocked() {
	now := r.now()
	r.tokens += now.Sub(r.updated).Seconds() * r.perSec
	if r.tokens > r.capacity {
		r.tokens = r.capacity
	}
	r.updated = now
}

// Available returns the tokens currently in the bucket.
func (r *RateLimiter) Available() float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.advanceLocked()
	return r.tokens
}

// RateLimitedModel wraps a ModelTranslator with rate limiting. The server
// shares one model endpoint across every session.
type RateLimitedModel struct {
	model   ModelTranslator
	limiter *RateLimiter
	timeout time.Duration
}

// NewRateLimitedModel creates a new rate-limited model backend.
func NewRateLimitedModel(model ModelTranslator, cfg RateLimitConfig) *RateLimitedModel {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultModelTimeout
	}
	return &RateLimitedModel{
		model:   model,
		limiter: NewRateLimiter(cfg),
		timeout: timeout,
	}
}

// TranslateCode implements ModelTranslator with rate limiting. Time spent
// queued counts against the timeout. A cancelled wait is reported as an
// unavailable model so the engine falls back to rules.
func (m *RateLimitedModel) TranslateCode(ctx context.Context, req ModelRequest) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()

	if err := m.limiter.Wait(ctx); err != nil {
		return "", &ModelUnavailableError{
			Message: "rate limit wait cancelled",
			Cause:   err,
		}
	}

	return m.model.TranslateCode(ctx, req)
}

// ListModels forwards to the wrapped backend when it can list models.
func (m *RateLimitedModel) ListModels(ctx context.Context, baseURL string) ([]ModelInfo, error) {
	lister, ok := m.model.(ModelLister)
	if !ok {
		return nil, &ModelUnavailableError{Message: "backend cannot list models"}
	}
	return lister.ListModels(ctx, baseURL)
}

// Ping forwards to the wrapped backend when it can list models.
func (m *RateLimitedModel) Ping(ctx context.Context, baseURL string) error {
	lister, ok := m.model.(ModelLister)
	if !ok {
		return &ModelUnavailableError{Message: "backend cannot be probed"}
	}
	return lister.Ping(ctx, baseURL)
}

// Limiter returns the underlying rate limiter for inspection.
func (m *RateLimitedModel) Limiter() *RateLimiter {
	return m.limiter
}

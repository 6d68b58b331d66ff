// Package throttle rate-limits SMTP probes per MX host with a token
// bucket, and tracks failure streaks with exponential backoff so that
// unresponsive or hostile hosts are left alone for a while.
package throttle

import (
	"math"
	"strings"
	"sync"
	"time"
)

// Config holds the throttle tuning knobs.
type Config struct {
	MaxTokens         float64
	RefillRate        float64 // tokens per second
	FailureThreshold  uint32
	InitialBackoff    time.Duration
	MaxBackoff        time.Duration
	BackoffMultiplier float64
}

// DefaultConfig returns the production defaults.
func DefaultConfig() Config {
	return Config{
		MaxTokens:         10,
		RefillRate:        1,
		FailureThreshold:  3,
		InitialBackoff:    5 * time.Second,
		MaxBackoff:        300 * time.Second,
		BackoffMultiplier: 2,
	}
}

// hostState is the per-host bucket. Created lazily on first reference and
// kept for the life of the process.
type hostState struct {
	tokens       float64
	lastRefill   time.Time
	failureCount uint32
	backoffUntil time.Time
}

// Throttle is a thread-safe per-host token bucket with failure backoff.
// Host keys are lower-cased.
type Throttle struct {
	mu    sync.Mutex
	cfg   Config
	hosts map[string]*hostState
	now   func() time.Time // injectable for tests
}

// New creates a throttle. Zero-valued config fields fall back to defaults.
func New(cfg Config) *Throttle {
	def := DefaultConfig()
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = def.MaxTokens
	}
	if cfg.RefillRate <= 0 {
		cfg.RefillRate = def.RefillRate
	}
	if cfg.FailureThreshold == 0 {
		cfg.FailureThreshold = def.FailureThreshold
	}
	if cfg.InitialBackoff <= 0 {
		cfg.InitialBackoff = def.InitialBackoff
	}
	if cfg.MaxBackoff <= 0 {
		cfg.MaxBackoff = def.MaxBackoff
	}
	if cfg.BackoffMultiplier <= 0 {
		cfg.BackoffMultiplier = def.BackoffMultiplier
	}
	return &Throttle{
		cfg:   cfg,
		hosts: make(map[string]*hostState),
		now:   time.Now,
	}
}

// CanProceed reports whether a probe against host is allowed right now:
// the host is not in backoff and at least one token is available.
func (t *Throttle) CanProceed(host string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	s := t.state(host)
	if t.now().Before(s.backoffUntil) {
		return false
	}
	t.refill(s)
	return s.tokens >= 1
}

// Consume takes one token if available. It does not check backoff;
// callers gate with CanProceed first.
func (t *Throttle) Consume(host string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	s := t.state(host)
	t.refill(s)
	if s.tokens < 1 {
		return false
	}
	s.tokens--
	return true
}

// RecordSuccess ends any failure streak for host.
func (t *Throttle) RecordSuccess(host string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	s := t.state(host)
	s.failureCount = 0
	s.backoffUntil = time.Time{}
}

// RecordFailure increments host's failure streak. Once the streak reaches
// the threshold, each further failure doubles the enforced quiet period up
// to the cap.
func (t *Throttle) RecordFailure(host string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	s := t.state(host)
	s.failureCount++
	if s.failureCount < t.cfg.FailureThreshold {
		return
	}

	exp := float64(s.failureCount - t.cfg.FailureThreshold)
	backoff := time.Duration(float64(t.cfg.InitialBackoff) * math.Pow(t.cfg.BackoffMultiplier, exp))
	if backoff > t.cfg.MaxBackoff || backoff <= 0 {
		backoff = t.cfg.MaxBackoff
	}
	s.backoffUntil = t.now().Add(backoff)
}

// GetWaitTime returns how long a caller should wait before probing host:
// the remaining backoff if one is active, zero if a token is ready, or the
// time until the next token refills.
func (t *Throttle) GetWaitTime(host string) time.Duration {
	t.mu.Lock()
	defer t.mu.Unlock()

	s := t.state(host)
	now := t.now()
	if now.Before(s.backoffUntil) {
		return s.backoffUntil.Sub(now)
	}
	t.refill(s)
	if s.tokens >= 1 {
		return 0
	}
	ms := math.Ceil((1 - s.tokens) / t.cfg.RefillRate * 1000)
	return time.Duration(ms) * time.Millisecond
}

// Reset restores host to a full, untroubled bucket.
func (t *Throttle) Reset(host string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.hosts, hostKey(host))
}

// Clear drops all host state.
func (t *Throttle) Clear() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.hosts = make(map[string]*hostState)
}

// state returns the bucket for host, creating a full one on first
// reference. Caller must hold mu.
func (t *Throttle) state(host string) *hostState {
	key := hostKey(host)
	s, ok := t.hosts[key]
	if !ok {
		s = &hostState{tokens: t.cfg.MaxTokens, lastRefill: t.now()}
		t.hosts[key] = s
	}
	return s
}

// refill credits tokens for the time elapsed since the last refill,
// capped at MaxTokens. Caller must hold mu.
func (t *Throttle) refill(s *hostState) {
	now := t.now()
	elapsed := now.Sub(s.lastRefill).Seconds()
	if elapsed > 0 {
		s.tokens = math.Min(t.cfg.MaxTokens, s.tokens+elapsed*t.cfg.RefillRate)
	}
	s.lastRefill = now
}

func hostKey(host string) string {
	return strings.ToLower(host)
}

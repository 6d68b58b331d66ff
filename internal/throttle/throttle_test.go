package throttle

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type fakeClock struct {
	t time.Time
}

func (f *fakeClock) now() time.Time          { return f.t }
func (f *fakeClock) advance(d time.Duration) { f.t = f.t.Add(d) }

func newTestThrottle(cfg Config) (*Throttle, *fakeClock) {
	clock := &fakeClock{t: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
	th := New(cfg)
	th.now = clock.now
	return th, clock
}

func TestThrottle_ConsumeDrainsBucket(t *testing.T) {
	th, _ := newTestThrottle(Config{MaxTokens: 3, RefillRate: 1})

	for i := 0; i < 3; i++ {
		assert.True(t, th.Consume("mx.example.com"), "token %d", i)
	}
	assert.False(t, th.Consume("mx.example.com"))
	assert.False(t, th.CanProceed("mx.example.com"))
}

func TestThrottle_RefillRestoresTokens(t *testing.T) {
	th, clock := newTestThrottle(Config{MaxTokens: 2, RefillRate: 1})

	assert.True(t, th.Consume("mx.example.com"))
	assert.True(t, th.Consume("mx.example.com"))
	assert.False(t, th.Consume("mx.example.com"))

	clock.advance(1 * time.Second)
	assert.True(t, th.Consume("mx.example.com"))

	// Refill never exceeds the cap.
	clock.advance(time.Hour)
	assert.True(t, th.Consume("mx.example.com"))
	assert.True(t, th.Consume("mx.example.com"))
	assert.False(t, th.Consume("mx.example.com"))
}

func TestThrottle_HostKeyIsCaseInsensitive(t *testing.T) {
	th, _ := newTestThrottle(Config{MaxTokens: 1, RefillRate: 0.001})

	assert.True(t, th.Consume("MX.Example.COM"))
	assert.False(t, th.Consume("mx.example.com"))
}

func TestThrottle_BackoffAfterThreshold(t *testing.T) {
	th, clock := newTestThrottle(Config{})

	th.RecordFailure("mx.example.com")
	th.RecordFailure("mx.example.com")
	assert.True(t, th.CanProceed("mx.example.com"), "below threshold, no backoff")

	th.RecordFailure("mx.example.com")
	assert.False(t, th.CanProceed("mx.example.com"))
	assert.Equal(t, 5*time.Second, th.GetWaitTime("mx.example.com"))

	clock.advance(6 * time.Second)
	assert.True(t, th.CanProceed("mx.example.com"))
}

func TestThrottle_BackoffGrowsMonotonically(t *testing.T) {
	th, _ := newTestThrottle(Config{})

	var prev time.Duration
	for i := 0; i < 10; i++ {
		th.RecordFailure("mx.example.com")
		wait := th.GetWaitTime("mx.example.com")
		assert.GreaterOrEqual(t, wait, prev, "failure %d", i+1)
		assert.LessOrEqual(t, wait, 300*time.Second)
		prev = wait
	}
	// 3 failures → 5s, then 10s, 20s, 40s, 80s, 160s, 300s (capped), 300s...
	assert.Equal(t, 300*time.Second, prev)
}

func TestThrottle_SuccessEndsStreak(t *testing.T) {
	th, _ := newTestThrottle(Config{})

	for i := 0; i < 4; i++ {
		th.RecordFailure("mx.example.com")
	}
	assert.False(t, th.CanProceed("mx.example.com"))

	th.RecordSuccess("mx.example.com")
	assert.True(t, th.CanProceed("mx.example.com"))

	// The streak restarts from zero.
	th.RecordFailure("mx.example.com")
	th.RecordFailure("mx.example.com")
	assert.True(t, th.CanProceed("mx.example.com"))
}

func TestThrottle_GetWaitTimeForTokenRefill(t *testing.T) {
	th, _ := newTestThrottle(Config{MaxTokens: 1, RefillRate: 2})

	assert.Equal(t, time.Duration(0), th.GetWaitTime("mx.example.com"))
	th.Consume("mx.example.com")

	// One token at 2 tokens/s is 500ms away.
	assert.Equal(t, 500*time.Millisecond, th.GetWaitTime("mx.example.com"))
}

func TestThrottle_ResetAndClear(t *testing.T) {
	th, _ := newTestThrottle(Config{MaxTokens: 1, RefillRate: 0.001})

	th.Consume("a.example.com")
	th.Consume("b.example.com")
	th.Reset("a.example.com")
	assert.True(t, th.Consume("a.example.com"))
	assert.False(t, th.Consume("b.example.com"))

	th.Clear()
	assert.True(t, th.Consume("b.example.com"))
}

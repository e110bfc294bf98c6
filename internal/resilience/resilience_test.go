package resilience

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type statusErr int

func (e statusErr) Error() string   { return fmt.Sprintf("status %d", int(e)) }
func (e statusErr) HTTPStatus() int { return int(e) }

func fastPolicy() Policy {
	return Policy{Attempts: 3, BaseDelay: time.Millisecond, MaxDelay: 2 * time.Millisecond}
}

func TestRetry_SucceedsAfterTransient(t *testing.T) {
	calls := 0
	v, err := Retry(context.Background(), fastPolicy(), "test", func(context.Context) (int, error) {
		calls++
		if calls < 3 {
			return 0, statusErr(503)
		}
		return 42, nil
	})
	require.NoError(t, err)
	assert.Equal(t, 42, v)
	assert.Equal(t, 3, calls)
}

func TestRetry_StopsOnPermanent(t *testing.T) {
	calls := 0
	_, err := Retry(context.Background(), fastPolicy(), "test", func(context.Context) (int, error) {
		calls++
		return 0, statusErr(401)
	})
	require.Error(t, err)
	assert.Equal(t, 1, calls)
}

func TestRetry_ExhaustsAttempts(t *testing.T) {
	calls := 0
	_, err := Retry(context.Background(), fastPolicy(), "test", func(context.Context) (string, error) {
		calls++
		return "", statusErr(429)
	})
	require.Error(t, err)
	assert.Equal(t, 3, calls)
}

func TestRetry_StopsWhenContextDone(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	_, err := Retry(ctx, fastPolicy(), "test", func(context.Context) (int, error) {
		calls++
		cancel()
		return 0, statusErr(503)
	})
	require.Error(t, err)
	assert.Equal(t, 1, calls)
}

func TestIsTransient(t *testing.T) {
	assert.False(t, IsTransient(nil))
	assert.True(t, IsTransient(statusErr(502)))
	assert.False(t, IsTransient(statusErr(400)))
	assert.True(t, IsTransient(fmt.Errorf("wrapped: %w", statusErr(504))))
	assert.True(t, IsTransient(errors.New("read tcp: connection reset by peer")))
	assert.False(t, IsTransient(context.Canceled))
	assert.False(t, IsTransient(ErrBreakerOpen))
	assert.False(t, IsTransient(errors.New("bad request")))
}

func TestBreaker_OpensAfterThreshold(t *testing.T) {
	b := NewBreaker("serp", BreakerConfig{Threshold: 2, Cooldown: time.Minute})
	fail := func(context.Context) (int, error) { return 0, statusErr(503) }

	_, _ = Guard(context.Background(), b, fail)
	assert.Equal(t, Closed, b.State())
	_, _ = Guard(context.Background(), b, fail)
	assert.Equal(t, Open, b.State())

	called := false
	_, err := Guard(context.Background(), b, func(context.Context) (int, error) {
		called = true
		return 1, nil
	})
	assert.ErrorIs(t, err, ErrBreakerOpen)
	assert.False(t, called)
}

func TestBreaker_HalfOpenRecovers(t *testing.T) {
	b := NewBreaker("serp", BreakerConfig{Threshold: 1, Cooldown: time.Minute})
	now := time.Now()
	b.now = func() time.Time { return now }

	_, _ = Guard(context.Background(), b, func(context.Context) (int, error) { return 0, statusErr(503) })
	assert.Equal(t, Open, b.State())

	now = now.Add(2 * time.Minute)
	assert.Equal(t, HalfOpen, b.State())

	v, err := Guard(context.Background(), b, func(context.Context) (int, error) { return 7, nil })
	require.NoError(t, err)
	assert.Equal(t, 7, v)
	assert.Equal(t, Closed, b.State())
}

func TestBreaker_HalfOpenFailureReopens(t *testing.T) {
	b := NewBreaker("volume", BreakerConfig{Threshold: 3, Cooldown: time.Minute})
	now := time.Now()
	b.now = func() time.Time { return now }
	fail := func(context.Context) (int, error) { return 0, statusErr(503) }

	for i := 0; i < 3; i++ {
		_, _ = Guard(context.Background(), b, fail)
	}
	now = now.Add(2 * time.Minute)
	_, _ = Guard(context.Background(), b, fail)
	assert.Equal(t, Open, b.State())
}

func TestBreaker_PermanentErrorsDoNotOpen(t *testing.T) {
	b := NewBreaker("serp", BreakerConfig{Threshold: 2, Cooldown: time.Minute})
	for i := 0; i < 5; i++ {
		_, err := Guard(context.Background(), b, func(context.Context) (int, error) { return 0, statusErr(400) })
		require.Error(t, err)
	}
	assert.Equal(t, Closed, b.State())
}

func TestBreaker_HalfOpenAdmitsOneTrial(t *testing.T) {
	b := NewBreaker("serp", BreakerConfig{Threshold: 1, Cooldown: time.Minute})
	now := time.Now()
	b.now = func() time.Time { return now }

	_, _ = Guard(context.Background(), b, func(context.Context) (int, error) { return 0, statusErr(503) })
	now = now.Add(2 * time.Minute)

	started := make(chan struct{})
	release := make(chan struct{})
	done := make(chan error, 1)
	go func() {
		_, err := Guard(context.Background(), b, func(context.Context) (int, error) {
			close(started)
			<-release
			return 1, nil
		})
		done <- err
	}()
	<-started

	called := false
	_, err := Guard(context.Background(), b, func(context.Context) (int, error) {
		called = true
		return 1, nil
	})
	assert.ErrorIs(t, err, ErrBreakerOpen)
	assert.False(t, called)

	close(release)
	require.NoError(t, <-done)
	assert.Equal(t, Closed, b.State())
}

func TestBreaker_IgnoresCancellation(t *testing.T) {
	b := NewBreaker("serp", BreakerConfig{Threshold: 1})
	_, _ = Guard(context.Background(), b, func(context.Context) (int, error) { return 0, context.Canceled })
	assert.Equal(t, Closed, b.State())
}

func TestBreakers_GetIsStable(t *testing.T) {
	bs := NewBreakers(BreakerConfig{})
	a := bs.Get("serp")
	assert.Same(t, a, bs.Get("serp"))
	assert.NotSame(t, a, bs.Get("volume"))

	states := bs.States()
	assert.Len(t, states, 2)
	assert.Equal(t, Closed, states["serp"])
}

package resilience

import (
	"context"
	"sync"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// ErrBreakerOpen is returned without calling the provider while a breaker is open.
var ErrBreakerOpen = eris.New("circuit breaker is open")

// State is a breaker state.
type State int

const (
	Closed State = iota
	Open
	HalfOpen
)

func (s State) String() string {
	switch s {
	case Closed:
		return "closed"
	case Open:
		return "open"
	case HalfOpen:
		return "half-open"
	}
	return "unknown"
}

// BreakerConfig controls when a breaker opens and how long it stays open.
type BreakerConfig struct {
	Threshold int           // consecutive failures before opening; default 5
	Cooldown  time.Duration // open duration before a trial call; default 30s
}

// Breaker stops calling a provider after repeated failures so a dead
// dependency costs one fast error instead of a timeout per call.
type Breaker struct {
	name string
	cfg  BreakerConfig
	now  func() time.Time

	mu       sync.Mutex
	state    State
	failures int
	openedAt time.Time
	trial    bool // a half-open trial call is in flight
}

// NewBreaker creates a closed breaker.
func NewBreaker(name string, cfg BreakerConfig) *Breaker {
	if cfg.Threshold <= 0 {
		cfg.Threshold = 5
	}
	if cfg.Cooldown <= 0 {
		cfg.Cooldown = 30 * time.Second
	}
	return &Breaker{name: name, cfg: cfg, now: time.Now}
}

// State returns the current state, reporting half-open once the cooldown
// has elapsed.
func (b *Breaker) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.state == Open && b.now().Sub(b.openedAt) >= b.cfg.Cooldown {
		return HalfOpen
	}
	return b.state
}

func (b *Breaker) allow() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	switch b.state {
	case Closed:
		return nil
	case Open:
		if b.now().Sub(b.openedAt) < b.cfg.Cooldown {
			return ErrBreakerOpen
		}
		b.setState(HalfOpen)
	}
	// Half-open admits a single trial call.
	if b.trial {
		return ErrBreakerOpen
	}
	b.trial = true
	return nil
}

// record counts only transient failures. A permanent error such as a 400
// means the provider answered, so it counts as healthy.
func (b *Breaker) record(err error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.trial = false

	// A cancelled caller says nothing about provider health.
	if eris.Is(err, context.Canceled) {
		return
	}

	if err == nil || !IsTransient(err) {
		b.failures = 0
		if b.state != Closed {
			b.setState(Closed)
		}
		return
	}

	b.failures++
	if b.state == HalfOpen || b.failures >= b.cfg.Threshold {
		b.openedAt = b.now()
		if b.state != Open {
			b.setState(Open)
		}
	}
}

func (b *Breaker) setState(to State) {
	zap.L().Info("resilience: breaker state change",
		zap.String("breaker", b.name),
		zap.Stringer("from", b.state),
		zap.Stringer("to", to),
	)
	b.state = to
}

// Guard runs fn through the breaker.
func Guard[T any](ctx context.Context, b *Breaker, fn func(context.Context) (T, error)) (T, error) {
	var zero T
	if err := b.allow(); err != nil {
		return zero, err
	}
	v, err := fn(ctx)
	b.record(err)
	return v, err
}

// Breakers is a lazily populated set of named breakers.
type Breakers struct {
	cfg BreakerConfig

	mu  sync.Mutex
	set map[string]*Breaker
}

// NewBreakers creates an empty set sharing cfg.
func NewBreakers(cfg BreakerConfig) *Breakers {
	return &Breakers{cfg: cfg, set: make(map[string]*Breaker)}
}

// Get returns the breaker for name, creating it on first use.
func (bs *Breakers) Get(name string) *Breaker {
	bs.mu.Lock()
	defer bs.mu.Unlock()
	b, ok := bs.set[name]
	if !ok {
		b = NewBreaker(name, bs.cfg)
		bs.set[name] = b
	}
	return b
}

// States snapshots every breaker's state, keyed by name.
func (bs *Breakers) States() map[string]State {
	bs.mu.Lock()
	names := make([]*Breaker, 0, len(bs.set))
	for _, b := range bs.set {
		names = append(names, b)
	}
	bs.mu.Unlock()

	out := make(map[string]State, len(names))
	for _, b := range names {
		out[b.name] = b.State()
	}
	return out
}

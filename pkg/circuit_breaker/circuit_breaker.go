package circuit_breaker

import (
	"errors"
	"sync"
	"time"
)

type Status uint8

const (
	Closed   Status = 1
	Open     Status = 2
	HalfOpen Status = 3
)

var ErrOpen = errors.New("circuit breaker is open")

type Config struct {
	// Window is the number of most recent calls the failure rate is computed over.
	Window int `yaml:"window" envconfig:"CB_WINDOW" default:"10"`
	// Cooldown is how long the breaker stays open before letting a probe call through.
	Cooldown time.Duration `yaml:"cooldown" envconfig:"CB_COOLDOWN" default:"30s"`
	// Threshold is the failure ratio in [0,1] that opens the breaker.
	Threshold float64 `yaml:"threshold" envconfig:"CB_THRESHOLD" default:"0.5"`
	// Recovery is the number of consecutive half-open successes needed to close again.
	Recovery int `yaml:"recovery" envconfig:"CB_RECOVERY" default:"2"`
}

type CircuitBreaker interface {
	Call(fn func() error) error
}

type circuitBreaker struct {
	mu  sync.Mutex
	cfg Config
	now func() time.Time

	state    Status
	openedAt time.Time
	// ring of recent outcomes, true means failed
	window    []bool
	pos       int
	successes int
}

func New(cfg Config) CircuitBreaker {
	return newWithClock(cfg, time.Now)
}

func newWithClock(cfg Config, now func() time.Time) *circuitBreaker {
	if cfg.Window <= 0 {
		cfg.Window = 10
	}
	if cfg.Threshold <= 0 || cfg.Threshold > 1 {
		cfg.Threshold = 0.5
	}
	return &circuitBreaker{
		cfg:    cfg,
		now:    now,
		state:  Closed,
		window: make([]bool, cfg.Window),
	}
}

func (cb *circuitBreaker) Call(fn func() error) error {
	cb.mu.Lock()
	if cb.state == Open {
		if cb.now().Sub(cb.openedAt) < cb.cfg.Cooldown {
			cb.mu.Unlock()
			return ErrOpen
		}
		cb.state = HalfOpen
		cb.successes = 0
	}
	cb.mu.Unlock()

	err := fn()

	cb.mu.Lock()
	defer cb.mu.Unlock()

	cb.window[cb.pos] = err != nil
	cb.pos = (cb.pos + 1) % len(cb.window)

	if cb.state == HalfOpen {
		if err != nil {
			cb.trip()
			return err
		}
		cb.successes++
		if cb.successes >= cb.cfg.Recovery {
			cb.reset()
		}
		return nil
	}

	fails := 0
	for _, failed := range cb.window {
		if failed {
			fails++
		}
	}
	if float64(fails)/float64(len(cb.window)) >= cb.cfg.Threshold {
		cb.trip()
	}
	return err
}

func (cb *circuitBreaker) status() Status {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	return cb.state
}

func (cb *circuitBreaker) trip() {
	cb.state = Open
	cb.successes = 0
	cb.openedAt = cb.now()
}

func (cb *circuitBreaker) reset() {
	clear(cb.window)
	cb.pos = 0
	cb.successes = 0
	cb.state = Closed
}

package changefeed

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/tobro-digital/agency-platform/internal/observability/metrics"
	"github.com/tobro-digital/agency-platform/pkg/logging"
)

// State of a table subscription.
type State int32

const (
	StateConnecting State = iota
	StateActive
	StateError
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateConnecting:
		return "connecting"
	case StateActive:
		return "active"
	case StateError:
		return "error"
	case StateClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// Subscriber keeps an in-memory snapshot of one table's collection in sync
// with the store. It fetches once on start, then re-fetches on every feed
// notification. Fetches may overlap; only the most recently initiated fetch
// is allowed to apply its result, and nothing applies after Close.
type Subscriber[T any] struct {
	broker  Broker
	table   string
	fetch   func(ctx context.Context) (T, error)
	logger  *logging.Logger
	metrics *metrics.SiteMetrics

	// onUpdate, when set, runs with the fresh snapshot after each apply.
	onUpdate func(T)

	mu      sync.Mutex
	state   State
	gen     uint64
	latest  T
	hasData bool

	sub    *Subscription
	cancel context.CancelFunc
	done   chan struct{}
}

// NewSubscriber builds a subscriber for table backed by fetch.
func NewSubscriber[T any](broker Broker, table string, fetch func(ctx context.Context) (T, error), logger *logging.Logger) *Subscriber[T] {
	if logger == nil {
		logger = logging.Default()
	}
	return &Subscriber[T]{
		broker: broker,
		table:  table,
		fetch:  fetch,
		logger: logger,
		state:  StateConnecting,
		done:   make(chan struct{}),
	}
}

// WithMetrics attaches refresh instrumentation.
func (s *Subscriber[T]) WithMetrics(m *metrics.SiteMetrics) *Subscriber[T] {
	s.metrics = m
	return s
}

// OnUpdate registers a callback invoked with each applied snapshot. Must be
// called before Start.
func (s *Subscriber[T]) OnUpdate(fn func(T)) *Subscriber[T] {
	s.onUpdate = fn
	return s
}

// Start opens the feed subscription, performs the initial fetch, and begins
// re-fetching on notifications until ctx is cancelled or Close is called.
func (s *Subscriber[T]) Start(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	sub, err := s.broker.Subscribe(ctx, s.table)
	if err != nil {
		cancel()
		s.mu.Lock()
		s.state = StateError
		s.mu.Unlock()
		return fmt.Errorf("changefeed: start %s: %w", s.table, err)
	}

	s.mu.Lock()
	if s.state == StateClosed {
		s.mu.Unlock()
		sub.Close()
		cancel()
		return fmt.Errorf("changefeed: subscriber for %s already closed", s.table)
	}
	s.sub = sub
	s.cancel = cancel
	s.mu.Unlock()

	// Notification delivery does not replay history, so fetch immediately.
	s.Refresh(ctx)

	go s.loop(ctx)
	return nil
}

func (s *Subscriber[T]) loop(ctx context.Context) {
	defer close(s.done)
	for {
		select {
		case <-ctx.Done():
			return
		case _, ok := <-s.sub.C:
			if !ok {
				return
			}
			s.metrics.ObserveNotification(s.table)
			s.Refresh(ctx)
		}
	}
}

// Refresh re-fetches the collection and applies the result, unless a newer
// fetch has been initiated or the subscriber has been closed in the
// meantime. A failed fetch keeps the last good snapshot visible.
func (s *Subscriber[T]) Refresh(ctx context.Context) {
	s.mu.Lock()
	if s.state == StateClosed {
		s.mu.Unlock()
		return
	}
	s.gen++
	gen := s.gen
	s.mu.Unlock()

	start := time.Now()
	data, err := s.fetch(ctx)
	s.metrics.ObserveRefreshLatency(s.table, time.Since(start).Seconds())

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == StateClosed {
		return
	}
	if gen != s.gen {
		// Superseded by a more recently initiated fetch.
		return
	}
	if err != nil {
		s.state = StateError
		s.logger.Error("changefeed: refresh failed, serving stale data", "table", s.table, "error", err)
		return
	}

	s.latest = data
	s.hasData = true
	s.state = StateActive
	if s.onUpdate != nil {
		s.onUpdate(data)
	}
}

// Latest returns the most recent snapshot and whether one has ever been
// applied.
func (s *Subscriber[T]) Latest() (T, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.latest, s.hasData
}

// State reports the subscription state.
func (s *Subscriber[T]) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Close tears the subscription down. In-flight fetches that resolve later
// are discarded without applying.
func (s *Subscriber[T]) Close() {
	s.mu.Lock()
	if s.state == StateClosed {
		s.mu.Unlock()
		return
	}
	s.state = StateClosed
	sub, cancel := s.sub, s.cancel
	s.mu.Unlock()

	if sub != nil {
		sub.Close()
	}
	if cancel != nil {
		cancel()
	}
}

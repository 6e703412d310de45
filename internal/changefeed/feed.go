package changefeed

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/tobro-digital/agency-platform/pkg/logging"
)

// Table names carried on the feed.
const (
	TableQueries       = "queries"
	TableAnnouncements = "announcements"
	TableTestimonials  = "testimonials"
	TableProjects      = "upcoming_projects"
	TableVisitors      = "visitors"
)

// Notification signals that some row in a table changed. It carries no row
// payload: consumers always respond by re-fetching the full collection.
type Notification struct {
	Table string    `json:"table"`
	At    time.Time `json:"at"`
}

// Subscription is a live stream of notifications for one table.
type Subscription struct {
	C      <-chan Notification
	cancel func()
	once   sync.Once
}

// Close stops the subscription. C is closed; no notifications are delivered
// afterwards.
func (s *Subscription) Close() {
	s.once.Do(s.cancel)
}

// Broker distributes table-change notifications. A Broker never replays
// history; subscribers must perform an initial fetch on their own.
type Broker interface {
	Publish(ctx context.Context, table string) error
	Subscribe(ctx context.Context, table string) (*Subscription, error)
}

// Publisher is the write side of a Broker, used by repositories/handlers
// after a confirmed mutation.
type Publisher interface {
	Publish(ctx context.Context, table string) error
}

// MemoryBroker is an in-process Broker used when Redis is unavailable. It
// only reaches subscribers in the same process; cross-instance consistency
// then relies on the Poller.
type MemoryBroker struct {
	mu   sync.RWMutex
	subs map[string]map[chan Notification]struct{}
}

// NewMemoryBroker creates an in-process broker.
func NewMemoryBroker() *MemoryBroker {
	return &MemoryBroker{subs: make(map[string]map[chan Notification]struct{})}
}

// Publish delivers a notification to every subscriber of table. Slow
// subscribers with a full buffer miss the signal; that is acceptable because
// a later re-fetch converges to the same state.
func (b *MemoryBroker) Publish(ctx context.Context, table string) error {
	n := Notification{Table: table, At: time.Now().UTC()}
	b.mu.RLock()
	defer b.mu.RUnlock()
	for ch := range b.subs[table] {
		select {
		case ch <- n:
		default:
		}
	}
	return nil
}

// Subscribe opens a notification stream for table.
func (b *MemoryBroker) Subscribe(ctx context.Context, table string) (*Subscription, error) {
	ch := make(chan Notification, 8)
	b.mu.Lock()
	if b.subs[table] == nil {
		b.subs[table] = make(map[chan Notification]struct{})
	}
	b.subs[table][ch] = struct{}{}
	b.mu.Unlock()

	cancel := func() {
		b.mu.Lock()
		if _, ok := b.subs[table][ch]; ok {
			delete(b.subs[table], ch)
			close(ch)
		}
		b.mu.Unlock()
	}
	return &Subscription{C: ch, cancel: cancel}, nil
}

const redisChannelPrefix = "feed:"

// RedisBroker carries notifications over Redis pub/sub so every server
// instance and admin tab observes the same change stream.
type RedisBroker struct {
	client *redis.Client
	logger *logging.Logger
}

// NewRedisBroker creates a broker over an established Redis client.
func NewRedisBroker(client *redis.Client, logger *logging.Logger) *RedisBroker {
	if client == nil {
		panic("changefeed: redis client required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &RedisBroker{client: client, logger: logger}
}

// Publish announces a table change on the feed channel.
func (b *RedisBroker) Publish(ctx context.Context, table string) error {
	if err := b.client.Publish(ctx, redisChannelPrefix+table, time.Now().UTC().Format(time.RFC3339Nano)).Err(); err != nil {
		return fmt.Errorf("changefeed: publish %s: %w", table, err)
	}
	return nil
}

// Subscribe opens a pub/sub stream for table and adapts it to Subscription.
func (b *RedisBroker) Subscribe(ctx context.Context, table string) (*Subscription, error) {
	ps := b.client.Subscribe(ctx, redisChannelPrefix+table)
	// Force the subscription to be established before returning so callers
	// cannot miss notifications published right after Subscribe.
	if _, err := ps.Receive(ctx); err != nil {
		_ = ps.Close()
		return nil, fmt.Errorf("changefeed: subscribe %s: %w", table, err)
	}

	ch := make(chan Notification, 8)
	done := make(chan struct{})
	go func() {
		defer close(ch)
		msgs := ps.Channel()
		for {
			select {
			case <-done:
				return
			case msg, ok := <-msgs:
				if !ok {
					return
				}
				at, err := time.Parse(time.RFC3339Nano, msg.Payload)
				if err != nil {
					at = time.Now().UTC()
				}
				select {
				case ch <- Notification{Table: table, At: at}:
				case <-done:
					return
				}
			}
		}
	}()

	cancel := func() {
		close(done)
		if err := ps.Close(); err != nil {
			b.logger.Debug("changefeed: pubsub close", "table", table, "error", err)
		}
	}
	return &Subscription{C: ch, cancel: cancel}, nil
}

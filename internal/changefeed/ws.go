package changefeed

import (
	"context"
	"net/http"
	"sync"

	"golang.org/x/net/websocket"

	"github.com/tobro-digital/agency-platform/internal/observability/metrics"
	"github.com/tobro-digital/agency-platform/pkg/logging"
)

// Hub fans table-change notifications out to connected admin tabs over
// WebSocket so every open dashboard re-fetches at the same moment.
type Hub struct {
	broker  Broker
	tables  []string
	logger  *logging.Logger
	metrics *metrics.SiteMetrics

	mu    sync.RWMutex
	conns map[*websocket.Conn]struct{}
}

// NewHub creates a hub watching the given tables.
func NewHub(broker Broker, tables []string, logger *logging.Logger) *Hub {
	if logger == nil {
		logger = logging.Default()
	}
	return &Hub{
		broker: broker,
		tables: tables,
		logger: logger,
		conns:  make(map[*websocket.Conn]struct{}),
	}
}

// WithMetrics attaches notification instrumentation.
func (h *Hub) WithMetrics(m *metrics.SiteMetrics) *Hub {
	h.metrics = m
	return h
}

// Start subscribes to every table and forwards notifications until ctx is
// cancelled.
func (h *Hub) Start(ctx context.Context) error {
	for _, table := range h.tables {
		sub, err := h.broker.Subscribe(ctx, table)
		if err != nil {
			return err
		}
		go h.forward(ctx, sub)
	}
	return nil
}

func (h *Hub) forward(ctx context.Context, sub *Subscription) {
	defer sub.Close()
	for {
		select {
		case <-ctx.Done():
			return
		case n, ok := <-sub.C:
			if !ok {
				return
			}
			h.metrics.ObserveNotification(n.Table)
			h.broadcast(n)
		}
	}
}

func (h *Hub) broadcast(n Notification) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for conn := range h.conns {
		// Send errors surface on the connection's own read loop.
		_ = websocket.JSON.Send(conn, n)
	}
}

// HandleFeed upgrades to WebSocket and streams notifications until the
// client disconnects.
func (h *Hub) HandleFeed(w http.ResponseWriter, r *http.Request) {
	websocket.Handler(func(conn *websocket.Conn) {
		h.serveWS(conn)
	}).ServeHTTP(w, r)
}

func (h *Hub) serveWS(conn *websocket.Conn) {
	h.mu.Lock()
	h.conns[conn] = struct{}{}
	h.mu.Unlock()
	defer func() {
		h.mu.Lock()
		delete(h.conns, conn)
		h.mu.Unlock()
	}()

	h.logger.Debug("feed: connection opened", "remote", conn.Request().RemoteAddr)

	// The client never sends anything meaningful; block on reads until the
	// connection drops.
	for {
		var discard string
		if err := websocket.Message.Receive(conn, &discard); err != nil {
			h.logger.Debug("feed: connection closed", "error", err)
			return
		}
	}
}

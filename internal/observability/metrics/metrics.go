package metrics

import "github.com/prometheus/client_golang/prometheus"

// SiteMetrics exposes counters/histograms for the public site and admin feed.
type SiteMetrics struct {
	visitorsTotal     *prometheus.CounterVec
	feedNotifications *prometheus.CounterVec
	refreshLatency    *prometheus.HistogramVec
}

func NewSiteMetrics(reg prometheus.Registerer) *SiteMetrics {
	m := &SiteMetrics{
		visitorsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "agency",
			Subsystem: "site",
			Name:      "visitors_tracked_total",
			Help:      "Total visitor events recorded",
		}, []string{"action", "status"}),
		feedNotifications: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "agency",
			Subsystem: "feed",
			Name:      "notifications_total",
			Help:      "Total change-feed notifications delivered",
		}, []string{"table"}),
		refreshLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "agency",
			Subsystem: "feed",
			Name:      "refresh_latency_seconds",
			Help:      "Latency of feed-triggered collection refreshes",
			Buckets:   prometheus.DefBuckets,
		}, []string{"table"}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.visitorsTotal, m.feedNotifications, m.refreshLatency)
	return m
}

func (m *SiteMetrics) ObserveVisitor(action, status string) {
	if m == nil {
		return
	}
	m.visitorsTotal.WithLabelValues(action, status).Inc()
}

func (m *SiteMetrics) ObserveNotification(table string) {
	if m == nil {
		return
	}
	m.feedNotifications.WithLabelValues(table).Inc()
}

func (m *SiteMetrics) ObserveRefreshLatency(table string, seconds float64) {
	if m == nil {
		return
	}
	m.refreshLatency.WithLabelValues(table).Observe(seconds)
}

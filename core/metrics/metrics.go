// Package metrics exposes Prometheus collectors for the bot runtime, the HTTP
// surface and shop operations. Every recorder is nil-safe so components can run
// without a registry.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "storebot"

// Updates records Telegram update handling.
type Updates struct {
	handled  *prometheus.CounterVec
	duration *prometheus.HistogramVec
	messages *prometheus.CounterVec
}

// NewUpdates registers update collectors on reg. A nil registerer yields a no-op recorder.
func NewUpdates(reg prometheus.Registerer) *Updates {
	if reg == nil {
		return &Updates{}
	}
	handled := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "updates_total",
		Help:      "Telegram updates handled by route and outcome.",
	}, []string{"kind", "route", "outcome"})
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "update_duration_seconds",
		Help:      "Handler latency per route.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"kind", "route"})
	messages := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "messages_sent_total",
		Help:      "Messages sent in response to updates.",
	}, []string{"kind"})
	reg.MustRegister(handled, duration, messages)
	return &Updates{handled: handled, duration: duration, messages: messages}
}

// Observe records one handled update.
func (u *Updates) Observe(kind, route, outcome string, took time.Duration, sent int) {
	if u == nil || u.handled == nil {
		return
	}
	kind, route = label(kind), label(route)
	u.handled.WithLabelValues(kind, route, label(outcome)).Inc()
	u.duration.WithLabelValues(kind, route).Observe(took.Seconds())
	if sent > 0 {
		u.messages.WithLabelValues(kind).Add(float64(sent))
	}
}

// Shop records domain activity.
type Shop struct {
	cartAdds    prometheus.Counter
	orders      *prometheus.CounterVec
	transitions *prometheus.CounterVec
}

// NewShop registers shop collectors on reg.
func NewShop(reg prometheus.Registerer) *Shop {
	if reg == nil {
		return &Shop{}
	}
	cartAdds := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "cart_items_added_total",
		Help:      "Units added to carts.",
	})
	orders := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "orders_total",
		Help:      "Order lifecycle events.",
	}, []string{"event"})
	transitions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "order_status_transitions_total",
		Help:      "Order status changes by target status.",
	}, []string{"status"})
	reg.MustRegister(cartAdds, orders, transitions)
	return &Shop{cartAdds: cartAdds, orders: orders, transitions: transitions}
}

// CartAdd counts one unit added to a cart.
func (s *Shop) CartAdd() {
	if s == nil || s.cartAdds == nil {
		return
	}
	s.cartAdds.Inc()
}

// Order counts an order lifecycle event such as created or confirmed.
func (s *Shop) Order(event string) {
	if s == nil || s.orders == nil {
		return
	}
	s.orders.WithLabelValues(label(event)).Inc()
}

// Transition counts a status change.
func (s *Shop) Transition(status string) {
	if s == nil || s.transitions == nil {
		return
	}
	s.transitions.WithLabelValues(label(status)).Inc()
}

// HTTP records HTTP requests.
type HTTP struct {
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

// NewHTTP registers HTTP collectors on reg.
func NewHTTP(reg prometheus.Registerer) *HTTP {
	if reg == nil {
		return &HTTP{}
	}
	requests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "http_requests_total",
		Help:      "HTTP requests by route pattern and status code.",
	}, []string{"method", "route", "code"})
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request latency by route pattern.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "route"})
	reg.MustRegister(requests, duration)
	return &HTTP{requests: requests, duration: duration}
}

// Observe records one served request.
func (h *HTTP) Observe(method, route string, code int, took time.Duration) {
	if h == nil || h.requests == nil {
		return
	}
	route = label(route)
	h.requests.WithLabelValues(method, route, strconv.Itoa(code)).Inc()
	h.duration.WithLabelValues(method, route).Observe(took.Seconds())
}

func label(v string) string {
	if v == "" {
		return "unknown"
	}
	return v
}

package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// API
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "foodgram_api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "route", "status"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "foodgram_api_request_duration_seconds",
			Help:    "API request latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	APIActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "foodgram_api_active_requests",
			Help: "Requests currently being served",
		},
	)

	// Domain
	RecipeWrites = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "foodgram_recipe_writes_total",
			Help: "Recipe aggregate writes by operation and outcome",
		},
		[]string{"operation", "outcome"},
	)

	MembershipChanges = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "foodgram_membership_changes_total",
			Help: "Favorite and shopping cart mark changes",
		},
		[]string{"kind", "action", "outcome"},
	)

	SubscriptionChanges = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "foodgram_subscription_changes_total",
			Help: "Follow and unfollow operations",
		},
		[]string{"action", "outcome"},
	)

	ShoppingListRenders = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "foodgram_shopping_list_render_seconds",
			Help:    "Time spent aggregating and rendering a shopping list",
			Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"format"},
	)
)

// RecordAPIRequest records one finished request.
func RecordAPIRequest(method, route, status string, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, route, status).Inc()
	APIRequestDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

// TrackActiveRequest moves the in-flight gauge.
func TrackActiveRequest(start bool) {
	if start {
		APIActiveRequests.Inc()
		return
	}
	APIActiveRequests.Dec()
}

func outcome(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

func RecordRecipeWrite(operation string, err error) {
	RecipeWrites.WithLabelValues(operation, outcome(err)).Inc()
}

func RecordMembershipChange(kind, action string, err error) {
	MembershipChanges.WithLabelValues(kind, action, outcome(err)).Inc()
}

func RecordSubscriptionChange(action string, err error) {
	SubscriptionChanges.WithLabelValues(action, outcome(err)).Inc()
}

func RecordShoppingListRender(format string, duration time.Duration) {
	ShoppingListRenders.WithLabelValues(format).Observe(duration.Seconds())
}

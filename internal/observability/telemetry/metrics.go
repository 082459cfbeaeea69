package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Business metrics
	BookingsCreatedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "chargehub_bookings_created_total",
		Help: "Total bookings created",
	})

	BookingTransitionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "chargehub_booking_transitions_total",
		Help: "Booking status transitions by target status",
	}, []string{"status"})

	BookingConflictsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "chargehub_booking_conflicts_total",
		Help: "Booking attempts rejected because the slot was taken",
	})

	BookedSlotsCacheTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "chargehub_booked_slots_cache_total",
		Help: "Booked slot lookups by cache result",
	}, []string{"result"})

	StationReviewsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "chargehub_station_reviews_total",
		Help: "Station review decisions",
	}, []string{"decision"})

	NotificationsSentTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "chargehub_notifications_sent_total",
		Help: "Notifications delivered per channel",
	}, []string{"channel"})

	// Infrastructure metrics
	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "chargehub_http_requests_total",
		Help: "HTTP requests by route and status code",
	}, []string{"method", "route", "status"})

	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "chargehub_http_request_duration_seconds",
		Help:    "HTTP request latency",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route"})

	GRPCRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "chargehub_grpc_requests_total",
		Help: "gRPC requests by method and code",
	}, []string{"method", "code"})

	GRPCRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "chargehub_grpc_request_duration_seconds",
		Help:    "gRPC request latency",
		Buckets: prometheus.DefBuckets,
	}, []string{"method"})

	DatabaseLatency = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "chargehub_database_latency_seconds",
		Help:    "Latency of booking persistence calls",
		Buckets: prometheus.DefBuckets,
	})
)

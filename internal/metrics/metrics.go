package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cloudgym_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "cloudgym_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	BookingsCreatedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cloudgym_bookings_created_total",
			Help: "Total number of bookings created, by initial status",
		},
		[]string{"status"},
	)

	BookingsConfirmedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "cloudgym_bookings_confirmed_total",
			Help: "Total number of bookings confirmed by payment",
		},
	)

	BookingCancellationsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "cloudgym_booking_cancellations_total",
			Help: "Total number of booking cancellations",
		},
	)

	CheckInsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "cloudgym_checkins_total",
			Help: "Total number of QR check-ins",
		},
	)

	StaleBookingsCancelledTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "cloudgym_stale_bookings_cancelled_total",
			Help: "Total number of unpaid bookings cancelled by the sweeper",
		},
	)

	SubscriptionsCreatedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cloudgym_subscriptions_created_total",
			Help: "Total number of subscriptions created",
		},
		[]string{"plan"},
	)

	SubscriptionsActivatedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cloudgym_subscriptions_activated_total",
			Help: "Total number of subscriptions activated by payment",
		},
		[]string{"plan"},
	)

	SubscriptionCancellationsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "cloudgym_subscription_cancellations_total",
			Help: "Total number of subscription cancellations",
		},
	)

	SubscriptionsExpiredTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "cloudgym_subscriptions_expired_total",
			Help: "Total number of subscriptions expired by the sweeper",
		},
	)

	StaleSubscriptionsCancelledTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "cloudgym_stale_subscriptions_cancelled_total",
			Help: "Total number of unpaid pending subscriptions cancelled by the sweeper",
		},
	)

	PaymentsInitiatedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cloudgym_payments_initiated_total",
			Help: "Total number of payments initiated, by type",
		},
		[]string{"type"},
	)

	PaymentsProcessedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cloudgym_payments_processed_total",
			Help: "Total number of gateway callbacks processed, by final status",
		},
		[]string{"status"},
	)

	DuplicateCallbacksTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "cloudgym_duplicate_callbacks_total",
			Help: "Total number of replayed gateway callbacks ignored",
		},
	)

	StalePaymentsFailedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "cloudgym_stale_payments_failed_total",
			Help: "Total number of pending payments failed by the sweeper",
		},
	)

	EmailsSentTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cloudgym_emails_sent_total",
			Help: "Total number of emails sent",
		},
		[]string{"type", "status"},
	)

	EmailQueueLength = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "cloudgym_email_queue_length",
			Help: "Current length of email queue",
		},
	)
)

func RecordHTTPRequest(method, path, status string, duration float64) {
	HTTPRequestsTotal.WithLabelValues(method, path, status).Inc()
	HTTPRequestDuration.WithLabelValues(method, path).Observe(duration)
}

func RecordBookingCreated(status string) {
	BookingsCreatedTotal.WithLabelValues(status).Inc()
}

func RecordBookingConfirmed() {
	BookingsConfirmedTotal.Inc()
}

func RecordBookingCancelled() {
	BookingCancellationsTotal.Inc()
}

func RecordCheckIn() {
	CheckInsTotal.Inc()
}

func RecordStaleBookingsCancelled(n int64) {
	StaleBookingsCancelledTotal.Add(float64(n))
}

func RecordSubscriptionCreated(plan string) {
	SubscriptionsCreatedTotal.WithLabelValues(plan).Inc()
}

func RecordSubscriptionActivated(plan string) {
	SubscriptionsActivatedTotal.WithLabelValues(plan).Inc()
}

func RecordSubscriptionCancelled() {
	SubscriptionCancellationsTotal.Inc()
}

func RecordSubscriptionsExpired(n int64) {
	SubscriptionsExpiredTotal.Add(float64(n))
}

func RecordStaleSubscriptionsCancelled(n int64) {
	StaleSubscriptionsCancelledTotal.Add(float64(n))
}

func RecordPaymentInitiated(paymentType string) {
	PaymentsInitiatedTotal.WithLabelValues(paymentType).Inc()
}

func RecordPaymentProcessed(status string) {
	PaymentsProcessedTotal.WithLabelValues(status).Inc()
}

func RecordDuplicateCallback() {
	DuplicateCallbacksTotal.Inc()
}

func RecordStalePaymentsFailed(n int64) {
	StalePaymentsFailedTotal.Add(float64(n))
}

func RecordEmail(emailType, status string) {
	EmailsSentTotal.WithLabelValues(emailType, status).Inc()
}

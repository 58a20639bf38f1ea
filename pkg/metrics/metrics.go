package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	RateLimitAllowed = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "scholarfolio", Name: "rate_limit_allowed_total", Help: "Number of allowed requests by limiter type."},
		[]string{"limiter"},
	)
	RateLimitRejected = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "scholarfolio", Name: "rate_limit_rejected_total", Help: "Number of rejected requests by limiter type."},
		[]string{"limiter"},
	)
	ContentOps = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "scholarfolio", Name: "content_operations_total", Help: "Content API operations by resource, operation and outcome."},
		[]string{"resource", "op", "outcome"},
	)
	Uploads = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "scholarfolio", Name: "uploads_total", Help: "Attachment uploads by outcome."},
		[]string{"outcome"},
	)
	UploadBytes = prometheus.NewCounter(
		prometheus.CounterOpts{Namespace: "scholarfolio", Name: "upload_bytes_total", Help: "Bytes stored by successful uploads."},
	)
)

func RegisterCollectors(reg prometheus.Registerer) {
	reg.MustRegister(RateLimitAllowed)
	reg.MustRegister(RateLimitRejected)
	reg.MustRegister(ContentOps)
	reg.MustRegister(Uploads)
	reg.MustRegister(UploadBytes)
}

package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// SessionsIssued counts QR sessions issued.
	SessionsIssued = promauto.NewCounter(prometheus.CounterOpts{
		Name: "qrpass_sessions_issued_total",
		Help: "Number of attendance sessions issued.",
	})

	// Redemptions counts redemption attempts by outcome. The outcome label is
	// "accepted" or the rejection kind.
	Redemptions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "qrpass_redemptions_total",
		Help: "Number of redemption attempts by outcome.",
	}, []string{"outcome"})

	// SessionsSwept counts sessions evicted by the periodic sweep.
	SessionsSwept = promauto.NewCounter(prometheus.CounterOpts{
		Name: "qrpass_sessions_swept_total",
		Help: "Number of expired sessions removed by the sweeper.",
	})
)

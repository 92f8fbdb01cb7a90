package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	ActiveRooms = prometheus.NewGauge(
		prometheus.GaugeOpts{Namespace: "doccollab", Name: "active_rooms", Help: "Number of document rooms with at least one member."},
	)
	EditsBroadcast = prometheus.NewCounter(
		prometheus.CounterOpts{Namespace: "doccollab", Name: "edits_broadcast_total", Help: "Number of edit events fanned out to room peers."},
	)
	SavesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "doccollab", Name: "saves_total", Help: "Number of successful durable saves by mode."},
		[]string{"mode"},
	)
	SaveFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "doccollab", Name: "save_failures_total", Help: "Number of failed durable saves by mode."},
		[]string{"mode"},
	)
	RateLimitAllowed = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "doccollab", Name: "rate_limit_allowed_total", Help: "Number of allowed requests by limiter type."},
		[]string{"limiter"},
	)
	RateLimitRejected = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "doccollab", Name: "rate_limit_rejected_total", Help: "Number of rejected requests by limiter type."},
		[]string{"limiter"},
	)
)

func RegisterCollectors(reg prometheus.Registerer) {
	reg.MustRegister(ActiveRooms)
	reg.MustRegister(EditsBroadcast)
	reg.MustRegister(SavesTotal)
	reg.MustRegister(SaveFailures)
	reg.MustRegister(RateLimitAllowed)
	reg.MustRegister(RateLimitRejected)
}

package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RedisErrors counts failed Redis commands by command name.
	RedisErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "socialhub_redis_errors_total",
		Help: "Total number of Redis command errors",
	}, []string{"command"})

	// AuthEvents counts authentication outcomes (register, verify, login, logout, reset).
	AuthEvents = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "socialhub_auth_events_total",
		Help: "Authentication events by type and outcome",
	}, []string{"event", "outcome"})

	// MailDeliveries counts outbound mail attempts by template and result.
	MailDeliveries = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "socialhub_mail_deliveries_total",
		Help: "Outbound mail deliveries by kind and status",
	}, []string{"kind", "status"})

	// SocialActions counts follow, like and comment mutations.
	SocialActions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "socialhub_social_actions_total",
		Help: "Social graph and content interactions by action",
	}, []string{"action"})
)

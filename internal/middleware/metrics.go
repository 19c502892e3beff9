package middleware

import (
	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RedisErrors counts Redis command errors by operation type.
	RedisErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "banrelay_redis_errors_total",
		Help: "Total number of Redis errors by operation type",
	}, []string{"operation"})

	// RelayOperations counts outbound relay operation outcomes by target and result.
	RelayOperations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "banrelay_relay_operations_total",
		Help: "Outbound relay operation outcomes by target (database, roblox, sheet, discord) and result",
	}, []string{"target", "result"})

	// InteractionsReceived counts inbound Discord interactions by type outcome.
	InteractionsReceived = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "banrelay_interactions_received_total",
		Help: "Inbound Discord interactions by disposition",
	}, []string{"disposition"})
)

// InitMetrics creates the Prometheus HTTP metrics middleware for the service.
func InitMetrics(serviceName string) *fiberprometheus.FiberPrometheus {
	return fiberprometheus.New(serviceName)
}

// MetricsMiddleware returns the Fiber handler recording HTTP metrics.
func MetricsMiddleware(p *fiberprometheus.FiberPrometheus) fiber.Handler {
	return p.Middleware
}

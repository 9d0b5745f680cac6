package middleware

import (
	"sync"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RedisErrors counts failed Redis commands by command name.
	RedisErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "vidtube_redis_errors_total",
		Help: "Total number of Redis command errors",
	}, []string{"command"})

	// ActiveWebSockets tracks currently open notification sockets.
	ActiveWebSockets = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "vidtube_active_websockets",
		Help: "Number of active WebSocket connections",
	})

	promOnce sync.Once
	prom     *fiberprometheus.FiberPrometheus
)

// InitMetrics creates the HTTP metrics collector. Collectors register globally, so repeated
// calls return the first instance.
func InitMetrics(serviceName string) *fiberprometheus.FiberPrometheus {
	promOnce.Do(func() {
		prom = fiberprometheus.New(serviceName)
	})
	return prom
}

// MetricsMiddleware records request count and latency, skipping the scrape endpoint itself.
func MetricsMiddleware(p *fiberprometheus.FiberPrometheus) fiber.Handler {
	inner := p.Middleware
	return func(c *fiber.Ctx) error {
		if c.Path() == "/metrics" {
			return c.Next()
		}
		return inner(c)
	}
}

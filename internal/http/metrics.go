package http

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// AuthMetrics cuenta resultados de signup/login/logout.
type AuthMetrics struct {
	registry *prometheus.Registry
	attempts *prometheus.CounterVec
}

func NewAuthMetrics() *AuthMetrics {
	reg := prometheus.NewRegistry()
	attempts := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "blogit",
		Name:      "auth_attempts_total",
		Help:      "Authentication operations by outcome.",
	}, []string{"operation", "outcome"})
	reg.MustRegister(attempts, collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	return &AuthMetrics{registry: reg, attempts: attempts}
}

func (m *AuthMetrics) Observe(operation, outcome string) {
	if m == nil {
		return
	}
	m.attempts.WithLabelValues(operation, outcome).Inc()
}

// Handler expone el registry en formato Prometheus.
func (m *AuthMetrics) Handler() gin.HandlerFunc {
	return gin.WrapH(promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{}))
}

package email

import "github.com/prometheus/client_golang/prometheus"

var (
	smtpTestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "smtp_tests_total",
		Help: "Pruebas SMTP por resultado y categoría de error",
	}, []string{"result", "category"}) // result: success|error

	smtpTestDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "smtp_test_duration_seconds",
		Help:    "Duración de las pruebas SMTP",
		Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10},
	})
)

// Collectors retorna las métricas del paquete para registrarlas junto con
// las métricas HTTP.
func Collectors() []prometheus.Collector {
	return []prometheus.Collector{smtpTestsTotal, smtpTestDuration}
}

func observeTest(res Result) {
	result, category := "success", "none"
	if !res.Success {
		result, category = "error", string(res.Category)
	}
	smtpTestsTotal.WithLabelValues(result, category).Inc()
	smtpTestDuration.Observe(res.Duration.Seconds())
}

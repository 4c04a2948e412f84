package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
)

var (
	PaymentOutcomes = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "payment_outcomes_total",
		Help: "Terminal payment outcomes by status",
	}, []string{"status"})

	RuleHits = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "payment_rule_hits_total",
		Help: "Business rule failures by rule code",
	}, []string{"rule"})

	WebhookDeliveries = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "webhook_deliveries_total",
		Help: "Webhook delivery attempts by result",
	}, []string{"result"})

	OutboxProduced = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "outbox_events_produced_total",
		Help: "Outbox events relayed to the broker",
	})
)

// registry is dedicated to this process; the default registry already carries
// the Go and process collectors and must not be registered against twice.
var registry = prometheus.NewRegistry()

func init() {
	registry.MustRegister(collectors.NewGoCollector())
	registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	registry.MustRegister(PaymentOutcomes, RuleHits, WebhookDeliveries, OutboxProduced)
}

func Handler() http.Handler {
	return promhttp.HandlerFor(registry, promhttp.HandlerOpts{})
}

func StartMetricsServer(addr string) {
	go func() {
		mux := http.NewServeMux()
		mux.Handle("/metrics", Handler())
		srv := &http.Server{
			Addr:              addr,
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
		}
		if err := srv.ListenAndServe(); err != nil {
			logrus.WithField("ADDR", addr).Warnf("metrics server stopped: %v", err)
		}
	}()
}

package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	ConnectionsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "academia", Name: "connections_total", Help: "Accepted client connections",
	})
	ActiveConnections = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "academia", Name: "active_connections", Help: "Currently open client connections",
	})
	CommandsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "academia", Name: "commands_total", Help: "Processed protocol commands",
	}, []string{"verb", "status"})
	SaveDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "academia", Name: "save_seconds", Help: "Flat-file save latency",
		Buckets: prometheus.DefBuckets,
	})
	TableSize = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "academia", Name: "table_rows", Help: "In-memory table sizes",
	}, []string{"table"})
)

func init() {
	prometheus.MustRegister(ConnectionsTotal, ActiveConnections, CommandsTotal, SaveDuration, TableSize)
}

// Handler returns the scrape endpoint handler
func Handler() http.Handler { return promhttp.Handler() }

// ObserveCommand records one processed command with its response status
func ObserveCommand(verb, status string) { CommandsTotal.WithLabelValues(verb, status).Inc() }

// ObserveSave records the latency of one flat-file save
func ObserveSave(d time.Duration) { SaveDuration.Observe(d.Seconds()) }

// SetTableSizes updates the table size gauges after a mutation
func SetTableSizes(users, courses, enrollments int) {
	TableSize.WithLabelValues("users").Set(float64(users))
	TableSize.WithLabelValues("courses").Set(float64(courses))
	TableSize.WithLabelValues("enrollments").Set(float64(enrollments))
}

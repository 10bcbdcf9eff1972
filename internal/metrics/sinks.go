package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Sink label values.
const (
	SinkConsole = "console"
	SinkFile    = "file"
	SinkServer  = "server"
)

// Metrics for tracking what each installed sink does with the records it receives
var (
	RecordsWritten = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "loginit_records_written_total",
		Help: "The total number of log records handed to a sink",
	}, []string{"sink"})

	RecordsDropped = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "loginit_records_dropped_total",
		Help: "The total number of log records dropped because a sink queue was full",
	}, []string{"sink"})

	WriteErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "loginit_write_errors_total",
		Help: "The total number of failed sink writes",
	}, []string{"sink"})

	FileRotations = promauto.NewCounter(prometheus.CounterOpts{
		Name: "loginit_file_rotations_total",
		Help: "The total number of scheduled log file rotations",
	})

	Installed = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "loginit_installed",
		Help: "1 once the process-wide logger has been installed",
	})
)

// RegisterMetrics pre-creates the label values so every sink reports zero before its first record
func RegisterMetrics() {
	for _, sink := range []string{SinkConsole, SinkFile, SinkServer} {
		RecordsWritten.WithLabelValues(sink)
		RecordsDropped.WithLabelValues(sink)
		WriteErrors.WithLabelValues(sink)
	}
}

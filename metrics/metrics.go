// Package metrics provides Prometheus observability metrics for the CDR analyzer.
// It covers the business view of each analyzed dataset (peak channels, call
// counts) and the operational health of ingestion and analysis.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Registry is the custom prometheus registry for our application
var Registry = prometheus.NewRegistry()

// factory allows us to register metrics to our custom Registry directly
var factory = promauto.With(Registry)

// =============================================================================
// DATASET METRICS - Channel Load Visibility
// =============================================================================

// PeakChannels is the highest number of concurrent calls seen in a dataset.
// This is the figure trunk sizing is done against.
var PeakChannels = factory.NewGaugeVec(prometheus.GaugeOpts{
	Namespace: "cdr",
	Name:      "peak_channels",
	Help:      "Maximum number of simultaneously active calls in the dataset",
}, []string{"dataset"})

// CallsAnalyzed tracks the number of call records per dataset.
var CallsAnalyzed = factory.NewGaugeVec(prometheus.GaugeOpts{
	Namespace: "cdr",
	Name:      "calls",
	Help:      "Number of call records analyzed in the dataset",
}, []string{"dataset"})

// CallsWithoutConversation tracks records that never occupied a channel.
var CallsWithoutConversation = factory.NewGaugeVec(prometheus.GaugeOpts{
	Namespace: "cdr",
	Name:      "calls_without_conversation",
	Help:      "Number of call records with zero conversation time",
}, []string{"dataset"})

// ShortCalls tracks calls below the short-call threshold.
var ShortCalls = factory.NewGaugeVec(prometheus.GaugeOpts{
	Namespace: "cdr",
	Name:      "short_calls",
	Help:      "Number of calls whose conversation is shorter than the short-call threshold",
}, []string{"dataset"})

// AverageConversationSeconds tracks the mean conversation time per dataset.
var AverageConversationSeconds = factory.NewGaugeVec(prometheus.GaugeOpts{
	Namespace: "cdr",
	Name:      "average_conversation_seconds",
	Help:      "Mean conversation time of the dataset in seconds",
}, []string{"dataset"})

// =============================================================================
// OPERATIONAL METRICS - Pipeline Health
// =============================================================================

// IngestErrorsTotal tracks rejected inputs by error type.
var IngestErrorsTotal = factory.NewCounterVec(prometheus.CounterOpts{
	Namespace: "ingest",
	Name:      "errors_total",
	Help:      "Total rejected inputs by error type",
}, []string{"error_type"})

// IngestRecordsTotal tracks total records successfully loaded.
var IngestRecordsTotal = factory.NewCounter(prometheus.CounterOpts{
	Namespace: "ingest",
	Name:      "records_total",
	Help:      "Total call records successfully loaded",
})

// IngestDurationSeconds tracks time to load input files.
var IngestDurationSeconds = factory.NewHistogram(prometheus.HistogramOpts{
	Namespace: "ingest",
	Name:      "duration_seconds",
	Help:      "Time taken to load a CSV input file",
	Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0},
})

// AnalysisDurationSeconds tracks time to build a report for one dataset.
var AnalysisDurationSeconds = factory.NewHistogram(prometheus.HistogramOpts{
	Namespace: "analysis",
	Name:      "duration_seconds",
	Help:      "Time taken to build the report of one dataset",
	Buckets:   []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 1.0},
})

// OccupancyEvents tracks the number of sweep events per dataset.
var OccupancyEvents = factory.NewHistogram(prometheus.HistogramOpts{
	Namespace: "analysis",
	Name:      "occupancy_events",
	Help:      "Number of channel take/release events swept per dataset",
	Buckets:   prometheus.ExponentialBuckets(10, 4, 8),
})

// DatasetsAnalyzed counts finished reports.
var DatasetsAnalyzed = factory.NewCounter(prometheus.CounterOpts{
	Namespace: "analysis",
	Name:      "datasets_total",
	Help:      "Total number of datasets analyzed",
})

// =============================================================================
// Helper Functions
// =============================================================================

// ResetDatasetGauges drops every per-dataset series.
// Call this before analyzing a new batch of files.
func ResetDatasetGauges() {
	PeakChannels.Reset()
	CallsAnalyzed.Reset()
	CallsWithoutConversation.Reset()
	ShortCalls.Reset()
	AverageConversationSeconds.Reset()
}

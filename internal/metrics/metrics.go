// ABOUTME: Prometheus collectors for gymlog storage operations.
// ABOUTME: Also renders a registry snapshot for the metrics command.
package metrics

import (
	"fmt"
	"sort"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	dto "github.com/prometheus/client_model/go"
)

// Storage operation labels.
const (
	OpSelect = "select"
	OpInsert = "insert"
	OpUpdate = "update"
	OpDelete = "delete"
	OpTx     = "tx"
	OpInit   = "init"
	OpExport = "export"
	OpImport = "import"
)

var (
	// StorageOpDuration tracks query helper latency by operation.
	StorageOpDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "gymlog_storage_op_duration_seconds",
		Help:    "Duration of storage operations.",
		Buckets: []float64{.0005, .001, .0025, .005, .01, .025, .05, .1, .5, 1},
	}, []string{"op"})

	// StorageOpErrors counts failed storage operations by operation.
	StorageOpErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "gymlog_storage_op_errors_total",
		Help: "Total failed storage operations.",
	}, []string{"op"})

	// InitRuns counts executions of the database initialization sequence.
	InitRuns = promauto.NewCounter(prometheus.CounterOpts{
		Name: "gymlog_storage_init_runs_total",
		Help: "Total runs of the database initialization sequence.",
	})

	// GateWaits counts callers that had to wait for the database to become ready.
	GateWaits = promauto.NewCounter(prometheus.CounterOpts{
		Name: "gymlog_storage_gate_waits_total",
		Help: "Total callers that blocked on database readiness.",
	})

	// ExerciseCacheLookups counts exercise cache lookups by result (hit or miss).
	ExerciseCacheLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "gymlog_exercise_cache_lookups_total",
		Help: "Exercise cache lookups by result.",
	}, []string{"result"})

	// PendingWrites is the number of debounced writes waiting to run.
	PendingWrites = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "gymlog_debounce_pending_writes",
		Help: "Debounced writes waiting to be flushed.",
	})
)

// Sample is one flattened metric value.
type Sample struct {
	Name  string
	Value float64
}

// Snapshot gathers every gymlog metric from g and flattens it into samples.
// Histograms contribute _count and _sum samples.
func Snapshot(g prometheus.Gatherer) ([]Sample, error) {
	families, err := g.Gather()
	if err != nil {
		return nil, fmt.Errorf("gather metrics: %w", err)
	}

	var out []Sample
	for _, mf := range families {
		name := mf.GetName()
		if !strings.HasPrefix(name, "gymlog_") {
			continue
		}
		for _, m := range mf.GetMetric() {
			key := name + labelString(m.GetLabel())
			switch {
			case m.GetCounter() != nil:
				out = append(out, Sample{Name: key, Value: m.GetCounter().GetValue()})
			case m.GetGauge() != nil:
				out = append(out, Sample{Name: key, Value: m.GetGauge().GetValue()})
			case m.GetHistogram() != nil:
				h := m.GetHistogram()
				out = append(out,
					Sample{Name: name + "_count" + labelString(m.GetLabel()), Value: float64(h.GetSampleCount())},
					Sample{Name: name + "_sum" + labelString(m.GetLabel()), Value: h.GetSampleSum()},
				)
			}
		}
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func labelString(labels []*dto.LabelPair) string {
	if len(labels) == 0 {
		return ""
	}
	parts := make([]string, 0, len(labels))
	for _, l := range labels {
		parts = append(parts, fmt.Sprintf("%s=%q", l.GetName(), l.GetValue()))
	}
	return "{" + strings.Join(parts, ",") + "}"
}

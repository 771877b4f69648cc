// Package metrics records per-run pipeline metrics in a private Prometheus
// registry. A nil *Recorder is valid and records nothing.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Skip reasons for annotation features.
const (
	ReasonUnlabeled = "unlabeled"
	ReasonDuplicate = "duplicate"
	ReasonUnplotted = "unplotted"
)

// Recorder owns the run's collectors.
type Recorder struct {
	reg     *prometheus.Registry
	stages  *prometheus.HistogramVec
	records *prometheus.CounterVec
	skipped *prometheus.CounterVec
	runs    *prometheus.CounterVec
}

// New registers the dotprep collectors on a fresh registry.
func New() *Recorder {
	r := &Recorder{
		reg: prometheus.NewRegistry(),
		stages: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "dotprep_stage_duration_seconds",
			Help:    "Wall time spent in each pipeline stage.",
			Buckets: prometheus.ExponentialBuckets(0.01, 4, 10),
		}, []string{"stage"}),
		records: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "dotprep_annotation_records_total",
			Help: "Annotation records written, by genome side.",
		}, []string{"side"}),
		skipped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "dotprep_annotation_skipped_total",
			Help: "Annotation features not written, by genome side and reason.",
		}, []string{"side", "reason"}),
		runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "dotprep_runs_total",
			Help: "Pipeline runs, by final status.",
		}, []string{"status"}),
	}
	r.reg.MustRegister(r.stages, r.records, r.skipped, r.runs)
	return r
}

// Registry exposes the underlying registry (for tests and exporters).
func (r *Recorder) Registry() *prometheus.Registry {
	if r == nil {
		return nil
	}
	return r.reg
}

// ObserveStage records how long stage took.
func (r *Recorder) ObserveStage(stage string, d time.Duration) {
	if r == nil {
		return
	}
	r.stages.WithLabelValues(stage).Observe(d.Seconds())
}

// Time returns a func that observes the elapsed time of stage when called.
func (r *Recorder) Time(stage string) func() {
	start := time.Now()
	return func() { r.ObserveStage(stage, time.Since(start)) }
}

// AddRecords counts written records.
func (r *Recorder) AddRecords(side string, n int) {
	if r == nil || n <= 0 {
		return
	}
	r.records.WithLabelValues(side).Add(float64(n))
}

// AddSkipped counts dropped features.
func (r *Recorder) AddSkipped(side, reason string, n int) {
	if r == nil || n <= 0 {
		return
	}
	r.skipped.WithLabelValues(side, reason).Add(float64(n))
}

// RunFinished counts a completed run as "ok" or "error".
func (r *Recorder) RunFinished(err error) {
	if r == nil {
		return
	}
	status := "ok"
	if err != nil {
		status = "error"
	}
	r.runs.WithLabelValues(status).Inc()
}

// WriteTextfile writes all metrics in the text exposition format, suitable
// for the node_exporter textfile collector.
func (r *Recorder) WriteTextfile(path string) error {
	if r == nil {
		return nil
	}
	return prometheus.WriteToTextfile(path, r.reg)
}

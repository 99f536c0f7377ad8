package metrics

import (
	"net/http"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "yt2mp3"

// conversionBuckets cover quick clip fetches up to long-form transcodes.
var conversionBuckets = []float64{1, 2.5, 5, 10, 20, 40, 80, 160, 320, 640}

// PrometheusRecorder implements Recorder using Prometheus metrics.
type PrometheusRecorder struct {
	registry           *prom.Registry
	conversions        *prom.CounterVec
	conversionDuration prom.Histogram
	stageDuration      *prom.HistogramVec
	inflight           prom.Gauge
	sweepRemoved       prom.Counter
	sweepFreed         prom.Counter
}

// NewPrometheusRecorder constructs the metrics and registers them on reg,
// or on a fresh registry when reg is nil.
func NewPrometheusRecorder(reg *prom.Registry) *PrometheusRecorder {
	if reg == nil {
		reg = prom.NewRegistry()
	}
	pr := &PrometheusRecorder{
		registry: reg,
		conversions: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "conversions_total",
			Help:      "Conversions by final outcome",
		}, []string{"outcome"}),
		conversionDuration: prom.NewHistogram(prom.HistogramOpts{
			Namespace: namespace,
			Name:      "conversion_duration_seconds",
			Help:      "End-to-end conversion duration",
			Buckets:   conversionBuckets,
		}),
		stageDuration: prom.NewHistogramVec(prom.HistogramOpts{
			Namespace: namespace,
			Name:      "stage_duration_seconds",
			Help:      "Duration of individual conversion stages",
			Buckets:   prom.DefBuckets,
		}, []string{"stage"}),
		inflight: prom.NewGauge(prom.GaugeOpts{
			Namespace: namespace,
			Name:      "inflight_conversions",
			Help:      "Conversions currently running",
		}),
		sweepRemoved: prom.NewCounter(prom.CounterOpts{
			Namespace: namespace,
			Name:      "sweep_removed_files_total",
			Help:      "Output files removed by the retention sweep",
		}),
		sweepFreed: prom.NewCounter(prom.CounterOpts{
			Namespace: namespace,
			Name:      "sweep_freed_bytes_total",
			Help:      "Bytes freed by the retention sweep",
		}),
	}
	reg.MustRegister(pr.conversions, pr.conversionDuration, pr.stageDuration, pr.inflight, pr.sweepRemoved, pr.sweepFreed)
	return pr
}

// Registry returns the registry the metrics are registered on
func (p *PrometheusRecorder) Registry() *prom.Registry {
	if p == nil {
		return nil
	}
	return p.registry
}

func (p *PrometheusRecorder) IncConversion(outcome Outcome) {
	if p == nil || p.conversions == nil {
		return
	}
	p.conversions.WithLabelValues(string(outcome)).Inc()
}

func (p *PrometheusRecorder) ObserveConversionDuration(d time.Duration) {
	if p == nil || p.conversionDuration == nil {
		return
	}
	p.conversionDuration.Observe(d.Seconds())
}

func (p *PrometheusRecorder) ObserveStageDuration(stage string, d time.Duration) {
	if p == nil || p.stageDuration == nil {
		return
	}
	p.stageDuration.WithLabelValues(stage).Observe(d.Seconds())
}

func (p *PrometheusRecorder) AddInflight(delta int) {
	if p == nil || p.inflight == nil {
		return
	}
	p.inflight.Add(float64(delta))
}

func (p *PrometheusRecorder) AddSweep(removedFiles int, freedBytes int64) {
	if p == nil || p.sweepRemoved == nil {
		return
	}
	p.sweepRemoved.Add(float64(removedFiles))
	p.sweepFreed.Add(float64(freedBytes))
}

// HTTPHandler returns an http.Handler that serves the recorder's registry.
func (p *PrometheusRecorder) HTTPHandler() http.Handler {
	if p == nil || p.registry == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(p.registry, promhttp.HandlerOpts{})
}

var _ Recorder = (*PrometheusRecorder)(nil)

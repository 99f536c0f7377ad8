// Package metrics exposes conversion and retention counters. The Recorder
// port lets callers run without Prometheus by injecting NoopRecorder.
package metrics

import "time"

// Outcome enumerates the final status of a conversion.
type Outcome string

const (
	OutcomeSuccess          Outcome = "success"
	OutcomeInvalid          Outcome = "invalid"
	OutcomeInvocationFailed Outcome = "invocation_failed"
	OutcomeNoOutput         Outcome = "no_output"
	OutcomeError            Outcome = "error"
)

// Stage names used for stage_duration_seconds.
const (
	StageWorkspace = "workspace"
	StageInvoke    = "invoke"
	StageLocate    = "locate"
	StageRelocate  = "relocate"
)

// Recorder defines observability hooks for conversions and sweeps.
type Recorder interface {
	IncConversion(outcome Outcome)
	ObserveConversionDuration(d time.Duration)
	ObserveStageDuration(stage string, d time.Duration)
	AddInflight(delta int)
	AddSweep(removedFiles int, freedBytes int64)
}

// NoopRecorder is a Recorder that does nothing (default when metrics are disabled).
type NoopRecorder struct{}

func (NoopRecorder) IncConversion(Outcome)                      {}
func (NoopRecorder) ObserveConversionDuration(time.Duration)    {}
func (NoopRecorder) ObserveStageDuration(string, time.Duration) {}
func (NoopRecorder) AddInflight(int)                            {}
func (NoopRecorder) AddSweep(int, int64)                        {}

var _ Recorder = NoopRecorder{}

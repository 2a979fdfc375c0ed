package ports

import "time"

// Recorder puerto de métricas de negocio. La implementación Prometheus vive en infrastructure/metrics.
type Recorder interface {
	OrderSigned()
	OrderTransition(toStatus string)
	Notification(result string)
	LookupDuration(kind string, d time.Duration)
}

// NopRecorder descarta las métricas (tests y herramientas CLI).
type NopRecorder struct{}

func (NopRecorder) OrderSigned()                         {}
func (NopRecorder) OrderTransition(string)               {}
func (NopRecorder) Notification(string)                  {}
func (NopRecorder) LookupDuration(string, time.Duration) {}

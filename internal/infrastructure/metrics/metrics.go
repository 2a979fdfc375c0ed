// Package metrics expone las métricas de negocio en Prometheus.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/jhoicas/trek-api/internal/application/ports"
)

var _ ports.Recorder = (*Metrics)(nil)

// Metrics contadores de pedidos y notificaciones e histograma de consultas externas.
type Metrics struct {
	OrdersSigned      prometheus.Counter
	OrderTransitions  *prometheus.CounterVec   // to: imei_linked, dispatched
	Notifications     *prometheus.CounterVec   // result: sent, failed, skipped
	LookupDurationSec *prometheus.HistogramVec // kind: cep, cnpj, cpf
}

// NewMetrics registra las métricas en reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	return &Metrics{
		OrdersSigned: promauto.With(reg).NewCounter(prometheus.CounterOpts{
			Name: "trek_orders_signed_total",
			Help: "Total de contratos firmados",
		}),
		OrderTransitions: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "trek_order_transitions_total",
			Help: "Transiciones de estado aplicadas por despacho",
		}, []string{"to"}),
		Notifications: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "trek_notifications_total",
			Help: "Notificaciones procesadas por resultado",
		}, []string{"result"}),
		LookupDurationSec: promauto.With(reg).NewHistogramVec(prometheus.HistogramOpts{
			Name:    "trek_lookup_duration_seconds",
			Help:    "Duración de las consultas de CEP, CNPJ y CPF",
			Buckets: prometheus.DefBuckets,
		}, []string{"kind"}),
	}
}

func (m *Metrics) OrderSigned() { m.OrdersSigned.Inc() }

func (m *Metrics) OrderTransition(toStatus string) {
	m.OrderTransitions.WithLabelValues(toStatus).Inc()
}

func (m *Metrics) Notification(result string) {
	m.Notifications.WithLabelValues(result).Inc()
}

func (m *Metrics) LookupDuration(kind string, d time.Duration) {
	m.LookupDurationSec.WithLabelValues(kind).Observe(d.Seconds())
}

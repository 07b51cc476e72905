package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"vishwaspatra/types"
)

// Metrics holds the service counters. Registered once at startup against the
// process registry.
type Metrics struct {
	certificatesIssued prometheus.Counter
	verifications      *prometheus.CounterVec
}

func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		certificatesIssued: factory.NewCounter(prometheus.CounterOpts{
			Name: "vishwaspatra_certificates_issued_total",
			Help: "number of certificates issued",
		}),
		verifications: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "vishwaspatra_verifications_total",
			Help: "number of verification requests by outcome",
		}, []string{"status"}),
	}
}

func (m *Metrics) CertificateIssued() {
	m.certificatesIssued.Inc()
}

func (m *Metrics) VerificationCompleted(status types.VerificationStatus) {
	m.verifications.WithLabelValues(string(status)).Inc()
}

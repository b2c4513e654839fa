package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the orchestrator's Prometheus metrics.
type Metrics struct {
	DonationsAccepted prometheus.Counter
	TransferFailures  prometheus.Counter
	Verifications     *prometheus.CounterVec
}

// New creates and registers the donation metrics.
func New() *Metrics {
	return &Metrics{
		DonationsAccepted: promauto.NewCounter(prometheus.CounterOpts{
			Name: "givechain_donations_accepted_total",
			Help: "Donations that cleared the rail and committed",
		}),
		TransferFailures: promauto.NewCounter(prometheus.CounterOpts{
			Name: "givechain_donation_transfer_failures_total",
			Help: "Donations aborted because the payment rail declined",
		}),
		Verifications: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "givechain_donation_verifications_total",
			Help: "Proof verification attempts by result",
		}, []string{"result"}),
	}
}

func (m *Metrics) RecordDonation() {
	if m == nil {
		return
	}
	m.DonationsAccepted.Inc()
}

func (m *Metrics) RecordTransferFailure() {
	if m == nil {
		return
	}
	m.TransferFailures.Inc()
}

func (m *Metrics) RecordVerification(result string) {
	if m == nil {
		return
	}
	m.Verifications.WithLabelValues(result).Inc()
}

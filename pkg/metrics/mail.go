package metrics

import "github.com/prometheus/client_golang/prometheus"

// MailMetrics counts workflow email outcomes. Delivery failures never fail
// the triggering request, so the failure counter is the main signal that
// the relay is unhealthy.
type MailMetrics struct {
	sent    *prometheus.CounterVec
	failure *prometheus.CounterVec
	skipped *prometheus.CounterVec
}

// NewMailMetrics registers the email counters on the provided registerer.
func NewMailMetrics(reg prometheus.Registerer) *MailMetrics {
	if reg == nil {
		return &MailMetrics{}
	}
	sent := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "workflow_emails_sent_total",
		Help: "Workflow emails handed to the relay.",
	}, []string{"kind"})
	failure := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "workflow_email_failures_total",
		Help: "Workflow emails the relay rejected or timed out on.",
	}, []string{"kind"})
	skipped := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "workflow_emails_skipped_total",
		Help: "Workflow emails skipped because sending is disabled.",
	}, []string{"kind"})
	reg.MustRegister(sent, failure, skipped)
	return &MailMetrics{sent: sent, failure: failure, skipped: skipped}
}

// IncSent increments the sent counter for the named email kind.
func (m *MailMetrics) IncSent(kind string) {
	if m == nil || m.sent == nil {
		return
	}
	m.sent.WithLabelValues(normalizeLabel(kind)).Inc()
}

// IncFailure increments the failure counter for the named email kind.
func (m *MailMetrics) IncFailure(kind string) {
	if m == nil || m.failure == nil {
		return
	}
	m.failure.WithLabelValues(normalizeLabel(kind)).Inc()
}

// IncSkipped increments the skipped counter for the named email kind.
func (m *MailMetrics) IncSkipped(kind string) {
	if m == nil || m.skipped == nil {
		return
	}
	m.skipped.WithLabelValues(normalizeLabel(kind)).Inc()
}

package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/wolfman30/medpet-whatsapp-bot/internal/conversation"
)

// BotMetrics exposes counters/histograms for the WhatsApp bot.
type BotMetrics struct {
	inboundTotal   *prometheus.CounterVec
	downstreamOps  *prometheus.CounterVec
	receiptsTotal  *prometheus.CounterVec
	webhookLatency *prometheus.HistogramVec
	reg            prometheus.Registerer
}

func NewBotMetrics(reg prometheus.Registerer) *BotMetrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	m := &BotMetrics{
		inboundTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "medpet",
			Subsystem: "whatsapp",
			Name:      "inbound_webhook_total",
			Help:      "Total inbound WhatsApp messages by message type and outcome",
		}, []string{"message_type", "status"}),
		downstreamOps: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "medpet",
			Subsystem: "conversation",
			Name:      "downstream_calls_total",
			Help:      "Gateway, ledger and assistant calls made by the conversation engine",
		}, []string{"op", "status"}),
		receiptsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "medpet",
			Subsystem: "whatsapp",
			Name:      "delivery_receipts_total",
			Help:      "Delivery status receipts reported by WhatsApp",
		}, []string{"status"}),
		webhookLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "medpet",
			Subsystem: "whatsapp",
			Name:      "webhook_latency_seconds",
			Help:      "Latency of WhatsApp webhook processing",
			Buckets:   prometheus.DefBuckets,
		}, []string{"message_type"}),
		reg: reg,
	}
	reg.MustRegister(m.inboundTotal, m.downstreamOps, m.receiptsTotal, m.webhookLatency)
	return m
}

var _ conversation.Observer = (*BotMetrics)(nil)

func (m *BotMetrics) ObserveInbound(messageType, status string) {
	if m == nil {
		return
	}
	m.inboundTotal.WithLabelValues(messageType, status).Inc()
}

// ObserveDelivery counts one downstream call made by the engine.
func (m *BotMetrics) ObserveDelivery(op string, err error) {
	if m == nil {
		return
	}
	status := "ok"
	if err != nil {
		status = "error"
	}
	m.downstreamOps.WithLabelValues(op, status).Inc()
}

func (m *BotMetrics) ObserveReceipt(status string) {
	if m == nil {
		return
	}
	m.receiptsTotal.WithLabelValues(status).Inc()
}

func (m *BotMetrics) ObserveWebhookLatency(messageType string, seconds float64) {
	if m == nil {
		return
	}
	m.webhookLatency.WithLabelValues(messageType).Observe(seconds)
}

// RegisterSessionGauge exposes the number of live conversation sessions.
func (m *BotMetrics) RegisterSessionGauge(count func() int) {
	if m == nil || count == nil {
		return
	}
	m.reg.MustRegister(prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Namespace: "medpet",
		Subsystem: "conversation",
		Name:      "active_sessions",
		Help:      "Conversation sessions currently held in memory",
	}, func() float64 { return float64(count()) }))
}

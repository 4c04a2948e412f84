package webhook

import (
	"bytes"
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/ledgerline/payment-engine/internal/domain/payment"
	"github.com/ledgerline/payment-engine/internal/metrics"
	"github.com/sirupsen/logrus"
)

const DefaultTimeout = 5 * time.Second

const (
	eventStatusChanged = "payment.status_changed"
	eventRefunded      = "payment.refunded"
)

func eventName(to payment.Status) string {
	if to == payment.StatusRefunded {
		return eventRefunded
	}
	return eventStatusChanged
}

// Message is the structured body POSTed to a subscriber endpoint.
type Message struct {
	Event      string          `json:"event"`
	PaymentID  uuid.UUID       `json:"paymentId"`
	Reference  string          `json:"reference"`
	FromStatus payment.Status  `json:"fromStatus"`
	ToStatus   payment.Status  `json:"toStatus"`
	Reason     string          `json:"reason,omitempty"`
	Payload    payment.Payload `json:"payload,omitempty"`
	Timestamp  time.Time       `json:"timestamp"`
}

// Notifier delivers best-effort status-change callbacks. Delivery failures are
// logged and counted, never surfaced and never retried.
type Notifier struct {
	client *http.Client
}

func NewNotifier(timeout time.Duration) *Notifier {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Notifier{
		client: &http.Client{Timeout: timeout},
	}
}

// Notify dispatches on a goroutine so a slow subscriber cannot stall
// processing latency. No-op when the payment has no configured endpoint.
func (n *Notifier) Notify(p *payment.Payment, ev *payment.Event) {
	if p.WebhookURL == "" {
		return
	}
	msg := &Message{
		Event:      eventName(ev.ToStatus),
		PaymentID:  p.ID,
		Reference:  p.Reference,
		FromStatus: ev.FromStatus,
		ToStatus:   ev.ToStatus,
		Reason:     ev.Reason,
		Payload:    ev.Payload,
		Timestamp:  ev.CreatedAt,
	}
	go n.Deliver(p.WebhookURL, msg)
}

// Deliver performs one synchronous POST. Exported so tests can exercise
// delivery without racing the dispatch goroutine.
func (n *Notifier) Deliver(url string, msg *Message) {
	body, err := json.Marshal(msg)
	if err != nil {
		logrus.WithField("URL", url).Warnf("webhook payload marshal failed: %v", err)
		metrics.WebhookDeliveries.WithLabelValues("error").Inc()
		return
	}

	resp, err := n.client.Post(url, "application/json", bytes.NewReader(body))
	if err != nil {
		logrus.WithField("URL", url).Warnf("webhook delivery failed: %v", err)
		metrics.WebhookDeliveries.WithLabelValues("error").Inc()
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		logrus.WithFields(logrus.Fields{
			"URL":    url,
			"STATUS": resp.StatusCode,
		}).Warn("webhook delivery rejected")
		metrics.WebhookDeliveries.WithLabelValues("rejected").Inc()
		return
	}

	logrus.WithFields(logrus.Fields{
		"URL":    url,
		"STATUS": resp.StatusCode,
	}).Info("WEBHOOK:DELIVERED")
	metrics.WebhookDeliveries.WithLabelValues("ok").Inc()
}

package notify

import (
	"context"
	"errors"
	"log"

	"weatheralert/internal/metrics"
	"weatheralert/internal/models"
)

// DeliveryResult is the outcome for one destination. Err is nil on success.
type DeliveryResult struct {
	Address string
	Err     error
}

// DeliveryReport lists the outcome of every destination in a batch.
type DeliveryReport struct {
	Results []DeliveryResult
}

func (r DeliveryReport) Sent() int {
	n := 0
	for _, res := range r.Results {
		if res.Err == nil {
			n++
		}
	}
	return n
}

func (r DeliveryReport) Failed() int {
	return len(r.Results) - r.Sent()
}

// Err joins every per-destination failure, or returns nil when all succeeded.
func (r DeliveryReport) Err() error {
	var errs []error
	for _, res := range r.Results {
		if res.Err != nil {
			errs = append(errs, res.Err)
		}
	}
	return errors.Join(errs...)
}

// Gateway fans one alert out to every destination address.
type Gateway struct {
	sender  Sender
	from    string
	subject string
}

func NewGateway(sender Sender, from, subject string) *Gateway {
	return &Gateway{sender: sender, from: from, subject: subject}
}

// Send attempts every address independently. A failed destination is logged,
// recorded in the report and never stops the remaining ones.
func (g *Gateway) Send(ctx context.Context, body string, addresses []string) DeliveryReport {
	report := DeliveryReport{Results: make([]DeliveryResult, 0, len(addresses))}

	for _, addr := range addresses {
		err := g.sender.Send(ctx, Message{
			From:    g.from,
			To:      addr,
			Subject: g.subject,
			Body:    body,
		})
		metrics.RecordDelivery(err)

		if err != nil {
			err = models.NewError(models.ErrDelivery, err, "delivery to %s failed", RedactAddress(addr))
			log.Printf("Failed to send alert: %v", err)
		} else {
			log.Printf("✓ Alert sent to %s", RedactAddress(addr))
		}

		report.Results = append(report.Results, DeliveryResult{Address: addr, Err: err})
	}

	return report
}

package queue

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/Matheuscfs/tgt-contratto-mvp/internal/usecase"
	amqp "github.com/rabbitmq/amqp091-go"
)

const (
	// RKOrderPaid fans order.paid events out to the notifications system.
	RKOrderPaid = "order.paid"
	// RKAlert carries operator alerts (price mismatch, integrity faults).
	RKAlert = "checkout.alert"

	orderPaidQueue = "order.paid.q"
)

// RabbitProducer publishes checkout events to a topic exchange. It is
// fed by the outbox drain (order.paid) and the alert notifier.
type RabbitProducer struct {
	ch       *amqp.Channel
	exchange string
}

// NewRabbitProducer sets up the exchange, queues, and bindings once at startup.
func NewRabbitProducer(ch *amqp.Channel, exchange, alertQueue string) (*RabbitProducer, error) {
	if err := ch.ExchangeDeclare(
		exchange,
		"topic",
		true,  // durable
		false, // auto-delete
		false, // internal
		false, // no-wait
		nil,
	); err != nil {
		return nil, fmt.Errorf("declare exchange: %w", err)
	}

	for _, b := range []struct{ queue, rk string }{
		{orderPaidQueue, RKOrderPaid},
		{alertQueue, RKAlert},
	} {
		q, err := ch.QueueDeclare(b.queue, true, false, false, false, nil)
		if err != nil {
			return nil, fmt.Errorf("declare queue %s: %w", b.queue, err)
		}
		if err := ch.QueueBind(q.Name, b.rk, exchange, false, nil); err != nil {
			return nil, fmt.Errorf("bind queue %s: %w", b.queue, err)
		}
	}

	// publisher confirms
	if err := ch.Confirm(false); err != nil {
		return nil, fmt.Errorf("enable confirm mode: %w", err)
	}

	return &RabbitProducer{ch: ch, exchange: exchange}, nil
}

// Publish sends a pre-marshalled payload under the given routing key.
func (p *RabbitProducer) Publish(ctx context.Context, routingKey string, body []byte) error {
	pub := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent, // survive broker restarts
		Body:         body,
	}
	if err := p.ch.PublishWithContext(ctx, p.exchange, routingKey, false, false, pub); err != nil {
		return fmt.Errorf("publish %s: %w", routingKey, err)
	}
	return nil
}

// Notify implements usecase.AlertNotifier.
func (p *RabbitProducer) Notify(ctx context.Context, a usecase.AlertMsg) error {
	body, err := json.Marshal(a)
	if err != nil {
		return fmt.Errorf("marshal alert: %w", err)
	}
	return p.Publish(ctx, RKAlert, body)
}

var _ usecase.AlertNotifier = (*RabbitProducer)(nil)

package queue

import (
	"context"
	"time"

	"github.com/Matheuscfs/tgt-contratto-mvp/internal/adapter/repo"
	"github.com/Matheuscfs/tgt-contratto-mvp/internal/logging"
)

// OutboxPublisher drains PENDING outbox rows to RabbitMQ. Rows are
// written transactionally with the order insert, so delivery is
// at-least-once and consumers must be idempotent.
type OutboxPublisher struct {
	outbox   *repo.MySQLOutboxRepo
	producer *RabbitProducer
	interval time.Duration
	batch    int
}

func NewOutboxPublisher(outbox *repo.MySQLOutboxRepo, producer *RabbitProducer, interval time.Duration, batch int) *OutboxPublisher {
	if interval <= 0 {
		interval = 2 * time.Second
	}
	if batch <= 0 {
		batch = 100
	}
	return &OutboxPublisher{outbox: outbox, producer: producer, interval: interval, batch: batch}
}

// Run polls until ctx is cancelled.
func (p *OutboxPublisher) Run(ctx context.Context) {
	l := logging.New("outbox")
	t := time.NewTicker(p.interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			if err := p.drainOnce(ctx); err != nil {
				l.Error("outbox drain failed", "err", err)
			}
		}
	}
}

func (p *OutboxPublisher) drainOnce(ctx context.Context) error {
	recs, err := p.outbox.FetchPending(ctx, p.batch)
	if err != nil {
		return err
	}
	l := logging.New("outbox")
	for _, rec := range recs {
		rk := routingKeyFor(rec.Channel)
		if err := p.producer.Publish(ctx, rk, rec.Payload); err != nil {
			l.Error("outbox publish failed", "id", rec.ID, "channel", rec.Channel, "err", err)
			_ = p.outbox.MarkRetry(ctx, rec.ID)
			continue
		}
		if err := p.outbox.MarkSent(ctx, rec.ID); err != nil {
			// Row stays PENDING and will be republished; consumers
			// already have to tolerate duplicates.
			l.Error("outbox mark sent failed", "id", rec.ID, "err", err)
		}
	}
	return nil
}

func routingKeyFor(channel string) string {
	switch channel {
	case "order.paid.v1":
		return RKOrderPaid
	default:
		return channel
	}
}

package publisher

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/sneakify/feed-adapter/internal/metrics"
	"github.com/sneakify/feed-adapter/pkg/logger"
	"github.com/sneakify/feed-adapter/pkg/model"
)

const snapshotSubjectPrefix = "evt.catalog.snapshot_replaced.v1."

// SnapshotReplaced announces that a collection was rewritten with a fresh
// snapshot. Consumers re-read the named collection; the event carries no
// product data.
type SnapshotReplaced struct {
	RunID       string    `json:"runId"`
	Channel     string    `json:"channel"`
	Country     string    `json:"country"`
	Collection  string    `json:"collection"`
	Products    int       `json:"products"`
	CompletedAt time.Time `json:"completedAt"`
}

// Publisher wraps a NATS connection and provides helpers for publishing
// catalog events.
type Publisher struct {
	nc      *nats.Conn
	js      nats.JetStreamContext
	subject string
	service string
}

// New creates a new Publisher with JetStream enabled if available.
func New(nc *nats.Conn, subject, service string) (*Publisher, error) {
	js, err := nc.JetStream()
	if err != nil {
		return nil, err
	}
	return &Publisher{
		nc:      nc,
		js:      js,
		subject: subject,
		service: service,
	}, nil
}

// PublishSnapshotReplaced emits one event per replaced collection, on a
// subject suffixed with the upper-cased channel slug so consumers can filter
// by surface.
func (p *Publisher) PublishSnapshotReplaced(ctx context.Context, ch model.Channel, evt SnapshotReplaced) error {
	subject := snapshotSubjectPrefix + strings.ToUpper(ch.Slug)

	if err := p.Publish(ctx, subject, evt); err != nil {
		logger.S().Errorw("publisher.publish_failed",
			"subject", subject,
			"collection", evt.Collection,
			"run_id", evt.RunID,
			"error", err,
		)
		return err
	}

	logger.S().Infow("publisher.publish_success",
		"subject", subject,
		"collection", evt.Collection,
		"products", evt.Products,
	)
	return nil
}

// Publish publishes raw JSON payloads (for non-canonical internal events).
func (p *Publisher) Publish(ctx context.Context, subject string, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		metrics.NATSPublishErrors.WithLabelValues(subject).Inc()
		return err
	}

	msg := &nats.Msg{
		Subject: subject,
		Data:    data,
		Header:  nats.Header{"source": []string{p.service}},
	}

	if _, err := p.js.PublishMsg(msg); err != nil {
		metrics.NATSPublishErrors.WithLabelValues(subject).Inc()
		return err
	}
	return nil
}

func (p *Publisher) Close() {
	if p.nc != nil && p.nc.IsConnected() {
		p.nc.Close()
	}
}

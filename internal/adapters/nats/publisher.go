package natsadapter

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/samirrijal/panoplace/internal/core/domain"
)

// NATS subjects.
const (
	SubjectDisplay     = "overlay.display"      // ephemeral display broadcasts
	SubjectResolutions = "overlay.resolution.>" // durable resolution events
)

// Publisher implements ports.EventPublisher using NATS. Display updates
// are plain publishes (only the latest matters); resolutions go through
// JetStream so late consumers can replay a session.
type Publisher struct {
	conn *nats.Conn
	js   nats.JetStreamContext
}

// NewPublisher connects to NATS and ensures the resolution stream exists.
func NewPublisher(url string) (*Publisher, error) {
	conn, err := nats.Connect(url,
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("nats connect: %w", err)
	}

	js, err := conn.JetStream()
	if err != nil {
		return nil, fmt.Errorf("jetstream: %w", err)
	}

	cfg := nats.StreamConfig{
		Name:      "OVERLAY_RESOLUTIONS",
		Subjects:  []string{"overlay.resolution.>"},
		Retention: nats.LimitsPolicy,
		MaxAge:    24 * time.Hour,
		Storage:   nats.FileStorage,
	}
	if _, err := js.AddStream(&cfg); err != nil {
		// Stream may already exist — try update
		if _, err := js.UpdateStream(&cfg); err != nil {
			return nil, fmt.Errorf("ensure stream %s: %w", cfg.Name, err)
		}
	}

	return &Publisher{conn: conn, js: js}, nil
}

// PublishDisplay broadcasts the current display tuple to live subscribers.
func (p *Publisher) PublishDisplay(ctx context.Context, d *domain.Display) error {
	data, err := json.Marshal(d)
	if err != nil {
		return err
	}
	return p.conn.Publish(SubjectDisplay, data)
}

// PublishResolution records a successful resolution on the durable stream.
func (p *Publisher) PublishResolution(ctx context.Context, r *domain.Resolution) error {
	data, err := json.Marshal(r)
	if err != nil {
		return err
	}
	_, err = p.js.Publish("overlay.resolution."+r.Source, data)
	return err
}

// Close drains and closes the connection.
func (p *Publisher) Close() {
	_ = p.conn.Drain()
}

// RawConn creates a plain NATS connection for subscribing (e.g. WebSocket relay).
func RawConn(url string) (*nats.Conn, error) {
	return nats.Connect(url,
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
	)
}

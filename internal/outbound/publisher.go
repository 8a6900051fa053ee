package outbound

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"StableTreasury/internal/event"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
	"github.com/rs/zerolog"
)

// Publisher publishes treasury notifications to NATS for downstream
// consumers (dashboards, the auction clearing service, risk monitors).
// Subjects follow the pattern: treasury.events.{event_type}[.{asset}]
type Publisher struct {
	js        jetstream.JetStream
	inputChan <-chan event.Envelope
	log       zerolog.Logger
}

type wireEvent struct {
	Sequence  int64     `json:"sequence"`
	EventType string    `json:"event_type"`
	Asset     string    `json:"asset,omitempty"`
	Amount    uint64    `json:"amount"`
	Aux       uint64    `json:"aux,omitempty"`
	AuctionID string    `json:"auction_id,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

func NewPublisher(js jetstream.JetStream, inputChan <-chan event.Envelope, log zerolog.Logger) *Publisher {
	return &Publisher{
		js:        js,
		inputChan: inputChan,
		log:       log,
	}
}

// ConnectNATS connects to the NATS server and opens a JetStream context.
func ConnectNATS(url string) (*nats.Conn, jetstream.JetStream, error) {
	nc, err := nats.Connect(url,
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("nats connect: %w", err)
	}

	js, err := jetstream.New(nc)
	if err != nil {
		nc.Close()
		return nil, nil, fmt.Errorf("jetstream context: %w", err)
	}

	return nc, js, nil
}

// EnsureStream creates the treasury events stream.
func EnsureStream(ctx context.Context, js jetstream.JetStream) error {
	_, err := js.CreateOrUpdateStream(ctx, jetstream.StreamConfig{
		Name:      "TREASURY_EVENTS",
		Subjects:  []string{"treasury.events.>"},
		Storage:   jetstream.FileStorage,
		Retention: jetstream.LimitsPolicy,
		MaxAge:    72 * time.Hour,
		Replicas:  1,
	})
	if err != nil {
		return fmt.Errorf("create treasury events stream: %w", err)
	}
	return nil
}

// Run starts the publisher loop. Publish failures are non-fatal: the
// event log in Postgres remains the source of truth.
func (p *Publisher) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case env, ok := <-p.inputChan:
			if !ok {
				return nil
			}

			if err := p.publish(ctx, env); err != nil {
				p.log.Warn().Err(err).Int64("sequence", env.Sequence).Msg("outbound publish failed")
			}
		}
	}
}

func (p *Publisher) publish(ctx context.Context, env event.Envelope) error {
	w := wireEvent{
		Sequence:  env.Sequence,
		EventType: env.Event.Type.String(),
		Asset:     string(env.Event.Asset),
		Amount:    env.Event.Amount,
		Aux:       env.Event.Aux,
		Timestamp: env.Timestamp,
	}
	if env.Event.AuctionID != uuid.Nil {
		w.AuctionID = env.Event.AuctionID.String()
	}

	data, err := json.Marshal(w)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	subject := fmt.Sprintf("treasury.events.%s", w.EventType)
	if w.Asset != "" {
		subject = fmt.Sprintf("%s.%s", subject, w.Asset)
	}

	_, err = p.js.Publish(ctx, subject, data)
	return err
}

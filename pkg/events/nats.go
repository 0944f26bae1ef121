package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"github.com/nats-io/nats.go"
)

const (
	// EnvURL overrides the NATS server URL.
	EnvURL = "TYPEVAULT_EVENTS_URL"

	defaultSubjectPrefix = "typevault.ingests"
)

// Config holds status channel connection parameters.
type Config struct {
	Enabled       bool   `toml:"enabled"`
	URL           string `toml:"url"`
	SubjectPrefix string `toml:"subject_prefix"`
}

// Finalize applies defaults and environment variable overrides.
func (c *Config) Finalize() error {
	if c.SubjectPrefix == "" {
		c.SubjectPrefix = defaultSubjectPrefix
	}
	if c.URL == "" {
		c.URL = nats.DefaultURL
	}
	if v := os.Getenv(EnvURL); v != "" {
		c.URL = v
	}
	return nil
}

// Merge overwrites non-zero fields from overlay.
func (c *Config) Merge(overlay *Config) {
	if overlay.Enabled {
		c.Enabled = true
	}
	if overlay.URL != "" {
		c.URL = overlay.URL
	}
	if overlay.SubjectPrefix != "" {
		c.SubjectPrefix = overlay.SubjectPrefix
	}
}

type natsPublisher struct {
	conn   *nats.Conn
	prefix string
	logger *slog.Logger
}

// Connect creates a NATS-backed publisher, or a Noop when the channel is
// disabled. Connection failures are returned so startup can decide whether
// to proceed without a status channel.
func Connect(cfg *Config, logger *slog.Logger) (Publisher, error) {
	if !cfg.Enabled {
		return Noop{}, nil
	}

	conn, err := nats.Connect(cfg.URL, nats.Name("typevault"))
	if err != nil {
		return nil, fmt.Errorf("connect status channel: %w", err)
	}

	return &natsPublisher{
		conn:   conn,
		prefix: cfg.SubjectPrefix,
		logger: logger.With("system", "events"),
	}, nil
}

func (p *natsPublisher) Publish(ctx context.Context, t Transition) {
	payload, err := json.Marshal(t)
	if err != nil {
		p.logger.WarnContext(ctx, "transition encode failed", "error", err)
		return
	}

	subject := fmt.Sprintf("%s.%s", p.prefix, t.IngestID)
	if err := p.conn.Publish(subject, payload); err != nil {
		p.logger.WarnContext(
			ctx, "transition publish failed",
			"subject", subject,
			"error", err,
		)
	}
}

func (p *natsPublisher) Close() {
	p.conn.Drain()
}

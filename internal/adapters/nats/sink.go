package nats

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/emiliopalmerini/abtrack/internal/domain"
)

const DefaultSubjectPrefix = "abtrack.events"

// Config holds the NATS publisher settings.
type Config struct {
	URL           string
	SubjectPrefix string `split_words:"true" default:"abtrack.events"`
}

// Sink publishes tracked events as JSON on <prefix>.<testId>.
type Sink struct {
	conn   *nats.Conn
	prefix string
	owned  bool
}

// Connect dials cfg.URL and returns a sink that owns the connection.
func Connect(cfg Config) (*Sink, error) {
	if cfg.URL == "" {
		return nil, fmt.Errorf("NATS URL not configured")
	}

	nc, err := nats.Connect(cfg.URL,
		nats.Name("abtrack"),
		nats.Timeout(2*time.Second),
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(-1),
	)
	if err != nil {
		return nil, fmt.Errorf("connecting to NATS: %w", err)
	}

	s := NewSink(nc, cfg.SubjectPrefix)
	s.owned = true
	return s, nil
}

// NewSink publishes on an existing connection, which the caller keeps.
func NewSink(nc *nats.Conn, prefix string) *Sink {
	if prefix == "" {
		prefix = DefaultSubjectPrefix
	}
	return &Sink{conn: nc, prefix: strings.TrimSuffix(prefix, ".")}
}

func (s *Sink) Name() string { return "nats" }

// Subject returns the subject events for testID are published on.
func (s *Sink) Subject(testID string) string {
	return s.prefix + "." + subjectToken(testID)
}

func (s *Sink) Send(ctx context.Context, ev domain.TrackedEvent) error {
	data, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("encoding event: %w", err)
	}
	if err := s.conn.Publish(s.Subject(ev.TestID), data); err != nil {
		return fmt.Errorf("publishing event: %w", err)
	}
	return nil
}

// Close flushes pending messages and, for owned connections, drains them.
func (s *Sink) Close(ctx context.Context) error {
	if s.conn.IsClosed() {
		return nil
	}
	if !s.owned {
		return s.conn.FlushWithContext(ctx)
	}
	return s.conn.Drain()
}

// subjectToken keeps ids from introducing extra tokens or wildcards.
func subjectToken(id string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case '.', '*', '>', ' ', '\t', '\r', '\n':
			return '_'
		}
		return r
	}, id)
}

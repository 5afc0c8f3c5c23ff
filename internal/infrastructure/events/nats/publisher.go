package nats

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/kirillkom/document-classifier/internal/core/domain"
	"github.com/kirillkom/document-classifier/internal/infrastructure/resilience"
)

// DefaultSubjectPrefix prefixes every event subject, e.g. "documents.document.uploaded".
const DefaultSubjectPrefix = "documents"

type conn interface {
	Publish(subject string, data []byte) error
}

// Publisher emits document lifecycle events as JSON messages.
type Publisher struct {
	conn   conn
	nc     *nats.Conn
	prefix string
	guard  *resilience.Guard
}

type Options struct {
	SubjectPrefix  string
	ConnectTimeout time.Duration
	ReconnectWait  time.Duration
	MaxReconnects  int
	Guard          *resilience.Guard
	Logger         *slog.Logger
}

func Connect(url string, options Options) (*Publisher, error) {
	connectTimeout := options.ConnectTimeout
	if connectTimeout <= 0 {
		connectTimeout = 2 * time.Second
	}
	reconnectWait := options.ReconnectWait
	if reconnectWait <= 0 {
		reconnectWait = 2 * time.Second
	}
	maxReconnects := options.MaxReconnects
	if maxReconnects <= 0 {
		maxReconnects = 60
	}
	logger := options.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "nats_publisher")

	nc, err := nats.Connect(
		url,
		nats.Name("document-classifier"),
		nats.Timeout(connectTimeout),
		nats.ReconnectWait(reconnectWait),
		nats.MaxReconnects(maxReconnects),
		nats.RetryOnFailedConnect(true),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			logger.Warn("nats_disconnected", "error", err)
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			logger.Info("nats_reconnected", "url", nc.ConnectedUrl())
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("connect nats: %w", err)
	}
	p := newPublisher(nc, options.SubjectPrefix, options.Guard)
	p.nc = nc
	return p, nil
}

func newPublisher(c conn, prefix string, guard *resilience.Guard) *Publisher {
	prefix = strings.Trim(strings.TrimSpace(prefix), ".")
	if prefix == "" {
		prefix = DefaultSubjectPrefix
	}
	return &Publisher{conn: c, prefix: prefix, guard: guard}
}

func (p *Publisher) Close() {
	if p.nc != nil {
		_ = p.nc.Drain()
	}
}

// Subject returns the subject an event type is published on.
func (p *Publisher) Subject(eventType domain.EventType) string {
	return p.prefix + "." + string(eventType)
}

func (p *Publisher) Publish(ctx context.Context, event domain.DocumentEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	subject := p.Subject(event.Type)

	call := func(context.Context) error {
		if err := p.conn.Publish(subject, payload); err != nil {
			return fmt.Errorf("nats publish %s: %w", subject, err)
		}
		return nil
	}
	if p.guard == nil {
		return call(ctx)
	}
	return p.guard.Execute(ctx, "nats.publish", call, countsAgainstBreaker)
}

func countsAgainstBreaker(err error) bool {
	return !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded)
}

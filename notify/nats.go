package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"cosmossdk.io/log"
	"github.com/nats-io/nats.go"
)

// NATSPublisher publishes notifications as JSON on
// <subject>.<chain>.<kind>.
type NATSPublisher struct {
	conn    *nats.Conn
	subject string
	logger  log.Logger
}

func NewNATSPublisher(url, subject string, timeout time.Duration, logger log.Logger) (*NATSPublisher, error) {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	logger = logger.With(log.ModuleKey, "notify/nats")

	conn, err := nats.Connect(url,
		nats.Timeout(timeout),
		nats.ReconnectWait(5*time.Second),
		nats.MaxReconnects(-1),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			logger.Error("nats disconnected", "err", err)
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			logger.Info("nats reconnected", "url", nc.ConnectedUrl())
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("nats: connect %s: %w", url, err)
	}

	return &NATSPublisher{conn: conn, subject: subject, logger: logger}, nil
}

func (p *NATSPublisher) Notify(_ context.Context, n Notification) error {
	data, err := json.Marshal(n)
	if err != nil {
		return fmt.Errorf("nats: marshal notification: %w", err)
	}
	subject := Subject(p.subject, n)
	if err := p.conn.Publish(subject, data); err != nil {
		return fmt.Errorf("nats: publish %s: %w", subject, err)
	}
	p.logger.Debug("published notification", "subject", subject)
	return nil
}

func (p *NATSPublisher) Close() {
	p.conn.Close()
}

// Subject builds the publish subject for n under base.
func Subject(base string, n Notification) string {
	return fmt.Sprintf("%s.%s.%s", base, n.Chain, n.Kind)
}

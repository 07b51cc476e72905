package messaging

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/nats-io/nats.go"
	"go.uber.org/zap"
)

const subjectCertificateIssued = "certificate.issued"

// natsConnection is the slice of *nats.Conn the client uses; narrowed so the
// client can be tested without a broker.
type natsConnection interface {
	Publish(subj string, data []byte) error
	Subscribe(subj string, cb nats.MsgHandler) (*nats.Subscription, error)
	Close()
}

type NATSClient interface {
	PublishCertificateIssued(ctx context.Context, event *CertificateIssuedEvent) error
	SubscribeCertificateIssued(ctx context.Context, handler func(*CertificateIssuedEvent)) error
	Close()
}

type natsClient struct {
	conn   natsConnection
	logger *zap.Logger
}

func NewNATSClient(url string, logger *zap.Logger) (NATSClient, error) {
	conn, err := nats.Connect(url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	logger.Info("connected to NATS", zap.String("url", url))
	return &natsClient{
		conn:   conn,
		logger: logger,
	}, nil
}

// CertificateIssuedEvent is published after an issuance completes, for
// downstream consumers (notifications, analytics, the dashboard feed).
type CertificateIssuedEvent struct {
	EventID         string `json:"event_id"`
	CollegeID       string `json:"college_id"`
	StudentID       string `json:"student_id"`
	CertificateID   string `json:"certificate_id"`
	CompositeHash   string `json:"composite_hash"`
	MetaURI         string `json:"meta_uri"`
	StudentContract string `json:"student_contract_address"`
	CollegeContract string `json:"college_contract_address"`
	IssuedAt        string `json:"issued_at"`
}

func (c *natsClient) PublishCertificateIssued(ctx context.Context, event *CertificateIssuedEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		c.logger.Error("failed to marshal certificate issued event", zap.Error(err))
		return fmt.Errorf("failed to marshal certificate issued event: %w", err)
	}

	err = c.conn.Publish(subjectCertificateIssued, data)
	if err != nil {
		c.logger.Error("failed to publish certificate issued event", zap.Error(err), zap.String("event_id", event.EventID))
		return fmt.Errorf("failed to publish certificate issued event: %w", err)
	}

	c.logger.Info("certificate issued event published",
		zap.String("event_id", event.EventID),
		zap.String("college_id", event.CollegeID),
		zap.String("student_id", event.StudentID))
	return nil
}

func (c *natsClient) SubscribeCertificateIssued(ctx context.Context, handler func(*CertificateIssuedEvent)) error {
	_, err := c.conn.Subscribe(subjectCertificateIssued, func(msg *nats.Msg) {
		var event CertificateIssuedEvent
		if err := json.Unmarshal(msg.Data, &event); err != nil {
			c.logger.Error("failed to unmarshal certificate issued event", zap.Error(err))
			return
		}

		handler(&event)
		c.logger.Debug("certificate issued event processed", zap.String("event_id", event.EventID))
	})

	if err != nil {
		c.logger.Error("failed to subscribe to certificate issued events", zap.Error(err))
		return fmt.Errorf("failed to subscribe to certificate issued events: %w", err)
	}

	c.logger.Info("subscribed to certificate issued events")
	return nil
}

func (c *natsClient) Close() {
	if c.conn != nil {
		c.conn.Close()
		c.logger.Info("NATS connection closed")
	}
}

package storage

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/sirupsen/logrus"

	"nodereg/internal/domain"
)

// Announcer tells other parties that content was published
type Announcer interface {
	Announce(ctx context.Context, msg Announcement) error
	Close()
}

// Announcement is the message published for each new hash
type Announcement struct {
	Hash        domain.ContentHash `json:"hash"`
	Size        int                `json:"size"`
	PublishedAt time.Time          `json:"published_at"`
}

// NATSAnnouncer publishes announcements on a NATS subject
type NATSAnnouncer struct {
	nc      *nats.Conn
	subject string
}

// NewNATSAnnouncer connects to url with unlimited reconnects
func NewNATSAnnouncer(url, subject string, logger logrus.FieldLogger) (*NATSAnnouncer, error) {
	opts := []nats.Option{
		nats.Name("nodereg-storage"),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2 * time.Second),
		nats.DisconnectErrHandler(func(nc *nats.Conn, err error) {
			if err != nil {
				logger.WithError(err).Warn("NATS disconnected")
			}
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			logger.Infof("NATS reconnected to %s", nc.ConnectedUrl())
		}),
	}
	nc, err := nats.Connect(url, opts...)
	if err != nil {
		return nil, err
	}
	return &NATSAnnouncer{nc: nc, subject: subject}, nil
}

// Announce publishes msg as JSON
func (a *NATSAnnouncer) Announce(ctx context.Context, msg Announcement) error {
	if a.nc == nil || a.nc.IsClosed() {
		return errors.New("nats not connected")
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	payload, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	return a.nc.Publish(a.subject, payload)
}

// Close drains and closes the connection
func (a *NATSAnnouncer) Close() {
	if a.nc != nil {
		_ = a.nc.Drain()
		a.nc.Close()
	}
}

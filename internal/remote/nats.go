package remote

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/nats-io/nats.go"

	"github.com/iir20/amar-dokan-pos-system/internal/model"
)

// requester is the part of *nats.Conn the deliverer uses.
type requester interface {
	RequestWithContext(ctx context.Context, subj string, data []byte) (*nats.Msg, error)
	FlushWithContext(ctx context.Context) error
	IsConnected() bool
}

// NATSDeliverer delivers mutations as NATS requests on
// "<subject>.<collection>" and waits for an Ack reply.
type NATSDeliverer struct {
	conn    requester
	subject string
}

// NewNATSDeliverer wraps an established connection.
func NewNATSDeliverer(nc *nats.Conn, subject string) *NATSDeliverer {
	return &NATSDeliverer{conn: nc, subject: subject}
}

// DialNATS connects to url with reconnects enabled. The caller owns the
// returned connection.
func DialNATS(url string) (*nats.Conn, error) {
	nc, err := nats.Connect(url,
		nats.Name("dokan"),
		nats.MaxReconnects(-1),
		nats.RetryOnFailedConnect(true),
	)
	if err != nil {
		return nil, fmt.Errorf("connect to NATS: %w", err)
	}
	return nc, nil
}

// Subject returns the subject m is published on.
func (d *NATSDeliverer) Subject(m model.Mutation) string {
	return d.subject + "." + string(m.Collection)
}

// Deliver sends m and succeeds when the reply is an Ack without an error.
func (d *NATSDeliverer) Deliver(ctx context.Context, m model.Mutation) error {
	data, err := json.Marshal(m)
	if err != nil {
		return model.RemoteDelivery("remote.deliver", fmt.Errorf("marshal mutation: %w", err))
	}

	msg, err := d.conn.RequestWithContext(ctx, d.Subject(m), data)
	if err != nil {
		return model.RemoteDelivery("remote.deliver", fmt.Errorf("request: %w", err))
	}

	var ack Ack
	if err := json.Unmarshal(msg.Data, &ack); err != nil {
		return model.RemoteDelivery("remote.deliver", fmt.Errorf("decode ack: %w", err))
	}
	if ack.Error != "" {
		return model.RemoteDelivery("remote.deliver", errors.New(ack.Error))
	}
	return nil
}

// Ping flushes the connection, which round-trips to the server.
func (d *NATSDeliverer) Ping(ctx context.Context) error {
	if !d.conn.IsConnected() {
		return model.RemoteDelivery("remote.ping", nats.ErrConnectionClosed)
	}
	if err := d.conn.FlushWithContext(ctx); err != nil {
		return model.RemoteDelivery("remote.ping", err)
	}
	return nil
}

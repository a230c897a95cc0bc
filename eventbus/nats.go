package eventbus

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/nats-io/nats.go"

	"marlang/config"
)

// GetNATSURL returns NATS_URL or the client default.
func GetNATSURL() string {
	if v := os.Getenv("NATS_URL"); v != "" {
		return v
	}
	return nats.DefaultURL
}

// natsConn 은 NATSEventBus 가 쓰는 *nats.Conn 메서드다.
type natsConn interface {
	PublishMsg(m *nats.Msg) error
	FlushWithContext(ctx context.Context) error
	Drain() error
}

// NATSEventBus publishes events as core NATS messages; topic is the subject.
type NATSEventBus struct {
	conn natsConn
}

func NewNATSEventBus(url string) (*NATSEventBus, error) {
	nc, err := nats.Connect(url,
		nats.Name("marlang"),
		nats.ReconnectWait(2*time.Second),
		nats.MaxReconnects(-1),
		nats.DisconnectErrHandler(func(nc *nats.Conn, err error) {
			if err != nil {
				config.Logger.Warnf("nats connection lost: %v", err)
			}
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			config.Logger.Infof("reconnected to nats at %s", nc.ConnectedUrl())
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}
	return &NATSEventBus{conn: nc}, nil
}

func (n *NATSEventBus) Publish(ctx context.Context, topic string, event Event) error {
	err := n.publish(ctx, topic, event)
	observePublish("nats", err)
	return err
}

func (n *NATSEventBus) publish(ctx context.Context, topic string, event Event) error {
	wm, err := encodeMessage(event)
	if err != nil {
		return err
	}

	msg := nats.NewMsg(topic)
	msg.Data = wm.body
	for k, v := range wm.headers {
		msg.Header.Set(k, v)
	}
	msg.Header.Set(nats.MsgIdHdr, wm.key)
	if err := n.conn.PublishMsg(msg); err != nil {
		return fmt.Errorf("nats publish %s: %w", topic, err)
	}

	// 서버 수신 확인. FlushWithContext 는 deadline 이 없는 context 를 거부한다.
	ctx, cancel := withPublishDeadline(ctx)
	defer cancel()
	if err := n.conn.FlushWithContext(ctx); err != nil {
		return fmt.Errorf("nats flush %s: %w", topic, err)
	}
	return nil
}

func (n *NATSEventBus) Close() {
	if n.conn != nil {
		n.conn.Drain()
	}
}

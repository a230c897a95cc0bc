package eventbus

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Event는 브로커로 전달되는 메시지의 공통 봉투입니다.
type Event struct {
	ID        string          `json:"id"`
	Type      string          `json:"type"`
	Payload   json.RawMessage `json:"payload"`
	CreatedAt time.Time       `json:"created_at"`
}

// EventBus는 이벤트 발행의 추상화입니다. 이 서비스는 발행만 하고 구독은 하지 않습니다.
type EventBus interface {
	Publish(ctx context.Context, topic string, event Event) error
	Close()
}

// NewJSONEvent는 payload를 JSON으로 인코딩하여 Event를 구성합니다.
// id가 빈 문자열이면 UUID를 생성합니다.
func NewJSONEvent(id, eventType string, payload any) (Event, error) {
	if id == "" {
		id = uuid.NewString()
	}
	b, err := json.Marshal(payload)
	if err != nil {
		return Event{}, fmt.Errorf("payload marshal 실패: %w", err)
	}
	return Event{
		ID:        id,
		Type:      eventType,
		Payload:   b,
		CreatedAt: time.Now().UTC(),
	}, nil
}

// DecodeJSON은 Event.Payload를 제네릭 타입으로 언마샬합니다.
func DecodeJSON[T any](evt Event) (T, error) {
	var out T
	if err := json.Unmarshal(evt.Payload, &out); err != nil {
		var zero T
		return zero, fmt.Errorf("payload unmarshal 실패: %w", err)
	}
	return out, nil
}

// DefaultPublishTimeout 은 호출자가 deadline 을 주지 않았을 때 브로커 확인을 기다리는 시간이다.
const DefaultPublishTimeout = 10 * time.Second

// withPublishDeadline 은 ctx 에 deadline 이 없으면 DefaultPublishTimeout 을 붙인다.
func withPublishDeadline(ctx context.Context) (context.Context, context.CancelFunc) {
	if _, ok := ctx.Deadline(); ok {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, DefaultPublishTimeout)
}

// wireMessage 는 브로커와 무관한 메시지 표현이다. key 는 이벤트 ID 라서
// 같은 포스트의 재발행은 Kafka 에서 같은 파티션, NATS 에서 같은 Msg-Id 가 된다.
type wireMessage struct {
	key     string
	body    []byte
	headers map[string]string
}

func encodeMessage(event Event) (wireMessage, error) {
	if event.ID == "" {
		return wireMessage{}, fmt.Errorf("event id is required")
	}
	body, err := json.Marshal(event)
	if err != nil {
		return wireMessage{}, fmt.Errorf("이벤트 마샬링 실패: %w", err)
	}
	return wireMessage{
		key:  event.ID,
		body: body,
		headers: map[string]string{
			"type":         event.Type,
			"content-type": "application/json",
		},
	}, nil
}

// NoopEventBus는 driver none 일 때 사용하며 이벤트를 버립니다.
type NoopEventBus struct{}

func (NoopEventBus) Publish(ctx context.Context, topic string, event Event) error { return nil }
func (NoopEventBus) Close()                                                       {}

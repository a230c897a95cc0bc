package events

import (
	"context"
	"fmt"
	"time"

	"marlang/eventbus"
	"marlang/models"
)

// EventType 이벤트 타입 정의
type EventType string

const (
	PostGenerated EventType = "post.generated"
)

const (
	eventSource  = "agent"
	eventVersion = "1"
)

// BaseEvent 모든 이벤트의 기본 구조
type BaseEvent struct {
	ID        string    `json:"id"`
	Type      EventType `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	Source    string    `json:"source"`
	Version   string    `json:"version"`
}

// PostGeneratedEvent 에이전트가 포스트를 저장한 직후 발행된다.
type PostGeneratedEvent struct {
	BaseEvent
	PostID      string    `json:"postId"`
	Title       string    `json:"title,omitempty"`
	Slug        string    `json:"slug,omitempty"`
	Tags        []string  `json:"tags"`
	Thumbnails  []string  `json:"thumbnails"`
	Author      string    `json:"author"`
	GeneratedAt time.Time `json:"generatedAt"`
}

func NewPostGeneratedEvent(p *models.Post, now time.Time) PostGeneratedEvent {
	return PostGeneratedEvent{
		BaseEvent: BaseEvent{
			ID:        p.ID,
			Type:      PostGenerated,
			Timestamp: now.UTC(),
			Source:    eventSource,
			Version:   eventVersion,
		},
		PostID:      p.ID,
		Title:       p.Title,
		Slug:        p.Slug,
		Tags:        p.Tags,
		Thumbnails:  p.Thumbnails,
		Author:      p.Author,
		GeneratedAt: p.CreatedAt,
	}
}

// Notifier publishes post.generated events to one topic. It implements
// agent.PostNotifier.
type Notifier struct {
	bus   eventbus.EventBus
	topic string
	now   func() time.Time
}

func NewNotifier(bus eventbus.EventBus, topic string) *Notifier {
	return &Notifier{bus: bus, topic: topic, now: time.Now}
}

func (n *Notifier) NotifyPostGenerated(ctx context.Context, p *models.Post) error {
	ev := NewPostGeneratedEvent(p, n.now())
	env, err := eventbus.NewJSONEvent(ev.ID, string(ev.Type), ev)
	if err != nil {
		return err
	}
	if err := n.bus.Publish(ctx, n.topic, env); err != nil {
		return fmt.Errorf("publish %s to %s: %w", ev.Type, n.topic, err)
	}
	return nil
}

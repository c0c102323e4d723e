// Package messaging 提供领域事件流实现
package messaging

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

var tracer = otel.Tracer("messaging")

// Producer 消息生产者，将领域事件写入 Redis Stream 供外部消费者订阅
type Producer struct {
	client *redis.Client
	maxLen int64
}

// NewProducer 创建消息生产者
func NewProducer(client *redis.Client, maxLen int64) *Producer {
	if maxLen <= 0 {
		maxLen = 100000
	}
	return &Producer{
		client: client,
		maxLen: maxLen,
	}
}

// Publish 发布消息到指定流
func (p *Producer) Publish(ctx context.Context, stream Stream, msg *Message) (string, error) {
	ctx, span := tracer.Start(ctx, "producer.Publish",
		trace.WithAttributes(
			attribute.String("stream", string(stream)),
			attribute.String("message.id", msg.ID),
			attribute.String("message.type", msg.Type),
		))
	defer span.End()

	data, err := json.Marshal(msg)
	if err != nil {
		span.RecordError(err)
		return "", fmt.Errorf("failed to marshal message: %w", err)
	}

	result, err := p.client.XAdd(ctx, &redis.XAddArgs{
		Stream: string(stream),
		MaxLen: p.maxLen,
		Approx: true,
		Values: map[string]interface{}{
			"data": string(data),
		},
	}).Result()

	if err != nil {
		span.RecordError(err)
		return "", fmt.Errorf("failed to publish message: %w", err)
	}

	span.SetAttributes(attribute.String("stream.message_id", result))
	return result, nil
}

// PublishChapterEvent 发布章节事件
func (p *Producer) PublishChapterEvent(ctx context.Context, evt *ChapterEventMessage) (string, error) {
	msg, err := NewMessage(uuid.NewString(), evt.Event, evt.ProjectID, evt.ActorID, evt)
	if err != nil {
		return "", err
	}

	msg.SetMetadata("chapter_id", evt.ChapterID)
	return p.Publish(ctx, StreamChapterEvents, msg)
}

// PublishVersionEvent 发布版本事件
func (p *Producer) PublishVersionEvent(ctx context.Context, evt *VersionEventMessage) (string, error) {
	msg, err := NewMessage(uuid.NewString(), evt.Event, evt.ProjectID, evt.ActorID, evt)
	if err != nil {
		return "", err
	}

	msg.SetMetadata("version_number", fmt.Sprintf("%d", evt.VersionNumber))
	return p.Publish(ctx, StreamVersionEvents, msg)
}

// ChapterEventMessage 章节事件消息
type ChapterEventMessage struct {
	Event         string `json:"event"`
	ProjectID     string `json:"project_id"`
	ChapterID     string `json:"chapter_id"`
	ActorID       string `json:"actor_id"`
	FromStatus    string `json:"from_status,omitempty"`
	ToStatus      string `json:"to_status,omitempty"`
	VersionNumber int    `json:"version_number,omitempty"`
}

// VersionEventMessage 版本事件消息
type VersionEventMessage struct {
	Event         string `json:"event"`
	ProjectID     string `json:"project_id"`
	VersionID     string `json:"version_id"`
	VersionNumber int    `json:"version_number"`
	ChangeType    string `json:"change_type"`
	ActorID       string `json:"actor_id"`
}

package eventbus

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/confluentinc/confluent-kafka-go/v2/kafka"

	"marlang/config"
	"marlang/metrics"
)

const (
	kafkaFlushTimeout = 5 * time.Second
	kafkaAdminTimeout = 30 * time.Second
)

// GetBrokers 는 KAFKA_BOOTSTRAP_SERVERS 를 읽는다.
func GetBrokers() (string, error) {
	v := os.Getenv("KAFKA_BOOTSTRAP_SERVERS")
	if v == "" {
		return "", fmt.Errorf("KAFKA_BOOTSTRAP_SERVERS environment variable is required")
	}
	return v, nil
}

// kafkaProducerConfig 는 포스트 이벤트 프로듀서 설정이다. 같은 post id 가
// 재시도로 중복 기록되지 않도록 idempotence 를 켠다.
func kafkaProducerConfig(brokers, clientID string) *kafka.ConfigMap {
	return &kafka.ConfigMap{
		"bootstrap.servers":  brokers,
		"client.id":          clientID,
		"acks":               "all",
		"enable.idempotence": true,
		"linger.ms":          5,
	}
}

// KafkaEventBus 는 confluent-kafka-go Producer 로 포스트 이벤트를 발행한다.
type KafkaEventBus struct {
	producer *kafka.Producer
}

func NewKafkaEventBus(brokers string) (*KafkaEventBus, error) {
	p, err := kafka.NewProducer(kafkaProducerConfig(brokers, "marlang-agent"))
	if err != nil {
		return nil, fmt.Errorf("kafka producer 생성 실패: %w", err)
	}
	k := &KafkaEventBus{producer: p}
	go k.logAsyncErrors()
	return k, nil
}

// logAsyncErrors 는 전달 채널을 지정하지 않은 메시지와 클라이언트 오류를 로그로 남긴다.
func (k *KafkaEventBus) logAsyncErrors() {
	for e := range k.producer.Events() {
		switch ev := e.(type) {
		case *kafka.Message:
			if ev.TopicPartition.Error != nil {
				config.Logger.Errorf("kafka delivery failed %v: %v", ev.TopicPartition, ev.TopicPartition.Error)
			}
		case kafka.Error:
			if ev.IsFatal() {
				config.Logger.Errorf("kafka fatal error: %v", ev)
			} else {
				config.Logger.Warnf("kafka error: %v", ev)
			}
		}
	}
}

// EnsureTopic 은 포스트 이벤트 토픽을 만든다. 이미 있으면 성공이다.
func (k *KafkaEventBus) EnsureTopic(ctx context.Context, topic string, partitions int) error {
	admin, err := kafka.NewAdminClientFromProducer(k.producer)
	if err != nil {
		return fmt.Errorf("kafka admin client: %w", err)
	}
	defer admin.Close()

	ctx, cancel := context.WithTimeout(ctx, kafkaAdminTimeout)
	defer cancel()

	results, err := admin.CreateTopics(ctx, []kafka.TopicSpecification{{
		Topic:             topic,
		NumPartitions:     partitions,
		ReplicationFactor: 1,
	}})
	if err != nil {
		return fmt.Errorf("create topic %s: %w", topic, err)
	}
	for _, r := range results {
		if code := r.Error.Code(); code != kafka.ErrNoError && code != kafka.ErrTopicAlreadyExists {
			return fmt.Errorf("create topic %s: %v", r.Topic, r.Error)
		}
	}
	return nil
}

func (k *KafkaEventBus) Close() {
	if k.producer == nil {
		return
	}
	if remaining := k.producer.Flush(int(kafkaFlushTimeout / time.Millisecond)); remaining > 0 {
		config.Logger.Warnf("%d kafka messages still queued after flush", remaining)
	}
	k.producer.Close()
	config.Logger.Info("kafka producer closed")
}

// Publish 는 브로커의 전달 보고서를 기다린다. ctx 에 deadline 이 없으면 DefaultPublishTimeout 까지만 기다린다.
func (k *KafkaEventBus) Publish(ctx context.Context, topic string, event Event) error {
	err := k.publish(ctx, topic, event)
	observePublish("kafka", err)
	return err
}

func (k *KafkaEventBus) publish(ctx context.Context, topic string, event Event) error {
	msg, err := encodeMessage(event)
	if err != nil {
		return err
	}
	ctx, cancel := withPublishDeadline(ctx)
	defer cancel()

	headers := make([]kafka.Header, 0, len(msg.headers))
	for key, v := range msg.headers {
		headers = append(headers, kafka.Header{Key: key, Value: []byte(v)})
	}

	delivery := make(chan kafka.Event, 1)
	err = k.producer.Produce(&kafka.Message{
		TopicPartition: kafka.TopicPartition{Topic: &topic, Partition: kafka.PartitionAny},
		Key:            []byte(msg.key),
		Value:          msg.body,
		Headers:        headers,
	}, delivery)
	if err != nil {
		return fmt.Errorf("kafka produce %s: %w", topic, err)
	}

	select {
	case ev := <-delivery:
		m, ok := ev.(*kafka.Message)
		if !ok {
			return fmt.Errorf("unexpected delivery event %v", ev)
		}
		if m.TopicPartition.Error != nil {
			return fmt.Errorf("kafka delivery %s: %w", topic, m.TopicPartition.Error)
		}
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func observePublish(driver string, err error) {
	status := "ok"
	if err != nil {
		status = "failed"
	}
	metrics.EventsPublishedTotal.WithLabelValues(driver, status).Inc()
}

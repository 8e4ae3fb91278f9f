package kafka

import (
	"Airena/internal/api/config"
	"context"
	log "log/slog"
	"time"

	"github.com/IBM/sarama"
	"github.com/goccy/go-json"
)

// Producer 同步发送业务事件
type Producer struct {
	producer  sarama.SyncProducer
	postTopic string
	viewTopic string
}

func NewProducer(cfg *config.Config) (*Producer, error) {
	p, err := sarama.NewSyncProducer(cfg.Kafka.Brokers, newProducerConfig(cfg.Kafka))
	if err != nil {
		return nil, err
	}
	return &Producer{
		producer:  p,
		postTopic: cfg.KafkaPostConsumer.Topic,
		viewTopic: cfg.KafkaViewsConsumer.Topic,
	}, nil
}

// PublishPostEvent 发送文章变更事件，以文章 ID 为 key 保证同一文章有序
func (p *Producer) PublishPostEvent(ctx context.Context, evt PostEvent) error {
	if evt.OccurredAt.IsZero() {
		evt.OccurredAt = time.Now()
	}
	return p.send(ctx, p.postTopic, evt.PostID, evt)
}

// PublishVideoView 发送视频播放事件
func (p *Producer) PublishVideoView(ctx context.Context, videoID string) error {
	return p.send(ctx, p.viewTopic, videoID, VideoViewEvent{VideoID: videoID, OccurredAt: time.Now()})
}

func (p *Producer) send(ctx context.Context, topic, key string, payload any) error {
	value, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	partition, offset, err := p.producer.SendMessage(&sarama.ProducerMessage{
		Topic: topic,
		Key:   sarama.StringEncoder(key),
		Value: sarama.ByteEncoder(value),
	})
	if err != nil {
		return err
	}
	log.DebugContext(ctx, "kafka message sent", "topic", topic, "key", key, "partition", partition, "offset", offset)
	return nil
}

func (p *Producer) Close() error {
	return p.producer.Close()
}

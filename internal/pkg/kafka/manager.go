package kafka

import (
	"Airena/internal/api/config"
	"Airena/internal/pkg/es"
	"Airena/internal/pkg/mongo"
	"context"
	log "log/slog"
	"sync"

	"github.com/IBM/sarama"
)

// ConsumerManager 管理所有 Kafka 消费者
type ConsumerManager struct {
	postConsumer sarama.ConsumerGroup
	postHandler  sarama.ConsumerGroupHandler

	viewsConsumer sarama.ConsumerGroup
	viewsHandler  sarama.ConsumerGroupHandler
}

// NewConsumerManager 构造函数
func NewConsumerManager(
	cfg *config.Config,
	postDBRepo mongo.PostRepo,
	videoDBRepo mongo.VideoRepo,
	postESRepo es.PostRepo,
) (*ConsumerManager, error) {
	saramaCfg := newSaramaConfig(cfg.Kafka)

	postConsumer, err := sarama.NewConsumerGroup(cfg.Kafka.Brokers, cfg.KafkaPostConsumer.GroupID, saramaCfg)
	if err != nil {
		return nil, err
	}

	viewsConsumer, err := sarama.NewConsumerGroup(cfg.Kafka.Brokers, cfg.KafkaViewsConsumer.GroupID, saramaCfg)
	if err != nil {
		_ = postConsumer.Close()
		return nil, err
	}

	return &ConsumerManager{
		postConsumer:  postConsumer,
		postHandler:   NewPostIndexHandler(postDBRepo, postESRepo),
		viewsConsumer: viewsConsumer,
		viewsHandler:  NewVideoViewsHandler(videoDBRepo),
	}, nil
}

// Start 启动所有消费者，阻塞至 ctx 结束
func (m *ConsumerManager) Start(ctx context.Context, cfg *config.Config) error {
	var wg sync.WaitGroup

	run := func(name, topic string, group sarama.ConsumerGroup, handler sarama.ConsumerGroupHandler) {
		defer wg.Done()
		log.Info(name+" consumer started", "topic", topic)
		for {
			if err := group.Consume(ctx, []string{topic}, handler); err != nil {
				log.Error("Error from consumer", "consumer", name, "err", err)
			}
			if ctx.Err() != nil {
				return
			}
		}
	}

	wg.Add(2)
	go run("Post", cfg.KafkaPostConsumer.Topic, m.postConsumer, m.postHandler)
	go run("Video Views", cfg.KafkaViewsConsumer.Topic, m.viewsConsumer, m.viewsHandler)

	<-ctx.Done()
	log.Info("Kafka Manager shutting down...")

	if err := m.postConsumer.Close(); err != nil {
		log.Error("Failed to close post consumer", "err", err)
	}
	if err := m.viewsConsumer.Close(); err != nil {
		log.Error("Failed to close views consumer", "err", err)
	}
	wg.Wait()

	return nil
}

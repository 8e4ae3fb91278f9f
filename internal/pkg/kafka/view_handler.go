package kafka

import (
	"Airena/internal/pkg/mongo"
	"context"
	"errors"
	log "log/slog"

	"github.com/IBM/sarama"
	"go.mongodb.org/mongo-driver/bson/primitive"
	mongoDB "go.mongodb.org/mongo-driver/mongo"
)

// VideoViewsHandler 累加视频播放量
type VideoViewsHandler struct {
	videoRepo mongo.VideoRepo
}

func NewVideoViewsHandler(videoRepo mongo.VideoRepo) *VideoViewsHandler {
	return &VideoViewsHandler{videoRepo: videoRepo}
}

func (s *VideoViewsHandler) Setup(sarama.ConsumerGroupSession) error {
	log.Info("video view consumer setup")
	return nil
}

func (s *VideoViewsHandler) Cleanup(sarama.ConsumerGroupSession) error {
	log.Info("video view consumer cleanup")
	return nil
}

func (s *VideoViewsHandler) ConsumeClaim(session sarama.ConsumerGroupSession, claim sarama.ConsumerGroupClaim) error {
	log.Info("topic-view consume claim")
	err := pullMessageBatch(session, claim, s.logic)
	if err != nil {
		log.Error("topic-view process batch error", "err", err)
		return err
	}
	return nil
}

func (s *VideoViewsHandler) logic(ctx context.Context, msg *sarama.ConsumerMessage) error {
	evt, err := decode[VideoViewEvent](msg)
	if err != nil {
		log.Warn("drop malformed view event", "offset", msg.Offset, "err", err)
		return nil
	}

	id, err := primitive.ObjectIDFromHex(evt.VideoID)
	if err != nil {
		log.Warn("drop view event with invalid id", "video_id", evt.VideoID)
		return nil
	}

	err = s.videoRepo.IncViews(ctx, id, 1)
	if errors.Is(err, mongoDB.ErrNoDocuments) {
		// 视频已不存在
		return nil
	}
	return err
}

package kafka

import (
	"Airena/internal/pkg/es"
	"Airena/internal/pkg/mongo"
	"Airena/internal/pkg/util"
	"context"
	"errors"
	log "log/slog"

	"github.com/IBM/sarama"
	"go.mongodb.org/mongo-driver/bson/primitive"
	mongoDB "go.mongodb.org/mongo-driver/mongo"
)

// PostIndexHandler 将文章变更同步到 ES
type PostIndexHandler struct {
	postDBRepo mongo.PostRepo
	postESRepo es.PostRepo
}

func NewPostIndexHandler(postDBRepo mongo.PostRepo, postESRepo es.PostRepo) *PostIndexHandler {
	return &PostIndexHandler{
		postDBRepo: postDBRepo,
		postESRepo: postESRepo,
	}
}

func (s *PostIndexHandler) Setup(sarama.ConsumerGroupSession) error {
	log.Info("post index consumer setup")
	return nil
}

func (s *PostIndexHandler) Cleanup(sarama.ConsumerGroupSession) error {
	log.Info("post index consumer cleanup")
	return nil
}

func (s *PostIndexHandler) ConsumeClaim(session sarama.ConsumerGroupSession, claim sarama.ConsumerGroupClaim) error {
	log.Info("topic-post consume claim")
	err := pullMessageBatch(session, claim, s.logic)
	if err != nil {
		log.Error("topic-post process batch error", "err", err)
		return err
	}
	log.Info("topic-post consume claim end")
	return nil
}

func (s *PostIndexHandler) logic(ctx context.Context, msg *sarama.ConsumerMessage) error {
	evt, err := decode[PostEvent](msg)
	if err != nil {
		log.Warn("drop malformed post event", "offset", msg.Offset, "err", err)
		return nil
	}

	if evt.Type == PostDeleted {
		return s.postESRepo.DeletePost(ctx, evt.PostID)
	}

	id, err := primitive.ObjectIDFromHex(evt.PostID)
	if err != nil {
		log.Warn("drop post event with invalid id", "post_id", evt.PostID)
		return nil
	}

	// 回源读取最新状态，文章已被删除时同步删除索引
	post, err := s.postDBRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, mongoDB.ErrNoDocuments) {
			return s.postESRepo.DeletePost(ctx, evt.PostID)
		}
		return err
	}

	return s.postESRepo.IndexPost(ctx, ToPostES(post))
}

// ToPostES 文章文档转换为索引文档
func ToPostES(post *mongo.PostModel) *es.PostES {
	return &es.PostES{
		ID:           post.ID.Hex(),
		Slug:         post.Slug,
		Title:        post.Title,
		PlainContent: util.PlainText(post.Content),
		ImageURL:     post.ImageURL,
		AuthorID:     post.AuthorID,
		AuthorName:   post.AuthorName,
		IsFeatured:   post.IsFeatured,
		CreatedAt:    post.CreatedAt,
		UpdatedAt:    post.UpdatedAt,
	}
}

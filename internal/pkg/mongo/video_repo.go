package mongo

import (
	"Airena/internal/pkg/consts"
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type VideoRepo interface {
	InsertVideo(ctx context.Context, video *VideoModel) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*VideoModel, error)
	ListByAuthor(ctx context.Context, authorID string) ([]*VideoModel, error)
	List(ctx context.Context, category string, limit, offset int64) ([]*VideoModel, error)
	IncViews(ctx context.Context, id primitive.ObjectID, delta int64) error
}

type videoRepoImpl struct {
	col *mongo.Collection
}

func NewVideoRepo(db *mongo.Database) VideoRepo {
	return &videoRepoImpl{
		col: db.Collection(consts.VideoCollection),
	}
}

func (s *videoRepoImpl) InsertVideo(ctx context.Context, video *VideoModel) error {
	if video.ID.IsZero() {
		video.ID = primitive.NewObjectID()
	}
	_, err := s.col.InsertOne(ctx, video)
	return err
}

func (s *videoRepoImpl) GetByID(ctx context.Context, id primitive.ObjectID) (*VideoModel, error) {
	var video VideoModel
	if err := s.col.FindOne(ctx, bson.M{"_id": id}).Decode(&video); err != nil {
		return nil, err
	}
	return &video, nil
}

// ListByAuthor 获取某用户上传的全部视频 (按时间倒序)
func (s *videoRepoImpl) ListByAuthor(ctx context.Context, authorID string) ([]*VideoModel, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	return s.find(ctx, bson.M{"author_id": authorID}, opts)
}

// List 分页获取视频，category 为空表示全部分类
func (s *videoRepoImpl) List(ctx context.Context, category string, limit, offset int64) ([]*VideoModel, error) {
	filter := bson.M{}
	if category != "" {
		filter["category"] = category
	}
	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetLimit(limit).
		SetSkip(offset)
	return s.find(ctx, filter, opts)
}

// IncViews 累加播放量
func (s *videoRepoImpl) IncViews(ctx context.Context, id primitive.ObjectID, delta int64) error {
	res, err := s.col.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$inc": bson.M{"views": delta}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

func (s *videoRepoImpl) find(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]*VideoModel, error) {
	cursor, err := s.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = cursor.Close(ctx)
	}()

	list := make([]*VideoModel, 0)
	if err = cursor.All(ctx, &list); err != nil {
		return nil, err
	}
	return list, nil
}

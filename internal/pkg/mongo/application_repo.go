package mongo

import (
	"Airena/internal/pkg/consts"
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type ApplicationRepo interface {
	UpsertPending(ctx context.Context, app *ApplicationModel) error
	GetByUserID(ctx context.Context, userID string) (*ApplicationModel, error)
	List(ctx context.Context, status string) ([]*ApplicationModel, error)
	UpdateStatus(ctx context.Context, userID, status string) error
	ListUserIDsByStatus(ctx context.Context, status string) ([]string, error)
}

type applicationRepoImpl struct {
	col *mongo.Collection
}

func NewApplicationRepo(db *mongo.Database) ApplicationRepo {
	return &applicationRepoImpl{
		col: db.Collection(consts.ApplicationCollection),
	}
}

// UpsertPending 新建申请或将已有申请重置为待审核
func (s *applicationRepoImpl) UpsertPending(ctx context.Context, app *ApplicationModel) error {
	now := time.Now()
	update := bson.M{
		"$set": bson.M{
			"channel_name": app.ChannelName,
			"youtube_link": app.YoutubeLink,
			"twitter_link": app.TwitterLink,
			"status":       ApplicationPending,
			"updated_at":   now,
		},
		"$setOnInsert": bson.M{"created_at": now},
	}
	_, err := s.col.UpdateOne(ctx, bson.M{"_id": app.UserID}, update, options.Update().SetUpsert(true))
	return err
}

func (s *applicationRepoImpl) GetByUserID(ctx context.Context, userID string) (*ApplicationModel, error) {
	var app ApplicationModel
	if err := s.col.FindOne(ctx, bson.M{"_id": userID}).Decode(&app); err != nil {
		return nil, err
	}
	return &app, nil
}

// List 按提交时间倒序列出申请，status 为空表示全部
func (s *applicationRepoImpl) List(ctx context.Context, status string) ([]*ApplicationModel, error) {
	filter := bson.M{}
	if status != "" {
		filter["status"] = status
	}
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})

	cursor, err := s.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = cursor.Close(ctx)
	}()

	list := make([]*ApplicationModel, 0)
	if err = cursor.All(ctx, &list); err != nil {
		return nil, err
	}
	return list, nil
}

func (s *applicationRepoImpl) UpdateStatus(ctx context.Context, userID, status string) error {
	update := bson.M{"$set": bson.M{"status": status, "updated_at": time.Now()}}
	res, err := s.col.UpdateOne(ctx, bson.M{"_id": userID}, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

func (s *applicationRepoImpl) ListUserIDsByStatus(ctx context.Context, status string) ([]string, error) {
	opts := options.Find().SetProjection(bson.M{"_id": 1})
	cursor, err := s.col.Find(ctx, bson.M{"status": status}, opts)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = cursor.Close(ctx)
	}()

	var rows []struct {
		ID string `bson:"_id"`
	}
	if err = cursor.All(ctx, &rows); err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(rows))
	for _, r := range rows {
		ids = append(ids, r.ID)
	}
	return ids, nil
}

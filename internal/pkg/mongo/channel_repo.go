package mongo

import (
	"Airena/internal/pkg/consts"
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type ChannelRepo interface {
	CreateOnce(ctx context.Context, channel *ChannelModel) (bool, error)
	GetByID(ctx context.Context, userID string) (*ChannelModel, error)
	ExistingIDs(ctx context.Context, userIDs []string) (map[string]struct{}, error)
}

type channelRepoImpl struct {
	col *mongo.Collection
}

func NewChannelRepo(db *mongo.Database) ChannelRepo {
	return &channelRepoImpl{
		col: db.Collection(consts.ChannelCollection),
	}
}

// CreateOnce 频道不存在时创建，已存在时不做任何修改，返回是否新建
func (s *channelRepoImpl) CreateOnce(ctx context.Context, channel *ChannelModel) (bool, error) {
	update := bson.M{"$setOnInsert": bson.M{
		"channel_name": channel.ChannelName,
		"photo_url":    channel.PhotoURL,
		"youtube_link": channel.YoutubeLink,
		"twitter_link": channel.TwitterLink,
		"subscribers":  channel.Subscribers,
		"created_at":   channel.CreatedAt,
	}}
	res, err := s.col.UpdateOne(ctx, bson.M{"_id": channel.ID}, update, options.Update().SetUpsert(true))
	if err != nil {
		return false, err
	}
	return res.UpsertedCount > 0, nil
}

func (s *channelRepoImpl) GetByID(ctx context.Context, userID string) (*ChannelModel, error) {
	var channel ChannelModel
	if err := s.col.FindOne(ctx, bson.M{"_id": userID}).Decode(&channel); err != nil {
		return nil, err
	}
	return &channel, nil
}

// ExistingIDs 返回给定用户中已有频道的集合
func (s *channelRepoImpl) ExistingIDs(ctx context.Context, userIDs []string) (map[string]struct{}, error) {
	found := make(map[string]struct{}, len(userIDs))
	if len(userIDs) == 0 {
		return found, nil
	}

	opts := options.Find().SetProjection(bson.M{"_id": 1})
	cursor, err := s.col.Find(ctx, bson.M{"_id": bson.M{"$in": userIDs}}, opts)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = cursor.Close(ctx)
	}()

	for cursor.Next(ctx) {
		var row struct {
			ID string `bson:"_id"`
		}
		if err = cursor.Decode(&row); err != nil {
			return nil, err
		}
		found[row.ID] = struct{}{}
	}
	return found, cursor.Err()
}

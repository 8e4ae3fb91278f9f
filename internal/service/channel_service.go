package service

import (
	"Airena/internal/api/dto"
	"Airena/internal/pkg/mongo"
	"Airena/internal/pkg/util"
	"context"
	"errors"
	"time"

	mongoDB "go.mongodb.org/mongo-driver/mongo"
)

type ChannelService interface {
	GetChannel(ctx context.Context, userID string) (*dto.ChannelDTO, error)
}

type ChannelServiceImpl struct {
	channelRepo mongo.ChannelRepo
	timeout     time.Duration
}

func NewChannelService(channelRepo mongo.ChannelRepo, timeout time.Duration) ChannelService {
	return &ChannelServiceImpl{channelRepo: channelRepo, timeout: timeout}
}

func (s *ChannelServiceImpl) GetChannel(ctx context.Context, userID string) (*dto.ChannelDTO, error) {
	channel, err := util.RetryRead(ctx, s.timeout, func(ctx context.Context) (*mongo.ChannelModel, error) {
		return s.channelRepo.GetByID(ctx, userID)
	})
	if err != nil {
		if errors.Is(err, mongoDB.ErrNoDocuments) {
			return nil, ErrChannelNotFound
		}
		return nil, err
	}
	return &dto.ChannelDTO{
		ID:          channel.ID,
		ChannelName: channel.ChannelName,
		PhotoURL:    channel.PhotoURL,
		YoutubeLink: channel.YoutubeLink,
		TwitterLink: channel.TwitterLink,
		Subscribers: channel.Subscribers,
		CreatedAt:   channel.CreatedAt.UTC().Format(time.RFC3339),
	}, nil
}

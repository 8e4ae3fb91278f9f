package kafka

import (
	"Airena/internal/pkg/es"
	"Airena/internal/pkg/mongo"
	"context"
	"testing"
	"time"

	"github.com/IBM/sarama"
	"github.com/IBM/sarama/mocks"
	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	mongoDB "go.mongodb.org/mongo-driver/mongo"
)

type stubPostRepo struct {
	mongo.PostRepo
	posts map[primitive.ObjectID]*mongo.PostModel
}

func (s *stubPostRepo) GetByID(_ context.Context, id primitive.ObjectID) (*mongo.PostModel, error) {
	p, ok := s.posts[id]
	if !ok {
		return nil, mongoDB.ErrNoDocuments
	}
	return p, nil
}

type stubSearchRepo struct {
	indexed map[string]*es.PostES
	deleted []string
}

func (s *stubSearchRepo) IndexPost(_ context.Context, post *es.PostES) error {
	s.indexed[post.ID] = post
	return nil
}

func (s *stubSearchRepo) DeletePost(_ context.Context, id string) error {
	s.deleted = append(s.deleted, id)
	return nil
}

func (s *stubSearchRepo) Search(context.Context, string, int, int) (*es.SearchResult, error) {
	return &es.SearchResult{}, nil
}

type stubVideoRepo struct {
	mongo.VideoRepo
	views map[primitive.ObjectID]int64
}

func (s *stubVideoRepo) IncViews(_ context.Context, id primitive.ObjectID, delta int64) error {
	if _, ok := s.views[id]; !ok {
		return mongoDB.ErrNoDocuments
	}
	s.views[id] += delta
	return nil
}

func message(t *testing.T, v any) *sarama.ConsumerMessage {
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return &sarama.ConsumerMessage{Value: b}
}

func TestPostIndexHandler(t *testing.T) {
	id := primitive.NewObjectID()
	posts := &stubPostRepo{posts: map[primitive.ObjectID]*mongo.PostModel{
		id: {ID: id, Title: "Hello", Content: "<p>Hello <b>world</b></p>", Slug: "hello", UpdatedAt: time.Now()},
	}}
	search := &stubSearchRepo{indexed: map[string]*es.PostES{}}
	h := NewPostIndexHandler(posts, search)
	ctx := context.Background()

	t.Run("upsert indexes plain text", func(t *testing.T) {
		require.NoError(t, h.logic(ctx, message(t, PostEvent{Type: PostUpserted, PostID: id.Hex()})))
		doc := search.indexed[id.Hex()]
		require.NotNil(t, doc)
		assert.Equal(t, "Hello world", doc.PlainContent)
		assert.Equal(t, "hello", doc.Slug)
	})

	t.Run("upsert of vanished post deletes index", func(t *testing.T) {
		gone := primitive.NewObjectID()
		require.NoError(t, h.logic(ctx, message(t, PostEvent{Type: PostUpserted, PostID: gone.Hex()})))
		assert.Contains(t, search.deleted, gone.Hex())
	})

	t.Run("delete event", func(t *testing.T) {
		require.NoError(t, h.logic(ctx, message(t, PostEvent{Type: PostDeleted, PostID: "abc"})))
		assert.Contains(t, search.deleted, "abc")
	})

	t.Run("malformed payload is dropped", func(t *testing.T) {
		assert.NoError(t, h.logic(ctx, &sarama.ConsumerMessage{Value: []byte("{")}))
	})
}

func TestVideoViewsHandler(t *testing.T) {
	id := primitive.NewObjectID()
	videos := &stubVideoRepo{views: map[primitive.ObjectID]int64{id: 0}}
	h := NewVideoViewsHandler(videos)
	ctx := context.Background()

	require.NoError(t, h.logic(ctx, message(t, VideoViewEvent{VideoID: id.Hex()})))
	require.NoError(t, h.logic(ctx, message(t, VideoViewEvent{VideoID: id.Hex()})))
	assert.Equal(t, int64(2), videos.views[id])

	assert.NoError(t, h.logic(ctx, message(t, VideoViewEvent{VideoID: primitive.NewObjectID().Hex()})))
	assert.NoError(t, h.logic(ctx, message(t, VideoViewEvent{VideoID: "not-an-id"})))
}

func TestProducerPublishPostEvent(t *testing.T) {
	mp := mocks.NewSyncProducer(t, nil)
	mp.ExpectSendMessageWithCheckerFunctionAndSucceed(func(val []byte) error {
		var evt PostEvent
		if err := json.Unmarshal(val, &evt); err != nil {
			return err
		}
		assert.Equal(t, PostUpserted, evt.Type)
		assert.Equal(t, "p1", evt.PostID)
		assert.False(t, evt.OccurredAt.IsZero())
		return nil
	})

	p := &Producer{producer: mp, postTopic: "posts", viewTopic: "views"}
	require.NoError(t, p.PublishPostEvent(context.Background(), PostEvent{Type: PostUpserted, PostID: "p1"}))
	require.NoError(t, p.Close())
}

func TestProducerPublishVideoViewFailure(t *testing.T) {
	mp := mocks.NewSyncProducer(t, nil)
	mp.ExpectSendMessageAndFail(sarama.ErrOutOfBrokers)

	p := &Producer{producer: mp, postTopic: "posts", viewTopic: "views"}
	err := p.PublishVideoView(context.Background(), "v1")
	assert.ErrorIs(t, err, sarama.ErrOutOfBrokers)
	require.NoError(t, p.Close())
}

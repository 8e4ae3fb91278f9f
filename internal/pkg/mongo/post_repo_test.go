package mongo

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"
)

const (
	dupSlugMsg     = "E11000 duplicate key error collection: airena.posts index: uniq_slug dup key: { slug: \"hello\" }"
	dupFeaturedMsg = "E11000 duplicate key error collection: airena.posts index: uniq_featured dup key: { is_featured: true }"
)

func ackWrite(n int32) bson.D {
	return mtest.CreateSuccessResponse(bson.E{Key: "n", Value: n}, bson.E{Key: "nModified", Value: n})
}

func commandNames(mt *mtest.T) []string {
	var names []string
	for _, evt := range mt.GetAllStartedEvents() {
		names = append(names, evt.CommandName)
	}
	return names
}

func newPost(featured bool) *PostModel {
	now := time.Now()
	return &PostModel{Title: "Hello", Slug: "hello", Content: "c", IsFeatured: featured, CreatedAt: now, UpdatedAt: now}
}

func TestInsertPost(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("featured insert clears other featured posts first", func(mt *mtest.T) {
		repo := &postRepoImpl{col: mt.Coll}
		mt.AddMockResponses(ackWrite(1), ackWrite(1), mtest.CreateSuccessResponse())

		post := newPost(true)
		require.NoError(mt, repo.InsertPost(context.Background(), post))
		assert.False(mt, post.ID.IsZero())

		names := commandNames(mt)
		require.GreaterOrEqual(mt, len(names), 2)
		assert.Equal(mt, []string{"update", "insert"}, names[:2])

		unfeature := mt.GetAllStartedEvents()[0].Command
		assert.True(mt, unfeature.Lookup("updates", "0", "q", "is_featured").Boolean())
		assert.True(mt, unfeature.Lookup("updates", "0", "multi").Boolean())
		assert.False(mt, unfeature.Lookup("updates", "0", "u", "$set", "is_featured").Boolean())
	})

	mt.Run("plain insert skips the transaction", func(mt *mtest.T) {
		repo := &postRepoImpl{col: mt.Coll}
		mt.AddMockResponses(ackWrite(1))

		require.NoError(mt, repo.InsertPost(context.Background(), newPost(false)))
		assert.Equal(mt, []string{"insert"}, commandNames(mt))
	})

	mt.Run("slug conflict", func(mt *mtest.T) {
		repo := &postRepoImpl{col: mt.Coll}
		mt.AddMockResponses(mtest.CreateWriteErrorsResponse(mtest.WriteError{Index: 0, Code: 11000, Message: dupSlugMsg}))

		err := repo.InsertPost(context.Background(), newPost(false))
		assert.ErrorIs(mt, err, ErrSlugTaken)
	})

	mt.Run("featured conflict inside the transaction", func(mt *mtest.T) {
		repo := &postRepoImpl{col: mt.Coll}
		mt.AddMockResponses(
			ackWrite(0),
			mtest.CreateWriteErrorsResponse(mtest.WriteError{Index: 0, Code: 11000, Message: dupFeaturedMsg}),
			mtest.CreateSuccessResponse(),
		)

		err := repo.InsertPost(context.Background(), newPost(true))
		assert.ErrorIs(mt, err, ErrFeaturedConflict)
	})
}

func TestUpdatePost(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
	id := primitive.NewObjectID()

	mt.Run("omitted featured flag is left untouched", func(mt *mtest.T) {
		repo := &postRepoImpl{col: mt.Coll}
		mt.AddMockResponses(ackWrite(1))

		require.NoError(mt, repo.UpdatePost(context.Background(), id, &PostUpdate{Title: "t", Content: "c"}))
		assert.Equal(mt, []string{"update"}, commandNames(mt))

		set := mt.GetStartedEvent().Command.Lookup("updates", "0", "u", "$set").Document()
		_, err := set.LookupErr("is_featured")
		assert.Error(mt, err)
		assert.Equal(mt, "t", set.Lookup("title").StringValue())
	})

	mt.Run("featuring keeps the target out of the unfeature filter", func(mt *mtest.T) {
		repo := &postRepoImpl{col: mt.Coll}
		mt.AddMockResponses(ackWrite(1), ackWrite(1), mtest.CreateSuccessResponse())

		featured := true
		require.NoError(mt, repo.UpdatePost(context.Background(), id, &PostUpdate{Title: "t", Content: "c", IsFeatured: &featured}))

		names := commandNames(mt)
		require.GreaterOrEqual(mt, len(names), 2)
		assert.Equal(mt, []string{"update", "update"}, names[:2])

		events := mt.GetAllStartedEvents()
		assert.Equal(mt, id, events[0].Command.Lookup("updates", "0", "q", "_id", "$ne").ObjectID())
		assert.True(mt, events[1].Command.Lookup("updates", "0", "u", "$set", "is_featured").Boolean())
	})

	mt.Run("missing post", func(mt *mtest.T) {
		repo := &postRepoImpl{col: mt.Coll}
		mt.AddMockResponses(ackWrite(0))

		err := repo.UpdatePost(context.Background(), id, &PostUpdate{Title: "t", Content: "c"})
		assert.ErrorIs(mt, err, mongo.ErrNoDocuments)
	})
}

func TestTranslateWriteErr(t *testing.T) {
	dup := func(msg string) error {
		return mongo.WriteException{WriteErrors: []mongo.WriteError{{Code: 11000, Message: msg}}}
	}

	assert.NoError(t, translateWriteErr(nil))
	assert.ErrorIs(t, translateWriteErr(dup(dupSlugMsg)), ErrSlugTaken)
	assert.ErrorIs(t, translateWriteErr(dup(dupFeaturedMsg)), ErrFeaturedConflict)

	other := dup("E11000 duplicate key error collection: airena.posts index: _id_ dup key")
	assert.Equal(t, other, translateWriteErr(other))

	plain := mongo.ErrNoDocuments
	assert.Equal(t, plain, translateWriteErr(plain))
}

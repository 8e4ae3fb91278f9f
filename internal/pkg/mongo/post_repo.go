package mongo

import (
	"Airena/internal/pkg/consts"
	"context"
	"errors"
	"regexp"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	slugIndexName     = "uniq_slug"
	featuredIndexName = "uniq_featured"
)

var (
	// ErrSlugTaken slug 唯一索引冲突
	ErrSlugTaken = errors.New("slug already taken")
	// ErrFeaturedConflict 精选唯一索引冲突
	ErrFeaturedConflict = errors.New("another post is already featured")
)

type PostRepo interface {
	InsertPost(ctx context.Context, post *PostModel) error
	UpdatePost(ctx context.Context, id primitive.ObjectID, upd *PostUpdate) error
	DeletePost(ctx context.Context, id primitive.ObjectID) (*PostModel, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*PostModel, error)
	GetBySlug(ctx context.Context, slug string) (*PostModel, error)
	SlugsWithPrefix(ctx context.Context, base string) ([]string, error)
	List(ctx context.Context, limit, offset int64) ([]*PostModel, error)
	GetFeatured(ctx context.Context) (*PostModel, error)
	CountFeatured(ctx context.Context) (int64, error)
}

type postRepoImpl struct {
	col *mongo.Collection
}

func NewPostRepo(db *mongo.Database) PostRepo {
	return &postRepoImpl{
		col: db.Collection(consts.PostCollection),
	}
}

// InsertPost 插入文章，精选文章在同一事务内先取消其他精选
func (s *postRepoImpl) InsertPost(ctx context.Context, post *PostModel) error {
	if post.ID.IsZero() {
		post.ID = primitive.NewObjectID()
	}
	if !post.IsFeatured {
		_, err := s.col.InsertOne(ctx, post)
		return translateWriteErr(err)
	}

	return s.withTransaction(ctx, func(sc mongo.SessionContext) error {
		if err := s.unfeatureOthers(sc, primitive.NilObjectID, post.UpdatedAt); err != nil {
			return err
		}
		_, err := s.col.InsertOne(sc, post)
		return err
	})
}

// UpdatePost 更新文章，slug 保持不变
func (s *postRepoImpl) UpdatePost(ctx context.Context, id primitive.ObjectID, upd *PostUpdate) error {
	now := time.Now()
	set := bson.M{
		"title":      upd.Title,
		"content":    upd.Content,
		"updated_at": now,
	}
	// 未携带精选标记时保持原值
	featured := upd.IsFeatured != nil && *upd.IsFeatured
	if upd.IsFeatured != nil {
		set["is_featured"] = *upd.IsFeatured
	}
	if upd.ImageURL != nil && upd.ImageKey != nil {
		set["image_url"] = *upd.ImageURL
		set["image_key"] = *upd.ImageKey
	}
	update := bson.M{"$set": set}

	apply := func(ctx context.Context) error {
		res, err := s.col.UpdateOne(ctx, bson.M{"_id": id}, update)
		if err != nil {
			return err
		}
		if res.MatchedCount == 0 {
			return mongo.ErrNoDocuments
		}
		return nil
	}

	if !featured {
		return translateWriteErr(apply(ctx))
	}
	return s.withTransaction(ctx, func(sc mongo.SessionContext) error {
		if err := s.unfeatureOthers(sc, id, now); err != nil {
			return err
		}
		return apply(sc)
	})
}

// DeletePost 删除文章并返回被删除的文档
func (s *postRepoImpl) DeletePost(ctx context.Context, id primitive.ObjectID) (*PostModel, error) {
	var post PostModel
	if err := s.col.FindOneAndDelete(ctx, bson.M{"_id": id}).Decode(&post); err != nil {
		return nil, err
	}
	return &post, nil
}

func (s *postRepoImpl) GetByID(ctx context.Context, id primitive.ObjectID) (*PostModel, error) {
	var post PostModel
	if err := s.col.FindOne(ctx, bson.M{"_id": id}).Decode(&post); err != nil {
		return nil, err
	}
	return &post, nil
}

func (s *postRepoImpl) GetBySlug(ctx context.Context, slug string) (*PostModel, error) {
	var post PostModel
	if err := s.col.FindOne(ctx, bson.M{"slug": slug}).Decode(&post); err != nil {
		return nil, err
	}
	return &post, nil
}

// SlugsWithPrefix 查询 base 及 base-N 形式的已占用 slug
func (s *postRepoImpl) SlugsWithPrefix(ctx context.Context, base string) ([]string, error) {
	pattern := "^" + regexp.QuoteMeta(base) + "(-[0-9]+)?$"
	filter := bson.M{"slug": bson.M{"$regex": pattern}}
	opts := options.Find().SetProjection(bson.M{"slug": 1})

	cursor, err := s.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = cursor.Close(ctx)
	}()

	var rows []struct {
		Slug string `bson:"slug"`
	}
	if err = cursor.All(ctx, &rows); err != nil {
		return nil, err
	}
	slugs := make([]string, 0, len(rows))
	for _, r := range rows {
		slugs = append(slugs, r.Slug)
	}
	return slugs, nil
}

// List 按创建时间倒序分页
func (s *postRepoImpl) List(ctx context.Context, limit, offset int64) ([]*PostModel, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetLimit(limit).
		SetSkip(offset)

	cursor, err := s.col.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = cursor.Close(ctx)
	}()

	list := make([]*PostModel, 0)
	if err = cursor.All(ctx, &list); err != nil {
		return nil, err
	}
	return list, nil
}

func (s *postRepoImpl) GetFeatured(ctx context.Context) (*PostModel, error) {
	var post PostModel
	if err := s.col.FindOne(ctx, bson.M{"is_featured": true}).Decode(&post); err != nil {
		return nil, err
	}
	return &post, nil
}

func (s *postRepoImpl) CountFeatured(ctx context.Context) (int64, error) {
	return s.col.CountDocuments(ctx, bson.M{"is_featured": true})
}

// unfeatureOthers 取消除 keep 之外所有文章的精选标记
func (s *postRepoImpl) unfeatureOthers(ctx context.Context, keep primitive.ObjectID, now time.Time) error {
	filter := bson.M{"is_featured": true}
	if !keep.IsZero() {
		filter["_id"] = bson.M{"$ne": keep}
	}
	if now.IsZero() {
		now = time.Now()
	}
	_, err := s.col.UpdateMany(ctx, filter, bson.M{"$set": bson.M{"is_featured": false, "updated_at": now}})
	return err
}

func (s *postRepoImpl) withTransaction(ctx context.Context, fn func(sc mongo.SessionContext) error) error {
	session, err := s.col.Database().Client().StartSession()
	if err != nil {
		return err
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		return nil, fn(sc)
	})
	return translateWriteErr(err)
}

// translateWriteErr 将唯一索引冲突转换为语义化错误
func translateWriteErr(err error) error {
	if err == nil || !mongo.IsDuplicateKeyError(err) {
		return err
	}
	msg := err.Error()
	switch {
	case strings.Contains(msg, slugIndexName):
		return ErrSlugTaken
	case strings.Contains(msg, featuredIndexName):
		return ErrFeaturedConflict
	}
	return err
}

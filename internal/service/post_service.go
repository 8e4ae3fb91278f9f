package service

import (
	"Airena/internal/api/dto"
	"Airena/internal/model"
	"Airena/internal/pkg/consts"
	"Airena/internal/pkg/es"
	"Airena/internal/pkg/kafka"
	"Airena/internal/pkg/mongo"
	"Airena/internal/pkg/security"
	"Airena/internal/pkg/util"
	"bytes"
	"context"
	"errors"
	log "log/slog"
	"strings"
	"time"

	"github.com/jinzhu/copier"
	"go.mongodb.org/mongo-driver/bson/primitive"
	mongoDB "go.mongodb.org/mongo-driver/mongo"
)

const (
	featuredLockTTL = 15 * time.Second
	slugMaxAttempts = 5
	excerptLength   = 200
)

type PostService interface {
	CreatePost(ctx context.Context, principal *security.Principal, form *dto.PostFormDTO, image *dto.UploadFile) (*dto.PostCreatedDTO, error)
	UpdatePost(ctx context.Context, principal *security.Principal, id string, form *dto.PostFormDTO, image *dto.UploadFile) (*dto.PostDTO, error)
	DeletePost(ctx context.Context, principal *security.Principal, id string) error
	GetPost(ctx context.Context, id string) (*dto.PostDTO, error)
	GetPostBySlug(ctx context.Context, slug string) (*dto.PostDTO, error)
	ListPosts(ctx context.Context, page, pageSize int) ([]*dto.PostDTO, error)
	GetFeaturedPost(ctx context.Context) (*dto.PostDTO, error)
	SearchPosts(ctx context.Context, keyword string, page, pageSize int) (*dto.PostSearchDTO, error)
	CountFeatured(ctx context.Context) (int64, error)
}

type PostServiceImpl struct {
	postRepo      mongo.PostRepo
	searchRepo    es.PostRepo
	store         ObjectStore
	locker        Locker
	events        EventPublisher
	maxImageSize  int64
	maxImageWidth int
	timeout       time.Duration
}

func NewPostService(
	postRepo mongo.PostRepo,
	searchRepo es.PostRepo,
	store ObjectStore,
	locker Locker,
	events EventPublisher,
	maxImageSize int64,
	maxImageWidth int,
	timeout time.Duration,
) PostService {
	return &PostServiceImpl{
		postRepo:      postRepo,
		searchRepo:    searchRepo,
		store:         store,
		locker:        locker,
		events:        events,
		maxImageSize:  maxImageSize,
		maxImageWidth: maxImageWidth,
		timeout:       timeout,
	}
}

// CreatePost 发布文章，精选文章的切换在锁内以单个事务完成
func (s *PostServiceImpl) CreatePost(ctx context.Context, principal *security.Principal, form *dto.PostFormDTO, image *dto.UploadFile) (*dto.PostCreatedDTO, error) {
	if err := requireRole(principal, model.RoleAdmin); err != nil {
		return nil, err
	}
	title, content, err := cleanPostForm(form)
	if err != nil {
		return nil, err
	}
	if image == nil || image.Reader == nil {
		return nil, ErrPostFieldsRequired
	}

	key, imageURL, err := s.uploadImage(ctx, image)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	post := &mongo.PostModel{
		Title:      title,
		Content:    content,
		ImageURL:   imageURL,
		ImageKey:   key,
		AuthorID:   principal.SubjectID,
		AuthorName: principal.Name,
		IsFeatured: form.Featured(),
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	err = s.withFeaturedLock(ctx, post.IsFeatured, func() error {
		return s.insertWithSlug(ctx, post)
	})
	if err != nil {
		s.removeObject(ctx, key)
		return nil, err
	}

	s.publish(ctx, kafka.PostUpserted, post.ID.Hex())
	return &dto.PostCreatedDTO{ID: post.ID.Hex(), Slug: post.Slug}, nil
}

func (s *PostServiceImpl) UpdatePost(ctx context.Context, principal *security.Principal, id string, form *dto.PostFormDTO, image *dto.UploadFile) (*dto.PostDTO, error) {
	if err := requireRole(principal, model.RoleAdmin); err != nil {
		return nil, err
	}
	title, content, err := cleanPostForm(form)
	if err != nil {
		return nil, err
	}
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrPostNotFound
	}
	existing, err := s.getByID(ctx, oid)
	if err != nil {
		return nil, err
	}

	upd := &mongo.PostUpdate{Title: title, Content: content, IsFeatured: form.IsFeatured}
	var newKey string
	if image != nil && image.Reader != nil {
		key, imageURL, err := s.uploadImage(ctx, image)
		if err != nil {
			return nil, err
		}
		newKey = key
		upd.ImageKey = &key
		upd.ImageURL = &imageURL
	}

	err = s.withFeaturedLock(ctx, form.Featured(), func() error {
		_, err := util.WithTimeout(ctx, s.timeout, func(ctx context.Context) (struct{}, error) {
			return struct{}{}, s.postRepo.UpdatePost(ctx, oid, upd)
		})
		return err
	})
	if err != nil {
		if newKey != "" {
			s.removeObject(ctx, newKey)
		}
		if errors.Is(err, mongoDB.ErrNoDocuments) {
			return nil, ErrPostNotFound
		}
		return nil, err
	}

	if newKey != "" && existing.ImageKey != "" {
		s.removeObject(ctx, existing.ImageKey)
	}
	s.publish(ctx, kafka.PostUpserted, id)

	updated, err := s.getByID(ctx, oid)
	if err != nil {
		return nil, err
	}
	return toPostDTO(updated), nil
}

func (s *PostServiceImpl) DeletePost(ctx context.Context, principal *security.Principal, id string) error {
	if err := requireRole(principal, model.RoleAdmin); err != nil {
		return err
	}
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return ErrPostNotFound
	}

	deleted, err := util.WithTimeout(ctx, s.timeout, func(ctx context.Context) (*mongo.PostModel, error) {
		return s.postRepo.DeletePost(ctx, oid)
	})
	if err != nil {
		if errors.Is(err, mongoDB.ErrNoDocuments) {
			return ErrPostNotFound
		}
		return err
	}

	if deleted.ImageKey != "" {
		s.removeObject(ctx, deleted.ImageKey)
	}
	s.publish(ctx, kafka.PostDeleted, id)
	return nil
}

func (s *PostServiceImpl) GetPost(ctx context.Context, id string) (*dto.PostDTO, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrPostNotFound
	}
	post, err := s.getByID(ctx, oid)
	if err != nil {
		return nil, err
	}
	return toPostDTO(post), nil
}

func (s *PostServiceImpl) GetPostBySlug(ctx context.Context, slug string) (*dto.PostDTO, error) {
	post, err := util.RetryRead(ctx, s.timeout, func(ctx context.Context) (*mongo.PostModel, error) {
		return s.postRepo.GetBySlug(ctx, slug)
	})
	if err != nil {
		if errors.Is(err, mongoDB.ErrNoDocuments) {
			return nil, ErrPostNotFound
		}
		return nil, err
	}
	return toPostDTO(post), nil
}

// ListPosts 按发布时间倒序分页
func (s *PostServiceImpl) ListPosts(ctx context.Context, page, pageSize int) ([]*dto.PostDTO, error) {
	limit, offset := util.Pagination(page, pageSize, consts.DefaultPageSize, consts.MaxPageSize)
	list, err := util.RetryRead(ctx, s.timeout, func(ctx context.Context) ([]*mongo.PostModel, error) {
		return s.postRepo.List(ctx, limit, offset)
	})
	if err != nil {
		return nil, err
	}
	res := make([]*dto.PostDTO, 0, len(list))
	for _, p := range list {
		res = append(res, toPostDTO(p))
	}
	return res, nil
}

func (s *PostServiceImpl) GetFeaturedPost(ctx context.Context) (*dto.PostDTO, error) {
	post, err := util.RetryRead(ctx, s.timeout, func(ctx context.Context) (*mongo.PostModel, error) {
		return s.postRepo.GetFeatured(ctx)
	})
	if err != nil {
		if errors.Is(err, mongoDB.ErrNoDocuments) {
			return nil, ErrNoFeaturedPost
		}
		return nil, err
	}
	return toPostDTO(post), nil
}

func (s *PostServiceImpl) SearchPosts(ctx context.Context, keyword string, page, pageSize int) (*dto.PostSearchDTO, error) {
	keyword = strings.TrimSpace(keyword)
	if keyword == "" {
		return nil, ErrSearchKeywordRequired
	}
	limit, offset := util.Pagination(page, pageSize, consts.DefaultPageSize, consts.MaxPageSize)

	result, err := util.RetryRead(ctx, s.timeout, func(ctx context.Context) (*es.SearchResult, error) {
		return s.searchRepo.Search(ctx, keyword, int(offset), int(limit))
	})
	if err != nil {
		return nil, err
	}

	res := &dto.PostSearchDTO{Total: result.Total, Posts: make([]*dto.PostSearchItemDTO, 0, len(result.Posts))}
	for _, p := range result.Posts {
		item := &dto.PostSearchItemDTO{}
		_ = copier.Copy(item, p)
		item.Excerpt = excerpt(p.PlainContent, excerptLength)
		item.CreatedAt = p.CreatedAt.UTC().Format(time.RFC3339)
		res.Posts = append(res.Posts, item)
	}
	return res, nil
}

func (s *PostServiceImpl) CountFeatured(ctx context.Context) (int64, error) {
	return util.RetryRead(ctx, s.timeout, func(ctx context.Context) (int64, error) {
		return s.postRepo.CountFeatured(ctx)
	})
}

// insertWithSlug 选择最小可用 slug 插入，并发冲突时重新计算
func (s *PostServiceImpl) insertWithSlug(ctx context.Context, post *mongo.PostModel) error {
	base := util.MakeSlug(post.Title)
	for attempt := 0; attempt < slugMaxAttempts; attempt++ {
		taken, err := util.RetryRead(ctx, s.timeout, func(ctx context.Context) ([]string, error) {
			return s.postRepo.SlugsWithPrefix(ctx, base)
		})
		if err != nil {
			return err
		}
		post.Slug = util.NextFreeSlug(base, taken)

		_, err = util.WithTimeout(ctx, s.timeout, func(ctx context.Context) (struct{}, error) {
			return struct{}{}, s.postRepo.InsertPost(ctx, post)
		})
		if errors.Is(err, mongo.ErrSlugTaken) {
			log.InfoContext(ctx, "slug taken concurrently, retrying", "slug", post.Slug)
			continue
		}
		return err
	}
	return UnExpectedError
}

// withFeaturedLock 涉及精选标记的写入串行执行
func (s *PostServiceImpl) withFeaturedLock(ctx context.Context, featured bool, fn func() error) error {
	if !featured {
		return fn()
	}
	unlock, err := s.locker.Acquire(ctx, consts.FeaturedPostLock, featuredLockTTL)
	if err != nil {
		log.WarnContext(ctx, "featured lock not acquired", "err", err)
		return ErrFeaturedBusy
	}
	defer unlock()

	err = fn()
	if errors.Is(err, mongo.ErrFeaturedConflict) {
		return ErrFeaturedBusy
	}
	return err
}

func (s *PostServiceImpl) uploadImage(ctx context.Context, image *dto.UploadFile) (string, string, error) {
	if s.maxImageSize > 0 && image.Size > s.maxImageSize {
		return "", "", ErrFileTooLarge
	}
	img, err := normalizeUpload(image, s.maxImageWidth)
	if err != nil {
		return "", "", err
	}

	key := util.ObjectName(consts.BlogImagePrefix, image.Name, time.Now())
	_, err = util.WithTimeout(ctx, s.timeout, func(ctx context.Context) (string, error) {
		return s.store.Put(ctx, key, bytes.NewReader(img.Data), int64(len(img.Data)), img.ContentType)
	})
	if err != nil {
		return "", "", err
	}
	return key, s.store.PublicURL(key), nil
}

func (s *PostServiceImpl) getByID(ctx context.Context, id primitive.ObjectID) (*mongo.PostModel, error) {
	post, err := util.RetryRead(ctx, s.timeout, func(ctx context.Context) (*mongo.PostModel, error) {
		return s.postRepo.GetByID(ctx, id)
	})
	if err != nil {
		if errors.Is(err, mongoDB.ErrNoDocuments) {
			return nil, ErrPostNotFound
		}
		return nil, err
	}
	return post, nil
}

// removeObject 尽力删除对象，失败仅记录日志
func (s *PostServiceImpl) removeObject(ctx context.Context, key string) {
	_, err := util.WithTimeout(context.WithoutCancel(ctx), s.timeout, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, s.store.Delete(ctx, key)
	})
	if err != nil {
		log.WarnContext(ctx, "failed to remove object", "key", key, "err", err)
	}
}

func (s *PostServiceImpl) publish(ctx context.Context, eventType, postID string) {
	err := s.events.PublishPostEvent(ctx, kafka.PostEvent{Type: eventType, PostID: postID, OccurredAt: time.Now()})
	if err != nil {
		log.ErrorContext(ctx, "failed to publish post event", "post_id", postID, "type", eventType, "err", err)
	}
}

func cleanPostForm(form *dto.PostFormDTO) (string, string, error) {
	if form == nil {
		return "", "", ErrPostFieldsRequired
	}
	title := strings.TrimSpace(form.Title)
	content := util.SanitizeHTML(form.Content)
	if title == "" || content == "" {
		return "", "", ErrPostFieldsRequired
	}
	return title, content, nil
}

func toPostDTO(post *mongo.PostModel) *dto.PostDTO {
	res := &dto.PostDTO{}
	_ = copier.Copy(res, post)
	res.ID = post.ID.Hex()
	res.CreatedAt = post.CreatedAt.UTC().Format(time.RFC3339)
	res.UpdatedAt = post.UpdatedAt.UTC().Format(time.RFC3339)
	return res
}

func excerpt(text string, limit int) string {
	runes := []rune(text)
	if len(runes) <= limit {
		return text
	}
	return string(runes[:limit]) + "…"
}

// requireRole 未登录返回 401，缺少角色返回 403
func requireRole(principal *security.Principal, roles ...string) error {
	if principal == nil || principal.SubjectID == "" {
		return ErrUnauthenticated
	}
	if !principal.HasAny(roles...) {
		return ErrForbidden
	}
	return nil
}

package service

import (
	"Airena/internal/api/dto"
	"Airena/internal/model"
	"Airena/internal/pkg/consts"
	"Airena/internal/pkg/mongo"
	"Airena/internal/pkg/security"
	"Airena/internal/pkg/util"
	"context"
	"errors"
	log "log/slog"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	mongoDB "go.mongodb.org/mongo-driver/mongo"
)

var videoCategories = map[string]struct{}{
	mongo.VideoCategoryGames:  {},
	mongo.VideoCategorySports: {},
}

type VideoService interface {
	UploadVideo(ctx context.Context, principal *security.Principal, form *dto.VideoFormDTO, file *dto.UploadFile) (*dto.VideoDTO, error)
	GetUserVideos(ctx context.Context, principal *security.Principal, userID string) ([]*dto.VideoDTO, error)
	ListVideos(ctx context.Context, category string, page, pageSize int) ([]*dto.VideoDTO, error)
	GetVideo(ctx context.Context, id string) (*dto.VideoDTO, error)
	RecordView(ctx context.Context, id string) error
}

// VideoURLPolicy 视频链接策略
type VideoURLPolicy struct {
	UsePublicLink bool
	SignedExpiry  time.Duration
}

type VideoServiceImpl struct {
	videoRepo    mongo.VideoRepo
	identity     IdentityService
	store        ObjectStore
	events       EventPublisher
	urlPolicy    VideoURLPolicy
	maxVideoSize int64
	timeout      time.Duration
}

func NewVideoService(
	videoRepo mongo.VideoRepo,
	identity IdentityService,
	store ObjectStore,
	events EventPublisher,
	urlPolicy VideoURLPolicy,
	maxVideoSize int64,
	timeout time.Duration,
) VideoService {
	return &VideoServiceImpl{
		videoRepo:    videoRepo,
		identity:     identity,
		store:        store,
		events:       events,
		urlPolicy:    urlPolicy,
		maxVideoSize: maxVideoSize,
		timeout:      timeout,
	}
}

// UploadVideo 管理员或创作者上传视频
func (s *VideoServiceImpl) UploadVideo(ctx context.Context, principal *security.Principal, form *dto.VideoFormDTO, file *dto.UploadFile) (*dto.VideoDTO, error) {
	if err := requireRole(principal, model.RoleAdmin, model.RoleCreator); err != nil {
		return nil, err
	}
	if form == nil || file == nil || file.Reader == nil {
		return nil, ErrVideoFieldsRequired
	}
	title := strings.TrimSpace(form.Title)
	description := strings.TrimSpace(form.Description)
	category := strings.TrimSpace(form.Category)
	if title == "" || description == "" || category == "" {
		return nil, ErrVideoFieldsRequired
	}
	if _, ok := videoCategories[category]; !ok {
		return nil, ErrInvalidCategory
	}
	if s.maxVideoSize > 0 && file.Size > s.maxVideoSize {
		return nil, ErrFileTooLarge
	}

	contentType, err := util.GetSafeContentType(file.Reader)
	if err != nil {
		return nil, err
	}
	if !strings.HasPrefix(contentType, consts.MimePrefixVideo) {
		return nil, ErrFileNotSupported
	}

	now := time.Now()
	key := util.ObjectName(consts.VideoPrefix+principal.SubjectID+"/", file.Name, now)
	_, err = util.WithTimeout(ctx, s.timeout, func(ctx context.Context) (string, error) {
		return s.store.Put(ctx, key, file.Reader, file.Size, contentType)
	})
	if err != nil {
		return nil, err
	}

	videoURL, err := s.resolveURL(ctx, key)
	if err != nil {
		return nil, err
	}

	authorName, authorPhoto := s.authorProfile(ctx, principal)
	video := &mongo.VideoModel{
		Title:          title,
		Description:    description,
		Category:       category,
		VideoURL:       videoURL,
		VideoKey:       key,
		ContentType:    contentType,
		AuthorID:       principal.SubjectID,
		AuthorName:     authorName,
		AuthorPhotoURL: authorPhoto,
		Views:          0,
		CreatedAt:      now,
	}
	_, err = util.WithTimeout(ctx, s.timeout, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, s.videoRepo.InsertVideo(ctx, video)
	})
	if err != nil {
		log.ErrorContext(ctx, "video stored but metadata insert failed", "key", key, "err", err)
		return nil, err
	}

	return toVideoDTO(video, videoURL), nil
}

// GetUserVideos 仅允许查询自己的视频
func (s *VideoServiceImpl) GetUserVideos(ctx context.Context, principal *security.Principal, userID string) ([]*dto.VideoDTO, error) {
	if principal == nil || principal.SubjectID == "" {
		return nil, ErrUnauthenticated
	}
	if principal.SubjectID != userID {
		return nil, ErrForbidden
	}

	list, err := util.RetryRead(ctx, s.timeout, func(ctx context.Context) ([]*mongo.VideoModel, error) {
		return s.videoRepo.ListByAuthor(ctx, userID)
	})
	if err != nil {
		return nil, err
	}
	return s.toVideoDTOs(ctx, list), nil
}

func (s *VideoServiceImpl) ListVideos(ctx context.Context, category string, page, pageSize int) ([]*dto.VideoDTO, error) {
	if category != "" {
		if _, ok := videoCategories[category]; !ok {
			return nil, ErrInvalidCategory
		}
	}
	limit, offset := util.Pagination(page, pageSize, consts.DefaultPageSize, consts.MaxPageSize)
	list, err := util.RetryRead(ctx, s.timeout, func(ctx context.Context) ([]*mongo.VideoModel, error) {
		return s.videoRepo.List(ctx, category, limit, offset)
	})
	if err != nil {
		return nil, err
	}
	return s.toVideoDTOs(ctx, list), nil
}

func (s *VideoServiceImpl) GetVideo(ctx context.Context, id string) (*dto.VideoDTO, error) {
	video, err := s.getByID(ctx, id)
	if err != nil {
		return nil, err
	}
	videoURL, err := s.currentURL(ctx, video)
	if err != nil {
		return nil, err
	}
	return toVideoDTO(video, videoURL), nil
}

// RecordView 记录一次播放，计数由消费者异步累加
func (s *VideoServiceImpl) RecordView(ctx context.Context, id string) error {
	if _, err := s.getByID(ctx, id); err != nil {
		return err
	}
	if err := s.events.PublishVideoView(ctx, id); err != nil {
		log.ErrorContext(ctx, "failed to publish view event", "video_id", id, "err", err)
	}
	return nil
}

func (s *VideoServiceImpl) getByID(ctx context.Context, id string) (*mongo.VideoModel, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrVideoNotFound
	}
	video, err := util.RetryRead(ctx, s.timeout, func(ctx context.Context) (*mongo.VideoModel, error) {
		return s.videoRepo.GetByID(ctx, oid)
	})
	if err != nil {
		if errors.Is(err, mongoDB.ErrNoDocuments) {
			return nil, ErrVideoNotFound
		}
		return nil, err
	}
	return video, nil
}

// resolveURL 按配置生成公开链接或签名链接
func (s *VideoServiceImpl) resolveURL(ctx context.Context, key string) (string, error) {
	if s.urlPolicy.UsePublicLink {
		return s.store.PublicURL(key), nil
	}
	return util.RetryRead(ctx, s.timeout, func(ctx context.Context) (string, error) {
		return s.store.SignedURL(ctx, key, s.urlPolicy.SignedExpiry)
	})
}

// currentURL 签名链接有有效期，读取时重新签名
func (s *VideoServiceImpl) currentURL(ctx context.Context, video *mongo.VideoModel) (string, error) {
	if s.urlPolicy.UsePublicLink || video.VideoKey == "" {
		return video.VideoURL, nil
	}
	return s.resolveURL(ctx, video.VideoKey)
}

func (s *VideoServiceImpl) toVideoDTOs(ctx context.Context, list []*mongo.VideoModel) []*dto.VideoDTO {
	res := make([]*dto.VideoDTO, 0, len(list))
	for _, v := range list {
		videoURL, err := s.currentURL(ctx, v)
		if err != nil {
			log.WarnContext(ctx, "failed to sign video url", "video_id", v.ID.Hex(), "err", err)
			videoURL = v.VideoURL
		}
		res = append(res, toVideoDTO(v, videoURL))
	}
	return res
}

// authorProfile 优先使用身份服务中的最新资料
func (s *VideoServiceImpl) authorProfile(ctx context.Context, principal *security.Principal) (string, *string) {
	user, err := s.identity.GetUser(ctx, principal.SubjectID)
	if err != nil {
		log.WarnContext(ctx, "author profile unavailable, using token claims", "err", err)
		return principal.Name, util.PtrStr(principal.Picture)
	}
	return user.DisplayName, user.PhotoURL
}

func toVideoDTO(video *mongo.VideoModel, videoURL string) *dto.VideoDTO {
	return &dto.VideoDTO{
		ID:             video.ID.Hex(),
		Title:          video.Title,
		Description:    video.Description,
		Category:       video.Category,
		VideoURL:       videoURL,
		AuthorID:       video.AuthorID,
		AuthorName:     video.AuthorName,
		AuthorPhotoURL: video.AuthorPhotoURL,
		Views:          video.Views,
		CreatedAt:      video.CreatedAt.UTC().Format(time.RFC3339),
	}
}

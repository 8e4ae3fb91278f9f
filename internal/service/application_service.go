package service

import (
	"Airena/internal/api/dto"
	"Airena/internal/model"
	"Airena/internal/pkg/mongo"
	"Airena/internal/pkg/security"
	"Airena/internal/pkg/util"
	"context"
	"errors"
	log "log/slog"
	"strings"
	"time"

	"github.com/jinzhu/copier"
	mongoDB "go.mongodb.org/mongo-driver/mongo"
)

type ApplicationService interface {
	SubmitApplication(ctx context.Context, principal *security.Principal, form *dto.ApplicationSubmitDTO) (*dto.ApplicationDTO, error)
	ListApplications(ctx context.Context, principal *security.Principal, status string) ([]*dto.ApplicationDTO, error)
	DecideApplication(ctx context.Context, principal *security.Principal, userID, status string) (*dto.ApplicationDTO, error)
	FindIncompletePromotions(ctx context.Context) ([]*IncompletePromotion, error)
}

// IncompletePromotion 晋升流程中断后留下的不一致状态
type IncompletePromotion struct {
	UserID string
	Reason string
}

const (
	ReasonCreatorWithoutChannel  = "creator claim granted but channel missing"
	ReasonApprovedWithoutChannel = "application approved but channel missing"
)

type ApplicationServiceImpl struct {
	appRepo     mongo.ApplicationRepo
	channelRepo mongo.ChannelRepo
	identity    IdentityService
	timeout     time.Duration
}

func NewApplicationService(
	appRepo mongo.ApplicationRepo,
	channelRepo mongo.ChannelRepo,
	identity IdentityService,
	timeout time.Duration,
) ApplicationService {
	return &ApplicationServiceImpl{
		appRepo:     appRepo,
		channelRepo: channelRepo,
		identity:    identity,
		timeout:     timeout,
	}
}

// SubmitApplication 提交或重新提交创作者申请
func (s *ApplicationServiceImpl) SubmitApplication(ctx context.Context, principal *security.Principal, form *dto.ApplicationSubmitDTO) (*dto.ApplicationDTO, error) {
	if principal == nil || principal.SubjectID == "" {
		return nil, ErrUnauthenticated
	}
	if form == nil {
		form = &dto.ApplicationSubmitDTO{}
	}

	user, err := s.identity.GetUser(ctx, principal.SubjectID)
	if err != nil {
		return nil, err
	}
	if user.Claims.Has(model.RoleCreator) {
		return nil, ErrAlreadyCreator
	}

	app := &mongo.ApplicationModel{
		UserID:      principal.SubjectID,
		ChannelName: trimmed(form.ChannelName),
		YoutubeLink: trimmed(form.YoutubeLink),
		TwitterLink: trimmed(form.TwitterLink),
	}
	_, err = util.WithTimeout(ctx, s.timeout, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, s.appRepo.UpsertPending(ctx, app)
	})
	if err != nil {
		return nil, err
	}

	saved, err := s.getApplication(ctx, principal.SubjectID)
	if err != nil {
		return nil, err
	}
	return toApplicationDTO(saved), nil
}

func (s *ApplicationServiceImpl) ListApplications(ctx context.Context, principal *security.Principal, status string) ([]*dto.ApplicationDTO, error) {
	if err := requireRole(principal, model.RoleSuperAdmin); err != nil {
		return nil, err
	}
	if status != "" && !validStatus(status, true) {
		return nil, ErrInvalidStatus
	}

	list, err := util.RetryRead(ctx, s.timeout, func(ctx context.Context) ([]*mongo.ApplicationModel, error) {
		return s.appRepo.List(ctx, status)
	})
	if err != nil {
		return nil, err
	}
	res := make([]*dto.ApplicationDTO, 0, len(list))
	for _, a := range list {
		res = append(res, toApplicationDTO(a))
	}
	return res, nil
}

// DecideApplication 审批申请；通过时先合并 creator 角色并创建频道，最后更新状态
func (s *ApplicationServiceImpl) DecideApplication(ctx context.Context, principal *security.Principal, userID, status string) (*dto.ApplicationDTO, error) {
	if err := requireRole(principal, model.RoleSuperAdmin); err != nil {
		return nil, err
	}
	if !validStatus(status, false) {
		return nil, ErrInvalidStatus
	}

	app, err := s.getApplication(ctx, userID)
	if err != nil {
		return nil, err
	}

	if status == mongo.ApplicationApproved {
		if err = s.promote(ctx, app); err != nil {
			return nil, err
		}
	}

	_, err = util.WithTimeout(ctx, s.timeout, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, s.appRepo.UpdateStatus(ctx, userID, status)
	})
	if err != nil {
		if errors.Is(err, mongoDB.ErrNoDocuments) {
			return nil, ErrApplicationNotFound
		}
		if status == mongo.ApplicationApproved {
			log.WarnContext(ctx, "creator promoted but application status not updated", "user_id", userID, "err", err)
		}
		return nil, err
	}

	app.Status = status
	app.UpdatedAt = time.Now()
	return toApplicationDTO(app), nil
}

// promote 合并 creator 角色后创建频道，频道只会创建一次
func (s *ApplicationServiceImpl) promote(ctx context.Context, app *mongo.ApplicationModel) error {
	user, err := s.identity.GetUser(ctx, app.UserID)
	if err != nil {
		return err
	}

	if err = s.identity.SetClaims(ctx, app.UserID, user.Claims.With(model.RoleCreator)); err != nil {
		return err
	}

	channel := &mongo.ChannelModel{
		ID:          app.UserID,
		ChannelName: channelName(app, user),
		PhotoURL:    user.PhotoURL,
		YoutubeLink: app.YoutubeLink,
		TwitterLink: app.TwitterLink,
		Subscribers: 0,
		CreatedAt:   time.Now(),
	}
	created, err := util.WithTimeout(ctx, s.timeout, func(ctx context.Context) (bool, error) {
		return s.channelRepo.CreateOnce(ctx, channel)
	})
	if err != nil {
		log.WarnContext(ctx, "creator claim granted but channel creation failed", "user_id", app.UserID, "err", err)
		return err
	}
	if !created {
		log.InfoContext(ctx, "channel already exists, keeping it", "user_id", app.UserID)
	}
	return nil
}

// FindIncompletePromotions 找出拥有 creator 角色或已通过审核但没有频道的用户
func (s *ApplicationServiceImpl) FindIncompletePromotions(ctx context.Context) ([]*IncompletePromotion, error) {
	creators, err := s.identity.SubjectsWithClaim(ctx, model.RoleCreator)
	if err != nil {
		return nil, err
	}
	approved, err := util.RetryRead(ctx, s.timeout, func(ctx context.Context) ([]string, error) {
		return s.appRepo.ListUserIDsByStatus(ctx, mongo.ApplicationApproved)
	})
	if err != nil {
		return nil, err
	}

	candidates := make([]string, 0, len(creators)+len(approved))
	candidates = append(candidates, creators...)
	candidates = append(candidates, approved...)
	existing, err := util.RetryRead(ctx, s.timeout, func(ctx context.Context) (map[string]struct{}, error) {
		return s.channelRepo.ExistingIDs(ctx, candidates)
	})
	if err != nil {
		return nil, err
	}

	res := make([]*IncompletePromotion, 0)
	seen := make(map[string]struct{})
	collect := func(ids []string, reason string) {
		for _, id := range ids {
			if _, ok := existing[id]; ok {
				continue
			}
			if _, ok := seen[id]; ok {
				continue
			}
			seen[id] = struct{}{}
			res = append(res, &IncompletePromotion{UserID: id, Reason: reason})
		}
	}
	collect(creators, ReasonCreatorWithoutChannel)
	collect(approved, ReasonApprovedWithoutChannel)
	return res, nil
}

func (s *ApplicationServiceImpl) getApplication(ctx context.Context, userID string) (*mongo.ApplicationModel, error) {
	app, err := util.RetryRead(ctx, s.timeout, func(ctx context.Context) (*mongo.ApplicationModel, error) {
		return s.appRepo.GetByUserID(ctx, userID)
	})
	if err != nil {
		if errors.Is(err, mongoDB.ErrNoDocuments) {
			return nil, ErrApplicationNotFound
		}
		return nil, err
	}
	return app, nil
}

// channelName 申请中未填写频道名时回落到昵称或邮箱
func channelName(app *mongo.ApplicationModel, user *IdentityUser) *string {
	if app.ChannelName != nil {
		return app.ChannelName
	}
	if user.DisplayName != "" {
		return util.PtrStr(user.DisplayName)
	}
	return util.PtrStr(user.Email)
}

func validStatus(status string, allowPending bool) bool {
	switch status {
	case mongo.ApplicationApproved, mongo.ApplicationRejected:
		return true
	case mongo.ApplicationPending:
		return allowPending
	}
	return false
}

func trimmed(s *string) *string {
	if s == nil {
		return nil
	}
	return util.PtrStr(strings.TrimSpace(*s))
}

func toApplicationDTO(app *mongo.ApplicationModel) *dto.ApplicationDTO {
	res := &dto.ApplicationDTO{}
	_ = copier.Copy(res, app)
	res.CreatedAt = app.CreatedAt.UTC().Format(time.RFC3339)
	res.UpdatedAt = app.UpdatedAt.UTC().Format(time.RFC3339)
	return res
}

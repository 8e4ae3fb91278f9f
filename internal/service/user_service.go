package service

import (
	"Airena/internal/api/dto"
	"Airena/internal/model"
	"Airena/internal/pkg/consts"
	"Airena/internal/pkg/security"
	"Airena/internal/pkg/util"
	"Airena/internal/repository"
	"bytes"
	"context"
	"errors"
	log "log/slog"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/google/uuid"
	"github.com/jinzhu/copier"
)

const mysqlDuplicateEntry = 1062

type UserService interface {
	Register(ctx context.Context, dto *dto.RegisterDTO) (*dto.UserDTO, error)
	Login(ctx context.Context, dto *dto.CredentialDTO) (*dto.TokenDTO, error)
	Logout(ctx context.Context, token string) error
	RefreshToken(ctx context.Context, principal *security.Principal) (*dto.TokenDTO, error)
	GetUserInfo(ctx context.Context, principal *security.Principal) (*dto.UserDTO, error)
	UploadAvatar(ctx context.Context, principal *security.Principal, file *dto.UploadFile) (*dto.UserDTO, error)
}

type UserServiceImpl struct {
	userRepo      repository.UserRepo
	identity      IdentityService
	store         ObjectStore
	maxImageSize  int64
	maxImageWidth int
	timeout       time.Duration
}

func NewUserService(
	userRepo repository.UserRepo,
	identity IdentityService,
	store ObjectStore,
	maxImageSize int64,
	maxImageWidth int,
	timeout time.Duration,
) UserService {
	return &UserServiceImpl{
		userRepo:      userRepo,
		identity:      identity,
		store:         store,
		maxImageSize:  maxImageSize,
		maxImageWidth: maxImageWidth,
		timeout:       timeout,
	}
}

func (s *UserServiceImpl) Register(ctx context.Context, regDTO *dto.RegisterDTO) (*dto.UserDTO, error) {
	email := strings.ToLower(strings.TrimSpace(regDTO.Email))
	findUser, err := util.RetryRead(ctx, s.timeout, func(ctx context.Context) (*model.User, error) {
		return s.userRepo.GetUserByEmail(ctx, email)
	})
	if err != nil {
		return nil, err
	}
	if findUser != nil {
		return nil, ErrUserExist
	}

	passwordHash, err := security.HashPassword(regDTO.Password)
	if err != nil {
		return nil, err
	}

	user := &model.User{
		ID:          uuid.NewString(),
		Email:       email,
		Password:    passwordHash,
		DisplayName: strings.TrimSpace(regDTO.DisplayName),
	}
	_, err = util.WithTimeout(ctx, s.timeout, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, s.userRepo.CreateUser(ctx, user)
	})
	if err != nil {
		// 并发注册同一邮箱时由唯一索引兜底
		var me *mysql.MySQLError
		if errors.As(err, &me) && me.Number == mysqlDuplicateEntry {
			return nil, ErrUserExist
		}
		return nil, err
	}

	return toUserDTO(&IdentityUser{
		SubjectID:   user.ID,
		DisplayName: user.DisplayName,
		Email:       user.Email,
		Claims:      security.Claims{},
	}), nil
}

func (s *UserServiceImpl) Login(ctx context.Context, credential *dto.CredentialDTO) (*dto.TokenDTO, error) {
	email := strings.ToLower(strings.TrimSpace(credential.Email))
	user, err := util.RetryRead(ctx, s.timeout, func(ctx context.Context) (*model.User, error) {
		return s.userRepo.GetUserByEmail(ctx, email)
	})
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrPasswordIncorrect
	}
	if err = security.CheckPasswordHash(credential.Password, user.Password); err != nil {
		return nil, ErrPasswordIncorrect
	}
	return s.issue(ctx, user.ID)
}

func (s *UserServiceImpl) Logout(ctx context.Context, token string) error {
	return s.identity.Revoke(ctx, token)
}

// RefreshToken 角色变更后重新签发令牌
func (s *UserServiceImpl) RefreshToken(ctx context.Context, principal *security.Principal) (*dto.TokenDTO, error) {
	if principal == nil {
		return nil, ErrUnauthenticated
	}
	return s.issue(ctx, principal.SubjectID)
}

func (s *UserServiceImpl) GetUserInfo(ctx context.Context, principal *security.Principal) (*dto.UserDTO, error) {
	if principal == nil {
		return nil, ErrUnauthenticated
	}
	user, err := s.identity.GetUser(ctx, principal.SubjectID)
	if err != nil {
		return nil, err
	}
	return toUserDTO(user), nil
}

func (s *UserServiceImpl) UploadAvatar(ctx context.Context, principal *security.Principal, file *dto.UploadFile) (*dto.UserDTO, error) {
	if principal == nil {
		return nil, ErrUnauthenticated
	}
	if file == nil || file.Reader == nil {
		return nil, ErrParamInvalid
	}
	if s.maxImageSize > 0 && file.Size > s.maxImageSize {
		return nil, ErrFileTooLarge
	}

	img, err := normalizeUpload(file, s.maxImageWidth)
	if err != nil {
		return nil, err
	}

	key := util.ObjectName(consts.AvatarPrefix+principal.SubjectID+"/", file.Name, time.Now())
	_, err = util.WithTimeout(ctx, s.timeout, func(ctx context.Context) (string, error) {
		return s.store.Put(ctx, key, bytes.NewReader(img.Data), int64(len(img.Data)), img.ContentType)
	})
	if err != nil {
		return nil, err
	}

	photoURL := s.store.PublicURL(key)
	_, err = util.WithTimeout(ctx, s.timeout, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, s.userRepo.UpdateProfile(ctx, principal.SubjectID, nil, &photoURL)
	})
	if err != nil {
		log.WarnContext(ctx, "avatar uploaded but profile not updated", "key", key, "err", err)
		return nil, err
	}

	return s.GetUserInfo(ctx, principal)
}

func (s *UserServiceImpl) issue(ctx context.Context, subjectID string) (*dto.TokenDTO, error) {
	token, err := s.identity.IssueToken(ctx, subjectID)
	if err != nil {
		return nil, err
	}
	return &dto.TokenDTO{Token: token, ExpiresIn: int64(security.JWTExpirationTime.Seconds())}, nil
}

// normalizeUpload 嗅探文件类型，仅接受可解码的图片
func normalizeUpload(file *dto.UploadFile, maxWidth int) (*util.ProcessedImage, error) {
	contentType, err := util.GetSafeContentType(file.Reader)
	if err != nil {
		return nil, err
	}
	if !strings.HasPrefix(contentType, consts.MimePrefixImage) {
		return nil, ErrFileNotSupported
	}
	img, err := util.NormalizeImage(file.Reader, contentType, maxWidth)
	if err != nil {
		if errors.Is(err, util.ErrNotAnImage) {
			return nil, ErrFileNotSupported
		}
		return nil, err
	}
	return img, nil
}

func toUserDTO(user *IdentityUser) *dto.UserDTO {
	res := &dto.UserDTO{}
	_ = copier.Copy(res, user)
	res.ID = user.SubjectID
	res.Claims = map[string]bool(user.Claims)
	if res.Claims == nil {
		res.Claims = map[string]bool{}
	}
	return res
}

package service

import (
	"Airena/internal/model"
	"Airena/internal/pkg/security"
	"Airena/internal/pkg/util"
	"Airena/internal/repository"
	"context"
	log "log/slog"
	"time"
)

// IdentityUser 身份服务中的用户资料
type IdentityUser struct {
	SubjectID   string
	DisplayName string
	Email       string
	PhotoURL    *string
	Claims      security.Claims
}

type IdentityService interface {
	Verify(ctx context.Context, token string) (*security.Principal, error)
	Revoke(ctx context.Context, token string) error
	GetUser(ctx context.Context, subjectID string) (*IdentityUser, error)
	SetClaims(ctx context.Context, subjectID string, claims security.Claims) error
	IssueToken(ctx context.Context, subjectID string) (string, error)
	SubjectsWithClaim(ctx context.Context, claim string) ([]string, error)
}

type IdentityServiceImpl struct {
	userRepo      repository.UserRepo
	roleRepo      repository.RoleRepo
	userRolesRepo repository.UserRolesRepo
	revoker       TokenRevoker
	timeout       time.Duration
}

func NewIdentityService(
	userRepo repository.UserRepo,
	roleRepo repository.RoleRepo,
	userRolesRepo repository.UserRolesRepo,
	revoker TokenRevoker,
	timeout time.Duration,
) IdentityService {
	return &IdentityServiceImpl{
		userRepo:      userRepo,
		roleRepo:      roleRepo,
		userRolesRepo: userRolesRepo,
		revoker:       revoker,
		timeout:       timeout,
	}
}

// Verify 校验令牌，任何无效情况均返回 ErrUnauthenticated
func (s *IdentityServiceImpl) Verify(ctx context.Context, token string) (*security.Principal, error) {
	if token == "" {
		return nil, ErrUnauthenticated
	}
	claims, err := security.ValidateToken(token)
	if err != nil {
		log.DebugContext(ctx, "token rejected", "err", err)
		return nil, ErrUnauthenticated
	}

	signature, err := security.ExtractSignature(token)
	if err != nil {
		return nil, ErrUnauthenticated
	}
	revoked, err := util.RetryRead(ctx, s.timeout, func(ctx context.Context) (bool, error) {
		return s.revoker.IsRevoked(ctx, signature)
	})
	if err != nil {
		return nil, err
	}
	if revoked {
		return nil, ErrUnauthenticated
	}

	return claims.ToPrincipal(), nil
}

// Revoke 将令牌加入黑名单直至其自然过期
func (s *IdentityServiceImpl) Revoke(ctx context.Context, token string) error {
	claims, err := security.ValidateToken(token)
	if err != nil {
		return ErrUnauthenticated
	}
	signature, err := security.ExtractSignature(token)
	if err != nil {
		return ErrUnauthenticated
	}
	_, err = util.WithTimeout(ctx, s.timeout, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, s.revoker.Revoke(ctx, signature, security.RemainingLifetime(claims))
	})
	return err
}

func (s *IdentityServiceImpl) GetUser(ctx context.Context, subjectID string) (*IdentityUser, error) {
	user, err := util.RetryRead(ctx, s.timeout, func(ctx context.Context) (*model.User, error) {
		return s.userRepo.GetUserById(ctx, subjectID)
	})
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	return toIdentityUser(user), nil
}

// SetClaims 整体替换用户的角色集合，调用方负责合并已有角色
func (s *IdentityServiceImpl) SetClaims(ctx context.Context, subjectID string, claims security.Claims) error {
	names := claims.Names()
	roles, err := util.RetryRead(ctx, s.timeout, func(ctx context.Context) ([]*model.Role, error) {
		return s.roleRepo.GetRolesByNames(ctx, names)
	})
	if err != nil {
		return err
	}
	if len(roles) != len(names) {
		return ErrParamInvalid
	}

	roleIds := make([]uint64, 0, len(roles))
	for _, r := range roles {
		roleIds = append(roleIds, r.ID)
	}
	_, err = util.WithTimeout(ctx, s.timeout, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, s.userRolesRepo.ReplaceUserRoles(ctx, subjectID, roleIds)
	})
	return err
}

// IssueToken 按用户当前的角色集合签发令牌
func (s *IdentityServiceImpl) IssueToken(ctx context.Context, subjectID string) (string, error) {
	user, err := s.GetUser(ctx, subjectID)
	if err != nil {
		return "", err
	}
	picture := ""
	if user.PhotoURL != nil {
		picture = *user.PhotoURL
	}
	return security.GenerateToken(security.TokenSubject{
		UserID:  user.SubjectID,
		Name:    user.DisplayName,
		Email:   user.Email,
		Picture: picture,
		Claims:  user.Claims,
	})
}

func (s *IdentityServiceImpl) SubjectsWithClaim(ctx context.Context, claim string) ([]string, error) {
	return util.RetryRead(ctx, s.timeout, func(ctx context.Context) ([]string, error) {
		return s.userRolesRepo.GetUserIdsByRole(ctx, claim)
	})
}

func toIdentityUser(user *model.User) *IdentityUser {
	claims := security.Claims{}
	for _, ur := range user.UserRoles {
		if ur.Role.Name != "" {
			claims[ur.Role.Name] = true
		}
	}
	return &IdentityUser{
		SubjectID:   user.ID,
		DisplayName: user.DisplayName,
		Email:       user.Email,
		PhotoURL:    user.PhotoURL,
		Claims:      claims,
	}
}

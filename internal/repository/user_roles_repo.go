package repository

import (
	"Airena/internal/model"
	"context"

	pkgerrors "github.com/pkg/errors"
	"gorm.io/gorm"
)

type UserRolesRepo interface {
	GetUserRoleNames(ctx context.Context, userId string) ([]string, error)
	ReplaceUserRoles(ctx context.Context, userId string, roleIds []uint64) error
	GetUserIdsByRole(ctx context.Context, roleName string) ([]string, error)
}

type UserRolesRepoImpl struct {
	db *gorm.DB
}

func NewUserRolesRepo(db *gorm.DB) UserRolesRepo {
	return &UserRolesRepoImpl{db: db}
}

func (s *UserRolesRepoImpl) GetUserRoleNames(ctx context.Context, userId string) ([]string, error) {
	names := make([]string, 0)
	err := s.db.WithContext(ctx).
		Table("roles").
		Select("roles.name").
		Joins("JOIN user_roles ON user_roles.role_id = roles.id").
		Where("user_roles.user_id = ?", userId).
		Pluck("roles.name", &names).Error
	if err != nil {
		return nil, pkgerrors.Wrapf(err, "get roles of user %s", userId)
	}
	return names, nil
}

// ReplaceUserRoles 在一个事务内整体替换用户角色
func (s *UserRolesRepoImpl) ReplaceUserRoles(ctx context.Context, userId string, roleIds []uint64) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ?", userId).Delete(&model.UserRole{}).Error; err != nil {
			return err
		}
		if len(roleIds) == 0 {
			return nil
		}
		rows := make([]*model.UserRole, 0, len(roleIds))
		for _, id := range roleIds {
			rows = append(rows, &model.UserRole{UserID: userId, RoleID: id})
		}
		return tx.Create(&rows).Error
	})
	if err != nil {
		return pkgerrors.Wrapf(err, "replace roles of user %s", userId)
	}
	return nil
}

func (s *UserRolesRepoImpl) GetUserIdsByRole(ctx context.Context, roleName string) ([]string, error) {
	ids := make([]string, 0)
	err := s.db.WithContext(ctx).
		Table("user_roles").
		Joins("JOIN roles ON user_roles.role_id = roles.id").
		Where("roles.name = ?", roleName).
		Pluck("user_roles.user_id", &ids).Error
	if err != nil {
		return nil, pkgerrors.Wrapf(err, "get users of role %s", roleName)
	}
	return ids, nil
}

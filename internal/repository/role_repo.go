package repository

import (
	"Airena/internal/model"
	"context"

	pkgerrors "github.com/pkg/errors"
	"gorm.io/gorm"
)

type RoleRepo interface {
	GetRolesByNames(ctx context.Context, names []string) ([]*model.Role, error)
}

type RoleRepoImpl struct {
	db *gorm.DB
}

func NewRoleRepo(db *gorm.DB) RoleRepo {
	return &RoleRepoImpl{
		db: db,
	}
}

func (s *RoleRepoImpl) GetRolesByNames(ctx context.Context, names []string) ([]*model.Role, error) {
	roles := make([]*model.Role, 0, len(names))
	if len(names) == 0 {
		return roles, nil
	}
	result := s.db.WithContext(ctx).Model(&model.Role{}).Where("name IN ?", names).Find(&roles)
	if result.Error != nil {
		return nil, pkgerrors.Wrap(result.Error, "get roles by names")
	}
	return roles, nil
}

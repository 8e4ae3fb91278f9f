package model

// 角色名即令牌中的 claim 名
const (
	RoleAdmin      = "admin"
	RoleCreator    = "creator"
	RoleSuperAdmin = "superAdmin"
)

// AllRoles 系统内置的全部角色
var AllRoles = []string{RoleAdmin, RoleCreator, RoleSuperAdmin}

type Role struct {
	ID          uint64  `gorm:"primaryKey"`
	Name        string  `gorm:"type:varchar(50);uniqueIndex:idx_role_name;not null"`
	Description *string `gorm:"type:varchar(255)"`
}

func (Role) TableName() string {
	return "roles"
}

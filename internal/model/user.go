package model

import (
	"time"
)

type User struct {
	ID          string  `gorm:"primaryKey;type:char(36)"`
	Email       string  `gorm:"type:varchar(255);uniqueIndex:idx_email;not null"`
	Password    string  `gorm:"type:varchar(255);not null"`
	DisplayName string  `gorm:"type:varchar(64)"`
	PhotoURL    *string `gorm:"type:varchar(512)"`
	CreatedAt   time.Time
	UpdatedAt   time.Time

	UserRoles []UserRole `gorm:"foreignKey:UserID;references:ID"`
}

func (User) TableName() string {
	return "users"
}

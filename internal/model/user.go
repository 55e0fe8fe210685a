package model

import "time"

const (
	UserRoleUser  = "USER"
	UserRoleAdmin = "ADMIN"
)

// User is a registered account.
type User struct {
	ID                uint      `gorm:"primaryKey" json:"id"`
	Username          string    `gorm:"type:varchar(255);uniqueIndex;not null" json:"username"`
	Password          string    `gorm:"type:varchar(255);not null" json:"-"`
	Role              string    `gorm:"type:enum('USER','ADMIN');default:'USER';not null" json:"role"`
	PreferredPlatform string    `gorm:"type:varchar(32)" json:"preferredPlatform"`
	CreatedAt         time.Time `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt         time.Time `gorm:"autoUpdateTime" json:"updatedAt"`
}

func (User) TableName() string {
	return "users"
}

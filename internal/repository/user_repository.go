package repository

import (
	"ai-content-consultant/internal/model"

	"gorm.io/gorm"
)

// UserRepository persists accounts.
type UserRepository interface {
	Create(user *model.User) error
	FindByUsername(username string) (*model.User, error)
	// SetPreferredPlatform writes only the preferred_platform column.
	SetPreferredPlatform(userID uint, platform string) error
}

type userRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) Create(user *model.User) error {
	return r.db.Create(user).Error
}

func (r *userRepository) FindByUsername(username string) (*model.User, error) {
	var user model.User
	if err := r.db.Where("username = ?", username).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) SetPreferredPlatform(userID uint, platform string) error {
	res := r.db.Model(&model.User{}).Where("id = ?", userID).Update("preferred_platform", platform)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

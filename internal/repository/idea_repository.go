package repository

import (
	"ai-content-consultant/internal/model"

	"gorm.io/gorm"
)

// IdeaRepository persists saved content ideas.
type IdeaRepository interface {
	Create(idea *model.SavedIdea) error
	FindByUser(userID uint, offset, limit int) ([]model.SavedIdea, int64, error)
	FindByPublicID(userID uint, publicID string) (*model.SavedIdea, error)
	Delete(idea *model.SavedIdea) error
}

type ideaRepository struct {
	db *gorm.DB
}

func NewIdeaRepository(db *gorm.DB) IdeaRepository {
	return &ideaRepository{db: db}
}

func (r *ideaRepository) Create(idea *model.SavedIdea) error {
	return r.db.Create(idea).Error
}

// FindByUser returns one page of the user's ideas, newest first, and the
// total count.
func (r *ideaRepository) FindByUser(userID uint, offset, limit int) ([]model.SavedIdea, int64, error) {
	var ideas []model.SavedIdea
	var total int64

	if err := r.db.Model(&model.SavedIdea{}).Where("user_id = ?", userID).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	err := r.db.Where("user_id = ?", userID).
		Order("created_at DESC, id DESC").
		Offset(offset).Limit(limit).
		Find(&ideas).Error
	if err != nil {
		return nil, 0, err
	}
	return ideas, total, nil
}

func (r *ideaRepository) FindByPublicID(userID uint, publicID string) (*model.SavedIdea, error) {
	var idea model.SavedIdea
	if err := r.db.Where("user_id = ? AND public_id = ?", userID, publicID).First(&idea).Error; err != nil {
		return nil, err
	}
	return &idea, nil
}

func (r *ideaRepository) Delete(idea *model.SavedIdea) error {
	return r.db.Delete(idea).Error
}

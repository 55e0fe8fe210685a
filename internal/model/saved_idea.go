package model

import "time"

// SavedIdea is a generated idea a user kept for later.
type SavedIdea struct {
	ID             uint      `gorm:"primaryKey"`
	PublicID       string    `gorm:"type:char(36);uniqueIndex;not null"`
	UserID         uint      `gorm:"index;not null"`
	Title          string    `gorm:"type:varchar(255);not null"`
	Platform       string    `gorm:"type:varchar(32);not null"`
	Idea           string    `gorm:"type:text;not null"`
	VideoStructure string    `gorm:"type:text"`
	Caption        string    `gorm:"type:text"`
	Hashtags       []string  `gorm:"type:json;serializer:json"`
	CreatedAt      time.Time `gorm:"autoCreateTime"`
}

func (SavedIdea) TableName() string {
	return "saved_ideas"
}

// SavedIdeaDTO is the API view of a SavedIdea.
type SavedIdeaDTO struct {
	ID        string      `json:"id"`
	Title     string      `json:"title"`
	Platform  string      `json:"platform"`
	Content   ContentIdea `json:"content"`
	CreatedAt LocalTime   `json:"createdAt"`
}

// ToDTO converts the record for API responses.
func (s SavedIdea) ToDTO() SavedIdeaDTO {
	hashtags := s.Hashtags
	if hashtags == nil {
		hashtags = []string{}
	}
	return SavedIdeaDTO{
		ID:       s.PublicID,
		Title:    s.Title,
		Platform: s.Platform,
		Content: ContentIdea{
			Idea:           s.Idea,
			VideoStructure: s.VideoStructure,
			Caption:        s.Caption,
			Hashtags:       hashtags,
		},
		CreatedAt: LocalTime(s.CreatedAt),
	}
}

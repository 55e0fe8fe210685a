package service

import (
	"errors"
	"fmt"
	"strings"

	"ai-content-consultant/internal/content"
	"ai-content-consultant/internal/domain"
	"ai-content-consultant/internal/model"
	"ai-content-consultant/internal/repository"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	defaultIdeaPageSize = 20
	maxIdeaPageSize     = 100
	maxTitleRunes       = 80
)

// SaveIdeaRequest is a generated idea the user wants to keep.
type SaveIdeaRequest struct {
	Title    string            `json:"title"`
	Platform string            `json:"platform"`
	Content  model.ContentIdea `json:"content"`
}

func (r SaveIdeaRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Title, validation.RuneLength(0, 255)),
		validation.Field(&r.Platform, validation.By(knownPlatform)),
		validation.Field(&r.Content, validation.By(hasIdea)),
	)
}

func knownPlatform(value interface{}) error {
	s, _ := value.(string)
	if s == "" {
		return nil
	}
	if _, ok := model.ParsePlatform(s); !ok {
		return fmt.Errorf("unknown platform %q", s)
	}
	return nil
}

func hasIdea(value interface{}) error {
	c, _ := value.(model.ContentIdea)
	idea := strings.TrimSpace(c.Idea)
	if idea == "" || idea == model.NoIdea {
		return errors.New("idea must not be empty")
	}
	return nil
}

// IdeaPage is one page of saved ideas.
type IdeaPage struct {
	Items []model.SavedIdeaDTO `json:"items"`
	Total int64                `json:"total"`
	Page  int                  `json:"page"`
	Size  int                  `json:"size"`
}

// IdeaService manages the ideas users saved from chat.
type IdeaService interface {
	Save(userID uint, req SaveIdeaRequest) (*model.SavedIdeaDTO, error)
	List(userID uint, page, size int) (*IdeaPage, error)
	Delete(userID uint, publicID string) error
}

type ideaService struct {
	ideaRepo repository.IdeaRepository
}

func NewIdeaService(ideaRepo repository.IdeaRepository) IdeaService {
	return &ideaService{ideaRepo: ideaRepo}
}

// Save stores req. Hashtags are sanitised and a missing title is derived
// from the idea text.
func (s *ideaService) Save(userID uint, req SaveIdeaRequest) (*model.SavedIdeaDTO, error) {
	if err := req.Validate(); err != nil {
		return nil, &domain.InvalidInputError{Message: err.Error()}
	}
	platform := model.DefaultPlatform
	if p, ok := model.ParsePlatform(req.Platform); ok {
		platform = p
	}
	title := strings.TrimSpace(req.Title)
	if title == "" {
		title = deriveTitle(req.Content.Idea)
	}

	idea := &model.SavedIdea{
		PublicID:       uuid.NewString(),
		UserID:         userID,
		Title:          title,
		Platform:       string(platform),
		Idea:           strings.TrimSpace(req.Content.Idea),
		VideoStructure: strings.TrimSpace(req.Content.VideoStructure),
		Caption:        strings.TrimSpace(req.Content.Caption),
		Hashtags:       content.SanitizeHashtags(req.Content.Hashtags),
	}
	if err := s.ideaRepo.Create(idea); err != nil {
		return nil, fmt.Errorf("save idea: %w", err)
	}
	dto := idea.ToDTO()
	return &dto, nil
}

// List pages through the user's ideas, newest first. page starts at 1.
func (s *ideaService) List(userID uint, page, size int) (*IdeaPage, error) {
	if page < 1 {
		page = 1
	}
	if size < 1 {
		size = defaultIdeaPageSize
	}
	if size > maxIdeaPageSize {
		size = maxIdeaPageSize
	}
	ideas, total, err := s.ideaRepo.FindByUser(userID, (page-1)*size, size)
	if err != nil {
		return nil, fmt.Errorf("list ideas: %w", err)
	}
	items := make([]model.SavedIdeaDTO, 0, len(ideas))
	for _, idea := range ideas {
		items = append(items, idea.ToDTO())
	}
	return &IdeaPage{Items: items, Total: total, Page: page, Size: size}, nil
}

func (s *ideaService) Delete(userID uint, publicID string) error {
	if _, err := uuid.Parse(publicID); err != nil {
		return &domain.NotFoundError{Message: "idea not found"}
	}
	idea, err := s.ideaRepo.FindByPublicID(userID, publicID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &domain.NotFoundError{Message: "idea not found"}
		}
		return err
	}
	return s.ideaRepo.Delete(idea)
}

func deriveTitle(idea string) string {
	title := strings.Join(strings.Fields(idea), " ")
	if r := []rune(title); len(r) > maxTitleRunes {
		title = strings.TrimSpace(string(r[:maxTitleRunes])) + "..."
	}
	return title
}

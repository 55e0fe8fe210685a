package service

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"ai-content-consultant/internal/domain"
	"ai-content-consultant/internal/model"
	"ai-content-consultant/internal/repository"
	"ai-content-consultant/pkg/hash"
	"ai-content-consultant/pkg/log"
	"ai-content-consultant/pkg/token"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"gorm.io/gorm"
)

// UserService covers accounts and sessions.
type UserService interface {
	Register(username, password string) (*model.User, error)
	Login(username, password string) (accessToken, refreshToken string, err error)
	GetProfile(username string) (*model.User, error)
	SetPreferredPlatform(username, platform string) (*model.User, error)
	Logout(ctx context.Context, tokenString string) error
	RefreshToken(ctx context.Context, refreshTokenString string) (newAccessToken, newRefreshToken string, err error)
}

var usernamePattern = regexp.MustCompile(`^[A-Za-z0-9_.-]+$`)

type userService struct {
	userRepo   repository.UserRepository
	blacklist  repository.TokenBlacklistRepository
	jwtManager *token.JWTManager
}

func NewUserService(userRepo repository.UserRepository, blacklist repository.TokenBlacklistRepository, jwtManager *token.JWTManager) UserService {
	return &userService{
		userRepo:   userRepo,
		blacklist:  blacklist,
		jwtManager: jwtManager,
	}
}

// Register creates a USER account with a bcrypt-hashed password.
func (s *userService) Register(username, password string) (*model.User, error) {
	err := validation.Errors{
		"username": validation.Validate(username,
			validation.Required, validation.RuneLength(3, 32), validation.Match(usernamePattern)),
		"password": validation.Validate(password, validation.Required, validation.RuneLength(6, 64)),
	}.Filter()
	if err != nil {
		return nil, &domain.InvalidInputError{Message: err.Error()}
	}

	_, err = s.userRepo.FindByUsername(username)
	if err == nil {
		return nil, &domain.ConflictError{Message: "username already exists"}
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	hashedPassword, err := hash.HashPassword(password)
	if err != nil {
		return nil, err
	}
	newUser := &model.User{
		Username: username,
		Password: hashedPassword,
		Role:     model.UserRoleUser,
	}
	if err := s.userRepo.Create(newUser); err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}
	log.Infow("[UserService] user registered", "username", username, "user_id", newUser.ID)
	return newUser, nil
}

func (s *userService) Login(username, password string) (accessToken, refreshToken string, err error) {
	user, err := s.userRepo.FindByUsername(username)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", "", &domain.UnauthorizedError{Message: "invalid credentials"}
		}
		return "", "", err
	}
	if !hash.CheckPasswordHash(password, user.Password) {
		return "", "", &domain.UnauthorizedError{Message: "invalid credentials"}
	}
	return s.issue(user)
}

func (s *userService) GetProfile(username string) (*model.User, error) {
	user, err := s.userRepo.FindByUsername(username)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &domain.NotFoundError{Message: "user not found"}
		}
		return nil, err
	}
	return user, nil
}

// SetPreferredPlatform stores the platform used for saved ideas that name
// none.
func (s *userService) SetPreferredPlatform(username, platform string) (*model.User, error) {
	p, ok := model.ParsePlatform(platform)
	if !ok {
		return nil, &domain.InvalidInputError{Message: fmt.Sprintf("unknown platform %q", platform)}
	}
	user, err := s.GetProfile(username)
	if err != nil {
		return nil, err
	}
	if err := s.userRepo.SetPreferredPlatform(user.ID, string(p)); err != nil {
		return nil, fmt.Errorf("update preferred platform: %w", err)
	}
	user.PreferredPlatform = string(p)
	return user, nil
}

// Logout revokes tokenString for the rest of its lifetime.
func (s *userService) Logout(ctx context.Context, tokenString string) error {
	claims, err := s.jwtManager.VerifyToken(tokenString)
	if err != nil {
		return &domain.UnauthorizedError{Message: "invalid token"}
	}
	return s.blacklist.Revoke(ctx, tokenString, time.Until(claims.ExpiresAt.Time))
}

// RefreshToken rotates a refresh token: the old one is revoked and a new
// pair is issued.
func (s *userService) RefreshToken(ctx context.Context, refreshTokenString string) (newAccessToken, newRefreshToken string, err error) {
	claims, err := s.jwtManager.VerifyKind(refreshTokenString, token.KindRefresh)
	if err != nil {
		return "", "", &domain.UnauthorizedError{Message: "invalid refresh token"}
	}
	revoked, err := s.blacklist.IsRevoked(ctx, refreshTokenString)
	if err != nil {
		return "", "", err
	}
	if revoked {
		return "", "", &domain.UnauthorizedError{Message: "refresh token revoked"}
	}

	user, err := s.GetProfile(claims.Username)
	if err != nil {
		return "", "", err
	}
	if err := s.blacklist.Revoke(ctx, refreshTokenString, time.Until(claims.ExpiresAt.Time)); err != nil {
		log.Warnf("[UserService] failed to revoke rotated refresh token: %v", err)
	}
	return s.issue(user)
}

func (s *userService) issue(user *model.User) (string, string, error) {
	accessToken, err := s.jwtManager.GenerateToken(user.ID, user.Username, user.Role)
	if err != nil {
		return "", "", err
	}
	refreshToken, err := s.jwtManager.GenerateRefreshToken(user.ID, user.Username, user.Role)
	if err != nil {
		return "", "", err
	}
	return accessToken, refreshToken, nil
}

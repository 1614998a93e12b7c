package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"microblog/internal/kv"
	"microblog/internal/logger"
	"microblog/internal/models"
	"microblog/internal/repository"
	"microblog/internal/utils"
)

var (
	ErrUsernameTaken      = errors.New("username already taken")
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrUserNotFound       = errors.New("user not found")
	ErrTokenRevoked       = errors.New("access token revoked")
)

// PasswordHasher — хранилище учётных данных (bcrypt).
type PasswordHasher interface {
	Hash(password string) (string, error)
	Check(password, hash string) bool
	DummyCheck(password string) bool
}

type AuthService struct {
	repo      repository.UserRepo
	hasher    PasswordHasher
	store     kv.Store
	secret    string
	accessTTL time.Duration
	now       func() time.Time
}

func NewAuthService(repo repository.UserRepo, hasher PasswordHasher, store kv.Store, sessionSecret string, accessTTL time.Duration, now func() time.Time) *AuthService {
	if now == nil {
		now = time.Now
	}
	return &AuthService{
		repo:      repo,
		hasher:    hasher,
		store:     store,
		secret:    sessionSecret,
		accessTTL: accessTTL,
		now:       now,
	}
}

func (s *AuthService) Register(ctx context.Context, username, email, password string) (*models.User, error) {
	log := logger.WithCtx(ctx)
	username = strings.TrimSpace(username)
	email = normalizeEmail(email)
	log.Info("Регистрация пользователя (service)", zap.String("username", username), zap.String("email", logger.MaskEmail(email)))

	if err := CheckPasswordPolicy(password); err != nil {
		return nil, err
	}

	if taken, err := s.repo.IsUsernameTaken(ctx, username); err != nil {
		return nil, err
	} else if taken {
		return nil, ErrUsernameTaken
	}
	if taken, err := s.repo.IsEmailTaken(ctx, email); err != nil {
		return nil, err
	} else if taken {
		return nil, ErrEmailTaken
	}

	hashed, err := s.hasher.Hash(password)
	if err != nil {
		log.Error("Ошибка хеширования пароля", zap.Error(err))
		return nil, err
	}

	user := &models.User{
		Username:     username,
		Email:        email,
		ImageFile:    models.DefaultImageFile,
		PasswordHash: hashed,
	}
	if err := s.repo.Create(ctx, user); err != nil {
		// гонка между проверкой и вставкой
		switch {
		case errors.Is(err, repository.ErrDuplicateUsername):
			return nil, ErrUsernameTaken
		case errors.Is(err, repository.ErrDuplicateEmail):
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	log.Info("Пользователь зарегистрирован (service)", zap.Int64("user_id", user.ID))
	return user, nil
}

// Login не различает "нет такого email" и "неверный пароль", включая время ответа.
func (s *AuthService) Login(ctx context.Context, email, password string) (string, *models.User, error) {
	log := logger.WithCtx(ctx)
	email = normalizeEmail(email)

	user, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			log.Error("Ошибка поиска пользователя при входе", zap.Error(err))
			return "", nil, err
		}
		s.hasher.DummyCheck(password)
		log.Warn("Неудачный вход", zap.String("email", logger.MaskEmail(email)))
		return "", nil, ErrInvalidCredentials
	}

	if !s.hasher.Check(password, user.PasswordHash) {
		log.Warn("Неудачный вход", zap.String("email", logger.MaskEmail(email)))
		return "", nil, ErrInvalidCredentials
	}

	token, _, err := utils.GenerateAccessToken(s.secret, user.ID, s.accessTTL, s.now())
	if err != nil {
		log.Error("Ошибка генерации access-токена", zap.Error(err))
		return "", nil, err
	}

	log.Info("Вход выполнен (service)", zap.Int64("user_id", user.ID))
	return token, user, nil
}

// Authenticate проверяет access-токен и что он не отозван через Logout.
func (s *AuthService) Authenticate(ctx context.Context, raw string) (*utils.AccessClaims, error) {
	claims, err := utils.ParseAccessToken(s.secret, raw)
	if err != nil {
		return nil, err
	}
	revoked, err := s.IsRevoked(ctx, raw)
	if err != nil {
		return nil, err
	}
	if revoked {
		return nil, ErrTokenRevoked
	}
	return claims, nil
}

func (s *AuthService) IsRevoked(ctx context.Context, raw string) (bool, error) {
	revoked, err := s.store.Exists(ctx, revokedKey(raw))
	if err != nil {
		return false, fmt.Errorf("check revoked token: %w", err)
	}
	return revoked, nil
}

// Logout кладёт токен в deny-list до истечения его срока.
func (s *AuthService) Logout(ctx context.Context, raw string, expiresAt time.Time) error {
	ttl := expiresAt.Sub(s.now())
	if ttl <= 0 {
		return nil
	}
	if _, err := s.store.SetNX(ctx, revokedKey(raw), ttl); err != nil {
		logger.WithCtx(ctx).Error("Ошибка отзыва access-токена", zap.Error(err))
		return err
	}
	logger.WithCtx(ctx).Info("Выход пользователя (service)")
	return nil
}

func revokedKey(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return "revoked:" + hex.EncodeToString(sum[:])
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

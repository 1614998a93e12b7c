package services

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"

	"microblog/internal/kv"
	"microblog/internal/logger"
	"microblog/internal/models"
	"microblog/internal/repository"
	"microblog/internal/resettoken"
	"microblog/internal/utils/helpers"
)

const (
	MinPasswordLength = 8
	// bcrypt не принимает пароли длиннее 72 байт
	MaxPasswordBytes = 72

	resetRequestsPerHour = 5
	resetSubject         = "Password Reset Request"
	// id, которого не бывает в БД: токен-пустышка для неизвестных email
	dummyUserID int64 = -1
)

var (
	ErrResetLinkInvalid = errors.New("the reset link is invalid or has expired")
	ErrPasswordTooShort = errors.New("password too short")
	ErrPasswordTooLong  = errors.New("password too long (max 72 bytes)")
	ErrTooManyRequests  = errors.New("too many requests")
)

// TokenService — выпуск и проверка ссылок сброса (см. пакет resettoken).
type TokenService interface {
	Issue(u *models.User) (string, error)
	VerifyClaims(ctx context.Context, token string) (*models.User, *resettoken.Claims, bool)
	TTL() time.Duration
}

type PasswordService struct {
	users     repository.UserRepo
	tokens    TokenService
	mailer    Mailer
	hasher    PasswordHasher
	store     kv.Store
	limiter   *RateLimiter
	siteURL   string
	singleUse bool
	now       func() time.Time
}

func NewPasswordService(
	users repository.UserRepo,
	tokens TokenService,
	mailer Mailer,
	hasher PasswordHasher,
	store kv.Store,
	siteURL string,
	singleUse bool,
) *PasswordService {
	s := &PasswordService{
		users:     users,
		tokens:    tokens,
		mailer:    mailer,
		hasher:    hasher,
		store:     store,
		siteURL:   siteURL,
		singleUse: singleUse,
		now:       time.Now,
	}
	s.limiter = NewRateLimiter(store, func() time.Time { return s.now() })
	return s
}

// ResetLink — ссылка вида {site}/reset_password/{token}.
func (s *PasswordService) ResetLink(token string) string {
	return s.siteURL + "/reset_password/" + url.PathEscape(token)
}

// RequestReset отправляет письмо со ссылкой, если email известен.
// Для неизвестного email выполняется та же работа без отправки, и возвращается nil:
// вызывающий всегда показывает одинаковое сообщение. Наружу выходят только
// ошибки доставки почты и превышение лимита запросов.
func (s *PasswordService) RequestReset(ctx context.Context, email string) error {
	log := logger.WithCtx(ctx)
	email = normalizeEmail(email)
	log.Info("Запрос на сброс пароля", zap.String("email", logger.MaskEmail(email)))

	if !s.limiter.Allow(ctx, "reset:"+email, resetRequestsPerHour, time.Hour) {
		log.Warn("Превышен лимит запросов сброса", zap.String("email", logger.MaskEmail(email)))
		return ErrTooManyRequests
	}

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			log.Error("Ошибка поиска пользователя при запросе сброса", zap.Error(err))
			return nil
		}
		// равная стоимость ответа для несуществующего аккаунта
		_, _ = s.tokens.Issue(&models.User{ID: dummyUserID})
		log.Info("Сброс запрошен для неизвестного email", zap.String("email", logger.MaskEmail(email)))
		return nil
	}

	token, err := s.tokens.Issue(user)
	if err != nil {
		log.Error("Ошибка генерации токена для сброса", zap.Int64("user_id", user.ID), zap.Error(err))
		return nil
	}

	link := s.ResetLink(token)
	ttlMinutes := int(s.tokens.TTL() / time.Minute)
	msg := Message{
		To:      []string{user.Email},
		Subject: resetSubject,
		Text:    helpers.BuildPasswordResetText(user.Username, link, ttlMinutes),
		HTML:    helpers.BuildPasswordResetHTML(user.Username, link, ttlMinutes),
	}
	if err := s.mailer.Send(ctx, msg); err != nil {
		log.Error("Ошибка отправки письма для сброса пароля", zap.Int64("user_id", user.ID), zap.Error(err))
		return err
	}

	log.Info("Письмо со ссылкой на сброс пароля отправлено", zap.Int64("user_id", user.ID))
	return nil
}

// CheckToken — годна ли ещё ссылка (GET по ссылке из письма).
func (s *PasswordService) CheckToken(ctx context.Context, token string) bool {
	_, claims, ok := s.tokens.VerifyClaims(ctx, token)
	if !ok {
		return false
	}
	if s.singleUse {
		used, err := s.store.Exists(ctx, usedKey(claims))
		if err != nil {
			logger.WithCtx(ctx).Error("Ошибка проверки журнала ссылок сброса", zap.Error(err))
			return false
		}
		return !used
	}
	return true
}

// ConfirmReset проверяет токен и устанавливает новый пароль.
func (s *PasswordService) ConfirmReset(ctx context.Context, token, newPassword string) error {
	log := logger.WithCtx(ctx)

	if err := CheckPasswordPolicy(newPassword); err != nil {
		return err
	}

	user, claims, ok := s.tokens.VerifyClaims(ctx, token)
	if !ok {
		log.Warn("Неверная или просроченная ссылка сброса")
		return ErrResetLinkInvalid
	}

	if s.singleUse {
		// ссылка помечается использованной до смены пароля: повторная попытка,
		// даже параллельная, получит отказ
		ttl := claims.ExpiresAt.Sub(s.now()) + time.Second
		claimed, err := s.store.SetNX(ctx, usedKey(claims), ttl)
		if err != nil {
			log.Error("Ошибка записи в журнал ссылок сброса", zap.Error(err))
			return fmt.Errorf("consume reset token: %w", err)
		}
		if !claimed {
			log.Warn("Повторное использование ссылки сброса", zap.Int64("user_id", user.ID))
			return ErrResetLinkInvalid
		}
	}

	hash, err := s.hasher.Hash(newPassword)
	if err != nil {
		log.Error("Ошибка генерации хеша пароля", zap.Int64("user_id", user.ID), zap.Error(err))
		return err
	}

	user.PasswordHash = hash
	if err := s.users.Save(ctx, user); err != nil {
		log.Error("Ошибка обновления пароля пользователя", zap.Int64("user_id", user.ID), zap.Error(err))
		return err
	}

	log.Info("Пароль успешно сброшен", zap.Int64("user_id", user.ID))
	return nil
}

// CheckPasswordPolicy: не короче MinPasswordLength символов и не длиннее MaxPasswordBytes байт.
func CheckPasswordPolicy(password string) error {
	if utf8.RuneCountInString(password) < MinPasswordLength {
		return ErrPasswordTooShort
	}
	if len(password) > MaxPasswordBytes {
		return ErrPasswordTooLong
	}
	return nil
}

func usedKey(c *resettoken.Claims) string {
	return "reset-used:" + c.ID
}

// Package resettoken выпускает и проверяет подписанные ссылки сброса пароля.
//
// Токен нигде не хранится: это JWS (HS256) с user_id, временем выпуска и сроком
// жизни. Проверка не одноразовая — токен принимается сколько угодно раз до
// истечения окна. Все причины отказа (формат, подпись, срок, нет пользователя)
// сводятся к одному ответу "нет результата".
package resettoken

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"microblog/internal/logger"
	"microblog/internal/models"
)

// DefaultTTL — окно действия ссылки.
const DefaultTTL = 1800 * time.Second

const purposePasswordReset = "password_reset"

var (
	ErrEmptySecret = errors.New("reset token secret is empty")
	ErrNoUserID    = errors.New("user has no identifier")

	errMalformed    = errors.New("token malformed")
	errWrongPurpose = errors.New("token purpose mismatch")
	errExpired      = errors.New("token expired")
)

// UserFinder — часть справочника пользователей, нужная для проверки.
type UserFinder interface {
	FindByID(ctx context.Context, id int64) (*models.User, error)
}

type Claims struct {
	UserID  int64  `json:"user_id"`
	Purpose string `json:"purpose"`
	jwt.RegisteredClaims
}

type Service struct {
	secret []byte
	ttl    time.Duration
	users  UserFinder
	now    func() time.Time
	parser *jwt.Parser
}

func New(secret []byte, ttl time.Duration, users UserFinder, now func() time.Time) (*Service, error) {
	if len(secret) == 0 {
		return nil, ErrEmptySecret
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if now == nil {
		now = time.Now
	}
	return &Service{
		secret: secret,
		ttl:    ttl,
		users:  users,
		now:    now,
		parser: jwt.NewParser(
			jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
			// срок проверяем сами: окно включительное и считается от iat
			jwt.WithoutClaimsValidation(),
		),
	}, nil
}

func (s *Service) TTL() time.Duration { return s.ttl }

// Issue выпускает токен для пользователя. Побочных эффектов нет.
func (s *Service) Issue(u *models.User) (string, error) {
	if u == nil || u.ID == 0 {
		return "", ErrNoUserID
	}

	iat := s.now().UTC().Truncate(time.Second)
	claims := Claims{
		UserID:  u.ID,
		Purpose: purposePasswordReset,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(iat),
			ExpiresAt: jwt.NewNumericDate(iat.Add(s.ttl)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign reset token: %w", err)
	}
	return signed, nil
}

// Verify возвращает пользователя, которому выдан токен, либо (nil, false).
func (s *Service) Verify(ctx context.Context, token string) (*models.User, bool) {
	u, _, ok := s.VerifyClaims(ctx, token)
	return u, ok
}

// VerifyClaims — как Verify, но дополнительно отдаёт разобранные claims
// (jti и срок нужны журналу использованных ссылок).
func (s *Service) VerifyClaims(ctx context.Context, token string) (*models.User, *Claims, bool) {
	log := logger.WithCtx(ctx)

	claims, err := s.decode(token)
	if err != nil {
		log.Debug("Токен сброса отклонён", zap.Error(err))
		return nil, nil, false
	}

	u, err := s.users.FindByID(ctx, claims.UserID)
	if err != nil || u == nil {
		log.Debug("Пользователь из токена сброса не найден", zap.Int64("user_id", claims.UserID), zap.Error(err))
		return nil, nil, false
	}
	return u, claims, true
}

func (s *Service) decode(token string) (*Claims, error) {
	claims := &Claims{}
	if _, err := s.parser.ParseWithClaims(token, claims, s.keyFunc); err != nil {
		return nil, err
	}
	if claims.Purpose != purposePasswordReset {
		return nil, errWrongPurpose
	}
	if claims.UserID <= 0 || claims.IssuedAt == nil || claims.ExpiresAt == nil {
		return nil, errMalformed
	}

	now := s.now()
	deadline := claims.IssuedAt.Add(s.ttl)
	if claims.ExpiresAt.Before(deadline) {
		deadline = claims.ExpiresAt.Time
	}
	if now.After(deadline) {
		return nil, errExpired
	}
	return claims, nil
}

func (s *Service) keyFunc(*jwt.Token) (any, error) {
	return s.secret, nil
}

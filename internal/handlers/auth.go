package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"go.uber.org/zap"

	"microblog/internal/logger"
	"microblog/internal/models"
	"microblog/internal/reqctx"
	"microblog/internal/services"
	"microblog/internal/utils/helpers"
)

const (
	loginAttemptsPerMinute = 20
)

type authService interface {
	Register(ctx context.Context, username, email, password string) (*models.User, error)
	Login(ctx context.Context, email, password string) (string, *models.User, error)
	Logout(ctx context.Context, raw string, expiresAt time.Time) error
}

type rateLimiter interface {
	Allow(ctx context.Context, key string, limit int, window time.Duration) bool
}

type AuthHandler struct {
	auth    authService
	limiter rateLimiter
}

func NewAuthHandler(auth authService, limiter rateLimiter) *AuthHandler {
	return &AuthHandler{auth: auth, limiter: limiter}
}

// Register godoc
// @Summary Регистрация нового пользователя
// @Tags auth
// @Accept json
// @Produce json
// @Param input body registerRequest true "Данные регистрации"
// @Success 201 {object} helpers.Response{data=models.UserProfileResponse}
// @Failure 400 {object} helpers.Response
// @Failure 409 {object} helpers.Response
// @Router /api/register [post]
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if !decode(w, r, &req) {
		return
	}

	user, err := h.auth.Register(r.Context(), req.Username, req.Email, req.Password)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	logger.WithCtx(r.Context()).Info("Пользователь зарегистрирован", zap.Int64("user_id", user.ID))
	helpers.JSON(w, http.StatusCreated, services.Profile(user))
}

// Login godoc
// @Summary Авторизация пользователя
// @Tags auth
// @Accept json
// @Produce json
// @Param input body loginRequest true "Данные для входа"
// @Success 200 {object} helpers.Response{data=loginResponse}
// @Failure 401 {object} helpers.Response
// @Failure 429 {object} helpers.Response
// @Router /api/login [post]
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	log := logger.WithCtx(r.Context())

	if !h.limiter.Allow(r.Context(), "login:"+clientIP(r), loginAttemptsPerMinute, time.Minute) {
		log.Warn("Превышен лимит попыток входа", zap.String("ip", clientIP(r)))
		helpers.Error(w, http.StatusTooManyRequests, "Слишком много попыток входа, попробуйте позже")
		return
	}

	var req loginRequest
	if !decode(w, r, &req) {
		return
	}

	token, user, err := h.auth.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, services.ErrInvalidCredentials) {
			helpers.Error(w, http.StatusUnauthorized, "Login Unsuccessful. Please check email and password")
			return
		}
		writeServiceError(w, r, err)
		return
	}

	helpers.JSON(w, http.StatusOK, loginResponse{
		AccessToken: token,
		TokenType:   "Bearer",
		User:        services.Profile(user),
	})
}

// Logout godoc
// @Summary Выход: отзыв текущего access-токена
// @Tags auth
// @Security ApiKeyAuth
// @Produce json
// @Success 200 {object} helpers.Response{data=messageResponse}
// @Failure 401 {object} helpers.Response
// @Router /api/logout [post]
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	tok, ok := reqctx.GetAccessToken(r.Context())
	if !ok {
		helpers.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	if err := h.auth.Logout(r.Context(), tok.Raw, time.Unix(tok.ExpiresAt, 0)); err != nil {
		writeServiceError(w, r, err)
		return
	}
	helpers.JSON(w, http.StatusOK, messageResponse{Message: "Вы вышли из системы"})
}

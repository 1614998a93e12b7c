package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"microblog/internal/logger"
	"microblog/internal/services"
	"microblog/internal/utils/helpers"
)

const (
	msgResetRequested = "If an account exists for that email, an email has been sent with instructions to reset your password."
	msgResetInvalid   = "That is an invalid or expired token"
	msgResetDone      = "Your password has been updated! You are now able to log in"
)

type passwordService interface {
	RequestReset(ctx context.Context, email string) error
	CheckToken(ctx context.Context, token string) bool
	ConfirmReset(ctx context.Context, token, newPassword string) error
}

type PasswordHandler struct {
	svc passwordService
}

func NewPasswordHandler(svc passwordService) *PasswordHandler {
	return &PasswordHandler{svc: svc}
}

// RequestReset godoc
// @Summary Запрос восстановления пароля
// @Description Отправляет письмо со ссылкой для сброса пароля. Ответ одинаковый, даже если e-mail не найден.
// @Tags password
// @Accept json
// @Produce json
// @Param input body resetRequest true "Email пользователя"
// @Success 200 {object} helpers.Response{data=messageResponse}
// @Failure 400 {object} helpers.Response
// @Failure 429 {object} helpers.Response
// @Router /api/reset_password [post]
func (h *PasswordHandler) RequestReset(w http.ResponseWriter, r *http.Request) {
	log := logger.WithCtx(r.Context())

	var req resetRequest
	if !decode(w, r, &req) {
		return
	}

	err := h.svc.RequestReset(r.Context(), req.Email)
	switch {
	case errors.Is(err, services.ErrTooManyRequests):
		helpers.Error(w, http.StatusTooManyRequests, "Слишком много запросов, попробуйте позже")
		return
	case err != nil:
		// клиенту отвечаем одинаково
		log.Error("Сбой при запросе восстановления пароля", zap.String("email", logger.MaskEmail(req.Email)), zap.Error(err))
	}

	helpers.JSON(w, http.StatusOK, messageResponse{Message: msgResetRequested})
}

// CheckReset godoc
// @Summary Проверка ссылки сброса пароля
// @Tags password
// @Produce json
// @Param token path string true "Токен из письма"
// @Success 200 {object} helpers.Response{data=messageResponse}
// @Failure 400 {object} helpers.Response
// @Router /api/reset_password/{token} [get]
func (h *PasswordHandler) CheckReset(w http.ResponseWriter, r *http.Request) {
	if !h.svc.CheckToken(r.Context(), mux.Vars(r)["token"]) {
		helpers.Error(w, http.StatusBadRequest, msgResetInvalid)
		return
	}
	helpers.JSON(w, http.StatusOK, messageResponse{Message: "ok"})
}

// ConfirmReset godoc
// @Summary Сброс пароля по токену
// @Description Устанавливает новый пароль по токену из письма.
// @Tags password
// @Accept json
// @Produce json
// @Param token path string true "Токен из письма"
// @Param input body resetConfirmRequest true "Новый пароль"
// @Success 200 {object} helpers.Response{data=messageResponse}
// @Failure 400 {object} helpers.Response
// @Router /api/reset_password/{token} [post]
func (h *PasswordHandler) ConfirmReset(w http.ResponseWriter, r *http.Request) {
	var req resetConfirmRequest
	if !decode(w, r, &req) {
		return
	}

	err := h.svc.ConfirmReset(r.Context(), mux.Vars(r)["token"], req.Password)
	switch {
	case err == nil:
		helpers.JSON(w, http.StatusOK, messageResponse{Message: msgResetDone})
	case errors.Is(err, services.ErrResetLinkInvalid):
		helpers.Error(w, http.StatusBadRequest, msgResetInvalid)
	default:
		writeServiceError(w, r, err)
	}
}

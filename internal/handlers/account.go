package handlers

import (
	"context"
	"io"
	"net/http"

	"go.uber.org/zap"

	"microblog/internal/logger"
	"microblog/internal/models"
	"microblog/internal/services"
	"microblog/internal/utils/helpers"
)

const maxPictureSize = 5 << 20

type accountService interface {
	Get(ctx context.Context, userID int64) (*models.User, error)
	Update(ctx context.Context, userID int64, username, email string) (*models.User, error)
	SavePicture(ctx context.Context, userID int64, filename string, r io.Reader) (*models.User, error)
}

type AccountHandler struct {
	svc accountService
}

func NewAccountHandler(svc accountService) *AccountHandler {
	return &AccountHandler{svc: svc}
}

// Get godoc
// @Summary Профиль текущего пользователя
// @Tags account
// @Security ApiKeyAuth
// @Produce json
// @Success 200 {object} helpers.Response{data=models.UserProfileResponse}
// @Failure 401 {object} helpers.Response
// @Router /api/account [get]
func (h *AccountHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(w, r)
	if !ok {
		return
	}
	user, err := h.svc.Get(r.Context(), userID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	helpers.JSON(w, http.StatusOK, services.Profile(user))
}

// Update godoc
// @Summary Изменить имя и email
// @Tags account
// @Security ApiKeyAuth
// @Accept json
// @Produce json
// @Param input body accountRequest true "Новые данные"
// @Success 200 {object} helpers.Response{data=models.UserProfileResponse}
// @Failure 400 {object} helpers.Response
// @Failure 409 {object} helpers.Response
// @Router /api/account [patch]
func (h *AccountHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(w, r)
	if !ok {
		return
	}
	var req accountRequest
	if !decode(w, r, &req) {
		return
	}
	user, err := h.svc.Update(r.Context(), userID, req.Username, req.Email)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	helpers.JSON(w, http.StatusOK, services.Profile(user))
}

// UploadPicture godoc
// @Summary Загрузить аватарку
// @Description jpg/jpeg/png, уменьшается до 125x125.
// @Tags account
// @Security ApiKeyAuth
// @Accept multipart/form-data
// @Produce json
// @Param picture formData file true "Изображение"
// @Success 200 {object} helpers.Response{data=models.UserProfileResponse}
// @Failure 400 {object} helpers.Response
// @Router /api/account/picture [post]
func (h *AccountHandler) UploadPicture(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(w, r)
	if !ok {
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxPictureSize)
	if err := r.ParseMultipartForm(maxPictureSize); err != nil {
		logger.WithCtx(r.Context()).Warn("Ошибка разбора multipart", zap.Error(err))
		helpers.Error(w, http.StatusBadRequest, "Файл слишком большой или повреждён")
		return
	}
	file, header, err := r.FormFile("picture")
	if err != nil {
		helpers.Error(w, http.StatusBadRequest, "Поле picture обязательно")
		return
	}
	defer file.Close()

	user, err := h.svc.SavePicture(r.Context(), userID, header.Filename, file)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	helpers.JSON(w, http.StatusOK, services.Profile(user))
}

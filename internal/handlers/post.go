package handlers

import (
	"context"
	"net/http"

	"github.com/gorilla/mux"

	"microblog/internal/models"
	"microblog/internal/utils/helpers"
)

type postService interface {
	Create(ctx context.Context, authorID int64, title, content string) (*models.Post, error)
	Get(ctx context.Context, id int64) (*models.Post, error)
	Update(ctx context.Context, actorID, id int64, title, content string) (*models.Post, error)
	Delete(ctx context.Context, actorID, id int64) error
	List(ctx context.Context, page int) (models.Page[*models.Post], error)
	ListByUser(ctx context.Context, username string, page int) (models.Page[*models.Post], error)
}

type PostHandler struct {
	svc postService
}

func NewPostHandler(svc postService) *PostHandler {
	return &PostHandler{svc: svc}
}

// List godoc
// @Summary Лента постов
// @Description Все посты, новые первыми, по 5 на страницу.
// @Tags posts
// @Produce json
// @Param page query int false "Номер страницы" default(1)
// @Success 200 {object} helpers.Response
// @Router /api/posts [get]
func (h *PostHandler) List(w http.ResponseWriter, r *http.Request) {
	page, err := h.svc.List(r.Context(), pageParam(r))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	helpers.JSON(w, http.StatusOK, page)
}

// ListByUser godoc
// @Summary Посты пользователя
// @Tags posts
// @Produce json
// @Param username path string true "Имя пользователя"
// @Param page query int false "Номер страницы" default(1)
// @Success 200 {object} helpers.Response
// @Failure 404 {object} helpers.Response
// @Router /api/users/{username}/posts [get]
func (h *PostHandler) ListByUser(w http.ResponseWriter, r *http.Request) {
	page, err := h.svc.ListByUser(r.Context(), mux.Vars(r)["username"], pageParam(r))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	helpers.JSON(w, http.StatusOK, page)
}

// Get godoc
// @Summary Пост по id
// @Tags posts
// @Produce json
// @Param id path int true "ID поста"
// @Success 200 {object} helpers.Response{data=models.Post}
// @Failure 404 {object} helpers.Response
// @Router /api/posts/{id} [get]
func (h *PostHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	post, err := h.svc.Get(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	helpers.JSON(w, http.StatusOK, post)
}

// Create godoc
// @Summary Создать пост
// @Tags posts
// @Security ApiKeyAuth
// @Accept json
// @Produce json
// @Param input body postRequest true "Заголовок и текст"
// @Success 201 {object} helpers.Response{data=models.Post}
// @Failure 400 {object} helpers.Response
// @Failure 401 {object} helpers.Response
// @Router /api/posts [post]
func (h *PostHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(w, r)
	if !ok {
		return
	}
	var req postRequest
	if !decode(w, r, &req) {
		return
	}
	post, err := h.svc.Create(r.Context(), userID, req.Title, req.Content)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	helpers.JSON(w, http.StatusCreated, post)
}

// Update godoc
// @Summary Изменить пост
// @Tags posts
// @Security ApiKeyAuth
// @Accept json
// @Produce json
// @Param id path int true "ID поста"
// @Param input body postRequest true "Заголовок и текст"
// @Success 200 {object} helpers.Response{data=models.Post}
// @Failure 403 {object} helpers.Response
// @Failure 404 {object} helpers.Response
// @Router /api/posts/{id} [patch]
func (h *PostHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var req postRequest
	if !decode(w, r, &req) {
		return
	}
	post, err := h.svc.Update(r.Context(), userID, id, req.Title, req.Content)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	helpers.JSON(w, http.StatusOK, post)
}

// Delete godoc
// @Summary Удалить пост
// @Tags posts
// @Security ApiKeyAuth
// @Produce json
// @Param id path int true "ID поста"
// @Success 200 {object} helpers.Response{data=messageResponse}
// @Failure 403 {object} helpers.Response
// @Failure 404 {object} helpers.Response
// @Router /api/posts/{id} [delete]
func (h *PostHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := h.svc.Delete(r.Context(), userID, id); err != nil {
		writeServiceError(w, r, err)
		return
	}
	helpers.JSON(w, http.StatusOK, messageResponse{Message: "Your post has been deleted!"})
}

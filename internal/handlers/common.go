package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"microblog/internal/logger"
	"microblog/internal/reqctx"
	"microblog/internal/services"
	"microblog/internal/utils/helpers"
)

const maxJSONBody = 1 << 20

type validatable interface {
	Validate() error
}

// decode читает JSON и прогоняет валидацию DTO; при ошибке сам пишет 400.
func decode(w http.ResponseWriter, r *http.Request, dst validatable) bool {
	log := logger.WithCtx(r.Context())
	if err := json.NewDecoder(io.LimitReader(r.Body, maxJSONBody)).Decode(dst); err != nil {
		log.Warn("Ошибка декодирования JSON", zap.Error(err))
		helpers.Error(w, http.StatusBadRequest, "Невалидный JSON")
		return false
	}
	if err := dst.Validate(); err != nil {
		log.Warn("Ошибка валидации запроса", zap.Error(err))
		helpers.Error(w, http.StatusBadRequest, err.Error())
		return false
	}
	return true
}

func currentUserID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, ok := reqctx.GetUserID(r.Context())
	if !ok || id <= 0 {
		helpers.Error(w, http.StatusUnauthorized, "unauthorized")
		return 0, false
	}
	return id, true
}

func pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil || id <= 0 {
		helpers.Error(w, http.StatusBadRequest, "Некорректный id")
		return 0, false
	}
	return id, true
}

// pageParam: отсутствующий или кривой ?page= считается первой страницей.
func pageParam(r *http.Request) int {
	page, err := strconv.Atoi(r.URL.Query().Get("page"))
	if err != nil || page < 1 {
		return 1
	}
	return page
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// writeServiceError переводит доменные ошибки в HTTP-статусы.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, services.ErrPostNotFound), errors.Is(err, services.ErrUserNotFound):
		helpers.Error(w, http.StatusNotFound, err.Error())
	case errors.Is(err, services.ErrForbidden):
		helpers.Error(w, http.StatusForbidden, "Доступ запрещён")
	case errors.Is(err, services.ErrUsernameTaken), errors.Is(err, services.ErrEmailTaken):
		helpers.Error(w, http.StatusConflict, err.Error())
	case errors.Is(err, services.ErrEmptyPost),
		errors.Is(err, services.ErrUnsupportedImage),
		errors.Is(err, services.ErrInvalidImage),
		errors.Is(err, services.ErrPasswordTooShort),
		errors.Is(err, services.ErrPasswordTooLong):
		helpers.Error(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, services.ErrTooManyRequests):
		helpers.Error(w, http.StatusTooManyRequests, err.Error())
	default:
		logger.WithCtx(r.Context()).Error("Внутренняя ошибка", zap.Error(err))
		helpers.Error(w, http.StatusInternalServerError, "internal server error")
	}
}

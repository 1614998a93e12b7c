package handlers

import (
	"context"
	"net/http"
	"time"

	"go.uber.org/zap"

	"microblog/internal/logger"
	"microblog/internal/utils/helpers"
)

type pinger interface {
	Ping(ctx context.Context) error
}

// Healthz пингует БД.
func Healthz(db pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := db.Ping(ctx); err != nil {
			logger.WithCtx(r.Context()).Error("Healthz: БД недоступна", zap.Error(err))
			helpers.Error(w, http.StatusServiceUnavailable, "database unavailable")
			return
		}
		helpers.JSON(w, http.StatusOK, messageResponse{Message: "ok"})
	}
}

package middleware

import (
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"microblog/internal/logger"
)

const resetPathPrefix = "/api/reset_password/"

func Logging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		lrw := &loggingResponseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(lrw, r)

		path := r.URL.Path
		// токен сброса в пути не должен попадать в логи
		if strings.HasPrefix(path, resetPathPrefix) && len(path) > len(resetPathPrefix) {
			path = resetPathPrefix + "***"
		}

		logger.WithCtx(r.Context()).Info("HTTP-запрос",
			zap.String("method", r.Method),
			zap.String("path", path),
			zap.Int("status", lrw.statusCode),
			zap.Duration("duration", time.Since(start)),
		)
	})
}

type loggingResponseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (lrw *loggingResponseWriter) WriteHeader(code int) {
	lrw.statusCode = code
	lrw.ResponseWriter.WriteHeader(code)
}

package middleware

import (
	"context"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"microblog/internal/logger"
	"microblog/internal/reqctx"
	"microblog/internal/utils"
	"microblog/internal/utils/helpers"
)

// Authenticator проверяет access-токен (подпись, срок, deny-list).
type Authenticator interface {
	Authenticate(ctx context.Context, raw string) (*utils.AccessClaims, error)
}

func JWTAuth(auth Authenticator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}

			authHeader := r.Header.Get("Authorization")
			if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
				logger.WithCtx(r.Context()).Warn("JWTAuth: отсутствует access token")
				helpers.Error(w, http.StatusUnauthorized, "Отсутствует access token")
				return
			}
			tokenString := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))

			claims, err := auth.Authenticate(r.Context(), tokenString)
			if err != nil {
				logger.WithCtx(r.Context()).Warn("JWTAuth: неверный, просроченный или отозванный токен", zap.Error(err))
				helpers.Error(w, http.StatusUnauthorized, "Неверный или просроченный токен")
				return
			}

			ctx := reqctx.WithUserID(r.Context(), claims.UserID)
			var exp int64
			if claims.ExpiresAt != nil {
				exp = claims.ExpiresAt.Unix()
			}
			ctx = reqctx.WithAccessToken(ctx, reqctx.AccessToken{Raw: tokenString, ExpiresAt: exp})

			logger.WithCtx(ctx).Debug("JWTAuth: токен валиден")
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

package middleware

import (
	"net/http"

	"pizzeria-be/internal/auth"
	"pizzeria-be/internal/logger"
	"pizzeria-be/internal/utils"

	"go.uber.org/zap"
)

type TokenParser interface {
	ParseToken(token string) (*auth.Claims, error)
}

// AdminAuth rejects requests that do not carry a valid admin token.
func AdminAuth(parser TokenParser) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, err := parser.ParseToken(auth.ExtractAccessToken(r))
			if err != nil {
				logger.FromCtx(r.Context()).Debug("admin token rejected", zap.Error(err))
				utils.WriteJSONError(w, logger.RequestIDFrom(r.Context()), "unauthorized", http.StatusUnauthorized)
				return
			}

			ctx := utils.WithAdmin(r.Context(), claims.Subject)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

package httpapi

import (
	"context"
	"net/http"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/storefront/internal/auth"
	"github.com/vladislavdragonenkov/storefront/internal/domain"
)

type contextKey string

const (
	claimsContextKey contextKey = "claims"
	bearerContextKey contextKey = "bearer"

	accessTokenCookie = "access_token"
)

// BearerFromRequest достаёт токен из заголовка Authorization или из
// cookie access_token. Заголовок имеет приоритет.
func BearerFromRequest(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if strings.HasPrefix(header, "Bearer ") {
		return strings.TrimPrefix(header, "Bearer ")
	}
	if cookie, err := r.Cookie(accessTokenCookie); err == nil {
		return cookie.Value
	}
	return ""
}

// Authenticator проверяет токен запроса и кладёт клеймы в контекст.
// Запрос без валидного токена отклоняется 401.
func Authenticator(issuer *auth.TokenIssuer) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			bearer := BearerFromRequest(r)
			if bearer == "" {
				writeDetail(w, http.StatusUnauthorized, "Not authenticated")
				return
			}

			claims, err := issuer.Parse(bearer)
			if err != nil {
				writeDetail(w, http.StatusUnauthorized, "Could not validate credentials")
				return
			}

			ctx := context.WithValue(r.Context(), claimsContextKey, claims)
			ctx = context.WithValue(ctx, bearerContextKey, bearer)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireAdmin пропускает только запросы с ролью admin.
// Навешивается после Authenticator.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, ok := ClaimsFrom(r.Context())
		if !ok {
			writeDetail(w, http.StatusUnauthorized, "Not authenticated")
			return
		}
		if claims.Role != domain.RoleAdmin {
			writeDetail(w, http.StatusForbidden, "Admin privileges required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// ClaimsFrom возвращает клеймы аутентифицированного запроса.
func ClaimsFrom(ctx context.Context) (auth.Claims, bool) {
	claims, ok := ctx.Value(claimsContextKey).(auth.Claims)
	return claims, ok
}

// bearerFrom возвращает исходный токен запроса: оркестратор прокидывает
// его дальше в сервис корзины.
func bearerFrom(ctx context.Context) string {
	bearer, _ := ctx.Value(bearerContextKey).(string)
	return bearer
}

// RequestLogger пишет строку access-лога на каждый запрос.
func RequestLogger(logger *log.Entry) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			recorder := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(recorder, r)

			logger.WithFields(log.Fields{
				"method":   r.Method,
				"path":     r.URL.Path,
				"status":   recorder.status,
				"duration": time.Since(start).String(),
			}).Info("request handled")
		})
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

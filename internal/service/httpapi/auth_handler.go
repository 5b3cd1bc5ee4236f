package httpapi

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/storefront/internal/auth"
	"github.com/vladislavdragonenkov/storefront/internal/domain"
)

type userDTO struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

type registerRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type changePasswordRequest struct {
	OldPassword string `json:"old_password"`
	NewPassword string `json:"new_password"`
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// AuthHandler обслуживает регистрацию, вход и смену пароля.
type AuthHandler struct {
	users  domain.UserRepository
	issuer *auth.TokenIssuer
	logger *log.Entry
}

// NewAuthHandler создаёт обработчик аутентификации.
func NewAuthHandler(users domain.UserRepository, issuer *auth.TokenIssuer, logger *log.Entry) *AuthHandler {
	if logger == nil {
		logger = log.New().WithField("component", "auth-handler")
	}
	return &AuthHandler{users: users, issuer: issuer, logger: logger}
}

// NewAuthRouter собирает маршруты сервиса аутентификации.
func NewAuthRouter(handler *AuthHandler, issuer *auth.TokenIssuer) chi.Router {
	r := chi.NewRouter()
	r.Use(chimw.Recoverer)
	r.Use(RequestLogger(handler.logger))

	r.Post("/auth/register", handler.Register)
	r.Post("/auth/login", handler.Login)
	r.Post("/auth/logout", handler.Logout)

	r.Group(func(r chi.Router) {
		r.Use(Authenticator(issuer))
		r.Get("/auth/me", handler.Me)
		r.Post("/auth/change_password", handler.ChangePassword)
	})

	return r
}

// Register создаёт учётную запись с ролью user.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decodeJSON(r, &req); err != nil {
		writeDetail(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Email == "" || !strings.Contains(req.Email, "@") {
		writeDetail(w, http.StatusBadRequest, "Invalid email")
		return
	}
	if len(req.Password) < 6 {
		writeDetail(w, http.StatusBadRequest, "Password must be at least 6 characters")
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	user := domain.User{
		ID:           uuid.NewString(),
		Email:        req.Email,
		PasswordHash: hash,
		Role:         domain.RoleUser,
		CreatedAt:    time.Now().UTC(),
	}

	if err := h.users.Create(user); err != nil {
		if errors.Is(err, domain.ErrEmailTaken) {
			writeDetail(w, http.StatusBadRequest, "Email already registered")
			return
		}
		writeError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusCreated, userDTO{ID: user.ID, Email: user.Email, Role: user.Role})
}

// Login принимает JSON {email, password} или форму username/password
// и отдаёт токен в теле ответа и в cookie.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	email, password, ok := credentialsFromRequest(r)
	if !ok {
		writeDetail(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	user, err := h.users.GetByEmail(email)
	if err != nil {
		writeDetail(w, http.StatusUnauthorized, "Incorrect email or password")
		return
	}
	if !auth.VerifyPassword(password, user.PasswordHash) {
		writeDetail(w, http.StatusUnauthorized, "Incorrect email or password")
		return
	}

	token, err := h.issuer.AccessToken(user.Email, user.Role)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     accessTokenCookie,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	writeJSON(w, http.StatusOK, tokenResponse{AccessToken: token, TokenType: "bearer"})
}

// Logout сбрасывает cookie с токеном.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     accessTokenCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	writeJSON(w, http.StatusOK, map[string]string{"status": "logged out"})
}

// Me возвращает субъект и роль текущего токена.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	claims, _ := ClaimsFrom(r.Context())
	writeJSON(w, http.StatusOK, map[string]string{
		"email": claims.Subject,
		"role":  claims.Role,
	})
}

// ChangePassword меняет пароль после проверки старого.
func (h *AuthHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	claims, _ := ClaimsFrom(r.Context())

	var req changePasswordRequest
	if err := decodeJSON(r, &req); err != nil {
		writeDetail(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if len(req.NewPassword) < 6 {
		writeDetail(w, http.StatusBadRequest, "Password must be at least 6 characters")
		return
	}

	user, err := h.users.GetByEmail(claims.Subject)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	if !auth.VerifyPassword(req.OldPassword, user.PasswordHash) {
		writeDetail(w, http.StatusBadRequest, "Incorrect old password")
		return
	}

	hash, err := auth.HashPassword(req.NewPassword)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	if err := h.users.UpdatePassword(user.Email, hash); err != nil {
		writeError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "password changed"})
}

// credentialsFromRequest принимает обе формы логина: JSON и
// OAuth2-подобную форму с полями username/password.
func credentialsFromRequest(r *http.Request) (string, string, bool) {
	contentType := r.Header.Get("Content-Type")
	if strings.HasPrefix(contentType, "application/x-www-form-urlencoded") ||
		strings.HasPrefix(contentType, "multipart/form-data") {
		if err := r.ParseForm(); err != nil {
			return "", "", false
		}
		email := strings.ToLower(strings.TrimSpace(r.PostFormValue("username")))
		password := r.PostFormValue("password")
		return email, password, email != "" && password != ""
	}

	var req registerRequest
	if err := decodeJSON(r, &req); err != nil {
		return "", "", false
	}
	email := strings.ToLower(strings.TrimSpace(req.Email))
	return email, req.Password, email != "" && req.Password != ""
}

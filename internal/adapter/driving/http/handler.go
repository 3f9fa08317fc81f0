// Package httphandler is the HTTP driving adapter that serves the public
// content API and the login-gated admin API.
package httphandler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/ericfisherdev/sitecms/internal/application"
	"github.com/ericfisherdev/sitecms/internal/domain/model"
	"github.com/ericfisherdev/sitecms/internal/domain/port/driven"
)

const sessionCookieName = "sitecms_session"

// Handler serves the REST API over the application services.
type Handler struct {
	content  *application.ContentService
	users    *application.UserService
	sessions *application.SessionManager
	logger   *slog.Logger
}

// NewHandler creates a Handler with all required dependencies.
func NewHandler(
	content *application.ContentService,
	users *application.UserService,
	sessions *application.SessionManager,
	logger *slog.Logger,
) *Handler {
	return &Handler{
		content:  content,
		users:    users,
		sessions: sessions,
		logger:   logger,
	}
}

// NewServeMux creates an http.Handler with all routes registered and wrapped
// with logging and recovery middleware.
func NewServeMux(h *Handler, logger *slog.Logger) http.Handler {
	mux := http.NewServeMux()

	// Public content, read-only.
	mux.HandleFunc("GET /api/v1/health", h.Health)
	mux.HandleFunc("GET /api/v1/content", h.GetSite)
	mux.HandleFunc("GET /api/v1/content/{section}", h.GetSection)
	mux.HandleFunc("GET /api/v1/pages/{page}", h.GetPage)

	// Auth.
	mux.HandleFunc("POST /api/v1/auth/login", h.Login)
	mux.HandleFunc("POST /api/v1/auth/logout", h.Logout)
	mux.HandleFunc("GET /api/v1/auth/me", h.requireSession(h.Me))

	// Admin, session-gated.
	mux.HandleFunc("PUT /api/v1/content/{section}", h.requireSession(h.UpdateSection))
	mux.HandleFunc("PUT /api/v1/pages/{page}", h.requireSession(h.UpdatePage))
	mux.HandleFunc("GET /api/v1/admin/users", h.requireSession(h.ListUsers))
	mux.HandleFunc("POST /api/v1/admin/users", h.requireSession(h.CreateUser))
	mux.HandleFunc("GET /api/v1/admin/users/{id}", h.requireSession(h.GetUser))
	mux.HandleFunc("PUT /api/v1/admin/users/{id}", h.requireSession(h.UpdateUser))
	mux.HandleFunc("DELETE /api/v1/admin/users/{id}", h.requireSession(h.DeleteUser))
	mux.HandleFunc("POST /api/v1/admin/preview", h.requireSession(h.Preview))

	// Recovery innermost so panics are caught before logging.
	wrapped := recoveryMiddleware(logger, mux)
	wrapped = loggingMiddleware(logger, wrapped)

	return wrapped
}

// Health reports service liveness.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{
		Status: "ok",
		Time:   time.Now().UTC().Format(time.RFC3339),
	})
}

// GetSite returns the full section mapping, the payload every public page is
// rendered from.
func (h *Handler) GetSite(w http.ResponseWriter, r *http.Request) {
	data, err := h.content.LoadSite(r.Context())
	if err != nil {
		h.logger.Error("failed to load site data", "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	writeJSON(w, http.StatusOK, data)
}

// GetSection returns one section's content; unknown sections read as empty.
func (h *Handler) GetSection(w http.ResponseWriter, r *http.Request) {
	value, err := h.content.GetSection(r.Context(), r.PathValue("section"))
	if err != nil {
		h.logger.Error("failed to get section", "section", r.PathValue("section"), "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	writeJSON(w, http.StatusOK, value)
}

// UpdateSection replaces one section's content wholesale.
func (h *Handler) UpdateSection(w http.ResponseWriter, r *http.Request) {
	var value model.SectionData
	if err := json.NewDecoder(r.Body).Decode(&value); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	section := r.PathValue("section")
	if err := h.content.UpdateSection(r.Context(), section, value); err != nil {
		h.logger.Error("failed to update section", "section", section, "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	writeJSON(w, http.StatusOK, value)
}

// GetPage returns one page block nested inside the pages section.
func (h *Handler) GetPage(w http.ResponseWriter, r *http.Request) {
	value, err := h.content.GetPage(r.Context(), r.PathValue("page"))
	if err != nil {
		h.logger.Error("failed to get page", "page", r.PathValue("page"), "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	writeJSON(w, http.StatusOK, value)
}

// UpdatePage replaces one page block inside the pages section.
func (h *Handler) UpdatePage(w http.ResponseWriter, r *http.Request) {
	var value model.SectionData
	if err := json.NewDecoder(r.Body).Decode(&value); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	page := r.PathValue("page")
	if err := h.content.UpdatePage(r.Context(), page, value); err != nil {
		h.logger.Error("failed to update page", "page", page, "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	writeJSON(w, http.StatusOK, value)
}

// Login verifies credentials and opens a session. Failed credentials get the
// same response whether the username is unknown, inactive, or the password
// is wrong.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	user, err := h.users.Verify(r.Context(), req.Username, req.Password)
	if errors.Is(err, driven.ErrNotFound) {
		writeError(w, http.StatusUnauthorized, "invalid username or password")
		return
	}
	if err != nil {
		h.logger.Error("failed to verify login", "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	session := h.sessions.Create(*user)
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    session.Token,
		Path:     "/",
		Expires:  session.ExpiresAt,
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
	})

	writeJSON(w, http.StatusOK, SessionResponse{
		UserID:   session.UserID,
		Username: session.Username,
		Name:     session.Name,
	})
}

// Logout ends the current session, if any, and clears the cookie.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(sessionCookieName); err == nil {
		h.sessions.Destroy(cookie.Value)
	}

	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
	})
	w.WriteHeader(http.StatusNoContent)
}

// Me describes the logged-in admin.
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	session := r.Context().Value(sessionContextKey).(application.Session)
	writeJSON(w, http.StatusOK, SessionResponse{
		UserID:   session.UserID,
		Username: session.Username,
		Name:     session.Name,
	})
}

// ListUsers returns every account, active or not.
func (h *Handler) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.users.List(r.Context())
	if err != nil {
		h.logger.Error("failed to list users", "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	resp := make([]UserResponse, 0, len(users))
	for _, user := range users {
		resp = append(resp, toUserResponse(user))
	}
	writeJSON(w, http.StatusOK, resp)
}

// CreateUser adds a new admin account.
func (h *Handler) CreateUser(w http.ResponseWriter, r *http.Request) {
	var req CreateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	user, err := h.users.Create(r.Context(), req.Username, req.Password, req.Name, req.Email)
	if err != nil {
		h.writeUserError(w, err, "create user")
		return
	}
	writeJSON(w, http.StatusCreated, toUserResponse(user))
}

// GetUser returns one account by id.
func (h *Handler) GetUser(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}

	user, err := h.users.Get(r.Context(), id)
	if err != nil {
		h.writeUserError(w, err, "get user")
		return
	}
	writeJSON(w, http.StatusOK, toUserResponse(*user))
}

// UpdateUser overwrites an account's fields; an empty password keeps the
// stored one.
func (h *Handler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}

	var req UpdateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	user, err := h.users.Update(r.Context(), id, req.Username, req.Password, req.Name, req.Email, req.Active)
	if err != nil {
		h.writeUserError(w, err, "update user")
		return
	}
	writeJSON(w, http.StatusOK, toUserResponse(user))
}

// DeleteUser removes an account. Deleting an unknown id still succeeds.
func (h *Handler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}

	if err := h.users.Delete(r.Context(), id); err != nil {
		h.logger.Error("failed to delete user", "id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Preview renders markdown from the admin editor to sanitized HTML.
func (h *Handler) Preview(w http.ResponseWriter, r *http.Request) {
	var req PreviewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	writeJSON(w, http.StatusOK, PreviewResponse{HTML: RenderMarkdown(req.Markdown)})
}

// writeUserError maps domain errors from the user service to HTTP statuses.
func (h *Handler) writeUserError(w http.ResponseWriter, err error, op string) {
	switch {
	case errors.Is(err, driven.ErrNotFound):
		writeError(w, http.StatusNotFound, "user not found")
	case errors.Is(err, driven.ErrUsernameTaken):
		writeError(w, http.StatusConflict, "username already taken")
	case errors.Is(err, application.ErrMissingField):
		writeError(w, http.StatusBadRequest, "all fields are required")
	default:
		h.logger.Error("failed to "+op, "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}

func parseID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid user id")
		return 0, false
	}
	return id, true
}

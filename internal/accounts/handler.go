package accounts

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/academydb/academydb/internal/rbac"
	"github.com/academydb/academydb/internal/shared"
	"github.com/academydb/academydb/internal/view"
)

// Handler manages the admin user-management endpoints.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	templates *view.Engine
	csrf      *shared.CSRFManager
	activity  *shared.ActivityLogger
	guard     rbac.Middleware
}

func NewHandler(logger *slog.Logger, service *Service, templates *view.Engine, csrf *shared.CSRFManager, activity *shared.ActivityLogger, guard rbac.Middleware) *Handler {
	return &Handler{logger: logger, service: service, templates: templates, csrf: csrf, activity: activity, guard: guard}
}

// MountRoutes registers user-management routes. Admin only.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.guard.RequireRole(rbac.RoleAdmin))
		r.Use(h.guard.Limit("admin_user_management", 10, 5*time.Minute))
		r.Get("/admin/users", h.list)
		r.Get("/admin/users/new", h.showCreateForm)
		r.Post("/admin/users/new", h.create)
		r.Post("/admin/users/{id}/delete", h.delete)
		r.Post("/admin/users/{id}/password", h.resetPassword)
	})
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	list, err := h.service.List(r.Context())
	if err != nil {
		h.logger.Error("list accounts failed", "error", err)
		http.Error(w, "Failed to load users", http.StatusInternalServerError)
		return
	}
	h.render(w, r, "pages/users_list.html", map[string]any{"Users": list}, http.StatusOK)
}

func (h *Handler) showCreateForm(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, "pages/user_form.html", map[string]any{
		"User":   NewUser{},
		"Errors": map[string]string{},
	}, http.StatusOK)
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Bad request", http.StatusBadRequest)
		return
	}
	role, _ := rbac.ParseRole(r.PostFormValue("role"))
	u := NewUser{
		Username: r.PostFormValue("username"),
		Password: r.PostFormValue("password"),
		Role:     role,
		FullName: r.PostFormValue("full_name"),
		Email:    r.PostFormValue("email"),
		Contact:  r.PostFormValue("contact"),
		Dept:     r.PostFormValue("dept"),
	}
	id, err := h.service.Create(r.Context(), u)
	if err != nil {
		msg := "An error occurred while creating the user."
		switch {
		case errors.Is(err, shared.ErrValidation):
			msg = err.Error()
		case errors.Is(err, ErrUsernameTaken):
			msg = "That username is already taken"
		default:
			h.logger.Error("create user failed", "error", err, "username", u.Username)
		}
		u.Password = ""
		h.render(w, r, "pages/user_form.html", map[string]any{
			"User":   u,
			"Errors": map[string]string{"general": msg},
		}, http.StatusBadRequest)
		return
	}
	h.record(r, "create_user", "created "+u.Role.String()+" account "+u.Username+" ("+strconv.FormatInt(id, 10)+")", shared.StatusSuccess)
	h.redirectWithFlash(w, r, "/admin/users", "success", "User created")
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		http.Error(w, "Invalid user ID", http.StatusBadRequest)
		return
	}
	sess := shared.SessionFromContext(r.Context())
	if sess.Principal() == strconv.FormatInt(id, 10) {
		h.redirectWithFlash(w, r, "/admin/users", "error", "You cannot delete your own account")
		return
	}
	if err := h.service.Delete(r.Context(), id); err != nil {
		h.logger.Error("delete user failed", "error", err, "id", id)
		h.redirectWithFlash(w, r, "/admin/users", "error", "Could not delete user")
		return
	}
	h.record(r, "delete_user", "deleted account "+strconv.FormatInt(id, 10), shared.StatusSuccess)
	h.redirectWithFlash(w, r, "/admin/users", "success", "User deleted")
}

func (h *Handler) resetPassword(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		http.Error(w, "Invalid user ID", http.StatusBadRequest)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Bad request", http.StatusBadRequest)
		return
	}
	if err := h.service.ResetPassword(r.Context(), id, r.PostFormValue("password")); err != nil {
		msg := "Could not reset password"
		if errors.Is(err, shared.ErrValidation) {
			msg = err.Error()
		} else if !errors.Is(err, shared.ErrNotFound) {
			h.logger.Error("reset password failed", "error", err, "id", id)
		}
		h.redirectWithFlash(w, r, "/admin/users", "error", msg)
		return
	}
	h.record(r, "reset_password", "reset password for account "+strconv.FormatInt(id, 10), shared.StatusSuccess)
	h.redirectWithFlash(w, r, "/admin/users", "success", "Password reset")
}

func (h *Handler) render(w http.ResponseWriter, r *http.Request, template string, data map[string]any, status int) {
	sess := shared.SessionFromContext(r.Context())
	csrfToken, _ := h.csrf.EnsureToken(r.Context(), sess)
	var flash *shared.FlashMessage
	if sess != nil {
		flash = sess.PopFlash()
	}
	viewData := view.TemplateData{
		Title:       "User Management",
		CSRFToken:   csrfToken,
		Flash:       flash,
		CurrentPath: r.URL.Path,
		Role:        sess.Role(),
		Data:        data,
	}
	if status != http.StatusOK {
		w.WriteHeader(status)
	}
	if err := h.templates.Render(w, template, viewData); err != nil {
		h.logger.Error("render template", "error", err, "template", template)
	}
}

func (h *Handler) redirectWithFlash(w http.ResponseWriter, r *http.Request, location, kind, message string) {
	if sess := shared.SessionFromContext(r.Context()); sess != nil {
		sess.AddFlash(shared.FlashMessage{Kind: kind, Message: message})
	}
	http.Redirect(w, r, location, http.StatusSeeOther)
}

func (h *Handler) record(r *http.Request, action, description, status string) {
	sess := shared.SessionFromContext(r.Context())
	actor := shared.UnknownActor
	if sess != nil && sess.Authenticated() {
		actor = sess.Principal()
	}
	h.activity.Record(r.Context(), shared.ActivityEntry{
		Actor:       actor,
		Action:      action,
		Description: description,
		Status:      status,
		IPAddress:   r.RemoteAddr,
		UserAgent:   r.UserAgent(),
	})
}

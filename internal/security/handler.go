package security

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

// Handler serves the admin security settings page.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	templates *view.Engine
	csrf      *shared.CSRFManager
	activity  *shared.ActivityLogger
	guard     rbac.Middleware
}

// NewHandler builds a Handler instance.
func NewHandler(logger *slog.Logger, service *Service, templates *view.Engine, csrf *shared.CSRFManager, activity *shared.ActivityLogger, guard rbac.Middleware) *Handler {
	return &Handler{logger: logger, service: service, templates: templates, csrf: csrf, activity: activity, guard: guard}
}

// MountRoutes registers the settings routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.guard.RequireRole(rbac.RoleAdmin))
		r.Use(h.guard.Limit("admin_security_management", 10, 5*time.Minute))
		r.Get("/", h.showSettings)
		r.Post("/", h.updateSettings)
	})
}

func (h *Handler) showSettings(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, h.service.Current(r.Context()), "", http.StatusOK)
}

func (h *Handler) updateSettings(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}
	settings := Settings{
		MinPasswordLength:     atoiField(r, "min_password_length"),
		RequireSpecialChars:   r.PostFormValue("require_special_chars") == "on",
		RequireNumbers:        r.PostFormValue("require_numbers") == "on",
		RequireUppercase:      r.PostFormValue("require_uppercase") == "on",
		MaxLoginAttempts:      atoiField(r, "max_login_attempts"),
		SessionTimeoutMinutes: atoiField(r, "session_timeout"),
	}

	sess := shared.SessionFromContext(r.Context())
	actor := shared.UnknownActor
	if sess != nil {
		actor = sess.Principal()
	}

	if err := h.service.Update(r.Context(), settings); err != nil {
		msg := "An error occurred while saving settings."
		if errors.Is(err, shared.ErrValidation) {
			msg = err.Error()
		} else {
			h.logger.Error("update security settings", slog.Any("error", err))
		}
		h.activity.Record(r.Context(), shared.ActivityEntry{
			Actor: actor, Action: "update_security_settings", Description: "settings update rejected",
			Status: shared.StatusFailure, IPAddress: r.RemoteAddr, UserAgent: r.UserAgent(),
		})
		h.render(w, r, settings, msg, http.StatusBadRequest)
		return
	}

	h.activity.Record(r.Context(), shared.ActivityEntry{
		Actor: actor, Action: "update_security_settings", Description: "security settings updated",
		Status: shared.StatusSuccess, IPAddress: r.RemoteAddr, UserAgent: r.UserAgent(),
	})
	if sess != nil {
		sess.AddFlash(shared.FlashMessage{Kind: "success", Message: "Security settings updated"})
	}
	http.Redirect(w, r, "/admin/security", http.StatusSeeOther)
}

func (h *Handler) render(w http.ResponseWriter, r *http.Request, settings Settings, errMsg string, status int) {
	sess := shared.SessionFromContext(r.Context())
	csrfToken, _ := h.csrf.EnsureToken(r.Context(), sess)
	var flash *shared.FlashMessage
	if sess != nil {
		flash = sess.PopFlash()
	}
	if status != http.StatusOK {
		w.WriteHeader(status)
	}
	data := view.TemplateData{
		Title:       "Security Settings",
		CSRFToken:   csrfToken,
		Flash:       flash,
		CurrentPath: r.URL.Path,
		Role:        sessRole(sess),
		Data: map[string]any{
			"Settings": settings,
			"Error":    errMsg,
		},
	}
	if err := h.templates.Render(w, "pages/security_settings.html", data); err != nil {
		h.logger.Error("render security settings", slog.Any("error", err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
	}
}

func atoiField(r *http.Request, name string) int {
	n, _ := strconv.Atoi(r.PostFormValue(name))
	return n
}

func sessRole(sess *shared.Session) string {
	if sess == nil {
		return ""
	}
	return sess.Role()
}

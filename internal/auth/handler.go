package auth

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/academydb/academydb/internal/observability"
	"github.com/academydb/academydb/internal/shared"
	"github.com/academydb/academydb/internal/view"
)

// loginWindow is the fixed rate-limit window for login attempts.
const loginWindow = 5 * time.Minute

// loginAction is the rate-limit bucket shared by all login attempts.
const loginAction = "login_attempt"

// LoginPolicy supplies the configurable attempt ceiling for logins.
type LoginPolicy interface {
	MaxLoginAttempts(ctx context.Context) int
}

// Handler wires HTTP endpoints for authentication flows.
type Handler struct {
	logger         *slog.Logger
	service        *Service
	templates      *view.Engine
	sessionManager *shared.SessionManager
	csrfManager    *shared.CSRFManager
	limiter        *shared.RateLimiter
	policy         LoginPolicy
	activity       *shared.ActivityLogger
	metrics        *observability.Metrics
	validator      *validator.Validate
}

// NewHandler constructs a Handler instance.
func NewHandler(logger *slog.Logger, service *Service, templates *view.Engine, sessions *shared.SessionManager, csrf *shared.CSRFManager, limiter *shared.RateLimiter, policy LoginPolicy, activity *shared.ActivityLogger, metrics *observability.Metrics) *Handler {
	return &Handler{
		logger:         logger,
		service:        service,
		templates:      templates,
		sessionManager: sessions,
		csrfManager:    csrf,
		limiter:        limiter,
		policy:         policy,
		activity:       activity,
		metrics:        metrics,
		validator:      validator.New(),
	}
}

// MountRoutes registers auth routes on provided router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/login", h.showLogin)
	r.Post("/login", h.handleLogin)
	r.Post("/logout", h.handleLogout)
}

type loginForm struct {
	Username string `validate:"required"`
	Password string `validate:"required"`
}

type loginPageData struct {
	Form   loginForm
	Errors map[string]string
}

func (h *Handler) showLogin(w http.ResponseWriter, r *http.Request) {
	h.renderLogin(w, r, loginPageData{}, http.StatusOK)
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}
	sess := shared.SessionFromContext(r.Context())

	// Rate limit before any credential work so attempts cannot be used to
	// probe the account store.
	maxAttempts := 10
	if h.policy != nil {
		if n := h.policy.MaxLoginAttempts(r.Context()); n > 0 {
			maxAttempts = n
		}
	}
	if h.limiter != nil && !h.limiter.Allow(r.Context(), r.RemoteAddr, loginAction, maxAttempts, loginWindow) {
		h.record(r, shared.UnknownActor, "rate_limit_exceeded", "too many login attempts", shared.StatusFailure)
		http.Redirect(w, r, "/error?code=429", http.StatusSeeOther)
		return
	}

	form := loginForm{
		Username: r.PostFormValue("username"),
		Password: r.PostFormValue("password"),
	}
	formErrors := make(map[string]string)
	if err := h.validator.Struct(form); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) {
			for _, fieldErr := range fieldErrs {
				formErrors[fieldErr.Field()] = "This field is required"
			}
		}
	}

	if len(formErrors) == 0 {
		principal, err := h.service.Authenticate(r.Context(), form.Username, form.Password)
		if err != nil {
			formErrors["general"] = "Invalid username or password."
			h.record(r, shared.UnknownActor, "login", "failed login for "+form.Username, shared.StatusFailure)
			h.metrics.ObserveLogin("failure")
		} else {
			if sess == nil {
				h.logger.Error("session missing during login")
				http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
				return
			}
			sess.SetPrincipal(strconv.FormatInt(principal.ID, 10), principal.Role.String())
			sess.AddFlash(shared.FlashMessage{Kind: "success", Message: "Welcome back, " + principal.Username})
			h.record(r, strconv.FormatInt(principal.ID, 10), "login", "successful login", shared.StatusSuccess)
			h.metrics.ObserveLogin("success")
			http.Redirect(w, r, "/", http.StatusSeeOther)
			return
		}
	}

	form.Password = ""
	h.renderLogin(w, r, loginPageData{Form: form, Errors: formErrors}, http.StatusBadRequest)
}

func (h *Handler) handleLogout(w http.ResponseWriter, r *http.Request) {
	sess := shared.SessionFromContext(r.Context())
	if sess != nil && sess.Authenticated() {
		h.record(r, sess.Principal(), "logout", "user logged out", shared.StatusSuccess)
		h.sessionManager.Destroy(sess)
	}
	http.Redirect(w, r, "/auth/login", http.StatusSeeOther)
}

func (h *Handler) renderLogin(w http.ResponseWriter, r *http.Request, data loginPageData, status int) {
	sess := shared.SessionFromContext(r.Context())
	csrfToken, _ := h.csrfManager.EnsureToken(r.Context(), sess)
	var flash *shared.FlashMessage
	if sess != nil {
		flash = sess.PopFlash()
	}
	viewData := view.TemplateData{
		Title:       "Login",
		CSRFToken:   csrfToken,
		Flash:       flash,
		CurrentPath: r.URL.Path,
		Data:        data,
	}
	if status != http.StatusOK {
		w.WriteHeader(status)
	}
	if err := h.templates.Render(w, "pages/login.html", viewData); err != nil {
		h.logger.Error("render login", slog.Any("error", err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
	}
}

func (h *Handler) record(r *http.Request, actor, action, description, status string) {
	if h.activity == nil {
		return
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

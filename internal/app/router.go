package app

import (
	"io/fs"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/academydb/academydb/internal/accounts"
	"github.com/academydb/academydb/internal/attendance"
	"github.com/academydb/academydb/internal/audit"
	"github.com/academydb/academydb/internal/auth"
	"github.com/academydb/academydb/internal/courses"
	"github.com/academydb/academydb/internal/enrollment"
	"github.com/academydb/academydb/internal/faculty"
	"github.com/academydb/academydb/internal/grades"
	"github.com/academydb/academydb/internal/observability"
	"github.com/academydb/academydb/internal/rbac"
	"github.com/academydb/academydb/internal/security"
	"github.com/academydb/academydb/internal/sensitive"
	"github.com/academydb/academydb/internal/shared"
	"github.com/academydb/academydb/internal/students"
	"github.com/academydb/academydb/internal/view"
	"github.com/academydb/academydb/jobs"
	"github.com/academydb/academydb/web"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger         *slog.Logger
	Config         *Config
	Templates      *view.Engine
	SessionManager *shared.SessionManager
	CSRFManager    *shared.CSRFManager

	AuthHandler       *auth.Handler
	AccountsHandler   *accounts.Handler
	StudentsHandler   *students.Handler
	FacultyHandler    *faculty.Handler
	CoursesHandler    *courses.Handler
	EnrollmentHandler *enrollment.Handler
	GradesHandler     *grades.Handler
	AttendanceHandler *attendance.Handler
	SensitiveHandler  *sensitive.Handler
	SecurityHandler   *security.Handler
	AuditHandler      *audit.Handler
	JobsHandler       *jobs.Handler

	Metrics *observability.Metrics
}

// NewRouter constructs the chi.Router with the default middleware stack
// and every module's routes mounted.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger:         params.Logger,
		Config:         params.Config,
		SessionManager: params.SessionManager,
		CSRFManager:    params.CSRFManager,
		Metrics:        params.Metrics,
	}) {
		r.Use(mw)
	}

	r.Use(chimw.Logger)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		sess := shared.SessionFromContext(r.Context())
		if sess == nil || !sess.Authenticated() {
			http.Redirect(w, r, "/auth/login", http.StatusSeeOther)
			return
		}
		renderPage(params, w, r, "pages/home.html", "AcademyDB", map[string]any{
			"AppEnv": params.Config.AppEnv,
		})
	})

	r.Get("/error", func(w http.ResponseWriter, r *http.Request) {
		code := r.URL.Query().Get("code")
		title := "Error"
		message := "Something went wrong."
		if code == "429" {
			title = "Too Many Requests"
			message = "You have made too many requests. Please wait a few minutes and try again."
		}
		renderPage(params, w, r, "pages/error.html", title, map[string]any{
			"Code":    code,
			"Message": message,
		})
	})

	r.Route("/auth", params.AuthHandler.MountRoutes)
	params.AccountsHandler.MountRoutes(r)
	params.StudentsHandler.MountRoutes(r)
	params.FacultyHandler.MountRoutes(r)
	params.CoursesHandler.MountRoutes(r)
	params.EnrollmentHandler.MountRoutes(r)
	params.GradesHandler.MountRoutes(r)
	params.AttendanceHandler.MountRoutes(r)
	params.SensitiveHandler.MountRoutes(r)
	r.Route("/admin/security", params.SecurityHandler.MountRoutes)
	params.AuditHandler.MountRoutes(r)
	if params.JobsHandler != nil {
		r.Route("/jobs", params.JobsHandler.MountRoutes)
	}

	if params.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", params.Metrics.Handler())
	}

	staticFS, err := fs.Sub(web.Static, "static")
	if err != nil {
		params.Logger.Error("create static sub filesystem", slog.Any("error", err))
	} else {
		// Static assets skip sessions and CSRF, cached for an hour.
		fileServer := http.StripPrefix("/static/", http.FileServer(http.FS(staticFS)))
		r.Handle("/static/*", staticCacheHandler(fileServer))
	}

	return r
}

func renderPage(params RouterParams, w http.ResponseWriter, r *http.Request, template, title string, data map[string]any) {
	sess := shared.SessionFromContext(r.Context())
	csrfToken, _ := params.CSRFManager.EnsureToken(r.Context(), sess)
	var flash *shared.FlashMessage
	role := rbac.RoleUnknown.String()
	if sess != nil {
		flash = sess.PopFlash()
		role = sess.Role()
	}
	viewData := view.TemplateData{
		Title:       title,
		CSRFToken:   csrfToken,
		Flash:       flash,
		CurrentPath: r.URL.Path,
		Role:        role,
		Data:        data,
	}
	if err := params.Templates.Render(w, template, viewData); err != nil {
		params.Logger.Error("render page", slog.Any("error", err), slog.String("template", template))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
	}
}

// staticCacheHandler wraps a file server with Cache-Control headers.
func staticCacheHandler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", "public, max-age=3600")
		next.ServeHTTP(w, r)
	})
}

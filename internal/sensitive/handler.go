package sensitive

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

// Handler serves the restricted-data pages.
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

// MountRoutes registers restricted-data routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.guard.RequireRole(rbac.RoleAdmin))
		r.Use(h.guard.Limit("admin_sensitive_data", 10, 5*time.Minute))
		r.Get("/admin/sensitive", h.showManagePage)
		r.Post("/admin/sensitive/student", h.saveStudent)
		r.Post("/admin/sensitive/faculty", h.saveFaculty)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.guard.RequireRole(rbac.RoleFaculty))
		r.Use(h.guard.Limit("faculty_sensitive_data", 20, 5*time.Minute))
		r.Get("/faculty/sensitive", h.facultySelfView)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.guard.RequireRole(rbac.RoleStudent))
		r.Use(h.guard.Limit("student_sensitive_data", 20, 5*time.Minute))
		r.Get("/student/sensitive", h.studentSelfView)
	})
}

func (h *Handler) showManagePage(w http.ResponseWriter, r *http.Request) {
	data := map[string]any{"Errors": map[string]string{}}

	if raw := r.URL.Query().Get("student_id"); raw != "" {
		if id, err := strconv.ParseInt(raw, 10, 64); err == nil {
			rec, err := h.service.StudentRecord(r.Context(), id)
			if err == nil {
				data["StudentRecord"] = rec
				h.record(r, "view_student_data", "viewed sensitive data for student "+raw, shared.StatusSuccess)
			} else if !errors.Is(err, shared.ErrNotFound) {
				h.logger.Error("load student sensitive record", "error", err)
			}
		}
	}
	if raw := r.URL.Query().Get("faculty_id"); raw != "" {
		if id, err := strconv.ParseInt(raw, 10, 64); err == nil {
			rec, err := h.service.FacultyRecord(r.Context(), id)
			if err == nil {
				data["FacultyRecord"] = rec
				h.record(r, "view_faculty_data", "viewed sensitive data for faculty "+raw, shared.StatusSuccess)
			} else if !errors.Is(err, shared.ErrNotFound) {
				h.logger.Error("load faculty sensitive record", "error", err)
			}
		}
	}

	h.render(w, r, "pages/sensitive_admin.html", data, http.StatusOK)
}

func (h *Handler) saveStudent(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Bad request", http.StatusBadRequest)
		return
	}
	id, err := strconv.ParseInt(r.PostFormValue("student_id"), 10, 64)
	if err != nil {
		http.Error(w, "Invalid student ID", http.StatusBadRequest)
		return
	}
	rec := StudentRecord{
		StudentID:     id,
		SSN:           r.PostFormValue("ssn"),
		FinancialInfo: r.PostFormValue("financial_info"),
	}
	if err := h.service.SaveStudentRecord(r.Context(), rec); err != nil {
		h.failSave(w, r, "update_student_data", err, map[string]any{"StudentRecord": rec})
		return
	}
	h.record(r, "update_student_data", "updated sensitive data for student "+r.PostFormValue("student_id"), shared.StatusSuccess)
	h.redirectWithFlash(w, r, "/admin/sensitive", "success", "Student sensitive data updated")
}

func (h *Handler) saveFaculty(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Bad request", http.StatusBadRequest)
		return
	}
	id, err := strconv.ParseInt(r.PostFormValue("faculty_id"), 10, 64)
	if err != nil {
		http.Error(w, "Invalid faculty ID", http.StatusBadRequest)
		return
	}
	rec := FacultyRecord{
		FacultyID: id,
		SSN:       r.PostFormValue("ssn"),
		BankInfo:  r.PostFormValue("bank_info"),
	}
	if err := h.service.SaveFacultyRecord(r.Context(), rec); err != nil {
		h.failSave(w, r, "update_faculty_data", err, map[string]any{"FacultyRecord": rec})
		return
	}
	h.record(r, "update_faculty_data", "updated sensitive data for faculty "+r.PostFormValue("faculty_id"), shared.StatusSuccess)
	h.redirectWithFlash(w, r, "/admin/sensitive", "success", "Faculty sensitive data updated")
}

func (h *Handler) facultySelfView(w http.ResponseWriter, r *http.Request) {
	h.selfView(w, r, "pages/sensitive_self.html", func(id int64) (any, error) {
		return h.service.MaskedFacultyRecord(r.Context(), id)
	}, "FacultyRecord")
}

func (h *Handler) studentSelfView(w http.ResponseWriter, r *http.Request) {
	h.selfView(w, r, "pages/sensitive_self.html", func(id int64) (any, error) {
		return h.service.MaskedStudentRecord(r.Context(), id)
	}, "StudentRecord")
}

func (h *Handler) selfView(w http.ResponseWriter, r *http.Request, template string, load func(int64) (any, error), key string) {
	sess := shared.SessionFromContext(r.Context())
	id, err := strconv.ParseInt(sess.Principal(), 10, 64)
	if err != nil {
		http.Error(w, http.StatusText(http.StatusForbidden), http.StatusForbidden)
		return
	}
	data := map[string]any{}
	rec, err := load(id)
	if err != nil {
		if !errors.Is(err, shared.ErrNotFound) {
			h.logger.Error("load own sensitive record", "error", err, "id", id)
		}
	} else {
		data[key] = rec
	}
	h.render(w, r, template, data, http.StatusOK)
}

func (h *Handler) failSave(w http.ResponseWriter, r *http.Request, action string, err error, data map[string]any) {
	msg := "An error occurred while saving."
	if errors.Is(err, shared.ErrValidation) {
		msg = err.Error()
	} else {
		h.logger.Error("save sensitive record", "error", err)
	}
	h.record(r, action, "sensitive data update rejected", shared.StatusFailure)
	data["Errors"] = map[string]string{"general": msg}
	h.render(w, r, "pages/sensitive_admin.html", data, http.StatusBadRequest)
}

func (h *Handler) render(w http.ResponseWriter, r *http.Request, template string, data map[string]any, status int) {
	sess := shared.SessionFromContext(r.Context())
	csrfToken, _ := h.csrf.EnsureToken(r.Context(), sess)
	var flash *shared.FlashMessage
	if sess != nil {
		flash = sess.PopFlash()
	}
	viewData := view.TemplateData{
		Title:       "Sensitive Data",
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

package students

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/academydb/academydb/internal/rbac"
	"github.com/academydb/academydb/internal/sensitive"
	"github.com/academydb/academydb/internal/shared"
	"github.com/academydb/academydb/internal/view"
)

// Handler manages student profile endpoints.
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

// MountRoutes registers student profile routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.guard.RequireRole(rbac.RoleAdmin))
		r.Use(h.guard.Limit("admin_students", 10, 5*time.Minute))
		r.Get("/admin/students", h.list)
		r.Get("/admin/students/{id}", h.show)
		r.Get("/admin/students/{id}/edit", h.showEditForm)
		r.Post("/admin/students/{id}/edit", h.update)
		r.Post("/admin/students/{id}/delete", h.delete)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.guard.RequireRole(rbac.RoleStudent))
		r.Use(h.guard.Limit("student_profile", 20, 5*time.Minute))
		r.Get("/student/profile", h.selfProfile)
	})
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	filters := ListFilters{
		Page:   page,
		Search: r.URL.Query().Get("search"),
		Status: r.URL.Query().Get("status"),
	}
	list, total, err := h.service.List(r.Context(), filters)
	if err != nil {
		h.logger.Error("list students failed", "error", err)
		http.Error(w, "Failed to load students", http.StatusInternalServerError)
		return
	}
	h.render(w, r, "pages/students_list.html", map[string]any{
		"Students":   list,
		"Filters":    filters,
		"Pagination": shared.NewPagination(filters.Page, filters.Limit, total),
	}, http.StatusOK)
}

func (h *Handler) show(w http.ResponseWriter, r *http.Request) {
	student, ok := h.load(w, r)
	if !ok {
		return
	}
	h.render(w, r, "pages/student_detail.html", map[string]any{"Student": student}, http.StatusOK)
}

func (h *Handler) showEditForm(w http.ResponseWriter, r *http.Request) {
	student, ok := h.load(w, r)
	if !ok {
		return
	}
	h.render(w, r, "pages/student_form.html", map[string]any{
		"Student": student,
		"Errors":  map[string]string{},
	}, http.StatusOK)
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		http.Error(w, "Invalid student ID", http.StatusBadRequest)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Bad request", http.StatusBadRequest)
		return
	}
	student := Student{
		FullName:       r.PostFormValue("full_name"),
		Email:          r.PostFormValue("email"),
		Contact:        r.PostFormValue("contact"),
		Status:         r.PostFormValue("status"),
		AdditionalInfo: r.PostFormValue("additional_info"),
	}
	if err := h.service.Update(r.Context(), id, student); err != nil {
		msg := "An error occurred while saving the student."
		if errors.Is(err, shared.ErrValidation) {
			msg = err.Error()
		} else {
			h.logger.Error("update student failed", "error", err, "id", id)
		}
		student.ID = id
		h.render(w, r, "pages/student_form.html", map[string]any{
			"Student": student,
			"Errors":  map[string]string{"general": msg},
		}, http.StatusBadRequest)
		return
	}
	h.record(r, "update_student", "updated student "+strconv.FormatInt(id, 10), shared.StatusSuccess)
	h.redirectWithFlash(w, r, "/admin/students/"+strconv.FormatInt(id, 10), "success", "Student updated")
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		http.Error(w, "Invalid student ID", http.StatusBadRequest)
		return
	}
	if err := h.service.Delete(r.Context(), id); err != nil {
		h.logger.Error("delete student failed", "error", err, "id", id)
		h.redirectWithFlash(w, r, "/admin/students", "error", "Could not delete student")
		return
	}
	h.record(r, "delete_student", "deleted student "+strconv.FormatInt(id, 10), shared.StatusSuccess)
	h.redirectWithFlash(w, r, "/admin/students", "success", "Student deleted")
}

// selfProfile shows the signed-in student their own record with contact
// details masked, matching the sensitive-data display convention.
func (h *Handler) selfProfile(w http.ResponseWriter, r *http.Request) {
	sess := shared.SessionFromContext(r.Context())
	id, err := strconv.ParseInt(sess.Principal(), 10, 64)
	if err != nil {
		http.Error(w, http.StatusText(http.StatusForbidden), http.StatusForbidden)
		return
	}
	student, err := h.service.Get(r.Context(), id)
	if err != nil {
		h.logger.Error("load own student profile", "error", err, "id", id)
		http.Error(w, "Profile not found", http.StatusNotFound)
		return
	}
	student.Email = sensitive.MaskEmail(student.Email)
	student.Contact = sensitive.MaskContact(student.Contact)
	h.render(w, r, "pages/student_detail.html", map[string]any{
		"Student":  student,
		"SelfView": true,
	}, http.StatusOK)
}

func (h *Handler) load(w http.ResponseWriter, r *http.Request) (Student, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		http.Error(w, "Invalid student ID", http.StatusBadRequest)
		return Student{}, false
	}
	student, err := h.service.Get(r.Context(), id)
	if err != nil {
		if !errors.Is(err, shared.ErrNotFound) {
			h.logger.Error("get student failed", "error", err, "id", id)
		}
		http.Error(w, "Student not found", http.StatusNotFound)
		return Student{}, false
	}
	return student, true
}

func (h *Handler) render(w http.ResponseWriter, r *http.Request, template string, data map[string]any, status int) {
	sess := shared.SessionFromContext(r.Context())
	csrfToken, _ := h.csrf.EnsureToken(r.Context(), sess)
	var flash *shared.FlashMessage
	if sess != nil {
		flash = sess.PopFlash()
	}
	viewData := view.TemplateData{
		Title:       "Students",
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

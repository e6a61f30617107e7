package courses

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

// Handler manages course catalog endpoints.
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

// MountRoutes registers catalog routes for all three roles.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.guard.RequireRole(rbac.RoleAdmin))
		r.Use(h.guard.Limit("admin_courses", 10, 5*time.Minute))
		r.Get("/admin/courses", h.list)
		r.Get("/admin/courses/new", h.showCreateForm)
		r.Post("/admin/courses/new", h.create)
		r.Get("/admin/courses/{id}/edit", h.showEditForm)
		r.Post("/admin/courses/{id}/edit", h.update)
		r.Post("/admin/courses/{id}/delete", h.delete)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.guard.RequireRole(rbac.RoleFaculty))
		r.Use(h.guard.Limit("faculty_courses", 20, 5*time.Minute))
		r.Get("/faculty/courses", h.myCourses)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.guard.RequireRole(rbac.RoleStudent))
		r.Use(h.guard.Limit("student_catalog", 20, 5*time.Minute))
		r.Get("/student/catalog", h.catalog)
	})
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	list, total, filters, ok := h.query(w, r)
	if !ok {
		return
	}
	h.render(w, r, "pages/courses_list.html", map[string]any{
		"Courses":    list,
		"Filters":    filters,
		"Pagination": shared.NewPagination(filters.Page, filters.Limit, total),
		"Manage":     true,
	}, http.StatusOK)
}

// catalog is the read-only course listing students browse before
// registering.
func (h *Handler) catalog(w http.ResponseWriter, r *http.Request) {
	list, total, filters, ok := h.query(w, r)
	if !ok {
		return
	}
	h.render(w, r, "pages/courses_list.html", map[string]any{
		"Courses":    list,
		"Filters":    filters,
		"Pagination": shared.NewPagination(filters.Page, filters.Limit, total),
		"Manage":     false,
	}, http.StatusOK)
}

func (h *Handler) myCourses(w http.ResponseWriter, r *http.Request) {
	sess := shared.SessionFromContext(r.Context())
	facultyID, err := strconv.ParseInt(sess.Principal(), 10, 64)
	if err != nil {
		http.Error(w, http.StatusText(http.StatusForbidden), http.StatusForbidden)
		return
	}
	list, err := h.service.TaughtBy(r.Context(), facultyID)
	if err != nil {
		h.logger.Error("list taught courses failed", "error", err, "faculty_id", facultyID)
		http.Error(w, "Failed to load courses", http.StatusInternalServerError)
		return
	}
	h.render(w, r, "pages/courses_mine.html", map[string]any{"Courses": list}, http.StatusOK)
}

func (h *Handler) showCreateForm(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, "pages/course_form.html", map[string]any{
		"Course": Course{Credits: 3, Level: LevelUndergraduate},
		"Errors": map[string]string{},
	}, http.StatusOK)
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	course, ok := h.parseForm(w, r)
	if !ok {
		return
	}
	id, err := h.service.Create(r.Context(), course)
	if err != nil {
		h.renderFormError(w, r, course, err, "create course failed")
		return
	}
	h.record(r, "create_course", "created course "+course.Code, shared.StatusSuccess)
	h.redirectWithFlash(w, r, "/admin/courses/"+strconv.FormatInt(id, 10)+"/edit", "success", "Course created")
}

func (h *Handler) showEditForm(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		http.Error(w, "Invalid course ID", http.StatusBadRequest)
		return
	}
	course, err := h.service.Get(r.Context(), id)
	if err != nil {
		if !errors.Is(err, shared.ErrNotFound) {
			h.logger.Error("get course failed", "error", err, "id", id)
		}
		http.Error(w, "Course not found", http.StatusNotFound)
		return
	}
	h.render(w, r, "pages/course_form.html", map[string]any{
		"Course": course,
		"Errors": map[string]string{},
	}, http.StatusOK)
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		http.Error(w, "Invalid course ID", http.StatusBadRequest)
		return
	}
	course, ok := h.parseForm(w, r)
	if !ok {
		return
	}
	course.ID = id
	if err := h.service.Update(r.Context(), course); err != nil {
		h.renderFormError(w, r, course, err, "update course failed")
		return
	}
	h.record(r, "update_course", "updated course "+strconv.FormatInt(id, 10), shared.StatusSuccess)
	h.redirectWithFlash(w, r, "/admin/courses", "success", "Course updated")
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		http.Error(w, "Invalid course ID", http.StatusBadRequest)
		return
	}
	if err := h.service.Delete(r.Context(), id); err != nil {
		h.logger.Error("delete course failed", "error", err, "id", id)
		h.redirectWithFlash(w, r, "/admin/courses", "error", "Could not delete course")
		return
	}
	h.record(r, "delete_course", "deleted course "+strconv.FormatInt(id, 10), shared.StatusSuccess)
	h.redirectWithFlash(w, r, "/admin/courses", "success", "Course deleted")
}

func (h *Handler) query(w http.ResponseWriter, r *http.Request) ([]Course, int, ListFilters, bool) {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	facultyID, _ := strconv.ParseInt(r.URL.Query().Get("faculty_id"), 10, 64)
	filters := ListFilters{
		Page:      page,
		Search:    r.URL.Query().Get("search"),
		Level:     r.URL.Query().Get("level"),
		FacultyID: facultyID,
	}
	list, total, err := h.service.List(r.Context(), filters)
	if err != nil {
		h.logger.Error("list courses failed", "error", err)
		http.Error(w, "Failed to load courses", http.StatusInternalServerError)
		return nil, 0, filters, false
	}
	if filters.Page < 1 {
		filters.Page = 1
	}
	if filters.Limit < 1 {
		filters.Limit = 25
	}
	return list, total, filters, true
}

func (h *Handler) parseForm(w http.ResponseWriter, r *http.Request) (Course, bool) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Bad request", http.StatusBadRequest)
		return Course{}, false
	}
	credits, _ := strconv.Atoi(r.PostFormValue("credits"))
	facultyID, _ := strconv.ParseInt(r.PostFormValue("faculty_id"), 10, 64)
	return Course{
		Code:        r.PostFormValue("code"),
		Title:       r.PostFormValue("title"),
		Description: r.PostFormValue("description"),
		Credits:     credits,
		Level:       r.PostFormValue("level"),
		FacultyID:   facultyID,
	}, true
}

func (h *Handler) renderFormError(w http.ResponseWriter, r *http.Request, course Course, err error, logMsg string) {
	msg := "An error occurred while saving the course."
	if errors.Is(err, shared.ErrValidation) {
		msg = err.Error()
	} else {
		h.logger.Error(logMsg, "error", err)
	}
	h.render(w, r, "pages/course_form.html", map[string]any{
		"Course": course,
		"Errors": map[string]string{"general": msg},
	}, http.StatusBadRequest)
}

func (h *Handler) render(w http.ResponseWriter, r *http.Request, template string, data map[string]any, status int) {
	sess := shared.SessionFromContext(r.Context())
	csrfToken, _ := h.csrf.EnsureToken(r.Context(), sess)
	var flash *shared.FlashMessage
	if sess != nil {
		flash = sess.PopFlash()
	}
	viewData := view.TemplateData{
		Title:       "Courses",
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

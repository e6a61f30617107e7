package enrollment

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/academydb/academydb/internal/courses"
	"github.com/academydb/academydb/internal/rbac"
	"github.com/academydb/academydb/internal/shared"
	"github.com/academydb/academydb/internal/view"
)

// Handler manages course registration endpoints.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	courses   *courses.Service
	templates *view.Engine
	csrf      *shared.CSRFManager
	activity  *shared.ActivityLogger
	guard     rbac.Middleware
}

func NewHandler(logger *slog.Logger, service *Service, courseSvc *courses.Service, templates *view.Engine, csrf *shared.CSRFManager, activity *shared.ActivityLogger, guard rbac.Middleware) *Handler {
	return &Handler{logger: logger, service: service, courses: courseSvc, templates: templates, csrf: csrf, activity: activity, guard: guard}
}

// MountRoutes registers enrollment routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.guard.RequireRole(rbac.RoleStudent))
		r.Use(h.guard.Limit("student_registration", 10, 5*time.Minute))
		r.Get("/student/enrollments", h.myEnrollments)
		r.Post("/student/enrollments/register", h.register)
		r.Post("/student/enrollments/drop", h.drop)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.guard.RequireRole(rbac.RoleFaculty))
		r.Use(h.guard.Limit("faculty_roster", 20, 5*time.Minute))
		r.Get("/faculty/courses/{id}/roster", h.roster)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.guard.RequireRole(rbac.RoleAdmin))
		r.Use(h.guard.Limit("admin_enrollments", 10, 5*time.Minute))
		r.Get("/admin/courses/{id}/roster", h.adminRoster)
	})
}

func (h *Handler) myEnrollments(w http.ResponseWriter, r *http.Request) {
	studentID, ok := h.principalID(w, r)
	if !ok {
		return
	}
	list, err := h.service.ListByStudent(r.Context(), studentID)
	if err != nil {
		h.logger.Error("list enrollments failed", "error", err, "student_id", studentID)
		http.Error(w, "Failed to load enrollments", http.StatusInternalServerError)
		return
	}
	load, err := h.service.CreditLoad(r.Context(), studentID)
	if err != nil {
		h.logger.Error("credit load failed", "error", err, "student_id", studentID)
		http.Error(w, "Failed to load enrollments", http.StatusInternalServerError)
		return
	}
	h.render(w, r, "pages/enrollments.html", map[string]any{
		"Enrollments": list,
		"CreditLoad":  load,
		"CreditCap":   MaxSemesterCredits,
	}, http.StatusOK)
}

func (h *Handler) register(w http.ResponseWriter, r *http.Request) {
	studentID, ok := h.principalID(w, r)
	if !ok {
		return
	}
	courseID, ok := h.formCourseID(w, r)
	if !ok {
		return
	}
	if err := h.service.Register(r.Context(), studentID, courseID); err != nil {
		msg := "Registration failed"
		switch {
		case errors.Is(err, ErrAlreadyEnrolled):
			msg = "You are already enrolled in this course"
		case errors.Is(err, ErrCreditLimit):
			msg = "Registering would exceed the semester credit limit"
		case errors.Is(err, shared.ErrNotFound):
			msg = "Course not found"
		default:
			h.logger.Error("register failed", "error", err, "student_id", studentID, "course_id", courseID)
		}
		h.record(r, "course_registration", "registration for course "+strconv.FormatInt(courseID, 10)+" rejected", shared.StatusFailure)
		h.redirectWithFlash(w, r, "/student/enrollments", "error", msg)
		return
	}
	h.record(r, "course_registration", "registered for course "+strconv.FormatInt(courseID, 10), shared.StatusSuccess)
	h.redirectWithFlash(w, r, "/student/enrollments", "success", "Registered")
}

func (h *Handler) drop(w http.ResponseWriter, r *http.Request) {
	studentID, ok := h.principalID(w, r)
	if !ok {
		return
	}
	courseID, ok := h.formCourseID(w, r)
	if !ok {
		return
	}
	if err := h.service.Drop(r.Context(), studentID, courseID); err != nil {
		msg := "Drop failed"
		if errors.Is(err, shared.ErrNotFound) {
			msg = "You are not enrolled in this course"
		} else {
			h.logger.Error("drop failed", "error", err, "student_id", studentID, "course_id", courseID)
		}
		h.redirectWithFlash(w, r, "/student/enrollments", "error", msg)
		return
	}
	h.record(r, "course_drop", "dropped course "+strconv.FormatInt(courseID, 10), shared.StatusSuccess)
	h.redirectWithFlash(w, r, "/student/enrollments", "success", "Course dropped")
}

// roster shows a course roster to the faculty member teaching it.
// Other faculty get a 403 rather than a peek at someone else's class.
func (h *Handler) roster(w http.ResponseWriter, r *http.Request) {
	facultyID, ok := h.principalID(w, r)
	if !ok {
		return
	}
	courseID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		http.Error(w, "Invalid course ID", http.StatusBadRequest)
		return
	}
	teaches, err := h.courses.Teaches(r.Context(), facultyID, courseID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			http.Error(w, "Course not found", http.StatusNotFound)
			return
		}
		h.logger.Error("ownership check failed", "error", err, "course_id", courseID)
		http.Error(w, "Failed to load roster", http.StatusInternalServerError)
		return
	}
	if !teaches {
		h.record(r, "unauthorized_access", "roster access for course "+strconv.FormatInt(courseID, 10)+" denied", shared.StatusFailure)
		http.Error(w, http.StatusText(http.StatusForbidden), http.StatusForbidden)
		return
	}
	h.renderRoster(w, r, courseID)
}

func (h *Handler) adminRoster(w http.ResponseWriter, r *http.Request) {
	courseID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		http.Error(w, "Invalid course ID", http.StatusBadRequest)
		return
	}
	h.renderRoster(w, r, courseID)
}

func (h *Handler) renderRoster(w http.ResponseWriter, r *http.Request, courseID int64) {
	course, err := h.courses.Get(r.Context(), courseID)
	if err != nil {
		if !errors.Is(err, shared.ErrNotFound) {
			h.logger.Error("load course failed", "error", err, "course_id", courseID)
		}
		http.Error(w, "Course not found", http.StatusNotFound)
		return
	}
	roster, err := h.service.Roster(r.Context(), courseID)
	if err != nil {
		h.logger.Error("load roster failed", "error", err, "course_id", courseID)
		http.Error(w, "Failed to load roster", http.StatusInternalServerError)
		return
	}
	h.render(w, r, "pages/roster.html", map[string]any{
		"Course": course,
		"Roster": roster,
	}, http.StatusOK)
}

func (h *Handler) principalID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	sess := shared.SessionFromContext(r.Context())
	id, err := strconv.ParseInt(sess.Principal(), 10, 64)
	if err != nil {
		http.Error(w, http.StatusText(http.StatusForbidden), http.StatusForbidden)
		return 0, false
	}
	return id, true
}

func (h *Handler) formCourseID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Bad request", http.StatusBadRequest)
		return 0, false
	}
	courseID, err := strconv.ParseInt(r.PostFormValue("course_id"), 10, 64)
	if err != nil {
		http.Error(w, "Invalid course ID", http.StatusBadRequest)
		return 0, false
	}
	return courseID, true
}

func (h *Handler) render(w http.ResponseWriter, r *http.Request, template string, data map[string]any, status int) {
	sess := shared.SessionFromContext(r.Context())
	csrfToken, _ := h.csrf.EnsureToken(r.Context(), sess)
	var flash *shared.FlashMessage
	if sess != nil {
		flash = sess.PopFlash()
	}
	viewData := view.TemplateData{
		Title:       "Enrollment",
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

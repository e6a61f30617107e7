package grades

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

// Handler manages grade endpoints.
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

// MountRoutes registers grade routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.guard.RequireRole(rbac.RoleFaculty))
		r.Use(h.guard.Limit("faculty_grades", 20, 5*time.Minute))
		r.Get("/faculty/courses/{id}/grades", h.courseGrades)
		r.Post("/faculty/courses/{id}/grades", h.recordGrade)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.guard.RequireRole(rbac.RoleStudent))
		r.Use(h.guard.Limit("student_grades", 20, 5*time.Minute))
		r.Get("/student/grades", h.myGrades)
	})
}

func (h *Handler) courseGrades(w http.ResponseWriter, r *http.Request) {
	facultyID, ok := h.principalID(w, r)
	if !ok {
		return
	}
	courseID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		http.Error(w, "Invalid course ID", http.StatusBadRequest)
		return
	}
	list, err := h.service.CourseGrades(r.Context(), facultyID, courseID)
	if err != nil {
		h.handleAccessError(w, r, err, courseID)
		return
	}
	h.record(r, "view_grades", "viewed grades for course "+strconv.FormatInt(courseID, 10), shared.StatusSuccess)
	h.render(w, r, "pages/grades_course.html", map[string]any{
		"CourseID": courseID,
		"Grades":   list,
	}, http.StatusOK)
}

func (h *Handler) recordGrade(w http.ResponseWriter, r *http.Request) {
	facultyID, ok := h.principalID(w, r)
	if !ok {
		return
	}
	courseID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		http.Error(w, "Invalid course ID", http.StatusBadRequest)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Bad request", http.StatusBadRequest)
		return
	}
	studentID, err := strconv.ParseInt(r.PostFormValue("student_id"), 10, 64)
	if err != nil {
		http.Error(w, "Invalid student ID", http.StatusBadRequest)
		return
	}
	value := r.PostFormValue("grade")

	back := "/faculty/courses/" + strconv.FormatInt(courseID, 10) + "/grades"
	if err := h.service.RecordGrade(r.Context(), facultyID, studentID, courseID, value); err != nil {
		msg := "Could not save grade"
		switch {
		case errors.Is(err, shared.ErrValidation):
			msg = err.Error()
		case errors.Is(err, shared.ErrForbidden):
			h.record(r, "unauthorized_access", "grade write for course "+strconv.FormatInt(courseID, 10)+" denied", shared.StatusFailure)
			http.Error(w, http.StatusText(http.StatusForbidden), http.StatusForbidden)
			return
		case errors.Is(err, shared.ErrNotFound):
			msg = "Student is not enrolled in this course"
		default:
			h.logger.Error("record grade failed", "error", err, "course_id", courseID, "student_id", studentID)
		}
		h.record(r, "update_grade", "grade update for student "+strconv.FormatInt(studentID, 10)+" rejected", shared.StatusFailure)
		h.redirectWithFlash(w, r, back, "error", msg)
		return
	}
	h.record(r, "update_grade", "set grade "+value+" for student "+strconv.FormatInt(studentID, 10)+" in course "+strconv.FormatInt(courseID, 10), shared.StatusSuccess)
	h.redirectWithFlash(w, r, back, "success", "Grade saved")
}

func (h *Handler) myGrades(w http.ResponseWriter, r *http.Request) {
	studentID, ok := h.principalID(w, r)
	if !ok {
		return
	}
	list, err := h.service.StudentGrades(r.Context(), studentID)
	if err != nil {
		h.logger.Error("list student grades failed", "error", err, "student_id", studentID)
		http.Error(w, "Failed to load grades", http.StatusInternalServerError)
		return
	}
	h.record(r, "view_grades", "viewed own grades", shared.StatusSuccess)
	h.render(w, r, "pages/grades_mine.html", map[string]any{"Grades": list}, http.StatusOK)
}

func (h *Handler) handleAccessError(w http.ResponseWriter, r *http.Request, err error, courseID int64) {
	switch {
	case errors.Is(err, shared.ErrForbidden):
		h.record(r, "unauthorized_access", "grade view for course "+strconv.FormatInt(courseID, 10)+" denied", shared.StatusFailure)
		http.Error(w, http.StatusText(http.StatusForbidden), http.StatusForbidden)
	case errors.Is(err, shared.ErrNotFound):
		http.Error(w, "Course not found", http.StatusNotFound)
	default:
		h.logger.Error("load course grades failed", "error", err, "course_id", courseID)
		http.Error(w, "Failed to load grades", http.StatusInternalServerError)
	}
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

func (h *Handler) render(w http.ResponseWriter, r *http.Request, template string, data map[string]any, status int) {
	sess := shared.SessionFromContext(r.Context())
	csrfToken, _ := h.csrf.EnsureToken(r.Context(), sess)
	var flash *shared.FlashMessage
	if sess != nil {
		flash = sess.PopFlash()
	}
	viewData := view.TemplateData{
		Title:       "Grades",
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

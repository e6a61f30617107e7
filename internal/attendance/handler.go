package attendance

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

const dateLayout = "2006-01-02"

// Handler manages attendance endpoints.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	templates *view.Engine
	csrf      *shared.CSRFManager
	activity  *shared.ActivityLogger
	guard     rbac.Middleware
	now       func() time.Time
}

func NewHandler(logger *slog.Logger, service *Service, templates *view.Engine, csrf *shared.CSRFManager, activity *shared.ActivityLogger, guard rbac.Middleware) *Handler {
	return &Handler{logger: logger, service: service, templates: templates, csrf: csrf, activity: activity, guard: guard, now: time.Now}
}

// MountRoutes registers attendance routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.guard.RequireRole(rbac.RoleFaculty))
		r.Use(h.guard.Limit("faculty_attendance", 20, 5*time.Minute))
		r.Get("/faculty/courses/{id}/attendance", h.sheet)
		r.Post("/faculty/courses/{id}/attendance", h.mark)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.guard.RequireRole(rbac.RoleStudent))
		r.Use(h.guard.Limit("student_attendance", 20, 5*time.Minute))
		r.Get("/student/attendance", h.mySummary)
	})
}

func (h *Handler) sheet(w http.ResponseWriter, r *http.Request) {
	facultyID, ok := h.principalID(w, r)
	if !ok {
		return
	}
	courseID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		http.Error(w, "Invalid course ID", http.StatusBadRequest)
		return
	}
	date := h.now().Truncate(24 * time.Hour)
	if raw := r.URL.Query().Get("date"); raw != "" {
		parsed, err := time.Parse(dateLayout, raw)
		if err != nil {
			http.Error(w, "Invalid date", http.StatusBadRequest)
			return
		}
		date = parsed
	}
	sheet, err := h.service.Sheet(r.Context(), facultyID, courseID, date)
	if err != nil {
		h.handleAccessError(w, r, err, courseID)
		return
	}
	h.render(w, r, "pages/attendance_sheet.html", map[string]any{
		"CourseID": courseID,
		"Date":     date,
		"Sheet":    sheet,
		"Statuses": []string{StatusPresent, StatusAbsent, StatusLate, StatusExcused},
	}, http.StatusOK)
}

func (h *Handler) mark(w http.ResponseWriter, r *http.Request) {
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
	date, err := time.Parse(dateLayout, r.PostFormValue("date"))
	if err != nil {
		http.Error(w, "Invalid date", http.StatusBadRequest)
		return
	}

	m := Mark{
		StudentID: studentID,
		CourseID:  courseID,
		Date:      date,
		Status:    r.PostFormValue("status"),
	}
	back := "/faculty/courses/" + strconv.FormatInt(courseID, 10) + "/attendance?date=" + date.Format(dateLayout)
	if err := h.service.RecordMark(r.Context(), facultyID, m); err != nil {
		msg := "Could not save attendance"
		switch {
		case errors.Is(err, shared.ErrValidation):
			msg = err.Error()
		case errors.Is(err, shared.ErrForbidden):
			h.record(r, "unauthorized_access", "attendance write for course "+strconv.FormatInt(courseID, 10)+" denied", shared.StatusFailure)
			http.Error(w, http.StatusText(http.StatusForbidden), http.StatusForbidden)
			return
		case errors.Is(err, shared.ErrNotFound):
			msg = "Student is not enrolled in this course"
		default:
			h.logger.Error("record attendance failed", "error", err, "course_id", courseID, "student_id", studentID)
		}
		h.redirectWithFlash(w, r, back, "error", msg)
		return
	}
	h.record(r, "update_attendance", "marked student "+strconv.FormatInt(studentID, 10)+" "+m.Status+" in course "+strconv.FormatInt(courseID, 10), shared.StatusSuccess)
	h.redirectWithFlash(w, r, back, "success", "Attendance saved")
}

func (h *Handler) mySummary(w http.ResponseWriter, r *http.Request) {
	studentID, ok := h.principalID(w, r)
	if !ok {
		return
	}
	summaries, err := h.service.StudentSummary(r.Context(), studentID)
	if err != nil {
		h.logger.Error("load attendance summary failed", "error", err, "student_id", studentID)
		http.Error(w, "Failed to load attendance", http.StatusInternalServerError)
		return
	}
	h.render(w, r, "pages/attendance_summary.html", map[string]any{"Summaries": summaries}, http.StatusOK)
}

func (h *Handler) handleAccessError(w http.ResponseWriter, r *http.Request, err error, courseID int64) {
	switch {
	case errors.Is(err, shared.ErrForbidden):
		h.record(r, "unauthorized_access", "attendance view for course "+strconv.FormatInt(courseID, 10)+" denied", shared.StatusFailure)
		http.Error(w, http.StatusText(http.StatusForbidden), http.StatusForbidden)
	case errors.Is(err, shared.ErrNotFound):
		http.Error(w, "Course not found", http.StatusNotFound)
	default:
		h.logger.Error("load attendance sheet failed", "error", err, "course_id", courseID)
		http.Error(w, "Failed to load attendance", http.StatusInternalServerError)
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
		Title:       "Attendance",
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

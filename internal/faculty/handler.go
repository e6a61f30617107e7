package faculty

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

// Handler manages faculty profile endpoints.
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

// MountRoutes registers faculty profile routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.guard.RequireRole(rbac.RoleAdmin))
		r.Use(h.guard.Limit("admin_faculty", 10, 5*time.Minute))
		r.Get("/admin/faculty", h.list)
		r.Get("/admin/faculty/{id}", h.show)
		r.Get("/admin/faculty/{id}/edit", h.showEditForm)
		r.Post("/admin/faculty/{id}/edit", h.update)
		r.Post("/admin/faculty/{id}/delete", h.delete)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.guard.RequireRole(rbac.RoleFaculty))
		r.Use(h.guard.Limit("faculty_profile", 20, 5*time.Minute))
		r.Get("/faculty/profile", h.selfProfile)
	})
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	filters := ListFilters{
		Page:   page,
		Search: r.URL.Query().Get("search"),
		Dept:   r.URL.Query().Get("dept"),
	}
	list, total, err := h.service.List(r.Context(), filters)
	if err != nil {
		h.logger.Error("list faculty failed", "error", err)
		http.Error(w, "Failed to load faculty", http.StatusInternalServerError)
		return
	}
	h.render(w, r, "pages/faculty_list.html", map[string]any{
		"Faculty":    list,
		"Filters":    filters,
		"Pagination": shared.NewPagination(filters.Page, filters.Limit, total),
	}, http.StatusOK)
}

func (h *Handler) show(w http.ResponseWriter, r *http.Request) {
	member, ok := h.load(w, r)
	if !ok {
		return
	}
	h.render(w, r, "pages/faculty_detail.html", map[string]any{"Member": member}, http.StatusOK)
}

func (h *Handler) showEditForm(w http.ResponseWriter, r *http.Request) {
	member, ok := h.load(w, r)
	if !ok {
		return
	}
	h.render(w, r, "pages/faculty_form.html", map[string]any{
		"Member": member,
		"Errors": map[string]string{},
	}, http.StatusOK)
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		http.Error(w, "Invalid faculty ID", http.StatusBadRequest)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Bad request", http.StatusBadRequest)
		return
	}
	member := Member{
		ID:             id,
		FullName:       r.PostFormValue("full_name"),
		Email:          r.PostFormValue("email"),
		Contact:        r.PostFormValue("contact"),
		Dept:           r.PostFormValue("dept"),
		Status:         r.PostFormValue("status"),
		AdditionalInfo: r.PostFormValue("additional_info"),
	}
	if err := h.service.Update(r.Context(), member); err != nil {
		msg := "An error occurred while saving the faculty member."
		if errors.Is(err, shared.ErrValidation) {
			msg = err.Error()
		} else {
			h.logger.Error("update faculty member failed", "error", err, "id", id)
		}
		h.render(w, r, "pages/faculty_form.html", map[string]any{
			"Member": member,
			"Errors": map[string]string{"general": msg},
		}, http.StatusBadRequest)
		return
	}
	h.record(r, "update_faculty", "updated faculty member "+strconv.FormatInt(id, 10), shared.StatusSuccess)
	h.redirectWithFlash(w, r, "/admin/faculty/"+strconv.FormatInt(id, 10), "success", "Faculty member updated")
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		http.Error(w, "Invalid faculty ID", http.StatusBadRequest)
		return
	}
	if err := h.service.Delete(r.Context(), id); err != nil {
		h.logger.Error("delete faculty member failed", "error", err, "id", id)
		h.redirectWithFlash(w, r, "/admin/faculty", "error", "Could not delete faculty member")
		return
	}
	h.record(r, "delete_faculty", "deleted faculty member "+strconv.FormatInt(id, 10), shared.StatusSuccess)
	h.redirectWithFlash(w, r, "/admin/faculty", "success", "Faculty member deleted")
}

// selfProfile shows the signed-in faculty member their own record with
// contact details masked.
func (h *Handler) selfProfile(w http.ResponseWriter, r *http.Request) {
	sess := shared.SessionFromContext(r.Context())
	id, err := strconv.ParseInt(sess.Principal(), 10, 64)
	if err != nil {
		http.Error(w, http.StatusText(http.StatusForbidden), http.StatusForbidden)
		return
	}
	member, err := h.service.Get(r.Context(), id)
	if err != nil {
		h.logger.Error("load own faculty profile", "error", err, "id", id)
		http.Error(w, "Profile not found", http.StatusNotFound)
		return
	}
	member.Email = sensitive.MaskEmail(member.Email)
	member.Contact = sensitive.MaskContact(member.Contact)
	h.render(w, r, "pages/faculty_detail.html", map[string]any{
		"Member":   member,
		"SelfView": true,
	}, http.StatusOK)
}

func (h *Handler) load(w http.ResponseWriter, r *http.Request) (Member, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		http.Error(w, "Invalid faculty ID", http.StatusBadRequest)
		return Member{}, false
	}
	member, err := h.service.Get(r.Context(), id)
	if err != nil {
		if !errors.Is(err, shared.ErrNotFound) {
			h.logger.Error("get faculty member failed", "error", err, "id", id)
		}
		http.Error(w, "Faculty member not found", http.StatusNotFound)
		return Member{}, false
	}
	return member, true
}

func (h *Handler) render(w http.ResponseWriter, r *http.Request, template string, data map[string]any, status int) {
	sess := shared.SessionFromContext(r.Context())
	csrfToken, _ := h.csrf.EnsureToken(r.Context(), sess)
	var flash *shared.FlashMessage
	if sess != nil {
		flash = sess.PopFlash()
	}
	viewData := view.TemplateData{
		Title:       "Faculty",
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

package audit

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	_ "github.com/academydb/academydb/testing"
)

func newFilterHandler() *Handler {
	h := &Handler{now: func() time.Time {
		return time.Date(2026, 3, 15, 10, 0, 0, 0, time.UTC)
	}}
	return h
}

func TestParseFiltersDefaults(t *testing.T) {
	h := newFilterHandler()
	req := httptest.NewRequest(http.MethodGet, "/admin/activity", nil)

	filters, err := h.parseFilters(req)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC), filters.To)
	assert.Equal(t, time.Date(2026, 3, 8, 0, 0, 0, 0, time.UTC), filters.From)
	assert.Equal(t, 1, filters.Page)
	assert.Equal(t, defaultPageSize, filters.PageSize)
}

func TestParseFiltersExplicitValues(t *testing.T) {
	h := newFilterHandler()
	req := httptest.NewRequest(http.MethodGet,
		"/admin/activity?from=2026-02-01&to=2026-02-28&actor=admin&action=create_user&status=success&page=3&page_size=10", nil)

	filters, err := h.parseFilters(req)
	require.NoError(t, err)
	assert.Equal(t, "admin", filters.Actor)
	assert.Equal(t, "create_user", filters.Action)
	assert.Equal(t, "success", filters.Status)
	assert.Equal(t, 3, filters.Page)
	assert.Equal(t, 10, filters.PageSize)
}

func TestParseFiltersRejectsBadInput(t *testing.T) {
	h := newFilterHandler()
	cases := []struct {
		name  string
		query string
	}{
		{"malformed from", "from=01-02-2026"},
		{"malformed to", "to=yesterday"},
		{"inverted range", "from=2026-03-10&to=2026-03-01"},
		{"range too wide", "from=2025-01-01&to=2026-03-01"},
		{"bad page", "page=zero"},
		{"negative page", "page=-1"},
		{"bad page size", "page_size=all"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/admin/activity?"+tc.query, nil)
			_, err := h.parseFilters(req)
			assert.Error(t, err)
		})
	}
}

func TestParseFiltersCapsPageSize(t *testing.T) {
	h := newFilterHandler()
	req := httptest.NewRequest(http.MethodGet, "/admin/activity?page_size=500", nil)

	filters, err := h.parseFilters(req)
	require.NoError(t, err)
	assert.Equal(t, maxPageSize, filters.PageSize)
}

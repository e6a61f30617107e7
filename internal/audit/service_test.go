package audit

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRepo struct {
	rows      []TimelineRow
	lastLimit int
	lastOff   int
}

func (f *fakeRepo) Window(ctx context.Context, filters TimelineFilters, limit, offset int) ([]TimelineRow, error) {
	f.lastLimit = limit
	f.lastOff = offset
	if offset >= len(f.rows) {
		return nil, nil
	}
	end := offset + limit
	if end > len(f.rows) {
		end = len(f.rows)
	}
	return f.rows[offset:end], nil
}

func (f *fakeRepo) All(ctx context.Context, filters TimelineFilters) ([]TimelineRow, error) {
	return f.rows, nil
}

func makeRows(n int) []TimelineRow {
	rows := make([]TimelineRow, n)
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	for i := range rows {
		rows[i] = TimelineRow{
			At:     base.Add(-time.Duration(i) * time.Minute),
			Actor:  "admin",
			Action: fmt.Sprintf("action_%d", i),
			Status: "success",
		}
	}
	return rows
}

func TestTimelinePaging(t *testing.T) {
	repo := &fakeRepo{rows: makeRows(25)}
	svc := NewService(repo)
	ctx := context.Background()

	first, err := svc.Timeline(ctx, TimelineFilters{Page: 1, PageSize: 20})
	require.NoError(t, err)
	assert.Len(t, first.Rows, 20)
	assert.True(t, first.Paging.HasNext)
	assert.Equal(t, 2, first.Paging.NextPage)
	assert.Zero(t, first.Paging.PrevPage)
	// One extra row is requested to detect the next page.
	assert.Equal(t, 21, repo.lastLimit)

	second, err := svc.Timeline(ctx, TimelineFilters{Page: 2, PageSize: 20})
	require.NoError(t, err)
	assert.Len(t, second.Rows, 5)
	assert.False(t, second.Paging.HasNext)
	assert.Equal(t, 1, second.Paging.PrevPage)
	assert.Equal(t, 20, repo.lastOff)
}

func TestTimelineClampsPageSize(t *testing.T) {
	repo := &fakeRepo{rows: makeRows(5)}
	svc := NewService(repo)
	ctx := context.Background()

	res, err := svc.Timeline(ctx, TimelineFilters{Page: 0, PageSize: 0})
	require.NoError(t, err)
	assert.Equal(t, 1, res.Paging.Page)
	assert.Equal(t, 20, res.Paging.PageSize)

	res, err = svc.Timeline(ctx, TimelineFilters{Page: 1, PageSize: 500})
	require.NoError(t, err)
	assert.Equal(t, 50, res.Paging.PageSize)
}

func TestExportReturnsAllRows(t *testing.T) {
	repo := &fakeRepo{rows: makeRows(75)}
	svc := NewService(repo)

	rows, err := svc.Export(context.Background(), TimelineFilters{})
	require.NoError(t, err)
	assert.Len(t, rows, 75)
}

package audit

import "time"

// TimelineFilters holds the filter set for the activity timeline.
type TimelineFilters struct {
	From     time.Time
	To       time.Time
	Actor    string
	Action   string
	Status   string
	Page     int
	PageSize int
}

// TimelineRow is one activity log entry on the timeline.
type TimelineRow struct {
	At          time.Time
	Actor       string
	Action      string
	Description string
	Status      string
	IPAddress   string
	UserAgent   string
}

// PagingInfo carries pagination metadata for the template.
type PagingInfo struct {
	Page     int
	HasNext  bool
	PageSize int
	PrevPage int
	NextPage int
}

// ViewModel bundles the timeline data for the template.
type ViewModel struct {
	Filters TimelineFilters
	Rows    []TimelineRow
	Paging  PagingInfo
}

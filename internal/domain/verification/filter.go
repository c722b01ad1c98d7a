package verification

import (
	"time"

	"github.com/licentry/licentry/internal/shared/constants"
)

// SortOrder is the listing direction for log queries.
type SortOrder string

const (
	SortAsc  SortOrder = "asc"
	SortDesc SortOrder = "desc"
)

// IsValid checks if the sort order is valid
func (s SortOrder) IsValid() bool {
	return s == SortAsc || s == SortDesc
}

// LogFilter narrows log listings. Zero values mean "no constraint".
type LogFilter struct {
	LicenseID uint
	Domain    string
	IPAddress string
	Status    Outcome
	Source    string
	From      *time.Time
	To        *time.Time

	Page      int
	PerPage   int
	SortOrder SortOrder
}

// Normalize applies the pagination and sort defaults: page 1, 20 per page
// capped at 100, newest first.
func (f LogFilter) Normalize() LogFilter {
	if f.Page < 1 {
		f.Page = constants.DefaultPage
	}
	if f.PerPage < 1 {
		f.PerPage = constants.DefaultPageSize
	}
	if f.PerPage > constants.MaxPageSize {
		f.PerPage = constants.MaxPageSize
	}
	if !f.SortOrder.IsValid() {
		f.SortOrder = SortDesc
	}
	return f
}

// Offset returns the SQL offset for the page.
func (f LogFilter) Offset() int {
	return (f.Page - 1) * f.PerPage
}

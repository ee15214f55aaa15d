// Package query normalizes raw task list parameters into a specification
// the task store can execute. Owner scoping is always applied; every other
// parameter is optional and its absence is a no-op.
package query

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"task-tracker/internal/domain"
)

const (
	DefaultPage  = 1
	DefaultLimit = 10
)

// Sortable task fields. Anything else requested falls back to SortDueDate.
type SortField string

const (
	SortDueDate SortField = "dueDate"
	SortStatus  SortField = "status"
)

// Params carries the raw query string values as received.
type Params struct {
	Page      string
	Limit     string
	SortBy    string
	Order     string
	Status    string
	StartDate string
	EndDate   string
	Search    string
}

// Spec is the normalized query: filter predicate, sort key and direction,
// and offset/limit, each composed independently.
type Spec struct {
	OwnerID    string
	Status     domain.TaskStatus
	DueFrom    *time.Time
	DueTo      *time.Time
	Search     string
	Sort       SortField
	Descending bool
	Page       int
	Limit      int
	Offset     int
}

// ParamError reports a single rejected parameter.
type ParamError struct {
	Field   string
	Message string
}

func (e *ParamError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Build produces a Spec scoped to ownerID. Non-numeric or non-positive
// page/limit values fall back to the defaults rather than failing the
// request. Unparsable date bounds are rejected with a ParamError.
func Build(ownerID string, p Params) (Spec, error) {
	spec := Spec{
		OwnerID: ownerID,
		Page:    positiveOrDefault(p.Page, DefaultPage),
		Limit:   positiveOrDefault(p.Limit, DefaultLimit),
		Search:  strings.TrimSpace(p.Search),
		Sort:    SortDueDate,
	}
	spec.Offset = (spec.Page - 1) * spec.Limit

	if SortField(p.SortBy) == SortStatus {
		spec.Sort = SortStatus
	}
	spec.Descending = p.Order == "desc"

	if p.Status != "" {
		spec.Status = domain.TaskStatus(p.Status)
	}

	if p.StartDate != "" {
		from, err := parseDateBound(p.StartDate, false)
		if err != nil {
			return Spec{}, &ParamError{Field: "startDate", Message: "Please provide a valid date"}
		}
		spec.DueFrom = &from
	}
	if p.EndDate != "" {
		to, err := parseDateBound(p.EndDate, true)
		if err != nil {
			return Spec{}, &ParamError{Field: "endDate", Message: "Please provide a valid date"}
		}
		spec.DueTo = &to
	}

	return spec, nil
}

// TotalPages computes ceil(total/limit) for the list metadata.
func (s Spec) TotalPages(total int64) int64 {
	if s.Limit <= 0 {
		return 0
	}
	return (total + int64(s.Limit) - 1) / int64(s.Limit)
}

func positiveOrDefault(raw string, def int) int {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || n <= 0 {
		return def
	}
	return n
}

// parseDateBound accepts either a bare date or an RFC 3339 timestamp. A
// bare date used as the end of a range covers the whole day, keeping the
// bound inclusive.
func parseDateBound(raw string, endOfDay bool) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if t, err := time.Parse("2006-01-02", raw); err == nil {
		if endOfDay {
			t = t.Add(24*time.Hour - time.Nanosecond)
		}
		return t.UTC(), nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, err
	}
	return t.UTC(), nil
}

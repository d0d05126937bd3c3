package view

import (
	"slices"
	"strings"
	"time"
)

// DateMode selects how the date criterion is applied.
type DateMode int

const (
	AllDates DateMode = iota
	OnDate
	Today
)

// DateFilter is the date criterion. Day is used only with OnDate.
type DateFilter struct {
	Mode DateMode
	Day  string
}

// On filters to one calendar day (YYYY-MM-DD).
func On(day string) DateFilter { return DateFilter{Mode: OnDate, Day: day} }

// Label describes the filter for headers.
func (d DateFilter) Label() string {
	switch d.Mode {
	case OnDate:
		return d.Day
	case Today:
		return "Today"
	default:
		return "All dates"
	}
}

// Criteria are the user-supplied filters. Zero values mean "all".
type Criteria struct {
	Text   string
	Date   DateFilter
	Status string // status code or display label
}

// Active reports whether any criterion narrows the view.
func (c Criteria) Active() bool {
	return strings.TrimSpace(c.Text) != "" || c.Date.Mode != AllDates || strings.TrimSpace(c.Status) != ""
}

// Spec tells Select how to read an entity type. A nil accessor means the
// entity has no such field; any active criterion on a missing field excludes
// everything.
type Spec[T any] struct {
	Text     func(T) []string
	Day      func(T) string
	Status   func(T) string
	Synonyms SynonymMap
	Compare  func(a, b T) int
}

// Select returns the items that satisfy every active criterion, in the
// order given by spec.Compare (input order when nil). items is not modified.
// now is read once: "today" is the same day for the whole pass.
func Select[T any](items []T, c Criteria, spec Spec[T], now time.Time) []T {
	match := matcher(c, spec, now)
	out := make([]T, 0, len(items))
	for _, it := range items {
		if match(it) {
			out = append(out, it)
		}
	}
	if spec.Compare != nil {
		slices.SortStableFunc(out, spec.Compare)
	}
	return out
}

// Count returns how many items satisfy c without building the view.
func Count[T any](items []T, c Criteria, spec Spec[T], now time.Time) int {
	match := matcher(c, spec, now)
	n := 0
	for _, it := range items {
		if match(it) {
			n++
		}
	}
	return n
}

func matcher[T any](c Criteria, spec Spec[T], now time.Time) func(T) bool {
	var preds []func(T) bool

	if text := strings.ToLower(strings.TrimSpace(c.Text)); text != "" {
		if spec.Text == nil {
			return never[T]
		}
		preds = append(preds, func(it T) bool {
			for _, field := range spec.Text(it) {
				if strings.Contains(strings.ToLower(field), text) {
					return true
				}
			}
			return false
		})
	}

	if c.Date.Mode != AllDates {
		if spec.Day == nil {
			return never[T]
		}
		day := c.Date.Day
		if c.Date.Mode == Today {
			day = now.Format(dateLayout)
		}
		if day == "" {
			return never[T]
		}
		preds = append(preds, func(it T) bool { return dayOf(spec.Day(it)) == day })
	}

	if status := strings.TrimSpace(c.Status); status != "" {
		want, ok := spec.Synonyms.Canonical(status)
		if spec.Status == nil || !ok {
			return never[T]
		}
		preds = append(preds, func(it T) bool {
			got, ok := spec.Synonyms.Canonical(spec.Status(it))
			return ok && got == want
		})
	}

	return func(it T) bool {
		for _, p := range preds {
			if !p(it) {
				return false
			}
		}
		return true
	}
}

func never[T any](T) bool { return false }

const dateLayout = "2006-01-02"

func dayOf(v string) string {
	if len(v) > len(dateLayout) {
		return v[:len(dateLayout)]
	}
	return v
}

// Selector is a pull-based derived view: every read recomputes from the
// source with the current criteria.
type Selector[T any] struct {
	source   func() []T
	spec     Spec[T]
	criteria Criteria
	now      func() time.Time
}

// NewSelector builds a selector over source.
func NewSelector[T any](source func() []T, spec Spec[T]) *Selector[T] {
	return &Selector[T]{source: source, spec: spec, now: time.Now}
}

// Criteria returns the current filters.
func (s *Selector[T]) Criteria() Criteria { return s.criteria }

// SetCriteria replaces the filters.
func (s *Selector[T]) SetCriteria(c Criteria) { s.criteria = c }

// SetText replaces the free-text filter.
func (s *Selector[T]) SetText(text string) { s.criteria.Text = text }

// SetDate replaces the date filter.
func (s *Selector[T]) SetDate(d DateFilter) { s.criteria.Date = d }

// SetStatus replaces the status filter; empty means all statuses.
func (s *Selector[T]) SetStatus(status string) { s.criteria.Status = status }

// Rows evaluates the view.
func (s *Selector[T]) Rows() []T {
	return Select(s.source(), s.criteria, s.spec, s.now())
}

// Counts returns the visible and total sizes.
func (s *Selector[T]) Counts() (visible, total int) {
	items := s.source()
	return Count(items, s.criteria, s.spec, s.now()), len(items)
}

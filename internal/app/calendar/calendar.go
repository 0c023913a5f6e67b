package calendar

import (
	"errors"
	"sync"
	"time"
)

var ErrNoRecord = errors.New("no record on that day")

// Day is one cell of the grid. Blank cells lead the month and have Day 0.
type Day[T any] struct {
	Day    int  `json:"day"`
	Marked bool `json:"marked"`
	Record *T   `json:"record,omitempty"`
}

// Month is a Sunday-first month grid with at most one record per day.
type Month[T any] struct {
	Year    int        `json:"year"`
	Month   time.Month `json:"month"`
	Leading int        `json:"leading"`
	Cells   []Day[T]   `json:"cells"`
}

// Build lays out the month containing anchor. Records are matched by local
// calendar date in loc; the first record of a day in the given order wins.
// Records without a creation time are skipped.
func Build[T any](anchor time.Time, loc *time.Location, records []T, createdAt func(T) time.Time) Month[T] {
	if loc == nil {
		loc = time.Local
	}
	anchor = anchor.In(loc)
	first := time.Date(anchor.Year(), anchor.Month(), 1, 0, 0, 0, 0, loc)
	days := DaysIn(first.Year(), first.Month())
	leading := int(first.Weekday())

	m := Month[T]{
		Year:    first.Year(),
		Month:   first.Month(),
		Leading: leading,
		Cells:   make([]Day[T], leading+days),
	}
	for d := 1; d <= days; d++ {
		m.Cells[leading+d-1].Day = d
	}

	for i := range records {
		ts := createdAt(records[i])
		if ts.IsZero() {
			continue
		}
		ts = ts.In(loc)
		if ts.Year() != m.Year || ts.Month() != m.Month {
			continue
		}
		cell := &m.Cells[leading+ts.Day()-1]
		if cell.Marked {
			continue
		}
		cell.Marked = true
		cell.Record = &records[i]
	}
	return m
}

// Select returns the record of a marked day.
func (m Month[T]) Select(day int) (T, error) {
	var zero T
	idx := m.Leading + day - 1
	if day < 1 || idx >= len(m.Cells) || !m.Cells[idx].Marked {
		return zero, ErrNoRecord
	}
	return *m.Cells[idx].Record, nil
}

func DaysIn(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// Navigator holds the month being displayed. It moves one month at a time
// with no bound in either direction.
type Navigator struct {
	mu    sync.Mutex
	first time.Time
}

func NewNavigator(now time.Time) *Navigator {
	n := &Navigator{}
	n.Set(now)
	return n
}

// Current returns the first day of the displayed month.
func (n *Navigator) Current() time.Time {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.first
}

func (n *Navigator) Set(t time.Time) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.first = time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
}

func (n *Navigator) Next() time.Time {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.first = n.first.AddDate(0, 1, 0)
	return n.first
}

func (n *Navigator) Prev() time.Time {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.first = n.first.AddDate(0, -1, 0)
	return n.first
}

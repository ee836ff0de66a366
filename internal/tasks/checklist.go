package tasks

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/studyx/internal/models"
	"github.com/desertthunder/studyx/internal/services"
	"github.com/desertthunder/studyx/internal/shared"
)

// ChecklistManager is the per-date checklist workflow on top of [services.ChecklistService].
//
// Dates are YYYY-MM-DD strings computed with [shared.FormatDate], which truncates in UTC.
type ChecklistManager struct {
	svc    *services.ChecklistService
	logger *log.Logger
	now    func() time.Time
}

// NewChecklistManager creates a [ChecklistManager].
func NewChecklistManager(api services.Requester, logger *log.Logger) *ChecklistManager {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &ChecklistManager{svc: services.NewChecklistService(api), logger: logger, now: time.Now}
}

// Today returns the current date key.
func (m *ChecklistManager) Today() string {
	return shared.FormatDate(m.now())
}

// List returns the items of a date.
func (m *ChecklistManager) List(ctx context.Context, date string) ([]models.Checklist, error) {
	return m.svc.List(ctx, date)
}

// Create adds an item to a date.
func (m *ChecklistManager) Create(ctx context.Context, date, content string) (*models.Checklist, error) {
	return m.svc.Create(ctx, date, content)
}

// Update replaces the content of an item.
func (m *ChecklistManager) Update(ctx context.Context, id models.ID, content string) (*models.Checklist, error) {
	return m.svc.Update(ctx, id, content)
}

// Toggle flips completion server-side and returns the updated item.
func (m *ChecklistManager) Toggle(ctx context.Context, id models.ID) (*models.Checklist, error) {
	return m.svc.Toggle(ctx, id)
}

// Delete removes one item.
func (m *ChecklistManager) Delete(ctx context.Context, id models.ID) error {
	return m.svc.Delete(ctx, id)
}

// MonthSummary returns the dates of a month that have items.
func (m *ChecklistManager) MonthSummary(ctx context.Context, year, month int) (*models.MonthSummary, error) {
	return m.svc.MonthSummary(ctx, year, month)
}

// MonthCalendar fetches the summary of a month and lays it out as a [Calendar].
func (m *ChecklistManager) MonthCalendar(ctx context.Context, year, month int) (*Calendar, error) {
	summary, err := m.MonthSummary(ctx, year, month)
	if err != nil {
		return nil, err
	}
	cal, err := NewCalendar(year, month, *summary)
	if err != nil {
		return nil, err
	}
	cal.markToday(m.Today())
	return cal, nil
}

// CalendarDay is one cell of a [Calendar].
type CalendarDay struct {
	Date     string
	Day      int
	HasItems bool
	Today    bool
}

// Calendar is a Sunday-first month grid. Cells outside the month are nil.
type Calendar struct {
	Year  int
	Month time.Month
	Weeks [][7]*CalendarDay
}

// NewCalendar lays out a month. A cell is decorated iff its date appears in summary; dates from other months
// are ignored.
func NewCalendar(year, month int, summary models.MonthSummary) (*Calendar, error) {
	if month < 1 || month > 12 {
		return nil, fmt.Errorf("%w: month must be 1-12, got %d", shared.ErrInvalidArgument, month)
	}

	first := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	days := first.AddDate(0, 1, -1).Day()
	marked := make(map[string]bool, len(summary.Dates))
	for _, d := range summary.Dates {
		marked[d] = true
	}

	cal := &Calendar{Year: year, Month: first.Month()}
	var week [7]*CalendarDay
	col := int(first.Weekday())
	for day := 1; day <= days; day++ {
		date := shared.FormatDate(first.AddDate(0, 0, day-1))
		week[col] = &CalendarDay{Date: date, Day: day, HasItems: marked[date]}
		col++
		if col == 7 {
			cal.Weeks = append(cal.Weeks, week)
			week = [7]*CalendarDay{}
			col = 0
		}
	}
	if col > 0 {
		cal.Weeks = append(cal.Weeks, week)
	}
	return cal, nil
}

// Marked returns the decorated dates in calendar order.
func (c *Calendar) Marked() []string {
	var out []string
	for _, week := range c.Weeks {
		for _, d := range week {
			if d != nil && d.HasItems {
				out = append(out, d.Date)
			}
		}
	}
	return out
}

func (c *Calendar) markToday(today string) {
	for _, week := range c.Weeks {
		for _, d := range week {
			if d != nil && d.Date == today {
				d.Today = true
			}
		}
	}
}

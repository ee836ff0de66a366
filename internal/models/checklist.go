package models

import "slices"

// Checklist is a to-do item scoped to a date.
type Checklist struct {
	ID         ID     `json:"id"`
	Content    string `json:"content"`
	TargetDate string `json:"targetDate"`
	Completed  bool   `json:"completed"`
	CreatedAt  string `json:"createdAt,omitempty"`
}

// CreateChecklist is the body of POST /api/checklist.
type CreateChecklist struct {
	TargetDate string `json:"targetDate"`
	Content    string `json:"content"`
}

// UpdateChecklist is the body of PUT /api/checklist/{id}.
type UpdateChecklist struct {
	Content string `json:"content"`
}

// MonthSummary lists the dates of a month that have at least one checklist item.
// It carries no counts.
type MonthSummary struct {
	Dates []string `json:"dates"`
}

// Has reports whether date (YYYY-MM-DD) has items.
func (m MonthSummary) Has(date string) bool {
	return slices.Contains(m.Dates, date)
}

package services

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/desertthunder/studyx/internal/models"
	"github.com/desertthunder/studyx/internal/shared"
)

// ChecklistService covers /api/checklist.
type ChecklistService struct {
	api Requester
}

// NewChecklistService creates a [ChecklistService].
func NewChecklistService(api Requester) *ChecklistService {
	return &ChecklistService{api: api}
}

// List returns the items of date (YYYY-MM-DD).
func (s *ChecklistService) List(ctx context.Context, date string) ([]models.Checklist, error) {
	if _, err := shared.ParseDate(date); err != nil {
		return nil, err
	}
	q := url.Values{"date": {date}}
	return decodeList[models.Checklist](ctx, s.api, withQuery("/api/checklist", q))
}

// Create adds an item to date.
func (s *ChecklistService) Create(ctx context.Context, date, content string) (*models.Checklist, error) {
	if _, err := shared.ParseDate(date); err != nil {
		return nil, err
	}
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, fmt.Errorf("%w: checklist content is required", shared.ErrInvalidInput)
	}

	var item models.Checklist
	if err := s.api.Do(ctx, http.MethodPost, "/api/checklist", models.CreateChecklist{TargetDate: date, Content: content}, &item); err != nil {
		return nil, err
	}
	return &item, nil
}

// Update replaces the content of an item.
func (s *ChecklistService) Update(ctx context.Context, id models.ID, content string) (*models.Checklist, error) {
	if err := requireID("checklist", id); err != nil {
		return nil, err
	}
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, fmt.Errorf("%w: checklist content is required", shared.ErrInvalidInput)
	}

	var item models.Checklist
	if err := s.api.Do(ctx, http.MethodPut, "/api/checklist/"+escape(id), models.UpdateChecklist{Content: content}, &item); err != nil {
		return nil, err
	}
	return &item, nil
}

// Toggle flips completion server-side and returns the updated item.
func (s *ChecklistService) Toggle(ctx context.Context, id models.ID) (*models.Checklist, error) {
	if err := requireID("checklist", id); err != nil {
		return nil, err
	}
	var item models.Checklist
	if err := s.api.Do(ctx, http.MethodPatch, "/api/checklist/"+escape(id)+"/toggle", nil, &item); err != nil {
		return nil, err
	}
	return &item, nil
}

// Delete removes an item.
func (s *ChecklistService) Delete(ctx context.Context, id models.ID) error {
	if err := requireID("checklist", id); err != nil {
		return err
	}
	return s.api.Do(ctx, http.MethodDelete, "/api/checklist/"+escape(id), nil, nil)
}

// MonthSummary returns the dates of year/month that have items.
func (s *ChecklistService) MonthSummary(ctx context.Context, year, month int) (*models.MonthSummary, error) {
	if month < 1 || month > 12 {
		return nil, fmt.Errorf("%w: month %d out of range", shared.ErrInvalidArgument, month)
	}
	q := url.Values{"year": {strconv.Itoa(year)}, "month": {strconv.Itoa(month)}}

	var summary models.MonthSummary
	if err := s.api.Do(ctx, http.MethodGet, withQuery("/api/checklist/month-summary", q), nil, &summary); err != nil {
		return nil, err
	}
	if summary.Dates == nil {
		summary.Dates = []string{}
	}
	return &summary, nil
}

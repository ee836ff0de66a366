package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/desertthunder/studyx/internal/formatter"
	"github.com/desertthunder/studyx/internal/models"
	"github.com/desertthunder/studyx/internal/services"
	"github.com/desertthunder/studyx/internal/shared"
	"github.com/desertthunder/studyx/internal/tasks"
	"github.com/urfave/cli/v3"
)

func (r *Runner) checklist() *tasks.ChecklistManager {
	return tasks.NewChecklistManager(r.client, r.logger)
}

func dateOrToday(cmd *cli.Command, m *tasks.ChecklistManager) string {
	if date := cmd.String("date"); date != "" {
		return date
	}
	return m.Today()
}

// ChecklistList prints the items of a day.
func (r *Runner) ChecklistList(ctx context.Context, cmd *cli.Command) error {
	m := r.checklist()
	date := dateOrToday(cmd, m)
	items, err := m.List(ctx, date)
	if err != nil {
		return err
	}
	if cmd.Bool("json") {
		return r.writeJSON(items, true)
	}
	return r.writePlain("%s", formatter.ChecklistText(date, items))
}

// ChecklistAdd adds an item and prints the day.
func (r *Runner) ChecklistAdd(ctx context.Context, cmd *cli.Command) error {
	content := strings.TrimSpace(cmd.StringArg("content"))
	if content == "" {
		return fmt.Errorf("%w: content", shared.ErrMissingArgument)
	}
	m := r.checklist()
	date := dateOrToday(cmd, m)
	item, err := m.Create(ctx, date, content)
	if err != nil {
		return err
	}
	r.writePlain("✓ Added #%s\n", item.ID)
	return r.printDay(ctx, m, date)
}

// ChecklistEdit changes the text of an item.
func (r *Runner) ChecklistEdit(ctx context.Context, cmd *cli.Command) error {
	id, err := requiredID(cmd, "id")
	if err != nil {
		return err
	}
	content := strings.TrimSpace(cmd.StringArg("content"))
	if content == "" {
		return fmt.Errorf("%w: content", shared.ErrMissingArgument)
	}
	item, err := r.checklist().Update(ctx, id, content)
	if err != nil {
		return err
	}
	return r.writePlain("✓ Updated #%s: %s\n", item.ID, item.Content)
}

// ChecklistToggle flips an item and prints its day as the server now sees it.
func (r *Runner) ChecklistToggle(ctx context.Context, cmd *cli.Command) error {
	id, err := requiredID(cmd, "id")
	if err != nil {
		return err
	}
	m := r.checklist()
	item, err := m.Toggle(ctx, id)
	if err != nil {
		return err
	}
	date := item.TargetDate
	if date == "" {
		date = m.Today()
	}
	return r.printDay(ctx, m, date)
}

// ChecklistDelete deletes one item, or several through the bulk worker pool.
func (r *Runner) ChecklistDelete(ctx context.Context, cmd *cli.Command) error {
	args := cmd.Args().Slice()
	if len(args) == 0 {
		return fmt.Errorf("%w: at least one id", shared.ErrMissingArgument)
	}
	ids := make([]models.ID, len(args))
	for i, a := range args {
		ids[i] = models.ID(a)
	}

	m := r.checklist()
	if len(ids) == 1 {
		if err := m.Delete(ctx, ids[0]); err != nil {
			return err
		}
		return r.writePlain("✓ Deleted #%s\n", ids[0])
	}

	progress := make(chan tasks.ProgressUpdate, len(ids))
	done := make(chan struct{})
	go func() {
		defer close(done)
		for update := range progress {
			r.logger.Debug(update.Message, "step", update.Step, "total", update.Total)
		}
	}()

	result, err := m.DeleteMany(ctx, progress, ids, tasks.BulkDeleteOpts{NumWorkers: int(cmd.Int("workers"))})
	close(progress)
	<-done

	r.writePlain("Deleted %d of %d items\n", result.Succeeded, result.Total)
	for _, f := range result.Failures() {
		r.writePlain("  ✗ #%s: %v\n", f.ID, f.Error)
	}
	return err
}

// ChecklistMonth prints a month calendar with the days that have items marked.
func (r *Runner) ChecklistMonth(ctx context.Context, cmd *cli.Command) error {
	now := time.Now().UTC()
	year, month := now.Year(), int(now.Month())
	if cmd.IsSet("year") {
		year = int(cmd.Int("year"))
	}
	if cmd.IsSet("month") {
		month = int(cmd.Int("month"))
	}

	cal, err := r.checklist().MonthCalendar(ctx, year, month)
	if err != nil {
		return err
	}
	return r.writePlain("%s", formatter.CalendarText(cal))
}

// ChecklistExport writes the items of a day to a file.
func (r *Runner) ChecklistExport(ctx context.Context, cmd *cli.Command) error {
	m := r.checklist()
	date := dateOrToday(cmd, m)
	items, err := m.List(ctx, date)
	if err != nil {
		return err
	}
	path, err := formatter.WriteChecklistExport(date, items, formatter.ExportFormat(cmd.String("format")), cmd.String("output"))
	if err != nil {
		return err
	}
	r.logger.Info("exported checklist", "date", date, "items", len(items), "path", path)
	return r.writePlain("✓ Exported %d items to %s\n", len(items), path)
}

func (r *Runner) printDay(ctx context.Context, m *tasks.ChecklistManager, date string) error {
	items, err := m.List(ctx, date)
	if err != nil {
		return err
	}
	return r.writePlain("%s", formatter.ChecklistText(date, items))
}

// ChatHistory prints stored messages of a room.
func (r *Runner) ChatHistory(ctx context.Context, cmd *cli.Command) error {
	kind, err := models.ParseRoomKind(cmd.StringArg("kind"))
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrInvalidArgument, err)
	}
	id, err := requiredID(cmd, "id")
	if err != nil {
		return err
	}
	messages, err := services.NewChatService(r.client).History(ctx, id, kind, int(cmd.Int("page")), int(cmd.Int("size")))
	if err != nil {
		return err
	}
	if cmd.Bool("json") {
		return r.writeJSON(messages, true)
	}
	return r.writePlain("%s", formatter.ChatText(messages))
}

// ChatUpload uploads an image and prints its URL.
func (r *Runner) ChatUpload(ctx context.Context, cmd *cli.Command) error {
	path := cmd.StringArg("path")
	if path == "" {
		return fmt.Errorf("%w: path", shared.ErrMissingArgument)
	}
	url, err := services.NewChatService(r.client).UploadImage(ctx, path)
	if err != nil {
		return err
	}
	return r.writePlain("✓ Uploaded %s\n", url)
}

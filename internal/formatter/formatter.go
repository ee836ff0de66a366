// package formatter renders rooms, checklists, calendars and chat history as text, and exports checklists to CSV
// and Markdown.
package formatter

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/desertthunder/studyx/internal/models"
	"github.com/desertthunder/studyx/internal/shared"
	"github.com/desertthunder/studyx/internal/tasks"
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true)
	markedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#04B575")).Bold(true)
	todayStyle  = lipgloss.NewStyle().Underline(true)
	mutedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#626262"))
)

// RoomsTable renders room summaries as a bordered table.
func RoomsTable(rooms []models.RoomSummary) string {
	if len(rooms) == 0 {
		return "No rooms.\n"
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("ID", "TITLE", "FIELD", "MEMBERS", "STATUS").
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle.Padding(0, 1)
			}
			return lipgloss.NewStyle().Padding(0, 1)
		})
	for _, r := range rooms {
		t.Row(r.ID.String(), r.Title, r.Field, occupancy(r), r.Status)
	}
	return t.Render() + "\n"
}

// RoomDetail renders one room as key/value lines.
func RoomDetail(r models.RoomSummary) string {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "%s (%s #%s)\n", r.Title, r.Kind, r.ID)
	if r.Field != "" {
		fmt.Fprintf(&buf, "Field: %s\n", r.Field)
	}
	fmt.Fprintf(&buf, "Members: %s\n", occupancy(r))
	if r.Creator != "" {
		fmt.Fprintf(&buf, "Creator: %s\n", r.Creator)
	}
	if r.Status != "" {
		fmt.Fprintf(&buf, "Status: %s\n", r.Status)
	}
	return buf.String()
}

func occupancy(r models.RoomSummary) string {
	label := fmt.Sprintf("%d/%d", r.Current, r.Capacity)
	if r.Capacity > 0 && r.Current >= r.Capacity {
		label += " full"
	}
	return label
}

// ParticipantsText lists participants with their timer state.
func ParticipantsText(list []models.Participant) string {
	if len(list) == 0 {
		return "No participants.\n"
	}
	var buf bytes.Buffer
	for _, p := range list {
		fmt.Fprintf(&buf, "%-16s %-8s %s\n", p.Username, TimerLabel(p.TimerStatus), shared.FormatElapsed(p.TimerStatus.StudySeconds))
	}
	return buf.String()
}

// TimerLabel is a short status for a timer: study, rest or idle.
func TimerLabel(t models.TimerStatus) string {
	switch {
	case !t.IsRunning:
		return "idle"
	case t.Studying():
		return "study"
	default:
		return "rest"
	}
}

// GroupsTable renders groups as a bordered table.
func GroupsTable(groups []models.Group) string {
	if len(groups) == 0 {
		return "No groups.\n"
	}
	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("ID", "NAME", "LEADER", "MEMBERS")
	for _, g := range groups {
		t.Row(g.ID.String(), g.GroupName, g.LeaderID.String(), strconv.Itoa(g.MemberCount))
	}
	return t.Render() + "\n"
}

// MembersText lists group members.
func MembersText(members []models.GroupMember) string {
	if len(members) == 0 {
		return "No members.\n"
	}
	var buf bytes.Buffer
	for _, m := range members {
		name := m.Username
		if name == "" {
			name = "#" + m.MemberID.String()
		}
		fmt.Fprintf(&buf, "%-16s %s\n", name, strings.ToLower(m.Role))
	}
	return buf.String()
}

// UserText renders a profile.
func UserText(u *models.User) string {
	if u == nil {
		return "Not logged in.\n"
	}
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "%s <%s> (#%s)\n", u.Username, u.Email, u.ID)
	fmt.Fprintf(&buf, "Level %d, %d exp\n", u.Level, u.Exp)
	if u.Bio != "" {
		fmt.Fprintf(&buf, "Bio: %s\n", u.Bio)
	}
	if len(u.StudyFields) > 0 {
		fmt.Fprintf(&buf, "Fields: %s\n", strings.Join(u.StudyFields, ", "))
	}
	return buf.String()
}

// ChecklistText renders the items of one day as a task list.
func ChecklistText(date string, items []models.Checklist) string {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "%s\n", headerStyle.Render(date))
	if len(items) == 0 {
		buf.WriteString(mutedStyle.Render("Nothing planned.") + "\n")
		return buf.String()
	}
	done := 0
	for _, item := range items {
		box := "[ ]"
		if item.Completed {
			box = "[x]"
			done++
		}
		fmt.Fprintf(&buf, "%s %s (%s)\n", box, item.Content, item.ID)
	}
	fmt.Fprintf(&buf, "%d/%d done\n", done, len(items))
	return buf.String()
}

// CalendarText renders a month grid, Sunday first. Days with items carry a trailing '*'.
func CalendarText(cal *tasks.Calendar) string {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "%s\n", headerStyle.Render(fmt.Sprintf("%s %d", cal.Month, cal.Year)))
	buf.WriteString("Su  Mo  Tu  We  Th  Fr  Sa\n")

	for _, week := range cal.Weeks {
		cells := make([]string, 0, len(week))
		for _, d := range week {
			cells = append(cells, calendarCell(d))
		}
		buf.WriteString(strings.TrimRight(strings.Join(cells, " "), " ") + "\n")
	}
	return buf.String()
}

func calendarCell(d *tasks.CalendarDay) string {
	if d == nil {
		return "   "
	}
	cell := fmt.Sprintf("%2d", d.Day)
	mark := " "
	if d.HasItems {
		cell = markedStyle.Render(cell)
		mark = "*"
	}
	if d.Today {
		cell = todayStyle.Render(cell)
	}
	return cell + mark
}

// ChatText renders chat history oldest first.
func ChatText(messages []models.ChatMessage) string {
	if len(messages) == 0 {
		return "No messages.\n"
	}
	var buf bytes.Buffer
	for _, m := range messages {
		switch m.Type {
		case models.ChatEnter, models.ChatLeave:
			fmt.Fprintf(&buf, "%s\n", mutedStyle.Render(fmt.Sprintf("-- %s %s", m.Sender, strings.ToLower(m.Type))))
		case models.ChatImage:
			fmt.Fprintf(&buf, "%s: [image] %s\n", m.Sender, m.Message)
		default:
			fmt.Fprintf(&buf, "%s: %s\n", m.Sender, m.Message)
		}
	}
	return buf.String()
}

// ChecklistToCSV converts items to CSV with columns: ID, Date, Content, Completed
func ChecklistToCSV(items []models.Checklist) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	if err := writer.Write([]string{"ID", "Date", "Content", "Completed"}); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}
	for _, item := range items {
		record := []string{item.ID.String(), item.TargetDate, item.Content, strconv.FormatBool(item.Completed)}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}
	return buf.Bytes(), nil
}

// ChecklistToMarkdown converts one day's items to a Markdown task list.
func ChecklistToMarkdown(date string, items []models.Checklist) []byte {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "# Checklist %s\n\n", date)
	if len(items) == 0 {
		buf.WriteString("_Nothing planned._\n")
		return buf.Bytes()
	}
	for _, item := range items {
		box := " "
		if item.Completed {
			box = "x"
		}
		fmt.Fprintf(&buf, "- [%s] %s\n", box, item.Content)
	}
	return buf.Bytes()
}

// ExportFormat names a checklist export format.
type ExportFormat string

const (
	FormatCSV      ExportFormat = "csv"
	FormatMarkdown ExportFormat = "md"
	FormatJSON     ExportFormat = "json"
)

// WriteChecklistExport writes one day's items to path in the given format.
//
// Defaults to checklist_{date}.{format} as the filename.
func WriteChecklistExport(date string, items []models.Checklist, format ExportFormat, path string) (string, error) {
	if path == "" {
		path = fmt.Sprintf("checklist_%s.%s", date, format)
	}

	var (
		data []byte
		err  error
	)
	switch format {
	case FormatCSV:
		data, err = ChecklistToCSV(items)
	case FormatMarkdown:
		data = ChecklistToMarkdown(date, items)
	case FormatJSON:
		data, err = shared.MarshalJSON(items, true)
	default:
		return "", fmt.Errorf("%w: unknown export format %q", shared.ErrInvalidArgument, format)
	}
	if err != nil {
		return "", fmt.Errorf("failed to generate %s: %w", format, err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write export file: %w", err)
	}
	return path, nil
}

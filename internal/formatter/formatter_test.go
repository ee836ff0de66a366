package formatter

import (
	"errors"
	"strings"
	"testing"

	"github.com/desertthunder/studyx/internal/models"
	"github.com/desertthunder/studyx/internal/shared"
	"github.com/desertthunder/studyx/internal/tasks"
	th "github.com/desertthunder/studyx/internal/testing"
)

func sampleChecklist() []models.Checklist {
	return []models.Checklist{
		{ID: "1", Content: "Read chapter 3", TargetDate: "2025-06-03", Completed: true},
		{ID: "2", Content: "Solve, then review", TargetDate: "2025-06-03"},
	}
}

func TestRenderers(t *testing.T) {
	t.Run("RoomsTable", func(t *testing.T) {
		rooms := []models.RoomSummary{
			{ID: "7", Kind: models.RoomKindOpen, Title: "Math Sprint", Field: "Math", Current: 4, Capacity: 4, Status: "ACTIVE"},
			{ID: "8", Kind: models.RoomKindOpen, Title: "Quiet", Field: "Language", Current: 1, Capacity: 6, Status: "ACTIVE"},
		}

		output := RoomsTable(rooms)
		for _, want := range []string{"TITLE", "Math Sprint", "4/4 full", "1/6", "Language"} {
			if !strings.Contains(output, want) {
				t.Errorf("table missing %q, got:\n%s", want, output)
			}
		}
		if strings.Contains(output, "1/6 full") {
			t.Error("room with space must not be marked full")
		}
	})

	t.Run("RoomsTable Empty", func(t *testing.T) {
		if got := RoomsTable(nil); got != "No rooms.\n" {
			t.Errorf("unexpected output %q", got)
		}
	})

	t.Run("RoomDetail", func(t *testing.T) {
		output := RoomDetail(models.RoomSummary{ID: "3", Kind: models.RoomKindGroup, Title: "Night", Current: 2, Capacity: 5})
		if !strings.Contains(output, "Night (group #3)") || !strings.Contains(output, "Members: 2/5") {
			t.Errorf("unexpected detail:\n%s", output)
		}
		if strings.Contains(output, "Creator:") {
			t.Error("empty creator should be omitted")
		}
	})

	t.Run("ParticipantsText", func(t *testing.T) {
		output := ParticipantsText([]models.Participant{
			{Username: "ann", TimerStatus: models.TimerStatus{Status: models.TimerStudying, IsRunning: true, StudySeconds: 125}},
			{Username: "bob", TimerStatus: models.TimerStatus{Status: models.TimerResting, IsRunning: true}},
			{Username: "cy"},
		})
		lines := strings.Split(strings.TrimSpace(output), "\n")
		if len(lines) != 3 {
			t.Fatalf("expected 3 lines, got %d", len(lines))
		}
		if !strings.Contains(lines[0], "study") || !strings.Contains(lines[0], "02:05") {
			t.Errorf("unexpected line %q", lines[0])
		}
		if !strings.Contains(lines[1], "rest") || !strings.Contains(lines[2], "idle") {
			t.Errorf("unexpected states %q", lines)
		}
	})

	t.Run("UserText", func(t *testing.T) {
		if got := UserText(nil); got != "Not logged in.\n" {
			t.Errorf("unexpected output %q", got)
		}
		output := UserText(&models.User{ID: "1", Username: "student", Email: "s@example.com", Level: 3, StudyFields: []string{"Math", "Art"}})
		if !strings.Contains(output, "student <s@example.com>") || !strings.Contains(output, "Fields: Math, Art") {
			t.Errorf("unexpected profile:\n%s", output)
		}
	})

	t.Run("MembersText", func(t *testing.T) {
		output := MembersText([]models.GroupMember{{MemberID: "9", Role: "LEADER"}})
		if !strings.Contains(output, "#9") || !strings.Contains(output, "leader") {
			t.Errorf("unexpected members:\n%s", output)
		}
	})

	t.Run("ChecklistText", func(t *testing.T) {
		output := ChecklistText("2025-06-03", sampleChecklist())
		for _, want := range []string{"[x] Read chapter 3 (1)", "[ ] Solve, then review (2)", "1/2 done"} {
			if !strings.Contains(output, want) {
				t.Errorf("checklist missing %q, got:\n%s", want, output)
			}
		}
		if !strings.Contains(ChecklistText("2025-06-04", nil), "Nothing planned.") {
			t.Error("empty day should say so")
		}
	})

	t.Run("CalendarText", func(t *testing.T) {
		cal, err := tasks.NewCalendar(2025, 6, models.MonthSummary{Dates: []string{"2025-06-03", "2025-06-10"}})
		if err != nil {
			t.Fatalf("calendar failed: %v", err)
		}

		output := CalendarText(cal)
		lines := strings.Split(strings.TrimRight(output, "\n"), "\n")
		if lines[0] != "June 2025" {
			t.Errorf("unexpected header %q", lines[0])
		}
		if len(lines) != 2+5 {
			t.Fatalf("expected 5 week rows, got %d lines", len(lines))
		}
		if !strings.HasPrefix(lines[2], " 1 ") {
			t.Errorf("June 1 2025 should open the first row, got %q", lines[2])
		}
		if strings.Count(output, "*") != 2 {
			t.Errorf("expected exactly 2 marked days, got:\n%s", output)
		}
		if !strings.Contains(lines[2], " 3*") || !strings.Contains(lines[3], "10*") {
			t.Errorf("marks in the wrong cells:\n%s", output)
		}
	})

	t.Run("ChatText", func(t *testing.T) {
		output := ChatText([]models.ChatMessage{
			{Type: models.ChatEnter, Sender: "ann"},
			{Type: models.ChatTalk, Sender: "ann", Message: "hi"},
			{Type: models.ChatImage, Sender: "bob", Message: "/img/1.png"},
		})
		for _, want := range []string{"-- ann enter", "ann: hi", "bob: [image] /img/1.png"} {
			if !strings.Contains(output, want) {
				t.Errorf("chat missing %q, got:\n%s", want, output)
			}
		}
	})
}

func TestExporters(t *testing.T) {
	t.Run("ChecklistToCSV", func(t *testing.T) {
		data, err := ChecklistToCSV(sampleChecklist())
		if err != nil {
			t.Fatalf("ChecklistToCSV failed: %v", err)
		}

		output := string(data)
		if !strings.HasPrefix(output, "ID,Date,Content,Completed\n") {
			t.Errorf("CSV missing headers, got: %s", output)
		}
		if !strings.Contains(output, "1,2025-06-03,Read chapter 3,true") {
			t.Errorf("CSV missing first row")
		}
		if !strings.Contains(output, `2,2025-06-03,"Solve, then review",false`) {
			t.Errorf("CSV should quote commas, got: %s", output)
		}
	})

	t.Run("ChecklistToMarkdown", func(t *testing.T) {
		output := string(ChecklistToMarkdown("2025-06-03", sampleChecklist()))
		if !strings.Contains(output, "# Checklist 2025-06-03") {
			t.Errorf("Markdown missing title")
		}
		if !strings.Contains(output, "- [x] Read chapter 3\n- [ ] Solve, then review\n") {
			t.Errorf("Markdown missing task list, got: %s", output)
		}
	})
}

func TestWriters(t *testing.T) {
	t.Run("WriteChecklistExport", func(t *testing.T) {
		tests := []struct {
			format ExportFormat
			want   string
		}{
			{FormatCSV, "ID,Date,Content,Completed"},
			{FormatMarkdown, "- [x] Read chapter 3"},
			{FormatJSON, `"targetDate": "2025-06-03"`},
		}

		for _, tt := range tests {
			t.Run(string(tt.format)+" WithDefaultPath", func(t *testing.T) {
				tempDir := t.TempDir()
				originalDir := th.MustGetwd(t)
				th.MustChdir(t, tempDir)
				defer th.MustChdir(t, originalDir)

				path, err := WriteChecklistExport("2025-06-03", sampleChecklist(), tt.format, "")
				if err != nil {
					t.Fatalf("WriteChecklistExport failed: %v", err)
				}
				if expected := "checklist_2025-06-03." + string(tt.format); path != expected {
					t.Errorf("Expected %q, got %q", expected, path)
				}

				th.AssertFileExists(t, path)
				if content := th.MustReadFile(t, path); !strings.Contains(content, tt.want) {
					t.Errorf("export missing %q, got: %s", tt.want, content)
				}
			})
		}
	})

	t.Run("WithCustomPath", func(t *testing.T) {
		tempDir := t.TempDir()
		path, err := WriteChecklistExport("2025-06-03", nil, FormatMarkdown, tempDir+"/today.md")
		if err != nil {
			t.Fatalf("WriteChecklistExport failed: %v", err)
		}
		if !strings.Contains(th.MustReadFile(t, path), "_Nothing planned._") {
			t.Error("empty export should say so")
		}
	})

	t.Run("UnknownFormat", func(t *testing.T) {
		if _, err := WriteChecklistExport("2025-06-03", nil, "xml", t.TempDir()+"/x"); !errors.Is(err, shared.ErrInvalidArgument) {
			t.Errorf("expected ErrInvalidArgument, got %v", err)
		}
	})
}

package plotwindow_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/Missonix/SSAI-brain/internal/brain/service/roleplay/domain/service/plotwindow"
)

func writePlotFile(t *testing.T, root, roleID, date, content string) {
	t.Helper()
	dir := filepath.Join(root, roleID+"_plot")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, date+"_day.txt"), []byte(content), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
}

func at(hour, min int) time.Time {
	return time.Date(2026, 8, 24, hour, min, 0, 0, time.UTC)
}

const daySchedule = `08:00-09:00 晨跑
10:00-11:00 开会
12:00-xx:xx 自由活动
`

func TestWindowResolution(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writePlotFile(t, root, "role_001", "2026-08-24", daySchedule)
	r := plotwindow.NewResolver(root)
	defer r.Close()

	tests := []struct {
		name        string
		now         time.Time
		wantCurrent string
		wantLines   int
	}{
		{"inside concrete segment", at(8, 30), "08:00-09:00 晨跑", 1},
		{"gap picks closest start", at(9, 30), "10:00-11:00 开会", 2},
		{"past last line returns whole day", at(13, 0), "12:00-xx:xx 自由活动", 3},
		{"before first line without prev day", at(7, 0), "08:00-09:00 晨跑", 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := r.Window("role_001", tt.now)
			if err != nil {
				t.Fatalf("Window: %v", err)
			}
			if got.Current != tt.wantCurrent {
				t.Errorf("Current = %q, want %q", got.Current, tt.wantCurrent)
			}
			if len(got.Lines) != tt.wantLines {
				t.Errorf("len(Lines) = %d, want %d", len(got.Lines), tt.wantLines)
			}
		})
	}
}

func TestWindowBeforeFirstLineUsesPreviousDay(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writePlotFile(t, root, "role_001", "2026-08-23", "21:00-23:00 看电影\n")
	writePlotFile(t, root, "role_001", "2026-08-24", daySchedule)
	r := plotwindow.NewResolver(root)
	defer r.Close()

	got, err := r.Window("role_001", at(7, 0))
	if err != nil {
		t.Fatalf("Window: %v", err)
	}
	if got.Current != "21:00-23:00 看电影" {
		t.Errorf("Current = %q, want previous day's line", got.Current)
	}
}

func TestWindowMissingTodayFallsBackOneDay(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writePlotFile(t, root, "role_001", "2026-08-23", "09:00-18:00 上班\n")
	r := plotwindow.NewResolver(root)
	defer r.Close()

	got, err := r.Window("role_001", at(12, 0))
	if err != nil {
		t.Fatalf("Window: %v", err)
	}
	if got.Current != "09:00-18:00 上班" {
		t.Errorf("Current = %q, want previous day's line", got.Current)
	}
}

func TestWindowMissingBothDaysIsEmpty(t *testing.T) {
	t.Parallel()

	r := plotwindow.NewResolver(t.TempDir())
	defer r.Close()

	got, err := r.Window("role_001", at(12, 0))
	if err != nil {
		t.Fatalf("Window: %v", err)
	}
	if !got.Empty() {
		t.Errorf("window = %+v, want empty", got)
	}
}

func TestWindowConcreteBeatsOpenEnded(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writePlotFile(t, root, "role_002", "2026-08-24", `09:00-xx:xx 在家休息
10:00-11:00 视频会议
13:00-14:00 午饭
`)
	r := plotwindow.NewResolver(root)
	defer r.Close()

	got, err := r.Window("role_002", at(10, 30))
	if err != nil {
		t.Fatalf("Window: %v", err)
	}
	if got.Current != "10:00-11:00 视频会议" {
		t.Errorf("Current = %q, want the concrete segment", got.Current)
	}

	got, err = r.Window("role_002", at(11, 30))
	if err != nil {
		t.Fatalf("Window: %v", err)
	}
	if got.Current != "09:00-xx:xx 在家休息" {
		t.Errorf("Current = %q, want the open-ended line", got.Current)
	}
}

func TestWindowFolderFallbackByFirstToken(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	// Folder named after the first id token instead of the full id.
	writePlotFile(t, root, "role", "2026-08-24", daySchedule)
	r := plotwindow.NewResolver(root)
	defer r.Close()

	got, err := r.Window("role_001", at(8, 30))
	if err != nil {
		t.Fatalf("Window: %v", err)
	}
	if got.Current != "08:00-09:00 晨跑" {
		t.Errorf("Current = %q, want first line via token folder", got.Current)
	}
}

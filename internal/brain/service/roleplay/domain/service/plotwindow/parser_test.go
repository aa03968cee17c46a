package plotwindow_test

import (
	"testing"

	"github.com/Missonix/SSAI-brain/internal/brain/service/roleplay/domain/service/plotwindow"
)

func TestParseLines(t *testing.T) {
	t.Parallel()

	content := `07:30-08:00 起床洗漱,吃早饭
08:00-12:00 在公司写方案
这一行不是日程
12:00-13:00 和同事吃午饭

22:30-xx:xx 上床睡觉
`
	lines := plotwindow.ParseLines(content)

	if len(lines) != 4 {
		t.Fatalf("len(lines) = %d, want 4", len(lines))
	}
	if lines[0].StartMin != 7*60+30 || lines[0].EndMin != 8*60 {
		t.Errorf("first line = %d-%d, want 450-480", lines[0].StartMin, lines[0].EndMin)
	}
	if lines[0].Text != "起床洗漱,吃早饭" {
		t.Errorf("first text = %q", lines[0].Text)
	}
	last := lines[3]
	if !last.OpenEnded {
		t.Errorf("last line OpenEnded = false, want true")
	}
	if last.StartMin != 22*60+30 {
		t.Errorf("last StartMin = %d, want %d", last.StartMin, 22*60+30)
	}
}

func TestParseLinesSortsByStart(t *testing.T) {
	t.Parallel()

	content := `12:00-13:00 午饭
07:00-08:00 早饭
`
	lines := plotwindow.ParseLines(content)
	if len(lines) != 2 {
		t.Fatalf("len(lines) = %d, want 2", len(lines))
	}
	if lines[0].StartMin != 7*60 {
		t.Errorf("lines[0].StartMin = %d, want %d", lines[0].StartMin, 7*60)
	}
}

func TestParseLinesRejectsBadTimes(t *testing.T) {
	t.Parallel()

	content := `25:00-26:00 不存在的时刻
07:61-08:00 分钟越界
`
	if lines := plotwindow.ParseLines(content); len(lines) != 0 {
		t.Errorf("len(lines) = %d, want 0", len(lines))
	}
}

func TestParseLinesEmpty(t *testing.T) {
	t.Parallel()

	if lines := plotwindow.ParseLines(""); len(lines) != 0 {
		t.Errorf("len(lines) = %d, want 0", len(lines))
	}
}

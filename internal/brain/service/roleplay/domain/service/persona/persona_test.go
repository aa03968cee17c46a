package persona_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/Missonix/SSAI-brain/internal/brain/service/roleplay/domain/service/persona"
	"github.com/Missonix/SSAI-brain/internal/brain/service/roleplay/pkg/errno"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func TestLoadReadsAndCachesPersona(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeFile(t, filepath.Join(root, "role_001_L0_prompt.txt"), "你是小慧,22岁,程序员。\n")
	svc := persona.New(root, t.TempDir())

	got, err := svc.Load(context.Background(), "role_001")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got != "你是小慧,22岁,程序员。" {
		t.Errorf("persona = %q", got)
	}

	// A second load comes from the cache even after the file is gone.
	if err := os.Remove(filepath.Join(root, "role_001_L0_prompt.txt")); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if _, err := svc.Load(context.Background(), "role_001"); err != nil {
		t.Errorf("cached Load: %v", err)
	}
}

func TestLoadMissingPersonaFails(t *testing.T) {
	t.Parallel()

	svc := persona.New(t.TempDir(), t.TempDir())
	_, err := svc.Load(context.Background(), "role_404")
	if !errors.Is(err, errno.ErrPersonaMissing) {
		t.Fatalf("err = %v, want ErrPersonaMissing", err)
	}
}

func TestPastSummaryPathIsPerRoleDirectory(t *testing.T) {
	t.Parallel()

	summaryRoot := t.TempDir()
	writeFile(t, filepath.Join(summaryRoot, "role_001", "小慧_summary.txt"), "大学四年在武汉度过。\n")
	svc := persona.New(t.TempDir(), summaryRoot)

	if got := svc.PastSummary(context.Background(), "role_001", "小慧"); got != "大学四年在武汉度过。" {
		t.Errorf("PastSummary = %q", got)
	}

	// A blob at the old flat location is not picked up.
	writeFile(t, filepath.Join(summaryRoot, "role_002_summary.txt"), "旧位置")
	if got := svc.PastSummary(context.Background(), "role_002", "小明"); got != "" {
		t.Errorf("PastSummary for missing per-role blob = %q, want empty", got)
	}
}

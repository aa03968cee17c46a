package lifestory_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/Missonix/SSAI-brain/internal/brain/service/roleplay/domain/entity"
	"github.com/Missonix/SSAI-brain/internal/brain/service/roleplay/domain/repo"
	"github.com/Missonix/SSAI-brain/internal/brain/service/roleplay/domain/service/clock"
	"github.com/Missonix/SSAI-brain/internal/brain/service/roleplay/domain/service/lifestory"
	"github.com/Missonix/SSAI-brain/internal/brain/service/roleplay/domain/service/persona"
	"github.com/Missonix/SSAI-brain/internal/brain/service/roleplay/pkg/errno"
	"github.com/Missonix/SSAI-brain/internal/brain/service/roleplay/store/sqlite"
)

type scriptCall struct {
	system string
	user   string
}

// script answers each generation prompt by its system-prompt family with
// deterministic material: six birth-to-present stages, two segments per
// stage and a fixed daily schedule. Every call is recorded so tests can
// inspect the prompts, and daily generation can be switched to fail.
type script struct {
	mu        sync.Mutex
	failDaily bool
	calls     []scriptCall
}

func (s *script) generate(_ context.Context, system, user string) (string, error) {
	s.mu.Lock()
	s.calls = append(s.calls, scriptCall{system: system, user: user})
	failDaily := s.failDaily
	s.mu.Unlock()

	switch {
	case strings.Contains(system, "从出生到当前年龄"):
		return `{"stages":[
			{"life_period":"0-6岁","title":"小镇童年","description_for_plot_llm":"无忧无虑","stage_goals":"快乐长大"},
			{"life_period":"7-12岁","title":"小学时光","description_for_plot_llm":"第一次住校","stage_goals":"学会独立"},
			{"life_period":"13-18岁","title":"中学苦读","description_for_plot_llm":"备战高考","stage_goals":"考上大学"},
			{"life_period":"19-21岁","title":"大学四年","description_for_plot_llm":"学计算机","stage_goals":"顺利毕业"},
			{"life_period":"22-23岁","title":"初入职场","description_for_plot_llm":"第一份工作","stage_goals":"站稳脚跟"},
			{"life_period":"24-25岁","title":"独当一面","description_for_plot_llm":"带小项目","stage_goals":"升职"}
		]}`, nil
	case strings.Contains(system, "规划接下来的人生阶段"):
		return `{"stages":[
			{"life_period":"26-28岁","title":"站上台前","description_for_plot_llm":"带团队","stage_goals":"做出代表作"},
			{"life_period":"29-31岁","title":"成家立业","description_for_plot_llm":"安定下来","stage_goals":"平衡生活"}
		]}`, nil
	case strings.Contains(system, "拆成"):
		return `{"segments":[
			{"title":"入职第一周","life_age":22,"segment_prompt_for_plot_llm":"熟悉环境","duration_in_days_estimate":2,"expected_emotional_arc":"紧张到放松","key_npcs_involved":"导师老张","is_milestone_event":false},
			{"title":"第一个任务","life_age":23,"segment_prompt_for_plot_llm":"接手小需求","duration_in_days_estimate":2,"expected_emotional_arc":"忐忑到有成就感","key_npcs_involved":"导师老张","is_milestone_event":true}
		]}`, nil
	case strings.Contains(system, "每日剧情生成器"):
		if failDaily {
			return "今天实在编不出来", nil
		}
		return `{"plot_content":"08:00-09:00 通勤\n09:00-18:00 上班\n19:00-xx:xx 在家休息","mood":{"my_valence":0.2,"my_arousal":0.5,"my_tags":"期待","my_intensity":5,"my_mood_description_for_llm":"新生活的期待"}}`, nil
	default:
		return "刚完成的阶段里角色初步适应了职场。", nil
	}
}

func (s *script) setFailDaily(v bool) {
	s.mu.Lock()
	s.failDaily = v
	s.mu.Unlock()
}

// userPrompts returns the user prompts of calls whose system prompt
// contains marker, in call order.
func (s *script) userPrompts(marker string) []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []string
	for _, c := range s.calls {
		if strings.Contains(c.system, marker) {
			out = append(out, c.user)
		}
	}
	return out
}

type machineFixture struct {
	machine    *lifestory.Machine
	store      *sqlite.LifeStoryStore
	roles      *sqlite.RoleStore
	script     *script
	root       string
	personaDir string
	summaryDir string
	now        *time.Time
}

func newMachineFixture(t *testing.T) *machineFixture {
	t.Helper()
	db, err := sqlite.Open(":memory:", 5000)
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	now := time.Date(2026, 8, 24, 9, 0, 0, 0, time.UTC)
	f := &machineFixture{
		store:      sqlite.NewLifeStoryStore(db),
		roles:      sqlite.NewRoleStore(db),
		script:     &script{},
		root:       t.TempDir(),
		personaDir: t.TempDir(),
		summaryDir: t.TempDir(),
		now:        &now,
	}
	clk := clock.Func(func(context.Context) time.Time { return *f.now })
	personas := persona.New(f.personaDir, f.summaryDir)
	f.machine = lifestory.NewMachine(f.store, f.roles, lifestory.NewGenerator(repo.GenerateFunc(f.script.generate)), clk, personas, f.root)

	err = f.roles.UpsertDetail(context.Background(), &entity.RoleDetail{
		RoleID: "role_001", RoleName: "小慧", Age: 22, Mood: entity.NeutralMood(),
	})
	if err != nil {
		t.Fatalf("UpsertDetail: %v", err)
	}
	return f
}

func (f *machineFixture) bootstrapBorn(t *testing.T, birthday string) *entity.Outline {
	t.Helper()
	outline := &entity.Outline{
		OutlineID:    entity.NewOutlineID(),
		RoleID:       "role_001",
		Title:        "小镇青年的北漂记",
		Birthday:     birthday,
		Life:         80,
		Wealth:       "普通",
		OverallTheme: "成长",
		Version:      1,
	}
	if err := f.machine.Bootstrap(context.Background(), outline); err != nil {
		t.Fatalf("Bootstrap: %v", err)
	}
	return outline
}

// bootstrap builds the default hierarchy: born 2004-03-01, so the
// character is 22 on the fixture's story date.
func (f *machineFixture) bootstrap(t *testing.T) *entity.Outline {
	t.Helper()
	return f.bootstrapBorn(t, "2004-03-01")
}

func (f *machineFixture) plotFiles(t *testing.T) []string {
	t.Helper()
	blobs, err := filepath.Glob(filepath.Join(f.root, "role_001_plot", "*.txt"))
	if err != nil {
		t.Fatalf("glob: %v", err)
	}
	return blobs
}

func TestBootstrapBuildsFullHierarchy(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	f := newMachineFixture(t)
	outline := f.bootstrap(t)

	stages, err := f.store.ListStages(ctx, outline.OutlineID)
	if err != nil {
		t.Fatalf("ListStages: %v", err)
	}
	if len(stages) != 6 {
		t.Fatalf("stages = %d, want 6", len(stages))
	}
	// Age 22: the four childhood stages are behind the character, the
	// 22-23 stage is live, the last one still ahead.
	for i := 0; i < 4; i++ {
		if stages[i].Status != entity.StatusCompleted {
			t.Errorf("stage %d status = %q, want completed", i, stages[i].Status)
		}
	}
	if stages[4].Status != entity.StatusActive {
		t.Errorf("stage 4 status = %q, want active", stages[4].Status)
	}
	if stages[5].Status != entity.StatusLocked {
		t.Errorf("stage 5 status = %q, want locked", stages[5].Status)
	}

	segments, err := f.store.ListSegments(ctx, stages[4].StageID)
	if err != nil {
		t.Fatalf("ListSegments: %v", err)
	}
	if len(segments) != 2 {
		t.Fatalf("segments = %d, want 2", len(segments))
	}
	if segments[0].Status != entity.StatusActive {
		t.Errorf("first segment status = %q, want active", segments[0].Status)
	}

	plots, err := f.store.ListDailyPlots(ctx, segments[0].SegmentID)
	if err != nil {
		t.Fatalf("ListDailyPlots: %v", err)
	}
	if len(plots) != 2 {
		t.Fatalf("daily plots = %d, want 2 (segment duration)", len(plots))
	}
	if plots[0].PlotDate != "2026-08-24" || plots[1].PlotDate != "2026-08-25" {
		t.Errorf("plot dates = %q/%q", plots[0].PlotDate, plots[1].PlotDate)
	}
	if plots[0].Status != entity.StatusActive {
		t.Errorf("first plot status = %q, want active", plots[0].Status)
	}
	if plots[0].Mood.Tags != "期待" {
		t.Errorf("plot mood tags = %q, want 期待", plots[0].Mood.Tags)
	}

	if files := f.plotFiles(t); len(files) != 2 {
		t.Errorf("plot blobs = %d, want 2", len(files))
	}

	detail, err := f.roles.GetDetail(ctx, "role_001")
	if err != nil {
		t.Fatalf("GetDetail: %v", err)
	}
	if detail.CurrentLifeStageID != stages[4].StageID || detail.CurrentPlotSegmentID != segments[0].SegmentID {
		t.Errorf("role pointers = %q/%q, want live stage and segment", detail.CurrentLifeStageID, detail.CurrentPlotSegmentID)
	}
}

func TestBootstrapActivatesSegmentMatchingAge(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	f := newMachineFixture(t)
	// Born a year earlier: 23 on the story date.
	outline := f.bootstrapBorn(t, "2003-03-01")

	stages, err := f.store.ListStages(ctx, outline.OutlineID)
	if err != nil {
		t.Fatalf("ListStages: %v", err)
	}
	if stages[4].Status != entity.StatusActive {
		t.Fatalf("stage 4 status = %q, want active (22-23 covers age 23)", stages[4].Status)
	}

	segments, err := f.store.ListSegments(ctx, stages[4].StageID)
	if err != nil {
		t.Fatalf("ListSegments: %v", err)
	}
	// The age-22 segment is already behind the character; the age-23 one
	// plays.
	if segments[0].Status != entity.StatusCompleted {
		t.Errorf("age-22 segment status = %q, want completed", segments[0].Status)
	}
	if segments[1].Status != entity.StatusActive {
		t.Errorf("age-23 segment status = %q, want active", segments[1].Status)
	}

	// The skipped segment feeds the daily prompt as played-out history.
	daily := f.script.userPrompts("每日剧情生成器")
	if len(daily) == 0 {
		t.Fatal("no daily generation calls recorded")
	}
	if !strings.Contains(daily[0], "已经历过的剧情段") || !strings.Contains(daily[0], "入职第一周") {
		t.Errorf("daily prompt lacks completed-segment history:\n%s", daily[0])
	}
}

func TestBootstrapSeedsPromptsWithCharacterContext(t *testing.T) {
	t.Parallel()

	f := newMachineFixture(t)
	personaText := "爽朗的程序员,嘴硬心软。"
	if err := os.WriteFile(filepath.Join(f.personaDir, "role_001_L0_prompt.txt"), []byte(personaText), 0o644); err != nil {
		t.Fatalf("write persona: %v", err)
	}
	summaryDir := filepath.Join(f.summaryDir, "role_001")
	if err := os.MkdirAll(summaryDir, 0o755); err != nil {
		t.Fatalf("mkdir summary: %v", err)
	}
	if err := os.WriteFile(filepath.Join(summaryDir, "小慧_summary.txt"), []byte("在老家读完大学,刚来北京。"), 0o644); err != nil {
		t.Fatalf("write summary: %v", err)
	}

	f.bootstrap(t)

	initial := f.script.userPrompts("从出生到当前年龄")
	if len(initial) != 1 {
		t.Fatalf("initial stage calls = %d, want 1", len(initial))
	}
	if !strings.Contains(initial[0], "角色当前年龄:22岁") {
		t.Errorf("initial stage prompt lacks current age:\n%s", initial[0])
	}
	if !strings.Contains(initial[0], personaText) {
		t.Errorf("initial stage prompt lacks persona:\n%s", initial[0])
	}

	segPrompts := f.script.userPrompts("拆成")
	if len(segPrompts) != 1 {
		t.Fatalf("segment calls = %d, want 1", len(segPrompts))
	}
	if !strings.Contains(segPrompts[0], personaText) || !strings.Contains(segPrompts[0], "刚来北京") {
		t.Errorf("segment prompt lacks persona or past summary:\n%s", segPrompts[0])
	}

	daily := f.script.userPrompts("每日剧情生成器")
	if len(daily) != 2 {
		t.Fatalf("daily calls = %d, want 2", len(daily))
	}
	if strings.Contains(daily[0], "前一天的日程") {
		t.Errorf("first day should not carry a previous day:\n%s", daily[0])
	}
	if !strings.Contains(daily[1], "前一天的日程") || !strings.Contains(daily[1], "08:00-09:00 通勤") {
		t.Errorf("second day lacks the previous day's schedule:\n%s", daily[1])
	}
	if !strings.Contains(daily[1], "前一天结束时的心情") || !strings.Contains(daily[1], "期待") {
		t.Errorf("second day lacks the previous day's closing mood:\n%s", daily[1])
	}
	if !strings.Contains(daily[0], personaText) {
		t.Errorf("daily prompt lacks persona:\n%s", daily[0])
	}
}

func TestAdvanceIsNoOpWhileCoveredByPlots(t *testing.T) {
	t.Parallel()

	f := newMachineFixture(t)
	f.bootstrap(t)

	changed, err := f.machine.Advance(context.Background(), "role_001")
	if err != nil {
		t.Fatalf("Advance: %v", err)
	}
	if changed {
		t.Error("Advance changed state while today is still covered")
	}
}

func TestAdvanceMovesToNextSegment(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	f := newMachineFixture(t)
	outline := f.bootstrap(t)

	*f.now = time.Date(2026, 8, 26, 9, 0, 0, 0, time.UTC)
	changed, err := f.machine.Advance(ctx, "role_001")
	if err != nil {
		t.Fatalf("Advance: %v", err)
	}
	if !changed {
		t.Fatal("Advance reported no change past the last plot date")
	}

	stages, err := f.store.ListStages(ctx, outline.OutlineID)
	if err != nil {
		t.Fatalf("ListStages: %v", err)
	}
	segments, err := f.store.ListSegments(ctx, stages[4].StageID)
	if err != nil {
		t.Fatalf("ListSegments: %v", err)
	}
	if segments[0].Status != entity.StatusCompleted || segments[1].Status != entity.StatusActive {
		t.Errorf("segment statuses = %q/%q, want completed/active", segments[0].Status, segments[1].Status)
	}

	plots, err := f.store.ListDailyPlots(ctx, segments[1].SegmentID)
	if err != nil {
		t.Fatalf("ListDailyPlots: %v", err)
	}
	if len(plots) != 2 {
		t.Fatalf("daily plots = %d, want 2", len(plots))
	}
	if plots[0].PlotDate != "2026-08-26" {
		t.Errorf("regenerated plots start at %q, want 2026-08-26", plots[0].PlotDate)
	}

	// Old segment blobs are purged before regeneration.
	for _, blob := range f.plotFiles(t) {
		name := filepath.Base(blob)
		if strings.HasPrefix(name, "2026-08-24") || strings.HasPrefix(name, "2026-08-25") {
			t.Errorf("stale plot blob %q survived the purge", name)
		}
	}

	detail, err := f.roles.GetDetail(ctx, "role_001")
	if err != nil {
		t.Fatalf("GetDetail: %v", err)
	}
	if detail.CurrentPlotSegmentID != segments[1].SegmentID {
		t.Errorf("role segment pointer = %q, want %q", detail.CurrentPlotSegmentID, segments[1].SegmentID)
	}
}

func TestAdvanceCrossesStageBoundary(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	f := newMachineFixture(t)
	outline := f.bootstrap(t)

	// Exhaust the first live stage: segment 2 covers 08-26..08-27.
	*f.now = time.Date(2026, 8, 26, 9, 0, 0, 0, time.UTC)
	if _, err := f.machine.Advance(ctx, "role_001"); err != nil {
		t.Fatalf("first Advance: %v", err)
	}
	*f.now = time.Date(2026, 8, 28, 9, 0, 0, 0, time.UTC)
	changed, err := f.machine.Advance(ctx, "role_001")
	if err != nil {
		t.Fatalf("second Advance: %v", err)
	}
	if !changed {
		t.Fatal("Advance reported no change at the stage boundary")
	}

	stages, err := f.store.ListStages(ctx, outline.OutlineID)
	if err != nil {
		t.Fatalf("ListStages: %v", err)
	}
	if stages[4].Status != entity.StatusCompleted {
		t.Errorf("exhausted stage status = %q, want completed", stages[4].Status)
	}
	if stages[4].Summary == "" {
		t.Error("completed stage has no summary")
	}
	if stages[5].Status != entity.StatusActive {
		t.Errorf("next stage status = %q, want active", stages[5].Status)
	}

	segments, err := f.store.ListSegments(ctx, stages[5].StageID)
	if err != nil {
		t.Fatalf("ListSegments: %v", err)
	}
	if len(segments) != 2 || segments[0].Status != entity.StatusActive {
		t.Fatalf("new stage segments = %+v, want two with the first active", segments)
	}

	detail, err := f.roles.GetDetail(ctx, "role_001")
	if err != nil {
		t.Fatalf("GetDetail: %v", err)
	}
	if detail.CurrentLifeStageID != stages[5].StageID {
		t.Errorf("role stage pointer = %q, want %q", detail.CurrentLifeStageID, stages[5].StageID)
	}
}

func TestAdvanceKeepsStateWhenGenerationFails(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	f := newMachineFixture(t)
	outline := f.bootstrap(t)
	f.script.setFailDaily(true)

	*f.now = time.Date(2026, 8, 26, 9, 0, 0, 0, time.UTC)
	changed, err := f.machine.Advance(ctx, "role_001")
	if !errors.Is(err, errno.ErrGenerationFailed) {
		t.Fatalf("err = %v, want ErrGenerationFailed", err)
	}
	if changed {
		t.Error("Advance reported a change despite failing")
	}

	// Nothing moved: statuses, plot rows, blobs and pointers are all as
	// the bootstrap left them.
	stages, err := f.store.ListStages(ctx, outline.OutlineID)
	if err != nil {
		t.Fatalf("ListStages: %v", err)
	}
	if stages[4].Status != entity.StatusActive {
		t.Errorf("live stage status = %q, want still active", stages[4].Status)
	}
	segments, err := f.store.ListSegments(ctx, stages[4].StageID)
	if err != nil {
		t.Fatalf("ListSegments: %v", err)
	}
	if segments[0].Status != entity.StatusActive || segments[1].Status != entity.StatusLocked {
		t.Errorf("segment statuses = %q/%q, want active/locked", segments[0].Status, segments[1].Status)
	}
	plots, err := f.store.ListDailyPlots(ctx, segments[0].SegmentID)
	if err != nil {
		t.Fatalf("ListDailyPlots: %v", err)
	}
	if len(plots) != 2 || plots[0].PlotDate != "2026-08-24" {
		t.Fatalf("plot rows changed: %+v", plots)
	}
	if files := f.plotFiles(t); len(files) != 2 {
		t.Errorf("plot blobs = %d, want 2 untouched", len(files))
	}
	detail, err := f.roles.GetDetail(ctx, "role_001")
	if err != nil {
		t.Fatalf("GetDetail: %v", err)
	}
	if detail.CurrentPlotSegmentID != segments[0].SegmentID {
		t.Errorf("role segment pointer = %q, want %q", detail.CurrentPlotSegmentID, segments[0].SegmentID)
	}

	// The next attempt with a healthy generator completes the move.
	f.script.setFailDaily(false)
	changed, err = f.machine.Advance(ctx, "role_001")
	if err != nil {
		t.Fatalf("retry Advance: %v", err)
	}
	if !changed {
		t.Fatal("retry Advance reported no change")
	}
}

func TestAdvancePurgesEveryRoleBlobDir(t *testing.T) {
	t.Parallel()

	f := newMachineFixture(t)
	f.bootstrap(t)

	otherDir := filepath.Join(f.root, "role_002_plot")
	if err := os.MkdirAll(otherDir, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	stale := filepath.Join(otherDir, "2026-08-20_出差.txt")
	if err := os.WriteFile(stale, []byte("09:00-18:00 出差"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	*f.now = time.Date(2026, 8, 26, 9, 0, 0, 0, time.UTC)
	if _, err := f.machine.Advance(context.Background(), "role_001"); err != nil {
		t.Fatalf("Advance: %v", err)
	}

	// Plot rows are global, so the purge clears other roles' blobs too.
	if _, err := os.Stat(stale); !os.IsNotExist(err) {
		t.Errorf("stale blob of another role survived the purge (stat err = %v)", err)
	}
}

func TestAdvanceWithoutOutlineFails(t *testing.T) {
	t.Parallel()

	f := newMachineFixture(t)

	_, err := f.machine.Advance(context.Background(), "role_001")
	if !errors.Is(err, errno.ErrOutlineMissing) {
		t.Fatalf("err = %v, want ErrOutlineMissing", err)
	}
}

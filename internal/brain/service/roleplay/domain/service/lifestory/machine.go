package lifestory

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/Missonix/SSAI-brain/internal/brain/service/roleplay/domain/entity"
	"github.com/Missonix/SSAI-brain/internal/brain/service/roleplay/domain/repo"
	"github.com/Missonix/SSAI-brain/internal/brain/service/roleplay/domain/service/clock"
	"github.com/Missonix/SSAI-brain/internal/brain/service/roleplay/domain/service/persona"
	"github.com/Missonix/SSAI-brain/pkg/logger"
)

// Machine advances a role's life story when its calendar outruns the
// generated daily plots.
//
// Advancement is serialized per outline with an advisory lock; concurrent
// turns may trigger it but only one performs the transition.
//
// Every transition runs in two phases: a plan phase that makes all model
// calls without touching storage, and a commit phase that only writes. A
// generation failure therefore leaves the pre-trigger state intact.
type Machine struct {
	store    repo.LifeStoryRepository
	roles    repo.RoleRepository
	gen      *Generator
	clock    clock.Clock
	personas *persona.Service
	plotRoot string

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewMachine creates a Machine.
func NewMachine(store repo.LifeStoryRepository, roles repo.RoleRepository, gen *Generator, clk clock.Clock, personas *persona.Service, plotRoot string) *Machine {
	return &Machine{
		store:    store,
		roles:    roles,
		gen:      gen,
		clock:    clk,
		personas: personas,
		plotRoot: plotRoot,
		locks:    make(map[string]*sync.Mutex),
	}
}

func (m *Machine) outlineLock(outlineID string) *sync.Mutex {
	m.mu.Lock()
	defer m.mu.Unlock()
	l, ok := m.locks[outlineID]
	if !ok {
		l = &sync.Mutex{}
		m.locks[outlineID] = l
	}
	return l
}

// roleContext is the character material every generation prompt is
// seeded with. Missing pieces degrade to empty sections.
type roleContext struct {
	detail  *entity.RoleDetail
	persona string
	summary string
}

func (m *Machine) roleContext(ctx context.Context, roleID string) *roleContext {
	rc := &roleContext{}
	detail, err := m.roles.GetDetail(ctx, roleID)
	if err != nil {
		logger.Warn("[LifeStory] role detail unavailable for %s: %v", roleID, err)
	} else {
		rc.detail = detail
	}
	text, err := m.personas.Load(ctx, roleID)
	if err != nil {
		logger.Warn("[LifeStory] persona unavailable for %s: %v", roleID, err)
	} else {
		rc.persona = text
	}
	if rc.detail != nil {
		rc.summary = m.personas.PastSummary(ctx, roleID, rc.detail.RoleName)
	}
	return rc
}

// dayPlan is one generated day waiting to be committed.
type dayPlan struct {
	date    string
	content string
	mood    entity.Mood
	status  entity.LifeStatus
}

// advancePlan is the full outcome of one planned transition. Everything
// in it was produced without writing to storage.
type advancePlan struct {
	stage   *entity.Stage
	segment *entity.Segment
	days    []dayPlan

	stageStatus    map[string]entity.LifeStatus
	stageSummaries map[string]string
	newStages      []*entity.Stage
	// regenStageID names an existing stage whose stale segments are
	// replaced by newSegments.
	regenStageID  string
	newSegments   []*entity.Segment
	segmentStatus map[string]entity.LifeStatus
}

func newAdvancePlan() *advancePlan {
	return &advancePlan{
		stageStatus:    make(map[string]entity.LifeStatus),
		stageSummaries: make(map[string]string),
		segmentStatus:  make(map[string]entity.LifeStatus),
	}
}

// Advance checks whether the role's story needs to move and performs the
// transition when it does. Returns true when something changed.
func (m *Machine) Advance(ctx context.Context, roleID string) (bool, error) {
	outline, err := m.store.LatestOutline(ctx, roleID)
	if err != nil {
		return false, err
	}

	lock := m.outlineLock(outline.OutlineID)
	lock.Lock()
	defer lock.Unlock()

	now := m.clock.Now(ctx)
	today := now.Format(clock.DateLayout)
	maxDate, err := m.store.MaxPlotDate(ctx)
	if err != nil {
		return false, err
	}
	if maxDate == "" {
		// No plots at all yet; fill the active segment without advancing.
		return true, m.fillActiveSegment(ctx, roleID, outline, today)
	}
	if today <= maxDate {
		return false, nil
	}

	logger.Info("[LifeStory] advancing role %s: today=%s exceeds generated plots (max=%s)", roleID, today, maxDate)

	plan, err := m.planAdvance(ctx, roleID, outline, now)
	if err != nil {
		return false, err
	}
	if err := m.commitAdvance(ctx, roleID, plan); err != nil {
		return false, err
	}
	logger.Info("[LifeStory] role %s now at stage %q segment %q", roleID, plan.stage.Title, plan.segment.Title)
	return true, nil
}

// AdvanceAll runs Advance for every configured role; used at startup.
func (m *Machine) AdvanceAll(ctx context.Context) {
	roles, err := m.roles.List(ctx)
	if err != nil {
		logger.Error("[LifeStory] failed to list roles for warm-up: %v", err)
		return
	}
	for _, r := range roles {
		if _, err := m.Advance(ctx, r.RoleID); err != nil {
			logger.Warn("[LifeStory] warm-up advance failed for role %s: %v", r.RoleID, err)
		}
	}
}

// Bootstrap creates a fresh life story for a role: the outline row, a
// birth-to-present stage plan, the current stage's segments and the
// active segment's daily plots. All generation happens before the first
// write.
func (m *Machine) Bootstrap(ctx context.Context, outline *entity.Outline) error {
	lock := m.outlineLock(outline.OutlineID)
	lock.Lock()
	defer lock.Unlock()

	rc := m.roleContext(ctx, outline.RoleID)
	now := m.clock.Now(ctx)
	today := now.Format(clock.DateLayout)
	age := characterAge(outline, now, rc.detail)

	stages, err := m.gen.InitialStages(ctx, outline, rc.persona, age)
	if err != nil {
		return err
	}
	activeStage := activateStages(stages, age)

	segments, err := m.gen.Segments(ctx, outline, activeStage, rc.persona, rc.summary)
	if err != nil {
		return err
	}
	activeSeg := activateSegments(segments, age)

	days, err := m.planDays(ctx, activeSeg, rc, completedSegmentLines(segments), today)
	if err != nil {
		return err
	}

	if err := m.store.UpsertOutline(ctx, outline); err != nil {
		return err
	}
	for _, st := range stages {
		if err := m.store.InsertStage(ctx, st); err != nil {
			return err
		}
	}
	for _, seg := range segments {
		if err := m.store.InsertSegment(ctx, seg); err != nil {
			return err
		}
	}
	if err := m.writeDays(ctx, outline.RoleID, activeSeg, days); err != nil {
		return err
	}
	return m.roles.UpdatePointers(ctx, outline.RoleID, activeStage.StageID, activeSeg.SegmentID, "")
}

// fillActiveSegment generates plots for the currently active segment
// without moving any pointer. Used when the plot table is empty.
func (m *Machine) fillActiveSegment(ctx context.Context, roleID string, outline *entity.Outline, today string) error {
	stage, segment, err := m.current(ctx, outline)
	if err != nil {
		return err
	}
	rc := m.roleContext(ctx, roleID)
	segments, err := m.store.ListSegments(ctx, stage.StageID)
	if err != nil {
		return err
	}
	days, err := m.planDays(ctx, segment, rc, completedSegmentLines(segments), today)
	if err != nil {
		return err
	}
	if err := m.writeDays(ctx, roleID, segment, days); err != nil {
		return err
	}
	return m.roles.UpdatePointers(ctx, roleID, stage.StageID, segment.SegmentID, "")
}

// current returns the active stage and segment.
func (m *Machine) current(ctx context.Context, outline *entity.Outline) (*entity.Stage, *entity.Segment, error) {
	stages, err := m.store.ListStages(ctx, outline.OutlineID)
	if err != nil {
		return nil, nil, err
	}
	stage := findByStatus(stages, entity.StatusActive)
	if stage == nil {
		return nil, nil, fmt.Errorf("outline %q has no active stage", outline.OutlineID)
	}
	segments, err := m.store.ListSegments(ctx, stage.StageID)
	if err != nil {
		return nil, nil, err
	}
	for _, seg := range segments {
		if seg.Status == entity.StatusActive {
			return stage, seg, nil
		}
	}
	return nil, nil, fmt.Errorf("stage %q has no active segment", stage.StageID)
}

// planAdvance builds the complete transition without writing anything:
// which statuses flip, which rows get created and the daily plots for
// the segment being entered.
func (m *Machine) planAdvance(ctx context.Context, roleID string, outline *entity.Outline, now time.Time) (*advancePlan, error) {
	rc := m.roleContext(ctx, roleID)
	age := characterAge(outline, now, rc.detail)
	today := now.Format(clock.DateLayout)

	stages, err := m.store.ListStages(ctx, outline.OutlineID)
	if err != nil {
		return nil, err
	}
	plan := newAdvancePlan()

	stage := findByStatus(stages, entity.StatusActive)
	if stage != nil {
		segments, err := m.store.ListSegments(ctx, stage.StageID)
		if err != nil {
			return nil, err
		}
		activeIdx := -1
		for i, seg := range segments {
			if seg.Status == entity.StatusActive {
				activeIdx = i
				break
			}
		}

		next, statuses := sweepSegments(segments, age, activeIdx)
		if next != nil {
			for id, st := range statuses {
				plan.segmentStatus[id] = st
			}
			plan.stage, plan.segment = stage, next
			plan.days, err = m.planDays(ctx, next, rc, completedByStatus(segments, statuses), today)
			if err != nil {
				return nil, err
			}
			return plan, nil
		}

		// Stage exhausted: close it, summarize it, move on.
		for _, seg := range segments {
			plan.segmentStatus[seg.SegmentID] = entity.StatusCompleted
		}
		plan.stageStatus[stage.StageID] = entity.StatusCompleted
		if summary, err := m.gen.StageSummary(ctx, stage, segments); err == nil && summary != "" {
			plan.stageSummaries[stage.StageID] = summary
			stage.Summary = summary
		} else if err != nil {
			logger.Warn("[LifeStory] summary generation failed for stage %s: %v", stage.StageID, err)
		}
	}

	if err := m.planStageEntry(ctx, plan, outline, rc, age, stages); err != nil {
		return nil, err
	}
	plan.days, err = m.planDays(ctx, plan.segment, rc, completedSegmentLines(plan.newSegments), today)
	if err != nil {
		return nil, err
	}
	return plan, nil
}

// planStageEntry picks the stage the story moves into: the next locked
// one when the plan still has material, otherwise a freshly planned
// batch. Its segments are generated and the activation sweep applied.
func (m *Machine) planStageEntry(ctx context.Context, plan *advancePlan, outline *entity.Outline, rc *roleContext, age int, stages []*entity.Stage) error {
	var next *entity.Stage
	for _, st := range stages {
		if st.Status == entity.StatusLocked {
			next = st
			break
		}
	}

	if next == nil {
		maxOrder, err := m.store.MaxStageOrder(ctx, outline.OutlineID)
		if err != nil {
			return err
		}
		var summaries []string
		for _, st := range stages {
			if st.Summary != "" {
				summaries = append(summaries, fmt.Sprintf("%s(%s):%s", st.Title, st.LifePeriod, st.Summary))
			}
		}
		planned, err := m.gen.Stages(ctx, outline, rc.persona, maxOrder, summaries)
		if err != nil {
			return err
		}
		planned[0].Status = entity.StatusActive
		plan.newStages = planned
		next = planned[0]
	} else {
		plan.stageStatus[next.StageID] = entity.StatusActive
		// Entering an existing stage regenerates its segments from a
		// clean slate.
		plan.regenStageID = next.StageID
	}

	segments, err := m.gen.Segments(ctx, outline, next, rc.persona, rc.summary)
	if err != nil {
		return err
	}
	active := activateSegments(segments, age)
	plan.newSegments = segments
	plan.stage, plan.segment = next, active
	return nil
}

// planDays generates one daily plot per estimated day of the segment.
// Each day is seeded with the previous day's schedule and closing mood;
// the first day starts from the role's current mood.
func (m *Machine) planDays(ctx context.Context, segment *entity.Segment, rc *roleContext, completed []string, startDate string) ([]dayPlan, error) {
	start, err := time.Parse(clock.DateLayout, startDate)
	if err != nil {
		return nil, fmt.Errorf("bad start date %q: %w", startDate, err)
	}

	prevMood := entity.NeutralMood()
	if rc.detail != nil && rc.detail.Mood.Tags != "" {
		prevMood = rc.detail.Mood
	}
	prevContent := ""
	hasPrev := false

	days := make([]dayPlan, 0, segment.DurationDays)
	for day := 1; day <= segment.DurationDays; day++ {
		date := start.AddDate(0, 0, day-1).Format(clock.DateLayout)
		content, mood, err := m.gen.DailyPlot(ctx, &DailyPlotRequest{
			Segment:           segment,
			Persona:           rc.persona,
			PastSummary:       rc.summary,
			CompletedSegments: completed,
			Date:              date,
			DayIndex:          day,
			PrevContent:       prevContent,
			PrevMood:          prevMood,
			HasPrev:           hasPrev,
		})
		if err != nil {
			return nil, err
		}

		status := entity.StatusLocked
		if day == 1 {
			status = entity.StatusActive
		}
		days = append(days, dayPlan{date: date, content: content, mood: mood, status: status})
		prevContent, prevMood, hasPrev = content, mood, true
	}
	return days, nil
}

// commitAdvance applies a fully generated plan: purge, status flips, new
// rows, blobs and pointers. No model call happens past this point.
func (m *Machine) commitAdvance(ctx context.Context, roleID string, plan *advancePlan) error {
	if err := m.purgePlots(ctx); err != nil {
		return err
	}
	for id, status := range plan.stageStatus {
		if err := m.store.UpdateStageStatus(ctx, id, status); err != nil {
			return err
		}
	}
	for id, summary := range plan.stageSummaries {
		if err := m.store.UpdateStageSummary(ctx, id, summary); err != nil {
			logger.Warn("[LifeStory] failed to save summary for stage %s: %v", id, err)
		}
	}
	for _, st := range plan.newStages {
		if err := m.store.InsertStage(ctx, st); err != nil {
			return err
		}
	}
	if plan.regenStageID != "" {
		if err := m.store.DeleteSegmentsByStage(ctx, plan.regenStageID); err != nil {
			return err
		}
	}
	for _, seg := range plan.newSegments {
		if err := m.store.InsertSegment(ctx, seg); err != nil {
			return err
		}
	}
	for id, status := range plan.segmentStatus {
		if err := m.store.UpdateSegmentStatus(ctx, id, status); err != nil {
			return err
		}
	}
	if err := m.writeDays(ctx, roleID, plan.segment, plan.days); err != nil {
		return err
	}
	return m.roles.UpdatePointers(ctx, roleID, plan.stage.StageID, plan.segment.SegmentID, "")
}

// writeDays persists planned days: the schedule blob the plot-window
// resolver reads plus the daily_plots row.
func (m *Machine) writeDays(ctx context.Context, roleID string, segment *entity.Segment, days []dayPlan) error {
	dir := filepath.Join(m.plotRoot, roleID+"_plot")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create plot dir %q: %w", dir, err)
	}

	for i, d := range days {
		path := filepath.Join(dir, fmt.Sprintf("%s_%s.txt", d.date, sanitizeTitle(segment.Title)))
		if err := os.WriteFile(path, []byte(d.content), 0o644); err != nil {
			return fmt.Errorf("failed to write plot blob %q: %w", path, err)
		}
		plot := &entity.DailyPlot{
			PlotID:      entity.NewPlotID(),
			SegmentID:   segment.SegmentID,
			Order:       i + 1,
			PlotDate:    d.date,
			ContentPath: path,
			Mood:        d.mood,
			Status:      d.status,
		}
		if err := m.store.InsertDailyPlot(ctx, plot); err != nil {
			return err
		}
	}
	logger.Info("[LifeStory] generated %d daily plots for segment %q", len(days), segment.Title)
	return nil
}

// purgePlots removes every daily plot row and every role's schedule
// blobs. Rows are global, so the blob purge is too; past days live on
// only through stage summaries.
func (m *Machine) purgePlots(ctx context.Context) error {
	if err := m.store.DeleteAllDailyPlots(ctx); err != nil {
		return err
	}
	blobs, err := filepath.Glob(filepath.Join(m.plotRoot, "*_plot", "*.txt"))
	if err != nil {
		return nil
	}
	for _, blob := range blobs {
		if err := os.Remove(blob); err != nil {
			logger.Warn("[LifeStory] failed to remove plot blob %q: %v", blob, err)
		}
	}
	return nil
}

// sweepSegments applies the life-age sweep to a stage's segments:
// segments the character has outgrown complete, the earliest one
// matching the current age activates, later ones stay locked. Segments
// up to completedThrough are forced completed regardless of age.
//
// The returned segment is nil when the sweep leaves nothing to play.
func sweepSegments(segments []*entity.Segment, age, completedThrough int) (*entity.Segment, map[string]entity.LifeStatus) {
	statuses := make(map[string]entity.LifeStatus, len(segments))
	for i, seg := range segments {
		if i <= completedThrough || (seg.LifeAge > 0 && seg.LifeAge < age) {
			statuses[seg.SegmentID] = entity.StatusCompleted
			continue
		}
		statuses[seg.SegmentID] = entity.StatusLocked
	}

	var next *entity.Segment
	for _, seg := range segments {
		if statuses[seg.SegmentID] == entity.StatusCompleted {
			continue
		}
		if seg.LifeAge == age {
			next = seg
			break
		}
	}
	if next == nil {
		for _, seg := range segments {
			if statuses[seg.SegmentID] != entity.StatusCompleted {
				next = seg
				break
			}
		}
	}
	if next != nil {
		statuses[next.SegmentID] = entity.StatusActive
	}
	return next, statuses
}

// activateSegments runs the age sweep over freshly generated segments
// and stamps the statuses onto them. Falls back to the first segment
// when the sweep matches nothing.
func activateSegments(segments []*entity.Segment, age int) *entity.Segment {
	active, statuses := sweepSegments(segments, age, -1)
	if active == nil && len(segments) > 0 {
		active = segments[0]
		statuses[active.SegmentID] = entity.StatusActive
	}
	for _, seg := range segments {
		seg.Status = statuses[seg.SegmentID]
	}
	return active
}

// activateStages stamps initial statuses onto a fresh stage plan: stages
// whose life period ends before the current age complete, the one
// containing the current age activates, the rest stay locked.
func activateStages(stages []*entity.Stage, age int) *entity.Stage {
	var active *entity.Stage
	for _, st := range stages {
		lo, hi, ok := parseLifePeriod(st.LifePeriod)
		switch {
		case active == nil && ok && lo <= age && age <= hi:
			st.Status = entity.StatusActive
			active = st
		case ok && hi < age:
			st.Status = entity.StatusCompleted
		default:
			st.Status = entity.StatusLocked
		}
	}
	if active == nil {
		for _, st := range stages {
			if st.Status != entity.StatusCompleted {
				st.Status = entity.StatusActive
				active = st
				break
			}
		}
	}
	if active == nil {
		active = stages[len(stages)-1]
		active.Status = entity.StatusActive
	}
	return active
}

// parseLifePeriod reads an age range like "22-25岁" or "22岁".
func parseLifePeriod(period string) (lo, hi int, ok bool) {
	period = strings.TrimSuffix(strings.TrimSpace(period), "岁")
	parts := strings.SplitN(period, "-", 2)
	lo, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil {
		return 0, 0, false
	}
	if len(parts) == 1 {
		return lo, lo, true
	}
	hi, err = strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil {
		return 0, 0, false
	}
	return lo, hi, true
}

// characterAge derives the character's age from the outline birthday and
// the story clock, falling back to the configured age.
func characterAge(outline *entity.Outline, now time.Time, detail *entity.RoleDetail) int {
	if birth, err := time.Parse(clock.DateLayout, outline.Birthday); err == nil {
		age := now.Year() - birth.Year()
		if now.YearDay() < birth.YearDay() {
			age--
		}
		if age >= 0 {
			return age
		}
	}
	if detail != nil {
		return detail.Age
	}
	return 0
}

// completedSegmentLines renders the completed segments of a batch for
// the daily-plot prompt.
func completedSegmentLines(segments []*entity.Segment) []string {
	var lines []string
	for _, seg := range segments {
		if seg.Status == entity.StatusCompleted {
			lines = append(lines, fmt.Sprintf("%s:%s", seg.Title, seg.PromptForLLM))
		}
	}
	return lines
}

// completedByStatus is completedSegmentLines against a planned status
// map instead of the stored statuses.
func completedByStatus(segments []*entity.Segment, statuses map[string]entity.LifeStatus) []string {
	var lines []string
	for _, seg := range segments {
		if statuses[seg.SegmentID] == entity.StatusCompleted {
			lines = append(lines, fmt.Sprintf("%s:%s", seg.Title, seg.PromptForLLM))
		}
	}
	return lines
}

func findByStatus(stages []*entity.Stage, status entity.LifeStatus) *entity.Stage {
	for _, st := range stages {
		if st.Status == status {
			return st
		}
	}
	return nil
}

func sanitizeTitle(title string) string {
	title = strings.TrimSpace(title)
	replacer := strings.NewReplacer("/", "_", "\\", "_", " ", "_", ":", "_", "*", "_", "?", "_", "\"", "_")
	title = replacer.Replace(title)
	if title == "" {
		return "plot"
	}
	return title
}

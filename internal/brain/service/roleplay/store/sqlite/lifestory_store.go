package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Missonix/SSAI-brain/internal/brain/service/roleplay/domain/entity"
	"github.com/Missonix/SSAI-brain/internal/brain/service/roleplay/domain/repo"
	"github.com/Missonix/SSAI-brain/internal/brain/service/roleplay/pkg/errno"
	"github.com/Missonix/SSAI-brain/pkg/utils/json"
)

// LifeStoryStore implements repo.LifeStoryRepository on sqlite.
type LifeStoryStore struct {
	db *DB
}

var _ repo.LifeStoryRepository = (*LifeStoryStore)(nil)

// NewLifeStoryStore creates a LifeStoryStore over an open database.
func NewLifeStoryStore(db *DB) *LifeStoryStore { return &LifeStoryStore{db: db} }

// --- Outlines ---

func (s *LifeStoryStore) UpsertOutline(ctx context.Context, o *entity.Outline) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO `+TableOutlines+`
		 (outline_id, role_id, title, birthday, life, wealth, overall_theme, version)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		o.OutlineID, o.RoleID, o.Title, o.Birthday, o.Life, o.Wealth, o.OverallTheme, o.Version)
	if err != nil {
		return fmt.Errorf("failed to upsert outline %q: %w", o.OutlineID, err)
	}
	return nil
}

func (s *LifeStoryStore) LatestOutline(ctx context.Context, roleID string) (*entity.Outline, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT outline_id, role_id, title, birthday, life, wealth, overall_theme, version
		 FROM `+TableOutlines+` WHERE role_id = ? ORDER BY version DESC LIMIT 1`, roleID)

	o := &entity.Outline{}
	var wealth, theme sql.NullString
	if err := row.Scan(&o.OutlineID, &o.RoleID, &o.Title, &o.Birthday, &o.Life, &wealth, &theme, &o.Version); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: role %q", errno.ErrOutlineMissing, roleID)
		}
		return nil, fmt.Errorf("failed to load outline for role %q: %w", roleID, err)
	}
	o.Wealth = wealth.String
	o.OverallTheme = theme.String
	return o, nil
}

// --- Stages ---

func (s *LifeStoryStore) InsertStage(ctx context.Context, st *entity.Stage) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO `+TableStages+`
		 (stage_id, outline_id, sequence_order, life_period, title,
		  description_for_plot_llm, stage_goals, status, summary)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		st.StageID, st.OutlineID, st.Order, st.LifePeriod, st.Title,
		st.Description, st.Goals, string(st.Status), st.Summary)
	if err != nil {
		return fmt.Errorf("failed to insert stage %q: %w", st.StageID, err)
	}
	return nil
}

func (s *LifeStoryStore) ListStages(ctx context.Context, outlineID string) ([]*entity.Stage, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT stage_id, outline_id, sequence_order, life_period, title,
		        description_for_plot_llm, stage_goals, status, summary
		 FROM `+TableStages+` WHERE outline_id = ? ORDER BY sequence_order ASC`, outlineID)
	if err != nil {
		return nil, fmt.Errorf("failed to list stages for outline %q: %w", outlineID, err)
	}
	defer rows.Close()

	var stages []*entity.Stage
	for rows.Next() {
		st := &entity.Stage{}
		var status string
		var desc, goals, summary sql.NullString
		if err := rows.Scan(&st.StageID, &st.OutlineID, &st.Order, &st.LifePeriod, &st.Title,
			&desc, &goals, &status, &summary); err != nil {
			return nil, err
		}
		st.Description = desc.String
		st.Goals = goals.String
		st.Status = entity.LifeStatus(status)
		st.Summary = summary.String
		stages = append(stages, st)
	}
	return stages, rows.Err()
}

func (s *LifeStoryStore) UpdateStageStatus(ctx context.Context, stageID string, status entity.LifeStatus) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE `+TableStages+` SET status = ? WHERE stage_id = ?`, string(status), stageID)
	if err != nil {
		return fmt.Errorf("failed to update stage %q status: %w", stageID, err)
	}
	return nil
}

func (s *LifeStoryStore) UpdateStageSummary(ctx context.Context, stageID, summary string) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE `+TableStages+` SET summary = ? WHERE stage_id = ?`, summary, stageID)
	if err != nil {
		return fmt.Errorf("failed to update stage %q summary: %w", stageID, err)
	}
	return nil
}

func (s *LifeStoryStore) MaxStageOrder(ctx context.Context, outlineID string) (int, error) {
	var max sql.NullInt64
	err := s.db.QueryRowContext(ctx,
		`SELECT MAX(sequence_order) FROM `+TableStages+` WHERE outline_id = ?`, outlineID).Scan(&max)
	if err != nil {
		return 0, fmt.Errorf("failed to read max stage order for outline %q: %w", outlineID, err)
	}
	return int(max.Int64), nil
}

// --- Segments ---

func (s *LifeStoryStore) InsertSegment(ctx context.Context, seg *entity.Segment) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO `+TableSegments+`
		 (segment_id, stage_id, sequence_order_in_stage, title, life_age,
		  segment_prompt_for_plot_llm, duration_in_days_estimate,
		  expected_emotional_arc, key_npcs_involved, status, is_milestone_event)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		seg.SegmentID, seg.StageID, seg.OrderInStage, seg.Title, seg.LifeAge,
		seg.PromptForLLM, seg.DurationDays, seg.EmotionalArc, seg.KeyNPCs,
		string(seg.Status), boolToInt(seg.IsMilestone))
	if err != nil {
		return fmt.Errorf("failed to insert segment %q: %w", seg.SegmentID, err)
	}
	return nil
}

func (s *LifeStoryStore) ListSegments(ctx context.Context, stageID string) ([]*entity.Segment, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT segment_id, stage_id, sequence_order_in_stage, title, life_age,
		        segment_prompt_for_plot_llm, duration_in_days_estimate,
		        expected_emotional_arc, key_npcs_involved, status, is_milestone_event
		 FROM `+TableSegments+` WHERE stage_id = ? ORDER BY sequence_order_in_stage ASC`, stageID)
	if err != nil {
		return nil, fmt.Errorf("failed to list segments for stage %q: %w", stageID, err)
	}
	defer rows.Close()

	var segments []*entity.Segment
	for rows.Next() {
		seg := &entity.Segment{}
		var status string
		var prompt, arc, npcs sql.NullString
		var milestone int
		if err := rows.Scan(&seg.SegmentID, &seg.StageID, &seg.OrderInStage, &seg.Title, &seg.LifeAge,
			&prompt, &seg.DurationDays, &arc, &npcs, &status, &milestone); err != nil {
			return nil, err
		}
		seg.PromptForLLM = prompt.String
		seg.EmotionalArc = arc.String
		seg.KeyNPCs = npcs.String
		seg.Status = entity.LifeStatus(status)
		seg.IsMilestone = milestone != 0
		segments = append(segments, seg)
	}
	return segments, rows.Err()
}

func (s *LifeStoryStore) UpdateSegmentStatus(ctx context.Context, segmentID string, status entity.LifeStatus) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE `+TableSegments+` SET status = ? WHERE segment_id = ?`, string(status), segmentID)
	if err != nil {
		return fmt.Errorf("failed to update segment %q status: %w", segmentID, err)
	}
	return nil
}

func (s *LifeStoryStore) DeleteSegmentsByStage(ctx context.Context, stageID string) error {
	_, err := s.db.ExecContext(ctx,
		`DELETE FROM `+TableSegments+` WHERE stage_id = ?`, stageID)
	if err != nil {
		return fmt.Errorf("failed to delete segments for stage %q: %w", stageID, err)
	}
	return nil
}

func (s *LifeStoryStore) DeleteSegmentsByOutline(ctx context.Context, outlineID string) error {
	_, err := s.db.ExecContext(ctx,
		`DELETE FROM `+TableSegments+` WHERE stage_id IN
		 (SELECT stage_id FROM `+TableStages+` WHERE outline_id = ?)`, outlineID)
	if err != nil {
		return fmt.Errorf("failed to delete segments for outline %q: %w", outlineID, err)
	}
	return nil
}

// --- Daily plots ---

func (s *LifeStoryStore) InsertDailyPlot(ctx context.Context, p *entity.DailyPlot) error {
	moodJSON, err := json.Marshal(p.Mood)
	if err != nil {
		return fmt.Errorf("failed to encode mood for plot %q: %w", p.PlotID, err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO `+TableDailyPlots+`
		 (plot_id, segment_id, plot_order, plot_date, plot_content_path, mood, status)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		p.PlotID, p.SegmentID, p.Order, p.PlotDate, p.ContentPath, string(moodJSON), string(p.Status))
	if err != nil {
		return fmt.Errorf("failed to insert daily plot %q: %w", p.PlotID, err)
	}
	return nil
}

func (s *LifeStoryStore) ListDailyPlots(ctx context.Context, segmentID string) ([]*entity.DailyPlot, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT plot_id, segment_id, plot_order, plot_date, plot_content_path, mood, status
		 FROM `+TableDailyPlots+` WHERE segment_id = ? ORDER BY plot_order ASC`, segmentID)
	if err != nil {
		return nil, fmt.Errorf("failed to list daily plots for segment %q: %w", segmentID, err)
	}
	defer rows.Close()

	var plots []*entity.DailyPlot
	for rows.Next() {
		p := &entity.DailyPlot{}
		var status string
		var contentPath, moodJSON sql.NullString
		if err := rows.Scan(&p.PlotID, &p.SegmentID, &p.Order, &p.PlotDate, &contentPath, &moodJSON, &status); err != nil {
			return nil, err
		}
		p.ContentPath = contentPath.String
		p.Status = entity.LifeStatus(status)
		if moodJSON.Valid && moodJSON.String != "" {
			_ = json.Unmarshal([]byte(moodJSON.String), &p.Mood)
		}
		plots = append(plots, p)
	}
	return plots, rows.Err()
}

func (s *LifeStoryStore) MaxPlotDate(ctx context.Context) (string, error) {
	var max sql.NullString
	err := s.db.QueryRowContext(ctx,
		`SELECT MAX(plot_date) FROM `+TableDailyPlots).Scan(&max)
	if err != nil {
		return "", fmt.Errorf("failed to read max plot date: %w", err)
	}
	return max.String, nil
}

func (s *LifeStoryStore) DeleteAllDailyPlots(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM `+TableDailyPlots)
	if err != nil {
		return fmt.Errorf("failed to delete daily plots: %w", err)
	}
	return nil
}

package repo

import (
	"context"

	"github.com/Missonix/SSAI-brain/internal/brain/service/roleplay/domain/entity"
)

// LifeStoryRepository persists the life-story hierarchy: outlines, stages,
// segments and daily plots.
type LifeStoryRepository interface {
	// Outlines.
	UpsertOutline(ctx context.Context, o *entity.Outline) error
	// LatestOutline returns the highest-version outline for a role, or
	// errno.ErrOutlineMissing (wrapped).
	LatestOutline(ctx context.Context, roleID string) (*entity.Outline, error)

	// Stages.
	InsertStage(ctx context.Context, s *entity.Stage) error
	ListStages(ctx context.Context, outlineID string) ([]*entity.Stage, error)
	UpdateStageStatus(ctx context.Context, stageID string, status entity.LifeStatus) error
	UpdateStageSummary(ctx context.Context, stageID, summary string) error
	MaxStageOrder(ctx context.Context, outlineID string) (int, error)

	// Segments.
	InsertSegment(ctx context.Context, s *entity.Segment) error
	ListSegments(ctx context.Context, stageID string) ([]*entity.Segment, error)
	UpdateSegmentStatus(ctx context.Context, segmentID string, status entity.LifeStatus) error
	DeleteSegmentsByStage(ctx context.Context, stageID string) error
	DeleteSegmentsByOutline(ctx context.Context, outlineID string) error

	// Daily plots.
	InsertDailyPlot(ctx context.Context, p *entity.DailyPlot) error
	ListDailyPlots(ctx context.Context, segmentID string) ([]*entity.DailyPlot, error)
	// MaxPlotDate returns the latest plot_date across all roles as
	// YYYY-MM-DD, or "" when the table is empty.
	MaxPlotDate(ctx context.Context) (string, error)
	DeleteAllDailyPlots(ctx context.Context) error
}

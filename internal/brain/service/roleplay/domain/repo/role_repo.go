package repo

import (
	"context"

	"github.com/Missonix/SSAI-brain/internal/brain/service/roleplay/domain/entity"
)

// RoleRepository persists role_details rows.
type RoleRepository interface {
	// GetDetail loads one role row. Returns errno.ErrRoleNotConfigured
	// (wrapped) when absent.
	GetDetail(ctx context.Context, roleID string) (*entity.RoleDetail, error)
	// UpsertDetail inserts or replaces a role row.
	UpsertDetail(ctx context.Context, detail *entity.RoleDetail) error
	// UpdateMood overwrites only the mood column of a role row.
	UpdateMood(ctx context.Context, roleID string, mood entity.Mood) error
	// UpdatePointers overwrites the life-story pointer columns.
	UpdatePointers(ctx context.Context, roleID, stageID, segmentID, materialsID string) error
	// List returns all role rows.
	List(ctx context.Context) ([]*entity.RoleDetail, error)
}

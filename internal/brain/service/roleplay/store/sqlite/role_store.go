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

// RoleStore implements repo.RoleRepository on sqlite.
type RoleStore struct {
	db *DB
}

var _ repo.RoleRepository = (*RoleStore)(nil)

// NewRoleStore creates a RoleStore over an open database.
func NewRoleStore(db *DB) *RoleStore { return &RoleStore{db: db} }

func (s *RoleStore) GetDetail(ctx context.Context, roleID string) (*entity.RoleDetail, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT role_id, role_name, age, mood, current_life_stage_id, current_plot_segment_id, current_materials_id
		 FROM `+TableRoleDetails+` WHERE role_id = ?`, roleID)

	d := &entity.RoleDetail{}
	var moodJSON sql.NullString
	var stageID, segmentID, materialsID sql.NullString
	if err := row.Scan(&d.RoleID, &d.RoleName, &d.Age, &moodJSON, &stageID, &segmentID, &materialsID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: role %q", errno.ErrRoleNotConfigured, roleID)
		}
		return nil, fmt.Errorf("failed to load role %q: %w", roleID, err)
	}
	if moodJSON.Valid && moodJSON.String != "" {
		if err := json.Unmarshal([]byte(moodJSON.String), &d.Mood); err != nil {
			return nil, fmt.Errorf("failed to decode mood for role %q: %w", roleID, err)
		}
	}
	d.CurrentLifeStageID = stageID.String
	d.CurrentPlotSegmentID = segmentID.String
	d.CurrentMaterialsID = materialsID.String
	return d, nil
}

func (s *RoleStore) UpsertDetail(ctx context.Context, d *entity.RoleDetail) error {
	moodJSON, err := json.Marshal(d.Mood)
	if err != nil {
		return fmt.Errorf("failed to encode mood for role %q: %w", d.RoleID, err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO `+TableRoleDetails+`
		 (role_id, role_name, age, mood, current_life_stage_id, current_plot_segment_id, current_materials_id)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		d.RoleID, d.RoleName, d.Age, string(moodJSON),
		d.CurrentLifeStageID, d.CurrentPlotSegmentID, d.CurrentMaterialsID)
	if err != nil {
		return fmt.Errorf("failed to upsert role %q: %w", d.RoleID, err)
	}
	return nil
}

func (s *RoleStore) UpdateMood(ctx context.Context, roleID string, mood entity.Mood) error {
	moodJSON, err := json.Marshal(mood)
	if err != nil {
		return fmt.Errorf("failed to encode mood for role %q: %w", roleID, err)
	}
	res, err := s.db.ExecContext(ctx,
		`UPDATE `+TableRoleDetails+` SET mood = ? WHERE role_id = ?`, string(moodJSON), roleID)
	if err != nil {
		return fmt.Errorf("failed to update mood for role %q: %w", roleID, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: role %q", errno.ErrRoleNotConfigured, roleID)
	}
	return nil
}

func (s *RoleStore) UpdatePointers(ctx context.Context, roleID, stageID, segmentID, materialsID string) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE `+TableRoleDetails+`
		 SET current_life_stage_id = ?, current_plot_segment_id = ?, current_materials_id = ?
		 WHERE role_id = ?`,
		stageID, segmentID, materialsID, roleID)
	if err != nil {
		return fmt.Errorf("failed to update pointers for role %q: %w", roleID, err)
	}
	return nil
}

func (s *RoleStore) List(ctx context.Context) ([]*entity.RoleDetail, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT role_id FROM `+TableRoleDetails+` ORDER BY role_id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list roles: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	details := make([]*entity.RoleDetail, 0, len(ids))
	for _, id := range ids {
		d, err := s.GetDetail(ctx, id)
		if err != nil {
			return nil, err
		}
		details = append(details, d)
	}
	return details, nil
}

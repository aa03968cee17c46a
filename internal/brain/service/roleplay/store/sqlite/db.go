// Package sqlite implements the durable repositories on a local sqlite
// database.
package sqlite

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"
)

const (
	TableOutlines    = "life_plot_outlines"
	TableStages      = "life_stages"
	TableSegments    = "plot_segments"
	TableDailyPlots  = "specific_plot"
	TableSessions    = "chat_sessions"
	TableMessages    = "chat_messages"
	TableRoleDetails = "role_details"
)

// DB owns the sqlite handle shared by all durable repositories.
type DB struct {
	*sql.DB
}

// Open opens (creating if needed) the database at path and ensures the
// schema. Use ":memory:" for an ephemeral database.
func Open(path string, busyTimeoutMS int) (*DB, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("failed to create db directory for %q: %w", path, err)
		}
	}

	dsn := fmt.Sprintf("file:%s?_busy_timeout=%d&_foreign_keys=on", path, busyTimeoutMS)
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite db %q: %w", path, err)
	}
	// A single writer connection avoids SQLITE_BUSY under concurrent turns.
	db.SetMaxOpenConns(1)

	if err := EnsureSchema(db); err != nil {
		db.Close()
		return nil, err
	}
	return &DB{DB: db}, nil
}

// EnsureSchema creates all required tables and indexes.
func EnsureSchema(db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS ` + TableOutlines + ` (
			outline_id TEXT PRIMARY KEY,
			role_id TEXT NOT NULL,
			title TEXT NOT NULL,
			birthday TEXT NOT NULL,
			life INTEGER NOT NULL,
			wealth TEXT,
			overall_theme TEXT,
			version INTEGER NOT NULL DEFAULT 1
		)`,
		`CREATE INDEX IF NOT EXISTS idx_outlines_role ON ` + TableOutlines + `(role_id)`,
		`CREATE TABLE IF NOT EXISTS ` + TableStages + ` (
			stage_id TEXT PRIMARY KEY,
			outline_id TEXT NOT NULL REFERENCES ` + TableOutlines + `(outline_id) ON DELETE CASCADE,
			sequence_order INTEGER NOT NULL,
			life_period TEXT NOT NULL,
			title TEXT NOT NULL,
			description_for_plot_llm TEXT,
			stage_goals TEXT,
			status TEXT NOT NULL DEFAULT 'Locked',
			summary TEXT,
			UNIQUE(outline_id, sequence_order)
		)`,
		`CREATE TABLE IF NOT EXISTS ` + TableSegments + ` (
			segment_id TEXT PRIMARY KEY,
			stage_id TEXT NOT NULL REFERENCES ` + TableStages + `(stage_id) ON DELETE CASCADE,
			sequence_order_in_stage INTEGER NOT NULL,
			title TEXT NOT NULL,
			life_age INTEGER NOT NULL,
			segment_prompt_for_plot_llm TEXT,
			duration_in_days_estimate INTEGER NOT NULL DEFAULT 1,
			expected_emotional_arc TEXT,
			key_npcs_involved TEXT,
			status TEXT NOT NULL DEFAULT 'Locked',
			is_milestone_event INTEGER NOT NULL DEFAULT 0,
			UNIQUE(stage_id, sequence_order_in_stage)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_segments_life_age ON ` + TableSegments + `(life_age)`,
		`CREATE TABLE IF NOT EXISTS ` + TableDailyPlots + ` (
			plot_id TEXT PRIMARY KEY,
			segment_id TEXT NOT NULL REFERENCES ` + TableSegments + `(segment_id) ON DELETE CASCADE,
			plot_order INTEGER NOT NULL,
			plot_date TEXT NOT NULL,
			plot_content_path TEXT,
			mood TEXT,
			status TEXT NOT NULL DEFAULT 'Locked',
			UNIQUE(segment_id, plot_order)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_daily_plots_date ON ` + TableDailyPlots + `(plot_date)`,
		`CREATE TABLE IF NOT EXISTS ` + TableSessions + ` (
			session_id TEXT PRIMARY KEY,
			user_name TEXT NOT NULL,
			title TEXT,
			status TEXT NOT NULL DEFAULT 'active',
			created_at TEXT NOT NULL,
			updated_at TEXT NOT NULL,
			last_message_at TEXT NOT NULL,
			total_messages INTEGER NOT NULL DEFAULT 0,
			user_messages INTEGER NOT NULL DEFAULT 0,
			agent_messages INTEGER NOT NULL DEFAULT 0
		)`,
		`CREATE INDEX IF NOT EXISTS idx_sessions_user ON ` + TableSessions + `(user_name)`,
		`CREATE INDEX IF NOT EXISTS idx_sessions_last_message ON ` + TableSessions + `(last_message_at)`,
		`CREATE TABLE IF NOT EXISTS ` + TableMessages + ` (
			message_id TEXT PRIMARY KEY,
			session_id TEXT NOT NULL REFERENCES ` + TableSessions + `(session_id) ON DELETE CASCADE,
			user_name TEXT,
			sender_type TEXT NOT NULL,
			message_content TEXT NOT NULL,
			is_tool_query INTEGER NOT NULL DEFAULT 0,
			tool_name TEXT,
			tool_parameters TEXT,
			tool_query_result TEXT,
			message_order INTEGER NOT NULL,
			created_at TEXT NOT NULL,
			extra_metadata TEXT,
			UNIQUE(session_id, message_order)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_messages_created ON ` + TableMessages + `(created_at)`,
		`CREATE TABLE IF NOT EXISTS ` + TableRoleDetails + ` (
			role_id TEXT PRIMARY KEY,
			role_name TEXT NOT NULL,
			age INTEGER NOT NULL DEFAULT 0,
			mood TEXT,
			current_life_stage_id TEXT,
			current_plot_segment_id TEXT,
			current_materials_id TEXT
		)`,
	}

	for _, stmt := range stmts {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("exec schema: %w", err)
		}
	}
	return nil
}

package settings

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

type AppRepository interface {
	GetSettings(ctx context.Context) (map[string]string, error)
	SetSettings(ctx context.Context, values map[string]string, changedBy string) error
}

type UserRepository interface {
	// GetUserSettings returns false when the user never saved settings.
	GetUserSettings(ctx context.Context, userID string) (UserSettings, bool, error)
	SaveUserSettings(ctx context.Context, s UserSettings) error
}

type PostgresRepository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) GetSettings(ctx context.Context) (map[string]string, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT key, value FROM app_settings`)
	if err != nil {
		return nil, fmt.Errorf("failed to load settings: %w", err)
	}
	defer rows.Close()

	values := make(map[string]string)
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return nil, fmt.Errorf("failed to scan setting: %w", err)
		}
		values[key] = value
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate settings: %w", err)
	}
	return values, nil
}

func (r *PostgresRepository) SetSettings(ctx context.Context, values map[string]string, changedBy string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := `
		INSERT INTO app_settings (key, value, updated_by, updated_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (key) DO UPDATE
		SET value = EXCLUDED.value, updated_by = EXCLUDED.updated_by, updated_at = EXCLUDED.updated_at
	`
	now := time.Now()
	for key, value := range values {
		if _, err := tx.ExecContext(ctx, query, key, value, changedBy, now); err != nil {
			return fmt.Errorf("failed to save setting %s: %w", key, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit settings: %w", err)
	}
	return nil
}

func (r *PostgresRepository) GetUserSettings(ctx context.Context, userID string) (UserSettings, bool, error) {
	query := `
		SELECT user_id, notify_assignments, notify_stage_status, notify_notes, updated_at
		FROM user_settings
		WHERE user_id = $1
	`

	var s UserSettings
	err := r.db.QueryRowContext(ctx, query, userID).Scan(
		&s.UserID, &s.NotifyAssignments, &s.NotifyStageStatus, &s.NotifyNotes, &s.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return UserSettings{}, false, nil
	}
	if err != nil {
		return UserSettings{}, false, fmt.Errorf("failed to get user settings: %w", err)
	}
	return s, true, nil
}

func (r *PostgresRepository) SaveUserSettings(ctx context.Context, s UserSettings) error {
	query := `
		INSERT INTO user_settings (user_id, notify_assignments, notify_stage_status, notify_notes, updated_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (user_id) DO UPDATE
		SET notify_assignments = EXCLUDED.notify_assignments,
		    notify_stage_status = EXCLUDED.notify_stage_status,
		    notify_notes = EXCLUDED.notify_notes,
		    updated_at = EXCLUDED.updated_at
	`

	_, err := r.db.ExecContext(ctx, query,
		s.UserID, s.NotifyAssignments, s.NotifyStageStatus, s.NotifyNotes, s.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save user settings: %w", err)
	}
	return nil
}

package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"tldrbot/internal/domain"
)

func (d *Database) GetUserSettingsWithDefault(
	ctx context.Context,
	userID int64,
	defaults domain.SummaryDefaults,
) (*domain.UserSettings, error) {
	query := `select user_id, extractive_lines, abstractive_lines, updated_at
	from user_settings
	where user_id = ?`

	var us domain.UserSettings
	err := d.db.QueryRowContext(ctx, query, userID).Scan(
		&us.UserID,
		&us.ExtractiveLines,
		&us.AbstractiveLines,
		&us.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return &domain.UserSettings{
			UserID:           userID,
			ExtractiveLines:  defaults.ExtractiveLines,
			AbstractiveLines: defaults.AbstractiveLines,
		}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("execute query: %w", err)
	}

	return &us, nil
}

func (d *Database) UpsertUserSettings(ctx context.Context, userSettings *domain.UserSettings) error {
	if userSettings == nil {
		return errors.New("user settings are nil")
	}

	query := `insert into user_settings (user_id, extractive_lines, abstractive_lines, updated_at)
	values (?, ?, ?, current_timestamp)
	on conflict (user_id) do update
	set extractive_lines = excluded.extractive_lines,
		abstractive_lines = excluded.abstractive_lines,
		updated_at = excluded.updated_at`

	_, err := d.db.ExecContext(ctx, query,
		userSettings.UserID,
		userSettings.ExtractiveLines,
		userSettings.AbstractiveLines)
	if err != nil {
		return fmt.Errorf("execute query: %w", err)
	}

	return nil
}

// CountUserSettings returns how many users changed their settings.
func (d *Database) CountUserSettings(ctx context.Context) (int64, error) {
	var count int64
	if err := d.db.QueryRowContext(ctx, "select count(*) from user_settings").Scan(&count); err != nil {
		return 0, fmt.Errorf("execute query: %w", err)
	}

	return count, nil
}

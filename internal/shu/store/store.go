package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/kiraniaklipang2008/kpri-7juli-v4-sub002/internal/shu"
)

// settingsKey is the row of the settings table holding the SHU configuration.
const settingsKey = "shu"

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

func (s *Store) GetSettings(ctx context.Context) (*shu.Settings, error) {
	var raw []byte

	err := s.db.QueryRowContext(ctx, `SELECT value FROM settings WHERE key = $1`, settingsKey).Scan(&raw)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, shu.ErrSettingsNotFound
		}

		return nil, fmt.Errorf("getting settings: %w", err)
	}

	var settings shu.Settings
	if err := json.Unmarshal(raw, &settings); err != nil {
		return nil, fmt.Errorf("decoding settings: %w", err)
	}

	return &settings, nil
}

func (s *Store) SaveSettings(ctx context.Context, settings *shu.Settings) error {
	raw, err := json.Marshal(settings)
	if err != nil {
		return fmt.Errorf("encoding settings: %w", err)
	}

	query := `
		INSERT INTO settings (key, value, updated_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = NOW()
	`

	if _, err := s.db.ExecContext(ctx, query, settingsKey, string(raw)); err != nil {
		return fmt.Errorf("saving settings: %w", err)
	}

	return nil
}

package store

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/ayusman/fingercursor/internal/config"
)

// ConfigKey is the settings key holding the serialized configuration.
const ConfigKey = "config"

// SettingsRepository stores key-value settings.
type SettingsRepository struct {
	db *sql.DB
}

// Settings returns the settings repository for this store.
func (s *Store) Settings() *SettingsRepository {
	return &SettingsRepository{db: s.db}
}

// Get returns the value stored under key, or ErrNotFound.
func (r *SettingsRepository) Get(key string) (string, error) {
	var value string
	err := r.db.QueryRow(`SELECT value FROM settings WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrNotFound
	}
	return value, err
}

// Set stores value under key, replacing any previous value.
func (r *SettingsRepository) Set(key, value string) error {
	_, err := r.db.Exec(
		`INSERT INTO settings (key, value) VALUES (?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		key, value,
	)
	return err
}

// GetConfig loads the saved configuration. Fields missing from the stored
// document keep their defaults. It returns ErrNotFound if nothing was saved.
func (r *SettingsRepository) GetConfig() (config.Config, error) {
	raw, err := r.Get(ConfigKey)
	if err != nil {
		return config.Config{}, err
	}
	cfg, err := config.Parse([]byte(raw))
	if err != nil {
		return config.Config{}, fmt.Errorf("stored config: %w", err)
	}
	return cfg, nil
}

// SaveConfig validates and stores cfg.
func (r *SettingsRepository) SaveConfig(cfg config.Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	data, err := json.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	return r.Set(ConfigKey, string(data))
}

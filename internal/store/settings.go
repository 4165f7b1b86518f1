package store

import (
	"database/sql"
	"fmt"
	"strconv"

	"github.com/yomu-reader/yomu-go/internal/models"
)

// GetSetting fetches one setting. Returns sql.ErrNoRows for unknown keys.
func (s *Store) GetSetting(key string) (*models.Setting, error) {
	var setting models.Setting
	err := s.db.QueryRow(`SELECT key, value, type FROM settings WHERE key = ?`, key).
		Scan(&setting.Key, &setting.Value, &setting.Type)
	if err != nil {
		return nil, err
	}
	return &setting, nil
}

// SetSetting writes a setting, overwriting any existing value. The type
// tag is stored alongside so reads can decode without guessing.
func (s *Store) SetSetting(key, value, valueType string) error {
	switch valueType {
	case models.SettingTypeString, models.SettingTypeJSON:
	case models.SettingTypeNumber:
		if _, err := strconv.ParseFloat(value, 64); err != nil {
			return fmt.Errorf("setting %q: %q is not a number", key, value)
		}
	case models.SettingTypeBool:
		if value != "true" && value != "false" {
			return fmt.Errorf("setting %q: %q is not a boolean", key, value)
		}
	default:
		return fmt.Errorf("setting %q: unknown type %q", key, valueType)
	}
	_, err := s.db.Exec(`
        INSERT INTO settings (key, value, type) VALUES (?, ?, ?)
        ON CONFLICT(key) DO UPDATE SET value = excluded.value, type = excluded.type`,
		key, value, valueType,
	)
	return err
}

// GetAllSettings returns every stored setting.
func (s *Store) GetAllSettings() ([]*models.Setting, error) {
	rows, err := s.db.Query(`SELECT key, value, type FROM settings ORDER BY key`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var settings []*models.Setting
	for rows.Next() {
		var setting models.Setting
		if err := rows.Scan(&setting.Key, &setting.Value, &setting.Type); err != nil {
			return nil, err
		}
		settings = append(settings, &setting)
	}
	return settings, rows.Err()
}

// GetBoolSetting reads a boolean setting, falling back to the default for
// missing keys or values stored under a different type.
func (s *Store) GetBoolSetting(key string, fallback bool) bool {
	setting, err := s.GetSetting(key)
	if err != nil || setting.Type != models.SettingTypeBool {
		return fallback
	}
	return setting.Value == "true"
}

// GetIntSetting reads a numeric setting, falling back to the default.
func (s *Store) GetIntSetting(key string, fallback int64) int64 {
	setting, err := s.GetSetting(key)
	if err != nil || setting.Type != models.SettingTypeNumber {
		return fallback
	}
	v, err := strconv.ParseInt(setting.Value, 10, 64)
	if err != nil {
		return fallback
	}
	return v
}

// SetBoolSetting writes a boolean setting.
func (s *Store) SetBoolSetting(key string, value bool) error {
	return s.SetSetting(key, strconv.FormatBool(value), models.SettingTypeBool)
}

// SetIntSetting writes a numeric setting.
func (s *Store) SetIntSetting(key string, value int64) error {
	return s.SetSetting(key, strconv.FormatInt(value, 10), models.SettingTypeNumber)
}

// ErrSettingNotFound is a convenience alias so callers can branch without
// importing database/sql.
var ErrSettingNotFound = sql.ErrNoRows

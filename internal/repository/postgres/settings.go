package postgres

import (
	"context"
	"fmt"
	"strconv"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/membergate/membergate/internal/model"
)

// Setting names as stored in the settings table.
const (
	settingAdminRedirect      = "admin_redirect"
	settingRegistrationOpen   = "registration_open"
	settingCaptchaSiteKey     = "captcha_site_key"
	settingCaptchaSecretKey   = "captcha_secret_key"
	settingNewUserDefaultRole = "new_user_default_role"
)

type pool interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
}

var _ model.SettingsStore = (*SettingsRepository)(nil)

// SettingsRepository loads gateway settings from the settings table. Rows
// missing from the table fall back to the defaults.
type SettingsRepository struct {
	db pool
}

func NewSettingsRepository(db pool) *SettingsRepository {
	return &SettingsRepository{
		db: db,
	}
}

func (r *SettingsRepository) Load(ctx context.Context) (model.Settings, error) {
	settings := model.DefaultSettings()
	query := `SELECT name, value FROM settings`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return model.Settings{}, fmt.Errorf("failed to query settings: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var name, value string
		if err := rows.Scan(&name, &value); err != nil {
			return model.Settings{}, fmt.Errorf("failed to scan setting: %w", err)
		}
		applySetting(&settings, name, value)
	}
	if err := rows.Err(); err != nil {
		return model.Settings{}, fmt.Errorf("failed to iterate settings: %w", err)
	}

	return settings, nil
}

// Save upserts every setting in one statement per row.
func (r *SettingsRepository) Save(ctx context.Context, settings model.Settings) error {
	query := `INSERT INTO settings (name, value, updated_at) VALUES ($1, $2, now())
			  ON CONFLICT (name) DO UPDATE SET value = EXCLUDED.value, updated_at = now()`

	values := map[string]string{
		settingAdminRedirect:      strconv.FormatBool(settings.AdminRedirect),
		settingRegistrationOpen:   strconv.FormatBool(settings.RegistrationOpen),
		settingCaptchaSiteKey:     settings.CaptchaSiteKey,
		settingCaptchaSecretKey:   settings.CaptchaSecretKey,
		settingNewUserDefaultRole: string(settings.NewUserDefaultRole),
	}

	for name, value := range values {
		if _, err := r.db.Exec(ctx, query, name, value); err != nil {
			return fmt.Errorf("failed to save setting %s: %w", name, err)
		}
	}

	return nil
}

// applySetting overwrites one settings field. Unknown names and unparsable
// booleans are ignored so a hand-edited table cannot take the gateway down.
func applySetting(settings *model.Settings, name, value string) {
	switch name {
	case settingAdminRedirect:
		if parsed, err := strconv.ParseBool(value); err == nil {
			settings.AdminRedirect = parsed
		}
	case settingRegistrationOpen:
		if parsed, err := strconv.ParseBool(value); err == nil {
			settings.RegistrationOpen = parsed
		}
	case settingCaptchaSiteKey:
		settings.CaptchaSiteKey = value
	case settingCaptchaSecretKey:
		settings.CaptchaSecretKey = value
	case settingNewUserDefaultRole:
		if value != "" {
			settings.NewUserDefaultRole = model.Role(value)
		}
	}
}

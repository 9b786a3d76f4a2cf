package model

import "context"

// Settings is the small configuration blob owned by the configuration store:
// the admin-redirect toggle, registration switch, CAPTCHA keys and the role
// assigned to new members.
type Settings struct {
	AdminRedirect      bool
	RegistrationOpen   bool
	CaptchaSiteKey     string
	CaptchaSecretKey   string
	NewUserDefaultRole Role
}

// DefaultSettings returns the out-of-the-box settings used to seed a fresh
// store.
func DefaultSettings() Settings {
	return Settings{
		AdminRedirect:      true,
		RegistrationOpen:   true,
		NewUserDefaultRole: RoleStandard,
	}
}

// SettingsStore loads gateway settings. Implementations are shared and
// externally synchronized; each Load is atomic.
type SettingsStore interface {
	Load(ctx context.Context) (Settings, error)
}

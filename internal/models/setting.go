package models

import (
	"regexp"
	"time"
)

// Setting — динамические ключи-значения (тумблеры почты, ключ провайдера и т.п.).
type Setting struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UpdatedAt time.Time `json:"updated_at"`

	Key   string `gorm:"uniqueIndex;size:128;not null" json:"key"`
	Value string `gorm:"size:1024" json:"value"`
}

var settingKeyRe = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

func ValidSettingKey(k string) bool { return settingKeyRe.MatchString(k) }

// Известные ключи.
const (
	SettingSendgridAPIKey      = "sendgrid_api_key"
	SettingEmailEnabled        = "email_notifications_enabled"
	SettingNotifyTaskAssigned  = "notify_task_assigned"
	SettingNotifyTaskConfirmed = "notify_task_confirmed"
)

// EmailSettings — типизированный снимок почтовых настроек на момент чтения,
// вместо разбросанных сравнений value == "true".
type EmailSettings struct {
	APIKey  string
	Enabled bool
	// событие → слать ли письмо (дефолт true, если ключ не задан)
	EventEnabled map[string]bool
}

func (s EmailSettings) Disabled() bool { return !s.Enabled || s.APIKey == "" }

func (s EmailSettings) EventOn(event string) bool {
	if v, ok := s.EventEnabled[event]; ok {
		return v
	}
	return true
}

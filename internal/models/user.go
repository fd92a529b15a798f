package models

import "time"

const (
	LanguageEN = "en"
	LanguageRU = "ru"
)

type User struct {
	ID                 uint        `gorm:"primaryKey"`
	Email              string      `gorm:"uniqueIndex;not null"`
	PasswordHash       string      `gorm:"not null"`
	MustChangePassword bool        `gorm:"not null;default:false"`
	Preferences        Preferences `gorm:"embedded;embeddedPrefix:pref_"`
	CreatedAt          time.Time   `gorm:"not null"`
}

// Preferences replaces the process-wide display toggles; handlers read it from
// the authenticated user and pass it down explicitly.
type Preferences struct {
	DarkMode bool   `gorm:"column:dark_mode;not null;default:false" json:"dark_mode"`
	Haptics  bool   `gorm:"column:haptics;not null" json:"haptics"`
	Language string `gorm:"column:language;not null;default:en" json:"language"`
}

func DefaultPreferences() Preferences {
	return Preferences{Haptics: true, Language: LanguageEN}
}

package models

import "time"

const (
	DefaultCycleLength    = 28
	DefaultPeriodDuration = 5

	CurrentProfileSchemaVersion = 2
)

type CycleProfile struct {
	ID              uint                 `gorm:"primaryKey"`
	UserID          uint                 `gorm:"not null;uniqueIndex"`
	LastPeriodDate  *time.Time           `gorm:"type:date"`
	CycleLength     int                  `gorm:"not null;default:28"`
	PeriodDuration  int                  `gorm:"not null;default:5"`
	LifestyleOffset float64              `gorm:"not null;default:0"`
	AdaptiveWeight  float64              `gorm:"not null;default:0"`
	ConfidenceScore int                  `gorm:"not null"`
	VarianceOffset  float64              `gorm:"not null;default:0"`
	Habits          Habits               `gorm:"type:text;serializer:json"`
	IsProfessional  bool                 `gorm:"not null;default:false"`
	SchemaVersion   int                  `gorm:"not null;default:1"`
	History         []CycleHistoryRecord `gorm:"foreignKey:ProfileID;constraint:OnDelete:CASCADE"`
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

type CycleHistoryRecord struct {
	ID              uint      `gorm:"primaryKey"`
	ProfileID       uint      `gorm:"not null;uniqueIndex:uidx_profile_start"`
	StartDate       time.Time `gorm:"type:date;not null;uniqueIndex:uidx_profile_start"`
	EndDate         time.Time `gorm:"type:date;not null"`
	IsConfirmed     bool      `gorm:"not null;default:false"`
	LifestyleImpact float64   `gorm:"not null;default:0"`
}

// Clone returns a copy whose history slice and baseline pointer are not shared
// with the receiver.
func (profile CycleProfile) Clone() CycleProfile {
	cloned := profile
	if profile.LastPeriodDate != nil {
		day := *profile.LastPeriodDate
		cloned.LastPeriodDate = &day
	}
	cloned.History = make([]CycleHistoryRecord, len(profile.History))
	copy(cloned.History, profile.History)
	return cloned
}

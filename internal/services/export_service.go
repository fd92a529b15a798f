package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/Masterminds/semver/v3"
	"github.com/terraincognita07/cyclecast/internal/models"
)

const (
	ExportFormatVersion     = "1.1.0"
	exportFormatConstraint  = "^1.0"
	maxImportHistoryRecords = 1000
)

var (
	ErrImportFormatUnsupported = errors.New("import format version unsupported")
	ErrImportPayloadInvalid    = errors.New("import payload invalid")
)

var importConstraint = mustConstraint(exportFormatConstraint)

type ExportHistoryEntry struct {
	StartDate       string  `json:"start_date"`
	EndDate         string  `json:"end_date"`
	IsConfirmed     bool    `json:"is_confirmed"`
	LifestyleImpact float64 `json:"lifestyle_impact"`
}

type ProfileSnapshot struct {
	FormatVersion   string               `json:"format_version"`
	ExportedAt      time.Time            `json:"exported_at"`
	LastPeriodDate  string               `json:"last_period_date,omitempty"`
	CycleLength     int                  `json:"cycle_length"`
	PeriodDuration  int                  `json:"period_duration"`
	LifestyleOffset float64              `json:"lifestyle_offset"`
	AdaptiveWeight  float64              `json:"adaptive_weight"`
	ConfidenceScore int                  `json:"confidence_score"`
	VarianceOffset  float64              `json:"variance_offset"`
	Habits          models.Habits        `json:"habits"`
	IsProfessional  bool                 `json:"is_professional"`
	History         []ExportHistoryEntry `json:"history"`
}

type ExportProfileStore interface {
	Profile(ctx context.Context, userID uint) (models.CycleProfile, error)
	RestoreProfile(ctx context.Context, userID uint, profile models.CycleProfile) (models.CycleProfile, error)
}

type ExportService struct {
	profiles ExportProfileStore
	now      func() time.Time
}

func NewExportService(profiles ExportProfileStore) *ExportService {
	return &ExportService{profiles: profiles, now: time.Now}
}

func (service *ExportService) Export(ctx context.Context, userID uint) (ProfileSnapshot, error) {
	profile, err := service.profiles.Profile(ctx, userID)
	if err != nil {
		return ProfileSnapshot{}, err
	}
	return BuildProfileSnapshot(profile, service.now()), nil
}

// Import restores a snapshot for a user without a profile.
func (service *ExportService) Import(ctx context.Context, userID uint, raw []byte) (models.CycleProfile, error) {
	profile, err := ParseProfileSnapshot(raw)
	if err != nil {
		return models.CycleProfile{}, err
	}
	return service.profiles.RestoreProfile(ctx, userID, profile)
}

func BuildProfileSnapshot(profile models.CycleProfile, now time.Time) ProfileSnapshot {
	snapshot := ProfileSnapshot{
		FormatVersion:   ExportFormatVersion,
		ExportedAt:      now.UTC().Truncate(time.Second),
		CycleLength:     profile.CycleLength,
		PeriodDuration:  profile.PeriodDuration,
		LifestyleOffset: profile.LifestyleOffset,
		AdaptiveWeight:  profile.AdaptiveWeight,
		ConfidenceScore: profile.ConfidenceScore,
		VarianceOffset:  profile.VarianceOffset,
		Habits:          profile.Habits,
		IsProfessional:  profile.IsProfessional,
		History:         make([]ExportHistoryEntry, 0, len(profile.History)),
	}
	if profile.LastPeriodDate != nil {
		snapshot.LastPeriodDate = FormatDay(*profile.LastPeriodDate)
	}
	for _, record := range profile.History {
		snapshot.History = append(snapshot.History, ExportHistoryEntry{
			StartDate:       FormatDay(record.StartDate),
			EndDate:         FormatDay(record.EndDate),
			IsConfirmed:     record.IsConfirmed,
			LifestyleImpact: record.LifestyleImpact,
		})
	}
	return snapshot
}

// ParseProfileSnapshot decodes and validates an exported snapshot. The
// returned profile is not bound to any user yet.
func ParseProfileSnapshot(raw []byte) (models.CycleProfile, error) {
	var snapshot ProfileSnapshot
	if err := json.Unmarshal(raw, &snapshot); err != nil {
		return models.CycleProfile{}, fmt.Errorf("%w: %v", ErrImportPayloadInvalid, err)
	}

	version, err := semver.NewVersion(snapshot.FormatVersion)
	if err != nil || !importConstraint.Check(version) {
		return models.CycleProfile{}, ErrImportFormatUnsupported
	}

	if !IsValidOnboardingCycleLength(snapshot.CycleLength) || !IsValidOnboardingPeriodLength(snapshot.PeriodDuration) {
		return models.CycleProfile{}, fmt.Errorf("%w: cycle or period length out of range", ErrImportPayloadInvalid)
	}
	if !IsCompatiblePeriodLength(snapshot.CycleLength, snapshot.PeriodDuration) {
		return models.CycleProfile{}, fmt.Errorf("%w: period duration incompatible with cycle length", ErrImportPayloadInvalid)
	}
	if snapshot.ConfidenceScore < 0 || snapshot.ConfidenceScore > maxConfidenceScore {
		return models.CycleProfile{}, fmt.Errorf("%w: confidence score out of range", ErrImportPayloadInvalid)
	}
	if snapshot.AdaptiveWeight < 0 || !isFinite(snapshot.AdaptiveWeight, snapshot.LifestyleOffset, snapshot.VarianceOffset) {
		return models.CycleProfile{}, fmt.Errorf("%w: invalid model weights", ErrImportPayloadInvalid)
	}
	if len(snapshot.History) == 0 || len(snapshot.History) > maxImportHistoryRecords {
		return models.CycleProfile{}, fmt.Errorf("%w: history size", ErrImportPayloadInvalid)
	}

	profile := models.CycleProfile{
		CycleLength:     snapshot.CycleLength,
		PeriodDuration:  snapshot.PeriodDuration,
		LifestyleOffset: snapshot.LifestyleOffset,
		AdaptiveWeight:  snapshot.AdaptiveWeight,
		ConfidenceScore: snapshot.ConfidenceScore,
		VarianceOffset:  snapshot.VarianceOffset,
		Habits:          snapshot.Habits,
		IsProfessional:  snapshot.IsProfessional,
		SchemaVersion:   models.CurrentProfileSchemaVersion,
	}
	if snapshot.LastPeriodDate != "" {
		day, err := ParseDay(snapshot.LastPeriodDate)
		if err != nil {
			return models.CycleProfile{}, fmt.Errorf("%w: last_period_date", ErrImportPayloadInvalid)
		}
		profile.LastPeriodDate = &day
	}

	store := NewHistoryStore(nil)
	for _, entry := range snapshot.History {
		start, startErr := ParseDay(entry.StartDate)
		end, endErr := ParseDay(entry.EndDate)
		if startErr != nil || endErr != nil || end.Before(start) {
			return models.CycleProfile{}, fmt.Errorf("%w: history entry %q", ErrImportPayloadInvalid, entry.StartDate)
		}
		before := store.Len()
		store.Append(models.CycleHistoryRecord{
			StartDate:       start,
			EndDate:         end,
			IsConfirmed:     entry.IsConfirmed,
			LifestyleImpact: entry.LifestyleImpact,
		})
		if store.Len() == before {
			return models.CycleProfile{}, fmt.Errorf("%w: duplicate start %s", ErrImportPayloadInvalid, entry.StartDate)
		}
	}
	profile.History = store.Records()
	return profile, nil
}

func isFinite(values ...float64) bool {
	for _, value := range values {
		if math.IsNaN(value) || math.IsInf(value, 0) {
			return false
		}
	}
	return true
}

func mustConstraint(raw string) *semver.Constraints {
	constraint, err := semver.NewConstraint(raw)
	if err != nil {
		panic(err)
	}
	return constraint
}

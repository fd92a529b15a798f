package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/terraincognita07/cyclecast/internal/models"
)

var (
	ErrProfileExists        = errors.New("cycle profile already exists")
	ErrProfileNotFound      = errors.New("cycle profile not found")
	ErrInsightsUnavailable  = errors.New("insights unavailable")
	ErrPeriodStartInFuture  = errors.New("period start date is in the future")
	ErrCalendarRangeInvalid = errors.New("calendar range invalid")
)

const maxClassifyRangeDays = 366

type ProfileRepository interface {
	FindByUserID(ctx context.Context, userID uint) (models.CycleProfile, bool, error)
	Create(ctx context.Context, profile *models.CycleProfile) error
	Replace(ctx context.Context, profile *models.CycleProfile) error
	DeleteByUserID(ctx context.Context, userID uint) error
}

// ProfileService owns every write to a cycle profile. Writes for one user are
// serialized; the repository replaces the whole profile atomically.
type ProfileService struct {
	profiles ProfileRepository
	log      *logrus.Entry
	location *time.Location
	now      func() time.Time
	locks    *userLocks
}

func NewProfileService(profiles ProfileRepository, log *logrus.Entry, location *time.Location) *ProfileService {
	if location == nil {
		location = time.UTC
	}
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	return &ProfileService{
		profiles: profiles,
		log:      log.WithField("component", "profile_service"),
		location: location,
		now:      time.Now,
		locks:    newUserLocks(),
	}
}

func (service *ProfileService) Today() time.Time {
	return DateAtLocation(service.now(), service.location)
}

func (service *ProfileService) Onboard(ctx context.Context, userID uint, input OnboardingInput) (models.CycleProfile, error) {
	seed, err := ValidateOnboardingInput(input, service.now(), service.location)
	if err != nil {
		return models.CycleProfile{}, err
	}

	unlock := service.locks.lock(userID)
	defer unlock()

	_, found, err := service.profiles.FindByUserID(ctx, userID)
	if err != nil {
		return models.CycleProfile{}, fmt.Errorf("load profile: %w", err)
	}
	if found {
		return models.CycleProfile{}, ErrProfileExists
	}

	profile := NewCycleProfile(userID, seed)
	if err := service.profiles.Create(ctx, &profile); err != nil {
		return models.CycleProfile{}, fmt.Errorf("create profile: %w", err)
	}

	service.log.WithFields(logrus.Fields{
		"user_id":          userID,
		"cycle_length":     profile.CycleLength,
		"lifestyle_offset": profile.LifestyleOffset,
	}).Info("cycle profile created")
	return profile, nil
}

func (service *ProfileService) Profile(ctx context.Context, userID uint) (models.CycleProfile, error) {
	profile, found, err := service.profiles.FindByUserID(ctx, userID)
	if err != nil {
		return models.CycleProfile{}, fmt.Errorf("load profile: %w", err)
	}
	if !found {
		return models.CycleProfile{}, ErrProfileNotFound
	}
	return profile, nil
}

func (service *ProfileService) Prediction(ctx context.Context, userID uint) (PredictionResult, error) {
	profile, err := service.Profile(ctx, userID)
	if err != nil {
		return PredictionResult{}, err
	}
	prediction, ok := Predict(profile)
	if !ok {
		return PredictionResult{}, ErrInsightsUnavailable
	}
	return prediction, nil
}

func (service *ProfileService) Dashboard(ctx context.Context, userID uint) (DashboardSummary, error) {
	profile, err := service.Profile(ctx, userID)
	if err != nil {
		return DashboardSummary{}, err
	}
	summary, ok := BuildDashboardSummary(profile, service.Today())
	if !ok {
		return DashboardSummary{}, ErrInsightsUnavailable
	}
	return summary, nil
}

func (service *ProfileService) ClassifyDay(ctx context.Context, userID uint, day time.Time) (DayClassification, error) {
	days, err := service.ClassifyRange(ctx, userID, day, day)
	if err != nil {
		return DayClassification{}, err
	}
	return days[0], nil
}

func (service *ProfileService) ClassifyRange(ctx context.Context, userID uint, from time.Time, to time.Time) ([]DayClassification, error) {
	if to.Before(from) || DaysBetween(from, to) >= maxClassifyRangeDays {
		return nil, ErrCalendarRangeInvalid
	}
	profile, err := service.Profile(ctx, userID)
	if err != nil {
		return nil, err
	}
	return ClassifyRange(from, to, profile), nil
}

// Calendar classifies the week-aligned grid around the month containing monthStart.
func (service *ProfileService) Calendar(ctx context.Context, userID uint, monthStart time.Time) ([]CalendarDayState, error) {
	profile, err := service.Profile(ctx, userID)
	if err != nil {
		return nil, err
	}
	return BuildCalendarDayStates(monthStart, profile, service.Today()), nil
}

// RecordPeriodStart runs recalibration for a user-confirmed period start.
func (service *ProfileService) RecordPeriodStart(ctx context.Context, userID uint, day time.Time) (models.CycleProfile, RecalibrationOutcome, error) {
	actual := CalendarDate(day)
	if actual.After(service.Today()) {
		return models.CycleProfile{}, RecalibrationOutcome{}, ErrPeriodStartInFuture
	}

	unlock := service.locks.lock(userID)
	defer unlock()

	profile, err := service.Profile(ctx, userID)
	if err != nil {
		return models.CycleProfile{}, RecalibrationOutcome{}, err
	}

	updated, outcome := Recalibrate(profile, actual)
	if !outcome.Applied {
		service.log.WithField("user_id", userID).Warn("recalibration skipped: profile has no baseline")
		return profile, outcome, nil
	}
	if err := service.profiles.Replace(ctx, &updated); err != nil {
		return models.CycleProfile{}, RecalibrationOutcome{}, fmt.Errorf("save recalibrated profile: %w", err)
	}

	service.log.WithFields(logrus.Fields{
		"user_id":          userID,
		"error_days":       outcome.ErrorDays,
		"confidence_score": updated.ConfidenceScore,
		"adaptive_weight":  updated.AdaptiveWeight,
	}).Info("cycle profile recalibrated")
	return updated, outcome, nil
}

// CalibrateHistory replaces the system-inferred history entries with edited ones.
func (service *ProfileService) CalibrateHistory(ctx context.Context, userID uint, entries []CalibrationEntry) (models.CycleProfile, error) {
	unlock := service.locks.lock(userID)
	defer unlock()

	profile, err := service.Profile(ctx, userID)
	if err != nil {
		return models.CycleProfile{}, err
	}

	records, err := BuildCalibrationRecords(profile, entries)
	if err != nil {
		return models.CycleProfile{}, err
	}

	store := NewHistoryStore(profile.History)
	if err := store.ReplaceUnconfirmed(records); err != nil {
		return models.CycleProfile{}, err
	}

	updated := profile.Clone()
	updated.History = store.Records()
	if err := service.profiles.Replace(ctx, &updated); err != nil {
		return models.CycleProfile{}, fmt.Errorf("save calibrated profile: %w", err)
	}
	return updated, nil
}

func (service *ProfileService) ConfirmCalibration(ctx context.Context, userID uint) (models.CycleProfile, error) {
	unlock := service.locks.lock(userID)
	defer unlock()

	profile, err := service.Profile(ctx, userID)
	if err != nil {
		return models.CycleProfile{}, err
	}

	store := NewHistoryStore(profile.History)
	if store.ConfirmAll() == 0 {
		return profile, nil
	}

	updated := profile.Clone()
	updated.History = store.Records()
	if err := service.profiles.Replace(ctx, &updated); err != nil {
		return models.CycleProfile{}, fmt.Errorf("save confirmed profile: %w", err)
	}
	return updated, nil
}

func (service *ProfileService) DeleteProfile(ctx context.Context, userID uint) error {
	unlock := service.locks.lock(userID)
	defer unlock()

	if err := service.profiles.DeleteByUserID(ctx, userID); err != nil {
		return fmt.Errorf("delete profile: %w", err)
	}
	service.log.WithField("user_id", userID).Info("cycle profile deleted")
	return nil
}

// RestoreProfile stores an imported profile for a user that has none yet.
func (service *ProfileService) RestoreProfile(ctx context.Context, userID uint, profile models.CycleProfile) (models.CycleProfile, error) {
	unlock := service.locks.lock(userID)
	defer unlock()

	_, found, err := service.profiles.FindByUserID(ctx, userID)
	if err != nil {
		return models.CycleProfile{}, fmt.Errorf("load profile: %w", err)
	}
	if found {
		return models.CycleProfile{}, ErrProfileExists
	}

	restored := profile.Clone()
	restored.ID = 0
	restored.UserID = userID
	for index := range restored.History {
		restored.History[index].ID = 0
		restored.History[index].ProfileID = 0
	}
	if err := service.profiles.Create(ctx, &restored); err != nil {
		return models.CycleProfile{}, fmt.Errorf("create restored profile: %w", err)
	}
	return restored, nil
}

func CalendarMonthRange(value time.Time) (time.Time, time.Time) {
	day := CalendarDate(value)
	first := time.Date(day.Year(), day.Month(), 1, 0, 0, 0, 0, time.UTC)
	return first, first.AddDate(0, 1, -1)
}

type userLocks struct {
	mu    sync.Mutex
	locks map[uint]*sync.Mutex
}

func newUserLocks() *userLocks {
	return &userLocks{locks: make(map[uint]*sync.Mutex)}
}

func (locks *userLocks) lock(userID uint) func() {
	locks.mu.Lock()
	userLock, ok := locks.locks[userID]
	if !ok {
		userLock = &sync.Mutex{}
		locks.locks[userID] = userLock
	}
	locks.mu.Unlock()

	userLock.Lock()
	return userLock.Unlock
}

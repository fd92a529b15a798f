package db

import (
	"context"
	"fmt"

	"github.com/terraincognita07/cyclecast/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ProfileRepository persists a cycle profile and its history as one unit.
type ProfileRepository struct {
	database *gorm.DB
}

func NewProfileRepository(database *gorm.DB) *ProfileRepository {
	return &ProfileRepository{database: database}
}

func orderedHistory(tx *gorm.DB) *gorm.DB {
	return tx.Order("start_date ASC")
}

// FindByUserID loads the profile and upgrades rows written by older schema
// versions before returning them.
func (repo *ProfileRepository) FindByUserID(ctx context.Context, userID uint) (models.CycleProfile, bool, error) {
	var profile models.CycleProfile
	err := repo.database.WithContext(ctx).
		Preload("History", orderedHistory).
		Where("user_id = ?", userID).
		First(&profile).Error
	if !found(err) {
		return models.CycleProfile{}, false, ignoreNotFound(err)
	}

	if profile.SchemaVersion < models.CurrentProfileSchemaVersion {
		if err := repo.upgradeSchema(ctx, &profile); err != nil {
			return models.CycleProfile{}, false, err
		}
	}
	return profile, true, nil
}

func (repo *ProfileRepository) ListProfiles(ctx context.Context) ([]models.CycleProfile, error) {
	profiles := make([]models.CycleProfile, 0)
	if err := repo.database.WithContext(ctx).
		Preload("History", orderedHistory).
		Order("id ASC").
		Find(&profiles).Error; err != nil {
		return nil, err
	}
	return profiles, nil
}

func (repo *ProfileRepository) Create(ctx context.Context, profile *models.CycleProfile) error {
	return repo.database.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		history := profile.History
		profile.History = nil
		if err := tx.Create(profile).Error; err != nil {
			profile.History = history
			return fmt.Errorf("insert profile: %w", err)
		}
		profile.History = history
		return insertHistory(tx, profile)
	})
}

// Replace overwrites the profile row and its whole history in one transaction.
func (repo *ProfileRepository) Replace(ctx context.Context, profile *models.CycleProfile) error {
	return repo.database.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&models.CycleProfile{}).
			Where("id = ? AND user_id = ?", profile.ID, profile.UserID).
			Select("last_period_date", "cycle_length", "period_duration", "lifestyle_offset",
				"adaptive_weight", "confidence_score", "variance_offset", "habits",
				"is_professional", "schema_version", "updated_at").
			Omit(clause.Associations).
			Updates(profile)
		if result.Error != nil {
			return fmt.Errorf("update profile: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}

		if err := tx.Where("profile_id = ?", profile.ID).Delete(&models.CycleHistoryRecord{}).Error; err != nil {
			return fmt.Errorf("clear history: %w", err)
		}
		return insertHistory(tx, profile)
	})
}

func (repo *ProfileRepository) DeleteByUserID(ctx context.Context, userID uint) error {
	return repo.database.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		profileIDs := tx.Model(&models.CycleProfile{}).Select("id").Where("user_id = ?", userID)
		if err := tx.Where("profile_id IN (?)", profileIDs).Delete(&models.CycleHistoryRecord{}).Error; err != nil {
			return fmt.Errorf("delete history: %w", err)
		}
		if err := tx.Where("user_id = ?", userID).Delete(&models.CycleProfile{}).Error; err != nil {
			return fmt.Errorf("delete profile: %w", err)
		}
		return nil
	})
}

func insertHistory(tx *gorm.DB, profile *models.CycleProfile) error {
	if len(profile.History) == 0 {
		return nil
	}
	for index := range profile.History {
		profile.History[index].ID = 0
		profile.History[index].ProfileID = profile.ID
	}
	if err := tx.Create(&profile.History).Error; err != nil {
		return fmt.Errorf("insert history: %w", err)
	}
	return nil
}

// upgradeSchema rewrites v1 habits, stored as {"flag": {"value": bool}}, as
// plain booleans. Decoding already accepted both shapes.
func (repo *ProfileRepository) upgradeSchema(ctx context.Context, profile *models.CycleProfile) error {
	upgraded := models.CycleProfile{
		Habits:        profile.Habits,
		SchemaVersion: models.CurrentProfileSchemaVersion,
	}
	if err := repo.database.WithContext(ctx).
		Model(&models.CycleProfile{}).
		Where("id = ?", profile.ID).
		Select("habits", "schema_version").
		Updates(&upgraded).Error; err != nil {
		return fmt.Errorf("upgrade profile schema: %w", err)
	}
	profile.SchemaVersion = models.CurrentProfileSchemaVersion
	return nil
}

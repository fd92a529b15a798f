package cli

import (
	"fmt"
	"io"

	"github.com/sirupsen/logrus"
	"github.com/terraincognita07/cyclecast/internal/config"
	"github.com/terraincognita07/cyclecast/internal/db"
	"github.com/terraincognita07/cyclecast/internal/logging"
	"github.com/terraincognita07/cyclecast/internal/services"
	"gorm.io/gorm"
)

// runtime is the shared bootstrap of every command that touches the database.
type runtime struct {
	cfg      config.Config
	logger   *logrus.Logger
	database *gorm.DB
	repos    *db.Repositories
}

func openRuntime(flags *Flags, logOut io.Writer) (*runtime, error) {
	cfg, err := config.Load(flags.ConfigFile)
	if err != nil {
		return nil, err
	}
	if err := cfg.ValidateDatabase(); err != nil {
		return nil, err
	}

	logger, err := logging.New(cfg.Log.Level, cfg.Log.Format, logOut)
	if err != nil {
		return nil, err
	}

	database, err := db.OpenDatabase(cfg.Database, logger)
	if err != nil {
		return nil, fmt.Errorf("database init failed: %w", err)
	}

	return &runtime{
		cfg:      cfg,
		logger:   logger,
		database: database,
		repos:    db.NewRepositories(database),
	}, nil
}

func (rt *runtime) authService() *services.AuthService {
	return services.NewAuthService(rt.repos.Users, logrus.NewEntry(rt.logger))
}

func (rt *runtime) profileService() *services.ProfileService {
	return services.NewProfileService(rt.repos.Profiles, logrus.NewEntry(rt.logger), rt.cfg.Location())
}

func (rt *runtime) Close() error {
	sqlDB, err := rt.database.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

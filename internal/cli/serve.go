package cli

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/terraincognita07/cyclecast/internal/api"
	"github.com/terraincognita07/cyclecast/internal/config"
	"github.com/terraincognita07/cyclecast/internal/i18n"
	"github.com/terraincognita07/cyclecast/internal/logging"
	"github.com/terraincognita07/cyclecast/internal/services"
	"golang.org/x/sync/errgroup"
)

func newServeCmd(flags *Flags) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API and the reminder scheduler",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context(), flags, cmd)
		},
	}
}

func runServe(parent context.Context, flags *Flags, cmd *cobra.Command) error {
	rt, err := openRuntime(flags, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer func() { _ = rt.Close() }()

	if err := rt.cfg.Validate(); err != nil {
		return err
	}
	log := logging.Component(rt.logger, "server")
	location := rt.cfg.Location()

	messages, err := i18n.NewBundledManager(rt.cfg.Locale.DefaultLanguage)
	if err != nil {
		return fmt.Errorf("i18n init failed: %w", err)
	}

	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	profiles := rt.profileService()
	handler, err := api.NewHandler(api.Dependencies{
		Auth:        rt.authService(),
		Profiles:    profiles,
		Settings:    services.NewSettingsService(rt.repos.Users, messages.SupportedLanguages()),
		Exports:     services.NewExportService(profiles),
		I18n:        messages,
		SecretKey:   rt.cfg.Server.SecretKey,
		TokenTTL:    rt.cfg.Server.TokenTTL,
		LoginPerMin: rt.cfg.Server.LoginPerMin,
		Location:    location,
		Log:         logrus.NewEntry(rt.logger),
	})
	if err != nil {
		return fmt.Errorf("handler init failed: %w", err)
	}
	app := api.NewApp(handler)

	reminders, closeLedger, err := buildReminderService(ctx, rt, location)
	if err != nil {
		return err
	}
	defer closeLedger()

	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		log.WithFields(logrus.Fields{
			"port":      rt.cfg.Server.Port,
			"db_driver": rt.cfg.Database.Driver,
			"tz":        location.String(),
		}).Info("cyclecast listening")
		return app.Listen(":" + rt.cfg.Server.Port)
	})
	group.Go(func() error {
		return reminders.Run(groupCtx)
	})
	group.Go(func() error {
		<-groupCtx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), rt.cfg.Server.ShutdownWait)
		defer cancel()
		if err := app.ShutdownWithContext(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown failed: %w", err)
		}
		log.Info("server stopped")
		return nil
	})

	if err := group.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

// buildReminderService picks the redis ledger when an address is configured
// and falls back to process memory otherwise.
func buildReminderService(ctx context.Context, rt *runtime, location *time.Location) (*services.ReminderService, func(), error) {
	log := logging.Component(rt.logger, "reminders")

	var ledger services.ReminderLedger = services.NewMemoryReminderLedger()
	closeLedger := func() {}
	if addr := rt.cfg.Redis.Addr; addr != "" {
		redisLedger, err := services.NewRedisReminderLedger(ctx, addr)
		if err != nil {
			return nil, nil, fmt.Errorf("redis init failed: %w", err)
		}
		ledger = redisLedger
		closeLedger = func() { _ = redisLedger.Close() }
	}

	var sender services.ReminderSender = services.NewLogSender(log)
	if rt.cfg.TelegramEnabled() {
		sender = services.NewTelegramSender(rt.cfg.Telegram.BotToken, rt.cfg.Telegram.ChatID)
	}

	return services.NewReminderService(
		rt.repos.Profiles,
		ledger,
		sender,
		reminderConfig(rt.cfg.Reminders),
		location,
		log,
	), closeLedger, nil
}

func reminderConfig(cfg config.ReminderConfig) services.ReminderConfig {
	return services.ReminderConfig{
		PeriodReminderDays: cfg.PeriodDays,
		NotifyFertility:    cfg.NotifyFertility,
		Interval:           cfg.Interval,
	}
}

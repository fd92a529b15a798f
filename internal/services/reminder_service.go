package services

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/terraincognita07/cyclecast/internal/models"
)

const defaultReminderInterval = 6 * time.Hour

type ReminderProfileLister interface {
	ListProfiles(ctx context.Context) ([]models.CycleProfile, error)
}

type ReminderConfig struct {
	PeriodReminderDays int
	NotifyFertility    bool
	Interval           time.Duration
}

// ReminderService periodically reads every profile and sends period and
// fertile-window reminders. It never writes profiles. All reminders share one
// sender channel, so each message names the user it is about.
type ReminderService struct {
	profiles ReminderProfileLister
	ledger   ReminderLedger
	sender   ReminderSender
	config   ReminderConfig
	location *time.Location
	log      *logrus.Entry
	now      func() time.Time
}

func NewReminderService(profiles ReminderProfileLister, ledger ReminderLedger, sender ReminderSender, config ReminderConfig, location *time.Location, log *logrus.Entry) *ReminderService {
	if config.Interval <= 0 {
		config.Interval = defaultReminderInterval
	}
	if config.PeriodReminderDays < 0 {
		config.PeriodReminderDays = 0
	}
	if location == nil {
		location = time.UTC
	}
	if ledger == nil {
		ledger = NewMemoryReminderLedger()
	}
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	return &ReminderService{
		profiles: profiles,
		ledger:   ledger,
		sender:   sender,
		config:   config,
		location: location,
		log:      log.WithField("component", "reminders"),
		now:      time.Now,
	}
}

// Run ticks until ctx is cancelled. It returns nil on cancellation.
func (service *ReminderService) Run(ctx context.Context) error {
	ticker := time.NewTicker(service.config.Interval)
	defer ticker.Stop()

	service.RunOnce(ctx)
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			service.RunOnce(ctx)
		}
	}
}

// RunOnce evaluates every profile and returns the number of reminders sent.
func (service *ReminderService) RunOnce(ctx context.Context) int {
	profiles, err := service.profiles.ListProfiles(ctx)
	if err != nil {
		service.log.WithError(err).Error("fetch profiles failed")
		return 0
	}

	today := DateAtLocation(service.now(), service.location)
	sent := 0
	for _, profile := range profiles {
		prediction, ok := Predict(profile)
		if !ok {
			continue
		}

		if DaysBetween(today, prediction.NextPeriodDate) == service.config.PeriodReminderDays {
			message := fmt.Sprintf("User #%d period reminder: predicted period starts in %d day(s) on %s.",
				profile.UserID,
				service.config.PeriodReminderDays,
				prediction.NextPeriodDate.Format("Jan 2"),
			)
			if service.deliver(ctx, "period", profile.UserID, today, message) {
				sent++
			}
		}

		if service.config.NotifyFertility && sameCalendarDay(today, prediction.FertileWindow.Start) {
			message := fmt.Sprintf("User #%d fertility reminder: fertile window starts today (%s).",
				profile.UserID,
				prediction.FertileWindow.Start.Format("Jan 2"),
			)
			if service.deliver(ctx, "fertility", profile.UserID, today, message) {
				sent++
			}
		}
	}
	return sent
}

func (service *ReminderService) deliver(ctx context.Context, kind string, userID uint, today time.Time, message string) bool {
	entry := service.log.WithFields(logrus.Fields{"kind": kind, "user_id": userID})

	key := fmt.Sprintf("%s:%d:%s", kind, userID, FormatDay(today))
	fresh, err := service.ledger.MarkSent(ctx, key)
	if err != nil {
		entry.WithError(err).Warn("reminder ledger unavailable")
		return false
	}
	if !fresh {
		return false
	}

	if err := service.sender.Send(ctx, message); err != nil {
		entry.WithError(err).Error("send reminder failed")
		return false
	}
	entry.Debug("reminder sent")
	return true
}

package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

const (
	reminderLedgerTTL       = 48 * time.Hour
	reminderLedgerKeyPrefix = "cyclecast:reminder:"
	memoryLedgerMaxEntries  = 500
	redisLedgerDialTimeout  = 5 * time.Second
)

// ReminderLedger remembers which reminders went out so a reminder is sent at
// most once per user and day even when the scheduler ticks several times.
type ReminderLedger interface {
	// MarkSent records key and reports whether it was not recorded before.
	MarkSent(ctx context.Context, key string) (bool, error)
}

type MemoryReminderLedger struct {
	mu   sync.Mutex
	now  func() time.Time
	sent map[string]time.Time
}

func NewMemoryReminderLedger() *MemoryReminderLedger {
	return &MemoryReminderLedger{now: time.Now, sent: make(map[string]time.Time)}
}

func (ledger *MemoryReminderLedger) MarkSent(_ context.Context, key string) (bool, error) {
	ledger.mu.Lock()
	defer ledger.mu.Unlock()

	now := ledger.now()
	if sentAt, ok := ledger.sent[key]; ok && now.Sub(sentAt) < reminderLedgerTTL {
		return false, nil
	}

	if len(ledger.sent) >= memoryLedgerMaxEntries {
		for existing, sentAt := range ledger.sent {
			if now.Sub(sentAt) >= reminderLedgerTTL {
				delete(ledger.sent, existing)
			}
		}
	}
	ledger.sent[key] = now
	return true, nil
}

type RedisReminderLedger struct {
	client *goredis.Client
}

func NewRedisReminderLedger(ctx context.Context, addr string) (*RedisReminderLedger, error) {
	client := goredis.NewClient(&goredis.Options{
		Addr:        addr,
		DialTimeout: redisLedgerDialTimeout,
	})

	pingCtx, cancel := context.WithTimeout(ctx, redisLedgerDialTimeout)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return &RedisReminderLedger{client: client}, nil
}

func (ledger *RedisReminderLedger) MarkSent(ctx context.Context, key string) (bool, error) {
	created, err := ledger.client.SetNX(ctx, reminderLedgerKeyPrefix+key, time.Now().UTC().Format(time.RFC3339), reminderLedgerTTL).Result()
	if err != nil {
		return false, fmt.Errorf("redis setnx: %w", err)
	}
	return created, nil
}

func (ledger *RedisReminderLedger) Close() error {
	return ledger.client.Close()
}

package services

import (
	"errors"
	"sort"

	"github.com/terraincognita07/cyclecast/internal/models"
)

var (
	ErrHistoryDuplicateStart = errors.New("history already has a record starting on that day")
	ErrHistoryEmpty          = errors.New("history must keep at least one record")
)

// HistoryStore keeps cycle records ordered ascending by start date with at most
// one record per start date. Confirmed records are never dropped.
type HistoryStore struct {
	records []models.CycleHistoryRecord
}

func NewHistoryStore(records []models.CycleHistoryRecord) *HistoryStore {
	store := &HistoryStore{records: make([]models.CycleHistoryRecord, 0, len(records)+1)}
	for _, record := range records {
		store.Append(record)
	}
	return store
}

// Append inserts the record and restores ordering. A record whose start date is
// already present replaces the existing one unless that would downgrade a
// confirmed entry to an unconfirmed one.
func (store *HistoryStore) Append(record models.CycleHistoryRecord) {
	record = normalizeHistoryRecord(record)
	for index, existing := range store.records {
		if !sameCalendarDay(existing.StartDate, record.StartDate) {
			continue
		}
		if existing.IsConfirmed && !record.IsConfirmed {
			return
		}
		record.ID = existing.ID
		record.ProfileID = existing.ProfileID
		store.records[index] = record
		return
	}

	store.records = append(store.records, record)
	store.sort()
}

// LastN returns up to n most recent records, oldest first.
func (store *HistoryStore) LastN(n int) []models.CycleHistoryRecord {
	if n <= 0 {
		return []models.CycleHistoryRecord{}
	}
	start := 0
	if len(store.records) > n {
		start = len(store.records) - n
	}
	tail := make([]models.CycleHistoryRecord, len(store.records)-start)
	copy(tail, store.records[start:])
	return tail
}

// ReplaceUnconfirmed swaps every unconfirmed record for the given ones. It is
// only used by the calibration flow.
func (store *HistoryStore) ReplaceUnconfirmed(records []models.CycleHistoryRecord) error {
	kept := make([]models.CycleHistoryRecord, 0, len(store.records)+len(records))
	seen := make(map[string]struct{}, len(store.records)+len(records))
	for _, existing := range store.records {
		if !existing.IsConfirmed {
			continue
		}
		kept = append(kept, existing)
		seen[FormatDay(existing.StartDate)] = struct{}{}
	}

	for _, record := range records {
		record = normalizeHistoryRecord(record)
		key := FormatDay(record.StartDate)
		if _, exists := seen[key]; exists {
			return ErrHistoryDuplicateStart
		}
		seen[key] = struct{}{}
		kept = append(kept, record)
	}
	if len(kept) == 0 {
		return ErrHistoryEmpty
	}

	store.records = kept
	store.sort()
	return nil
}

// ConfirmAll marks every record as human-validated.
func (store *HistoryStore) ConfirmAll() int {
	confirmed := 0
	for index := range store.records {
		if !store.records[index].IsConfirmed {
			store.records[index].IsConfirmed = true
			confirmed++
		}
	}
	return confirmed
}

func (store *HistoryStore) Len() int {
	return len(store.records)
}

func (store *HistoryStore) Records() []models.CycleHistoryRecord {
	records := make([]models.CycleHistoryRecord, len(store.records))
	copy(records, store.records)
	return records
}

func (store *HistoryStore) sort() {
	sort.SliceStable(store.records, func(i, j int) bool {
		return store.records[i].StartDate.Before(store.records[j].StartDate)
	})
}

func normalizeHistoryRecord(record models.CycleHistoryRecord) models.CycleHistoryRecord {
	record.StartDate = CalendarDate(record.StartDate)
	record.EndDate = CalendarDate(record.EndDate)
	return record
}

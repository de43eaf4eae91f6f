package store

import (
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"github.com/wallet-refbot/internal/types"
)

// UsageStore tracks per-requester daily wallet consumption in usage.json.
// A requester's count resets implicitly whenever the stored date differs
// from the current date.
type UsageStore struct {
	path  string
	mu    sync.Mutex
	usage map[string]types.UsageRecord
}

// NewUsageStore loads (or initializes) the usage file under dir
func NewUsageStore(dir string) (*UsageStore, error) {
	s := &UsageStore{
		path:  filepath.Join(dir, "usage.json"),
		usage: map[string]types.UsageRecord{},
	}
	if err := loadJSON(s.path, &s.usage); err != nil {
		return nil, err
	}
	return s, nil
}

func key(requesterID int64) string {
	return strconv.FormatInt(requesterID, 10)
}

// Today returns the requester's usage for the given day, rolling the count
// to zero when the stored record belongs to an earlier date.
func (s *UsageStore) Today(requesterID int64, now time.Time) types.UsageRecord {
	s.mu.Lock()
	defer s.mu.Unlock()

	today := types.Today(now)
	record, ok := s.usage[key(requesterID)]
	if !ok || record.Date != today {
		return types.UsageRecord{Date: today, Count: 0}
	}
	return record
}

// Charge consumes one wallet slot for the requester and persists the file.
// Slots are charged per attempt, not per success.
func (s *UsageStore) Charge(requesterID int64, now time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	today := types.Today(now)
	record, ok := s.usage[key(requesterID)]
	if !ok || record.Date != today {
		record = types.UsageRecord{Date: today}
	}
	record.Count++
	s.usage[key(requesterID)] = record

	return saveJSON(s.path, s.usage)
}

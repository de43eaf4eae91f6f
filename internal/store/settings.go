package store

import (
	"path/filepath"
	"sync"

	"github.com/wallet-refbot/internal/types"
)

// SettingsStore persists the process-wide mutable settings: block-list,
// known requesters, aggregate stats, quota, and the broadcast/welcome texts.
// Each setting lives in its own small file, mirroring the load/save pairs
// below.
type SettingsStore struct {
	dir string
	mu  sync.Mutex
}

// NewSettingsStore creates a settings store rooted at dir
func NewSettingsStore(dir string) *SettingsStore {
	return &SettingsStore{dir: dir}
}

func (s *SettingsStore) path(name string) string {
	return filepath.Join(s.dir, name)
}

// LoadBlocked returns the blocked requester ids
func (s *SettingsStore) LoadBlocked() ([]int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var blocked []int64
	err := loadJSON(s.path("blocked.json"), &blocked)
	return blocked, err
}

// SaveBlocked persists the blocked requester ids
func (s *SettingsStore) SaveBlocked(blocked []int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return saveJSON(s.path("blocked.json"), blocked)
}

// LoadUsers returns the known requester ids
func (s *SettingsStore) LoadUsers() ([]int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var users []int64
	err := loadJSON(s.path("users.json"), &users)
	return users, err
}

// SaveUsers persists the known requester ids
func (s *SettingsStore) SaveUsers(users []int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return saveJSON(s.path("users.json"), users)
}

// LoadStats returns the aggregate counters
func (s *SettingsStore) LoadStats() (types.Stats, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var stats types.Stats
	err := loadJSON(s.path("stats.json"), &stats)
	return stats, err
}

// SaveStats persists the aggregate counters
func (s *SettingsStore) SaveStats(stats types.Stats) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return saveJSON(s.path("stats.json"), stats)
}

// LoadMaxPerDay returns the daily quota, or defaultValue when unset
func (s *SettingsStore) LoadMaxPerDay(defaultValue int) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	limit := defaultValue
	if err := loadJSON(s.path("maxlimit.json"), &limit); err != nil || limit <= 0 {
		return defaultValue
	}
	return limit
}

// SaveMaxPerDay persists the daily quota
func (s *SettingsStore) SaveMaxPerDay(limit int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return saveJSON(s.path("maxlimit.json"), limit)
}

// LoadWelcome returns the welcome text, or defaultValue when unset
func (s *SettingsStore) LoadWelcome(defaultValue string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return loadText(s.path("welcome.txt"), defaultValue)
}

// SaveWelcome persists the welcome text
func (s *SettingsStore) SaveWelcome(text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return saveText(s.path("welcome.txt"), text)
}

// LoadSuffix returns the message suffix text
func (s *SettingsStore) LoadSuffix() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return loadText(s.path("suffix.txt"), "")
}

// SaveSuffix persists the message suffix text
func (s *SettingsStore) SaveSuffix(text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return saveText(s.path("suffix.txt"), text)
}

// LoadCaption returns the global caption text
func (s *SettingsStore) LoadCaption() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return loadText(s.path("globalcaption.txt"), "")
}

// SaveCaption persists the global caption text
func (s *SettingsStore) SaveCaption(text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return saveText(s.path("globalcaption.txt"), text)
}

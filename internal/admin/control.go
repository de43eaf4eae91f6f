// Package admin holds the process-wide mutable state an administrator
// steers: the block-list, per-requester cancellation flags, the daily wallet
// quota, aggregate stats, and the broadcast texts. State is loaded from the
// settings store at startup and flushed back after every mutation.
package admin

import (
	"sync"

	"github.com/wallet-refbot/internal/store"
	"github.com/wallet-refbot/internal/types"
)

// Control is the injected admin-state service consumed by the batch runner
// and the Telegram front end. Safe for concurrent use.
type Control struct {
	settings *store.SettingsStore

	mu        sync.Mutex
	blocked   map[int64]bool
	cancelled map[int64]bool
	users     []int64
	userSet   map[int64]bool
	stats     types.Stats
	maxPerDay int
	welcome   string
	suffix    string
	caption   string
}

// NewControl loads admin state from the settings store
func NewControl(settings *store.SettingsStore, defaultMaxPerDay int, defaultWelcome string) (*Control, error) {
	blocked, err := settings.LoadBlocked()
	if err != nil {
		return nil, err
	}
	users, err := settings.LoadUsers()
	if err != nil {
		return nil, err
	}
	stats, err := settings.LoadStats()
	if err != nil {
		return nil, err
	}

	c := &Control{
		settings:  settings,
		blocked:   map[int64]bool{},
		cancelled: map[int64]bool{},
		users:     users,
		userSet:   map[int64]bool{},
		stats:     stats,
		maxPerDay: settings.LoadMaxPerDay(defaultMaxPerDay),
		welcome:   settings.LoadWelcome(defaultWelcome),
		suffix:    settings.LoadSuffix(),
		caption:   settings.LoadCaption(),
	}
	for _, id := range blocked {
		c.blocked[id] = true
	}
	for _, id := range users {
		c.userSet[id] = true
	}
	return c, nil
}

// Block adds a requester to the block-list
func (c *Control) Block(id int64) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.blocked[id] {
		return nil
	}
	c.blocked[id] = true
	return c.settings.SaveBlocked(c.blockedList())
}

// Unblock removes a requester from the block-list
func (c *Control) Unblock(id int64) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.blocked[id] {
		return nil
	}
	delete(c.blocked, id)
	return c.settings.SaveBlocked(c.blockedList())
}

// IsBlocked reports whether a requester is blocked
func (c *Control) IsBlocked(id int64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.blocked[id]
}

func (c *Control) blockedList() []int64 {
	list := make([]int64, 0, len(c.blocked))
	for id := range c.blocked {
		list = append(list, id)
	}
	return list
}

// Cancel flags the requester's in-flight batch for cooperative cancellation.
// The running batch observes the flag at its next checkpoint; there is no
// way to abort an in-flight HTTP call.
func (c *Control) Cancel(id int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cancelled[id] = true
}

// IsCancelled reports whether the requester's batch was cancelled
func (c *Control) IsCancelled(id int64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cancelled[id]
}

// ClearCancel resets a requester's cancellation flag. A new batch clears the
// flag at start so a stale cancellation cannot block unrelated future jobs.
func (c *Control) ClearCancel(id int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.cancelled, id)
}

// RememberRequester records a requester the first time it is seen and bumps
// the user counter. Returns true for a first sighting.
func (c *Control) RememberRequester(id int64) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.userSet[id] {
		return false, nil
	}
	c.userSet[id] = true
	c.users = append(c.users, id)
	c.stats.TotalUsers++

	if err := c.settings.SaveUsers(c.users); err != nil {
		return true, err
	}
	return true, c.settings.SaveStats(c.stats)
}

// KnownRequesters returns every requester seen so far, in first-seen order
func (c *Control) KnownRequesters() []int64 {
	c.mu.Lock()
	defer c.mu.Unlock()

	users := make([]int64, len(c.users))
	copy(users, c.users)
	return users
}

// Stats returns the aggregate counters
func (c *Control) Stats() types.Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stats
}

// AddWalletRequests bumps the requested-wallet counter
func (c *Control) AddWalletRequests(n int) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.stats.TotalWalletRequests += n
	return c.settings.SaveStats(c.stats)
}

// MaxPerDay returns the current daily wallet quota
func (c *Control) MaxPerDay() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.maxPerDay
}

// SetMaxPerDay changes the daily wallet quota
func (c *Control) SetMaxPerDay(limit int) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.maxPerDay = limit
	return c.settings.SaveMaxPerDay(limit)
}

// Welcome returns the welcome text
func (c *Control) Welcome() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.welcome
}

// SetWelcome changes the welcome text
func (c *Control) SetWelcome(text string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.welcome = text
	return c.settings.SaveWelcome(text)
}

// Suffix returns the text appended to every outbound message
func (c *Control) Suffix() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.suffix
}

// SetSuffix changes the appended suffix text; an empty string removes it
func (c *Control) SetSuffix(text string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.suffix = text
	return c.settings.SaveSuffix(text)
}

// Caption returns the global caption text
func (c *Control) Caption() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.caption
}

// SetCaption changes the global caption text
func (c *Control) SetCaption(text string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.caption = text
	return c.settings.SaveCaption(text)
}

// Decorate appends the global caption and suffix to an outbound message body
func (c *Control) Decorate(body string) string {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.caption != "" {
		body += "\n" + c.caption
	}
	if c.suffix != "" {
		body += "\n" + c.suffix
	}
	return body
}

// Broadcast delivers a message to every known requester, swallowing
// individual delivery failures so one unreachable user cannot abort the
// broadcast. Returns the number of successful deliveries.
func (c *Control) Broadcast(send func(id int64) error) int {
	delivered := 0
	for _, id := range c.KnownRequesters() {
		if err := send(id); err == nil {
			delivered++
		}
	}
	return delivered
}

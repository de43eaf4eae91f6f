package bot

import (
	"sync"
	"time"
)

// stage of a user's wallet-request conversation
type stage string

const (
	stageAwaitingCount stage = "awaiting_count"
	stageAwaitingRef   stage = "awaiting_ref"
)

// conversation tracks one user's progress through the request dialog
type conversation struct {
	stage   stage
	count   int
	touched time.Time
}

// conversations is a TTL-bounded store of in-flight dialogs. Expiry is
// checked lazily on access so an abandoned dialog simply restarts from
// /start instead of resuming stale state.
type conversations struct {
	mu    sync.Mutex
	ttl   time.Duration
	byID  map[int64]*conversation
	clock func() time.Time
}

func newConversations(ttl time.Duration) *conversations {
	return &conversations{
		ttl:   ttl,
		byID:  make(map[int64]*conversation),
		clock: time.Now,
	}
}

// begin starts (or restarts) a dialog at the count prompt
func (c *conversations) begin(id int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.byID[id] = &conversation{stage: stageAwaitingCount, touched: c.clock()}
}

// get returns the live dialog for id, or nil when none exists or the
// previous one has expired
func (c *conversations) get(id int64) *conversation {
	c.mu.Lock()
	defer c.mu.Unlock()
	conv, ok := c.byID[id]
	if !ok {
		return nil
	}
	if c.ttl > 0 && c.clock().Sub(conv.touched) > c.ttl {
		delete(c.byID, id)
		return nil
	}
	conv.touched = c.clock()
	return conv
}

// advance moves the dialog to the referral prompt, keeping the count
func (c *conversations) advance(id int64, count int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if conv, ok := c.byID[id]; ok {
		conv.stage = stageAwaitingRef
		conv.count = count
		conv.touched = c.clock()
	}
}

// end discards the dialog, typically because the batch has been handed off
func (c *conversations) end(id int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.byID, id)
}

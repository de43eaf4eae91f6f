package store

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"

	"github.com/wallet-refbot/internal/logging"
	"github.com/wallet-refbot/internal/types"
)

// Ledger persists the append-only list of successfully created wallets, one
// JSON array file per requester. Appends are whole-file read-modify-write;
// the mutex keeps concurrent batches from corrupting a file.
type Ledger struct {
	dir string
	mu  sync.Mutex
}

// NewLedger creates a ledger rooted at dir
func NewLedger(dir string) *Ledger {
	return &Ledger{dir: dir}
}

// Path returns the ledger file for a requester
func (l *Ledger) Path(requesterID int64) string {
	return filepath.Join(l.dir, fmt.Sprintf("wallet_%d.json", requesterID))
}

// Read returns the requester's persisted wallets. A missing file yields an
// empty ledger.
func (l *Ledger) Read(requesterID int64) ([]types.WalletRecord, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.read(requesterID)
}

func (l *Ledger) read(requesterID int64) ([]types.WalletRecord, error) {
	var records []types.WalletRecord
	if err := loadJSON(l.Path(requesterID), &records); err != nil {
		return nil, err
	}
	return records, nil
}

// Append adds a record to the requester's ledger. An unreadable existing
// file is reported and treated as empty rather than blocking persistence of
// the new record.
func (l *Ledger) Append(ctx context.Context, requesterID int64, record types.WalletRecord) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	records, err := l.read(requesterID)
	if err != nil {
		logging.FromContext(ctx).WithError(err).Warn("Ledger file unreadable, starting fresh")
		records = nil
	}

	records = append(records, record)
	return saveJSON(l.Path(requesterID), records)
}

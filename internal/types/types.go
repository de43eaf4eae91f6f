// Package types provides common type definitions for the wallet referral bot.
package types

import "time"

// WalletOutcomeKind classifies the result of a single wallet pipeline run
type WalletOutcomeKind string

const (
	// OutcomeSuccess represents a wallet that logged in and finished the pipeline
	OutcomeSuccess WalletOutcomeKind = "success"
	// OutcomeConflict represents a login rejected with HTTP 409 (bad referral code)
	OutcomeConflict WalletOutcomeKind = "conflict"
	// OutcomeCancelled represents a run stopped at a cancellation checkpoint
	OutcomeCancelled WalletOutcomeKind = "cancelled"
	// OutcomeFailure represents a non-retryable login failure
	OutcomeFailure WalletOutcomeKind = "failure"
)

// WalletRecord is the unit persisted to a requester's ledger after a
// successful login. Immutable once created.
type WalletRecord struct {
	Address          string `json:"address"`
	PrivateKey       string `json:"privateKey"`
	Username         string `json:"username"`
	AccessToken      string `json:"accessToken"`
	ChallengeMessage string `json:"message"`
	Signature        string `json:"signature"`
}

// WalletOutcome is the tagged result of one WalletJob run
type WalletOutcome struct {
	Kind   WalletOutcomeKind
	Record *WalletRecord // set only when Kind == OutcomeSuccess
	Err    error         // set when Kind == OutcomeFailure
}

// JobRequest describes one user request for a batch of wallets
type JobRequest struct {
	ID           string `json:"id"`
	RequesterID  int64  `json:"requesterId"`
	WalletCount  int    `json:"walletCount"`
	ReferralCode string `json:"referralCode"`
}

// BatchOutcome summarizes one completed (or aborted) batch
type BatchOutcome struct {
	SuccessCount    int  `json:"successCount"`
	Cancelled       bool `json:"cancelled"`
	RefCodeRejected bool `json:"refCodeRejected"`
	QuotaExceeded   bool `json:"quotaExceeded"`
}

// UsageRecord tracks how many wallet slots a requester consumed today.
// Count resets whenever Date differs from the current calendar date.
type UsageRecord struct {
	Date  string `json:"date"` // YYYY-MM-DD
	Count int    `json:"count"`
}

// Stats holds process-wide aggregate counters
type Stats struct {
	TotalUsers          int `json:"totalUsers"`
	TotalWalletRequests int `json:"totalWalletRequests"`
}

// AccountInfo is the best-effort scoreboard snapshot fetched after the
// pipeline finishes
type AccountInfo struct {
	Nickname string  `json:"nickname"`
	Balance  float64 `json:"balance"`
	Rank     int     `json:"rank"`
}

// LoginChallenge is the response of the login-request endpoint
type LoginChallenge struct {
	Token   string `json:"token"`
	Message string `json:"message"`
}

// Today formats t as the calendar date used by usage bookkeeping
func Today(t time.Time) string {
	return t.Format("2006-01-02")
}

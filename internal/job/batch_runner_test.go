package job

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wallet-refbot/internal/admin"
	"github.com/wallet-refbot/internal/airdrop"
	errs "github.com/wallet-refbot/internal/errors"
	"github.com/wallet-refbot/internal/store"
	"github.com/wallet-refbot/internal/types"
)

const testReferralCode = "ABCDEFGHIJKLMNO" // 15 characters

type fakeAPI struct {
	mu         sync.Mutex
	loginCalls int
	// login decides the result of the nth login call (1-based)
	login func(call int) (string, error)
}

func (f *fakeAPI) LoginRequest(ctx context.Context, address string) (*types.LoginChallenge, error) {
	return &types.LoginChallenge{Token: "challenge-token", Message: "login challenge"}, nil
}

func (f *fakeAPI) Login(ctx context.Context, address, message, token, signature, referralCode string) (string, error) {
	f.mu.Lock()
	f.loginCalls++
	call := f.loginCalls
	f.mu.Unlock()
	if f.login != nil {
		return f.login(call)
	}
	return fmt.Sprintf("access-token-%d", call), nil
}

func (f *fakeAPI) SetNickname(ctx context.Context, accessToken, nickname string) error { return nil }
func (f *fakeAPI) ClaimDailyReward(ctx context.Context, accessToken string) error      { return nil }
func (f *fakeAPI) ClaimMissionReward(ctx context.Context, accessToken, rewardID string) error {
	return nil
}
func (f *fakeAPI) CompleteImageMission(ctx context.Context, accessToken string, mission airdrop.Mission) error {
	return nil
}
func (f *fakeAPI) AccountInfo(ctx context.Context, accessToken string) (*types.AccountInfo, error) {
	return &types.AccountInfo{Nickname: "tester", Balance: 10, Rank: 1}, nil
}

func (f *fakeAPI) logins() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.loginCalls
}

type fakeReporter struct {
	mu        sync.Mutex
	progress  []string
	successes []string
	delivered []string
	// onSuccess fires after each success report, used to inject
	// cancellation mid-batch
	onSuccess func(n int)
}

func (r *fakeReporter) Progress(requesterID int64, text string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.progress = append(r.progress, text)
}

func (r *fakeReporter) Success(requesterID int64, header, body string) {
	r.mu.Lock()
	r.successes = append(r.successes, body)
	n := len(r.successes)
	hook := r.onSuccess
	r.mu.Unlock()
	if hook != nil {
		hook(n)
	}
}

func (r *fakeReporter) DeliverLedger(requesterID int64, path string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.delivered = append(r.delivered, path)
}

func (r *fakeReporter) sawProgress(substr string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.progress {
		if strings.Contains(p, substr) {
			return true
		}
	}
	return false
}

func conflictErr() error {
	return errs.NewServiceError("login", 409, "referral conflict")
}

type batchFixture struct {
	api      *fakeAPI
	reporter *fakeReporter
	ledger   *store.Ledger
	usage    *store.UsageStore
	control  *admin.Control
	runner   *BatchRunner
	now      time.Time
}

func newBatchFixture(t *testing.T, api *fakeAPI) *batchFixture {
	t.Helper()
	dir := t.TempDir()

	usage, err := store.NewUsageStore(dir)
	require.NoError(t, err)
	control, err := admin.NewControl(store.NewSettingsStore(dir), 100, "welcome")
	require.NoError(t, err)

	reporter := &fakeReporter{}
	now := time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)

	runner, err := NewBatchRunner(&BatchRunnerConfig{
		Client:          api,
		Ledger:          store.NewLedger(dir),
		Usage:           usage,
		Control:         control,
		Reporter:        reporter,
		ConflictRetries: 3,
		Now:             func() time.Time { return now },
	})
	require.NoError(t, err)

	return &batchFixture{
		api:      api,
		reporter: reporter,
		ledger:   store.NewLedger(dir),
		usage:    usage,
		control:  control,
		runner:   runner,
		now:      now,
	}
}

func (f *batchFixture) request(t *testing.T, count int) types.JobRequest {
	t.Helper()
	req, err := NewJobRequest(42, count, testReferralCode, f.control.MaxPerDay(), len(testReferralCode))
	require.NoError(t, err)
	return req
}

func TestBatchCreatesRequestedWallets(t *testing.T) {
	f := newBatchFixture(t, &fakeAPI{})

	outcome := f.runner.Run(context.Background(), f.request(t, 3))

	assert.Equal(t, 3, outcome.SuccessCount)
	assert.False(t, outcome.Cancelled)
	assert.False(t, outcome.RefCodeRejected)
	assert.False(t, outcome.QuotaExceeded)

	records, err := f.ledger.Read(42)
	require.NoError(t, err)
	require.Len(t, records, 3)
	for _, rec := range records {
		assert.NotEmpty(t, rec.Address)
		assert.NotEmpty(t, rec.PrivateKey)
		assert.NotEmpty(t, rec.AccessToken)
		assert.NotEmpty(t, rec.Signature)
	}

	assert.Equal(t, 3, f.usage.Today(42, f.now).Count)
	assert.Equal(t, []string{
		"Wallet 1 of 3 created",
		"Wallet 2 of 3 created",
		"Wallet 3 of 3 created",
	}, f.reporter.successes)
	require.Len(t, f.reporter.delivered, 1)
	assert.True(t, f.reporter.sawProgress("Successfully created and processed 3 wallet(s)."))
}

func TestBatchStopsAfterThreeConsecutiveConflicts(t *testing.T) {
	api := &fakeAPI{login: func(int) (string, error) { return "", conflictErr() }}
	f := newBatchFixture(t, api)

	outcome := f.runner.Run(context.Background(), f.request(t, 5))

	assert.True(t, outcome.RefCodeRejected)
	assert.Equal(t, 0, outcome.SuccessCount)
	assert.Equal(t, 3, api.logins(), "exactly three conflict attempts before aborting")
	assert.True(t, f.reporter.sawProgress("Your referral code is wrong"))

	records, err := f.ledger.Read(42)
	require.NoError(t, err)
	assert.Empty(t, records, "no wallet persisted when the referral code is rejected")
	assert.Equal(t, 0, f.usage.Today(42, f.now).Count, "conflicts never consume quota")
}

func TestConflictDoesNotAdvanceSlot(t *testing.T) {
	api := &fakeAPI{login: func(call int) (string, error) {
		if call == 1 {
			return "", conflictErr()
		}
		return fmt.Sprintf("access-token-%d", call), nil
	}}
	f := newBatchFixture(t, api)

	outcome := f.runner.Run(context.Background(), f.request(t, 3))

	assert.Equal(t, 3, outcome.SuccessCount)
	assert.Equal(t, 4, api.logins(), "the conflicted slot is re-attempted, not skipped")
	assert.Equal(t, 3, f.usage.Today(42, f.now).Count)
}

func TestConflictCounterResetsOnSuccess(t *testing.T) {
	// every slot burns two conflicts then succeeds; the bound of three
	// consecutive conflicts is never reached because success resets it
	api := &fakeAPI{login: func(call int) (string, error) {
		if call%3 == 0 {
			return fmt.Sprintf("access-token-%d", call), nil
		}
		return "", conflictErr()
	}}
	f := newBatchFixture(t, api)

	outcome := f.runner.Run(context.Background(), f.request(t, 3))

	assert.Equal(t, 3, outcome.SuccessCount)
	assert.False(t, outcome.RefCodeRejected)
	assert.Equal(t, 9, api.logins())
}

func TestCancellationStopsBetweenWallets(t *testing.T) {
	f := newBatchFixture(t, &fakeAPI{})
	f.reporter.onSuccess = func(n int) {
		if n == 1 {
			f.control.Cancel(42)
		}
	}

	outcome := f.runner.Run(context.Background(), f.request(t, 5))

	assert.True(t, outcome.Cancelled)
	assert.Equal(t, 1, outcome.SuccessCount)
	assert.True(t, f.reporter.sawProgress("Your request has been cancelled by the admin."))

	records, err := f.ledger.Read(42)
	require.NoError(t, err)
	assert.Len(t, records, 1, "work done before cancellation is kept")
	require.Len(t, f.reporter.delivered, 1, "partial ledger is still delivered")
}

func TestQuotaRefusalDoesNoWork(t *testing.T) {
	f := newBatchFixture(t, &fakeAPI{})
	for i := 0; i < 98; i++ {
		require.NoError(t, f.usage.Charge(42, f.now))
	}

	outcome := f.runner.Run(context.Background(), f.request(t, 5))

	assert.True(t, outcome.QuotaExceeded)
	assert.Equal(t, 0, outcome.SuccessCount)
	assert.Equal(t, 0, f.api.logins(), "no wallet attempt when the whole batch cannot fit")
	assert.Equal(t, 98, f.usage.Today(42, f.now).Count, "usage unchanged by a refused batch")
	assert.True(t, f.reporter.sawProgress("Daily wallet creation limit reached. You have already created 98 wallet(s) today. Maximum is 100 per day."))
}

func TestFailedAttemptConsumesSlotAndQuota(t *testing.T) {
	api := &fakeAPI{login: func(call int) (string, error) {
		if call == 1 {
			return "", errs.NewServiceError("login", 500, "server error")
		}
		return fmt.Sprintf("access-token-%d", call), nil
	}}
	f := newBatchFixture(t, api)

	outcome := f.runner.Run(context.Background(), f.request(t, 3))

	assert.Equal(t, 2, outcome.SuccessCount)
	assert.Equal(t, 3, api.logins(), "a non-conflict failure moves on to the next slot")
	assert.Equal(t, 3, f.usage.Today(42, f.now).Count, "failed attempts still consume quota")

	records, err := f.ledger.Read(42)
	require.NoError(t, err)
	assert.Len(t, records, 2)
}

func TestNewBatchClearsStaleCancellation(t *testing.T) {
	f := newBatchFixture(t, &fakeAPI{})
	f.control.Cancel(42)

	outcome := f.runner.Run(context.Background(), f.request(t, 2))

	assert.Equal(t, 2, outcome.SuccessCount)
	assert.False(t, outcome.Cancelled, "a cancellation from a previous batch does not carry over")
}

func TestContextCancellationStopsBatch(t *testing.T) {
	f := newBatchFixture(t, &fakeAPI{})
	ctx, cancel := context.WithCancel(context.Background())
	f.reporter.onSuccess = func(n int) {
		if n == 1 {
			cancel()
		}
	}

	outcome := f.runner.Run(ctx, f.request(t, 5))

	assert.True(t, outcome.Cancelled)
	assert.Equal(t, 1, outcome.SuccessCount)
}

func TestNewBatchRunnerValidation(t *testing.T) {
	dir := t.TempDir()
	usage, err := store.NewUsageStore(dir)
	require.NoError(t, err)
	control, err := admin.NewControl(store.NewSettingsStore(dir), 100, "welcome")
	require.NoError(t, err)

	cfg := &BatchRunnerConfig{
		Client:   &fakeAPI{},
		Ledger:   store.NewLedger(dir),
		Usage:    usage,
		Control:  control,
		Reporter: &fakeReporter{},
	}

	_, err = NewBatchRunner(cfg)
	assert.NoError(t, err)

	broken := *cfg
	broken.Client = nil
	_, err = NewBatchRunner(&broken)
	assert.Error(t, err)

	broken = *cfg
	broken.Reporter = nil
	_, err = NewBatchRunner(&broken)
	assert.Error(t, err)
}

func TestNewJobRequest(t *testing.T) {
	req, err := NewJobRequest(7, 5, testReferralCode, 100, 15)
	require.NoError(t, err)
	assert.NotEmpty(t, req.ID)
	assert.Equal(t, int64(7), req.RequesterID)
	assert.Equal(t, 5, req.WalletCount)
	assert.Equal(t, testReferralCode, req.ReferralCode)

	other, err := NewJobRequest(7, 5, testReferralCode, 100, 15)
	require.NoError(t, err)
	assert.NotEqual(t, req.ID, other.ID)

	_, err = NewJobRequest(7, 0, testReferralCode, 100, 15)
	assert.Error(t, err, "count must be positive")

	_, err = NewJobRequest(7, 101, testReferralCode, 100, 15)
	assert.Error(t, err, "count cannot exceed the daily maximum")

	_, err = NewJobRequest(7, 5, "tooshort", 100, 15)
	assert.Error(t, err, "referral code length is fixed")
}

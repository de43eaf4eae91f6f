package job

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/wallet-refbot/internal/admin"
	"github.com/wallet-refbot/internal/logging"
	"github.com/wallet-refbot/internal/pace"
	"github.com/wallet-refbot/internal/retry"
	"github.com/wallet-refbot/internal/store"
	"github.com/wallet-refbot/internal/types"
)

var errConflict = errors.New("referral code conflict")
var errCancelled = errors.New("batch cancelled by admin")

const cancelledMessage = "Your request has been cancelled by the admin."

// BatchRunnerConfig holds the collaborators of a batch runner
type BatchRunnerConfig struct {
	Client          AirdropAPI
	Pacer           *pace.Pacer
	Ledger          *store.Ledger
	Usage           *store.UsageStore
	Control         *admin.Control
	Reporter        Reporter
	ConflictRetries int           // consecutive referral conflicts tolerated before aborting
	RetryDelay      time.Duration // wait between conflict retries of the same slot
	Now             func() time.Time
}

// BatchRunner executes one user's wallet batch sequentially
type BatchRunner struct {
	client          AirdropAPI
	pacer           *pace.Pacer
	ledger          *store.Ledger
	usage           *store.UsageStore
	control         *admin.Control
	reporter        Reporter
	conflictRetries int
	retryDelay      time.Duration
	now             func() time.Time
}

// NewBatchRunner creates a batch runner
func NewBatchRunner(cfg *BatchRunnerConfig) (*BatchRunner, error) {
	if cfg.Client == nil {
		return nil, fmt.Errorf("airdrop client cannot be nil")
	}
	if cfg.Ledger == nil {
		return nil, fmt.Errorf("ledger cannot be nil")
	}
	if cfg.Usage == nil {
		return nil, fmt.Errorf("usage store cannot be nil")
	}
	if cfg.Control == nil {
		return nil, fmt.Errorf("admin control cannot be nil")
	}
	if cfg.Reporter == nil {
		return nil, fmt.Errorf("reporter cannot be nil")
	}

	pacer := cfg.Pacer
	if pacer == nil {
		pacer = pace.NewPacer(0, 0)
	}
	conflictRetries := cfg.ConflictRetries
	if conflictRetries <= 0 {
		conflictRetries = 3
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}

	return &BatchRunner{
		client:          cfg.Client,
		pacer:           pacer,
		ledger:          cfg.Ledger,
		usage:           cfg.Usage,
		control:         cfg.Control,
		reporter:        cfg.Reporter,
		conflictRetries: conflictRetries,
		retryDelay:      cfg.RetryDelay,
		now:             now,
	}, nil
}

// Run executes the batch. The daily quota is a hard precondition checked
// once before any work; a stale cancellation flag from an earlier batch is
// cleared so it cannot block this one. Partial results are always persisted
// and the ledger file is delivered even when the batch stops early.
func (r *BatchRunner) Run(ctx context.Context, req types.JobRequest) types.BatchOutcome {
	requesterID := req.RequesterID
	logger := logging.FromContext(ctx).WithFields(map[string]interface{}{
		"jobId":     req.ID,
		"requester": requesterID,
	})
	ctx = logging.WithLogger(ctx, logger)

	r.control.ClearCancel(requesterID)

	usage := r.usage.Today(requesterID, r.now())
	maxPerDay := r.control.MaxPerDay()
	if usage.Count+req.WalletCount > maxPerDay {
		logger.WithFields(map[string]interface{}{
			"usedToday": usage.Count,
			"requested": req.WalletCount,
			"maxPerDay": maxPerDay,
		}).Warn("Daily quota would be exceeded, refusing batch")
		r.reporter.Progress(requesterID, fmt.Sprintf(
			"Daily wallet creation limit reached. You have already created %d wallet(s) today. Maximum is %d per day.",
			usage.Count, maxPerDay))
		return types.BatchOutcome{QuotaExceeded: true}
	}

	if err := r.control.AddWalletRequests(req.WalletCount); err != nil {
		logger.WithError(err).Warn("Failed to persist stats")
	}

	outcome := types.BatchOutcome{}
	conflicts := 0

	for i := 0; i < req.WalletCount; i++ {
		if r.control.IsCancelled(requesterID) {
			r.reporter.Progress(requesterID, cancelledMessage)
			outcome.Cancelled = true
			break
		}

		attempt := r.runSlot(ctx, req, conflicts)

		switch attempt.status {
		case retry.StatusSuccess:
			conflicts = 0
			if err := r.ledger.Append(ctx, requesterID, *attempt.record); err != nil {
				logger.WithError(err).Error("Failed to persist wallet record")
				r.reporter.Progress(requesterID, fmt.Sprintf("Error saving wallet: %v", err))
			}
			if err := r.usage.Charge(requesterID, r.now()); err != nil {
				logger.WithError(err).Warn("Failed to persist usage")
			}
			outcome.SuccessCount++
			r.reporter.Success(requesterID, "✅️ Successful ✅️",
				fmt.Sprintf("Wallet %d of %d created", i+1, req.WalletCount))

		case retry.StatusExhausted:
			conflicts = r.conflictRetries
			logger.WithField("conflicts", conflicts).Warn("Referral code rejected repeatedly, aborting batch")
			r.reporter.Progress(requesterID, "Your referral code is wrong")
			outcome.RefCodeRejected = true

		case retry.StatusCancelled:
			outcome.Cancelled = true

		case retry.StatusFailed:
			// conflicts that preceded the terminal error still count toward
			// the consecutive-conflict bound
			conflicts += attempt.conflicts
			if errors.Is(attempt.err, errCancelled) {
				r.reporter.Progress(requesterID, cancelledMessage)
				outcome.Cancelled = true
				break
			}
			// a failed attempt consumes its slot and its quota charge
			if err := r.usage.Charge(requesterID, r.now()); err != nil {
				logger.WithError(err).Warn("Failed to persist usage")
			}
		}

		if outcome.Cancelled || outcome.RefCodeRejected {
			break
		}

		if err := r.pacer.WalletWait(ctx); err != nil {
			outcome.Cancelled = true
			break
		}
	}

	logger.WithFields(map[string]interface{}{
		"successes": outcome.SuccessCount,
		"cancelled": outcome.Cancelled,
		"rejected":  outcome.RefCodeRejected,
	}).Info("Batch finished")

	r.reporter.Progress(requesterID, fmt.Sprintf(
		"Successfully created and processed %d wallet(s).", outcome.SuccessCount))
	r.reporter.DeliverLedger(requesterID, r.ledger.Path(requesterID))

	return outcome
}

// slotResult folds the retry result for one wallet slot
type slotResult struct {
	status    retry.Status
	record    *types.WalletRecord
	conflicts int // conflicts consumed before a non-conflict terminal state
	err       error
}

// runSlot attempts one wallet, retrying referral conflicts within the
// remaining consecutive-conflict budget. The slot index never advances on a
// conflict; the retry combinator owns that bookkeeping.
func (r *BatchRunner) runSlot(ctx context.Context, req types.JobRequest, conflictsSoFar int) slotResult {
	requesterID := req.RequesterID
	cancelled := func() bool { return r.control.IsCancelled(requesterID) }

	var last types.WalletOutcome
	result := retry.Do(ctx, retry.Config{
		MaxAttempts: r.conflictRetries - conflictsSoFar,
		Delay:       r.retryDelay,
		IsRetryable: func(err error) bool { return errors.Is(err, errConflict) },
	}, func(ctx context.Context, attempt int) error {
		if attempt > 1 && cancelled() {
			last = types.WalletOutcome{Kind: types.OutcomeCancelled}
			return errCancelled
		}

		job := NewWalletJob(r.client, r.pacer, r.reporter, requesterID, cancelled)
		last = job.Run(ctx, req.ReferralCode)

		switch last.Kind {
		case types.OutcomeSuccess:
			return nil
		case types.OutcomeConflict:
			return fmt.Errorf("%w: %v", errConflict, last.Err)
		case types.OutcomeCancelled:
			return errCancelled
		default:
			if last.Err != nil {
				return last.Err
			}
			return fmt.Errorf("wallet attempt failed")
		}
	})

	return slotResult{
		status:    result.Status,
		record:    last.Record,
		conflicts: result.Attempts - 1,
		err:       result.Err,
	}
}

package job

import (
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/wallet-refbot/internal/types"
)

// NewJobRequest validates batch parameters and stamps the request with a
// fresh id. The count bound uses the current per-day maximum so a single
// batch can never be larger than a whole day's allowance.
func NewJobRequest(requesterID int64, walletCount int, referralCode string, maxPerDay, refCodeLen int) (types.JobRequest, error) {
	if walletCount <= 0 {
		return types.JobRequest{}, fmt.Errorf("wallet count must be positive, got %d", walletCount)
	}
	if walletCount > maxPerDay {
		return types.JobRequest{}, fmt.Errorf("wallet count %d exceeds the daily maximum of %d", walletCount, maxPerDay)
	}
	code := strings.TrimSpace(referralCode)
	if len(code) != refCodeLen {
		return types.JobRequest{}, fmt.Errorf("referral code must be exactly %d characters, got %d", refCodeLen, len(code))
	}

	return types.JobRequest{
		ID:           uuid.NewString(),
		RequesterID:  requesterID,
		WalletCount:  walletCount,
		ReferralCode: code,
	}, nil
}

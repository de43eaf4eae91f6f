// Package job drives the wallet-provisioning pipeline: a WalletJob takes one
// fresh wallet through login, missions, and rewards, and a BatchRunner
// repeats that for a user's requested wallet count under the daily quota,
// with bounded retry on referral conflicts and cooperative cancellation.
package job

import (
	"context"
	"fmt"

	"github.com/wallet-refbot/internal/airdrop"
	errs "github.com/wallet-refbot/internal/errors"
	"github.com/wallet-refbot/internal/identity"
	"github.com/wallet-refbot/internal/logging"
	"github.com/wallet-refbot/internal/pace"
	"github.com/wallet-refbot/internal/types"
)

// AirdropAPI is the slice of the airdrop client the pipeline needs
type AirdropAPI interface {
	LoginRequest(ctx context.Context, address string) (*types.LoginChallenge, error)
	Login(ctx context.Context, address, message, token, signature, referralCode string) (string, error)
	SetNickname(ctx context.Context, accessToken, nickname string) error
	ClaimDailyReward(ctx context.Context, accessToken string) error
	ClaimMissionReward(ctx context.Context, accessToken, rewardID string) error
	CompleteImageMission(ctx context.Context, accessToken string, mission airdrop.Mission) error
	AccountInfo(ctx context.Context, accessToken string) (*types.AccountInfo, error)
}

// Reporter streams human-readable progress back to the requester and
// delivers the finished ledger file. Implementations must tolerate being
// called from the batch goroutine.
type Reporter interface {
	Progress(requesterID int64, text string)
	Success(requesterID int64, header, body string)
	DeliverLedger(requesterID int64, path string)
}

// WalletJob runs one wallet through the provisioning pipeline
type WalletJob struct {
	client      AirdropAPI
	pacer       *pace.Pacer
	reporter    Reporter
	requesterID int64
	cancelled   func() bool

	// overridable for tests
	generate func() (*identity.Wallet, error)
}

// NewWalletJob creates a job for one wallet attempt
func NewWalletJob(client AirdropAPI, pacer *pace.Pacer, reporter Reporter, requesterID int64, cancelled func() bool) *WalletJob {
	return &WalletJob{
		client:      client,
		pacer:       pacer,
		reporter:    reporter,
		requesterID: requesterID,
		cancelled:   cancelled,
		generate:    identity.Generate,
	}
}

// Run drives the pipeline: generate identity, sign the login challenge, log
// in with the referral code, then best-effort nickname, daily reward, image
// missions, mission rewards, and account info. Only the login step
// distinguishes a referral conflict (retryable by the caller) from other
// errors; every post-login step is tolerant of failure.
func (j *WalletJob) Run(ctx context.Context, referralCode string) types.WalletOutcome {
	logger := logging.FromContext(ctx)

	// the single cancellation checkpoint inside one wallet's pipeline
	if j.cancelled() {
		return types.WalletOutcome{Kind: types.OutcomeCancelled}
	}

	wallet, err := j.generate()
	if err != nil {
		logger.WithError(err).Error("Failed to generate wallet")
		j.reporter.Progress(j.requesterID, fmt.Sprintf("Error creating wallet: %v", err))
		return types.WalletOutcome{Kind: types.OutcomeFailure, Err: err}
	}
	address := wallet.Address()

	j.reporter.Progress(j.requesterID, fmt.Sprintf("Requesting login for address: %s", address))
	challenge, err := j.client.LoginRequest(ctx, address)
	if err != nil {
		logger.WithError(err).Error("Login challenge request failed")
		j.reporter.Progress(j.requesterID, fmt.Sprintf("Error creating wallet: %v", err))
		return types.WalletOutcome{Kind: types.OutcomeFailure, Err: err}
	}

	j.reporter.Progress(j.requesterID, fmt.Sprintf("Signing message for wallet %s", address))
	signature, err := wallet.SignMessage(challenge.Message)
	if err != nil {
		logger.WithError(err).Error("Failed to sign login challenge")
		j.reporter.Progress(j.requesterID, fmt.Sprintf("Error creating wallet: %v", err))
		return types.WalletOutcome{Kind: types.OutcomeFailure, Err: err}
	}

	accessToken, err := j.client.Login(ctx, address, challenge.Message, challenge.Token, signature, referralCode)
	if err != nil {
		if errs.IsConflict(err) {
			j.reporter.Progress(j.requesterID, "Error creating wallet: request failed with status code 409")
			return types.WalletOutcome{Kind: types.OutcomeConflict, Err: err}
		}
		logger.WithError(err).Error("Login failed")
		j.reporter.Progress(j.requesterID, fmt.Sprintf("Error creating wallet: %v", err))
		return types.WalletOutcome{Kind: types.OutcomeFailure, Err: err}
	}

	nickname := airdrop.RandomNickname()
	if err := j.client.SetNickname(ctx, accessToken, nickname); err != nil {
		// nickname failures never abort a logged-in wallet
		logger.WithError(err).Warn("Failed to set nickname")
	}
	j.reporter.Progress(j.requesterID, fmt.Sprintf("Wallet created - Address: %s, Username: %s", address, nickname))

	j.runMissions(ctx, accessToken)

	return types.WalletOutcome{
		Kind: types.OutcomeSuccess,
		Record: &types.WalletRecord{
			Address:          address,
			PrivateKey:       wallet.PrivateKeyHex(),
			Username:         nickname,
			AccessToken:      accessToken,
			ChallengeMessage: challenge.Message,
			Signature:        signature,
		},
	}
}

// runMissions performs the fire-and-forget portion of the pipeline. Steps
// are strictly sequential with a pacing gap between them; each tolerates
// its own failure.
func (j *WalletJob) runMissions(ctx context.Context, accessToken string) {
	logger := logging.FromContext(ctx)

	j.reporter.Progress(j.requesterID, "Claiming daily reward...")
	if err := j.client.ClaimDailyReward(ctx, accessToken); err != nil {
		logger.WithError(err).Warn("Daily reward claim failed")
		j.reporter.Progress(j.requesterID, fmt.Sprintf("Error claiming daily reward: %v", err))
	} else {
		j.reporter.Progress(j.requesterID, "Daily reward claimed successfully")
	}

	for _, mission := range airdrop.ImageMissions() {
		if err := j.pacer.StepWait(ctx); err != nil {
			return
		}
		j.reporter.Progress(j.requesterID, fmt.Sprintf("Completing mission %s...", mission.Kind))
		if err := j.client.CompleteImageMission(ctx, accessToken, mission); err != nil {
			logger.WithError(err).WithField("mission", mission.Kind).Warn("Image mission failed")
			j.reporter.Progress(j.requesterID, fmt.Sprintf("Error completing %s mission: %v", mission.Kind, err))
			continue
		}
		j.reporter.Progress(j.requesterID, fmt.Sprintf("Mission %s completed successfully", mission.Kind))
	}

	for _, rewardID := range airdrop.MissionRewardIDs() {
		if err := j.pacer.StepWait(ctx); err != nil {
			return
		}
		j.reporter.Progress(j.requesterID, fmt.Sprintf("Claiming mission reward %s...", rewardID))
		if err := j.client.ClaimMissionReward(ctx, accessToken, rewardID); err != nil {
			logger.WithError(err).WithField("reward", rewardID).Warn("Mission reward claim failed")
			j.reporter.Progress(j.requesterID, fmt.Sprintf("Error claiming mission reward %s: %v", rewardID, err))
			continue
		}
		j.reporter.Progress(j.requesterID, fmt.Sprintf("Mission reward %s claimed successfully", rewardID))
	}

	if err := j.pacer.StepWait(ctx); err != nil {
		return
	}
	info, err := j.client.AccountInfo(ctx, accessToken)
	if err != nil {
		logger.WithError(err).Warn("Account info fetch failed")
		j.reporter.Progress(j.requesterID, fmt.Sprintf("Error fetching account info: %v", err))
		return
	}
	j.reporter.Progress(j.requesterID, fmt.Sprintf("Account Info:\nNickname: %s\nBalance: %v\nRank: %d", info.Nickname, info.Balance, info.Rank))
}

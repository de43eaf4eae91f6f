// Package pace enforces the request pacing policy toward the remote airdrop
// service. Calls are deliberately serialized with fixed gaps instead of
// parallelized; the gaps are the throttle that keeps wallets from tripping
// the service's rate limits.
package pace

import (
	"context"
	"time"

	"golang.org/x/time/rate"
)

// Pacer spaces out pipeline steps within a wallet and wallets within a batch
type Pacer struct {
	step   *rate.Limiter
	wallet *rate.Limiter
}

// NewPacer creates a pacer with the given gaps. A non-positive gap disables
// that control.
func NewPacer(stepGap, walletGap time.Duration) *Pacer {
	p := &Pacer{}
	if stepGap > 0 {
		p.step = rate.NewLimiter(rate.Every(stepGap), 1)
	}
	if walletGap > 0 {
		p.wallet = rate.NewLimiter(rate.Every(walletGap), 1)
	}
	return p
}

// StepWait blocks until the next pipeline step may proceed
func (p *Pacer) StepWait(ctx context.Context) error {
	return wait(ctx, p.step)
}

// WalletWait blocks until the next wallet attempt may proceed
func (p *Pacer) WalletWait(ctx context.Context) error {
	return wait(ctx, p.wallet)
}

func wait(ctx context.Context, limiter *rate.Limiter) error {
	if limiter == nil {
		return nil
	}
	return limiter.Wait(ctx)
}

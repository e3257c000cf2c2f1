// Package scheduler executes armed retirement triggers. Triggers are stored
// with deterministic identifiers, so re-arming replaces a pending trigger;
// the runner guarantees at-least-once execution at or after the requested
// delay, which retirement's per-account idempotency absorbs.
package scheduler

import (
	"context"
	"log"
	"time"

	"github.com/communis/ledger/internal/ledger/domain"
	"github.com/communis/ledger/internal/ledger/service"
	"github.com/communis/ledger/internal/ledger/storage"
	"github.com/communis/ledger/internal/platform/requestctx"
)

// Retirer executes one retirement sweep.
type Retirer interface {
	Retire(ctx context.Context, req service.RetireRequest) error
}

// TriggerStore reads and deletes armed triggers.
type TriggerStore interface {
	DueTriggers(ctx context.Context, now time.Time, limit int) ([]domain.RetirementTrigger, error)
	Transact(ctx context.Context, fn func(ctx context.Context, tx storage.Tx) error) error
}

// Runner polls for due triggers and executes them as privileged
// invocations. A trigger is deleted only after its sweep succeeds; failed
// sweeps leave the trigger due and it is retried on the next poll.
type Runner struct {
	store    TriggerStore
	retirer  Retirer
	interval time.Duration
	batch    int
	now      func() time.Time
}

// NewRunner wires a trigger runner. Interval defaults to one minute and
// batch to 100.
func NewRunner(store TriggerStore, retirer Retirer, interval time.Duration, batch int) *Runner {
	if interval <= 0 {
		interval = time.Minute
	}
	if batch <= 0 {
		batch = 100
	}
	return &Runner{
		store:    store,
		retirer:  retirer,
		interval: interval,
		batch:    batch,
		now:      time.Now,
	}
}

// Run polls until ctx is canceled.
func (r *Runner) Run(ctx context.Context) error {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := r.Sweep(ctx); err != nil {
				log.Printf("trigger sweep failed: %v", err)
			}
		}
	}
}

// Sweep executes every currently due trigger once.
func (r *Runner) Sweep(ctx context.Context) error {
	triggers, err := r.store.DueTriggers(ctx, r.now(), r.batch)
	if err != nil {
		return err
	}

	for _, trigger := range triggers {
		err := r.retirer.Retire(requestctx.WithPrivileged(ctx), service.RetireRequest{
			Currency: trigger.Symbol,
			UserType: trigger.UserType,
			Memo:     trigger.Memo,
		})
		if err != nil {
			log.Printf("retire %s %s failed: %v", trigger.Symbol.Code, trigger.UserType, err)
			continue
		}

		err = r.store.Transact(ctx, func(ctx context.Context, tx storage.Tx) error {
			return tx.DeleteTrigger(ctx, trigger.ID)
		})
		if err != nil {
			log.Printf("delete trigger %s failed: %v", trigger.ID, err)
		}
	}
	return nil
}

package uow

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"

	postgres "github.com/fianchetto/clubtix/internal/repository/postgres"
)

const maxAttempts = 3

// AfterCommit is a hook that runs after a successful commit. Hooks never run
// on rollback, so cache invalidation and notifications registered through
// after() cannot leak state from an aborted transaction.
type AfterCommit func(ctx context.Context)

// UoW runs a closure inside one transaction and collects after-commit hooks.
// Serialization failures are retried with a short backoff before giving up.
type UoW struct {
	store *postgres.Store
}

func NewUoW(store *postgres.Store) *UoW {
	return &UoW{store: store}
}

func (u *UoW) Do(
	ctx context.Context,
	fn func(ctx context.Context, tx postgres.DB, after func(AfterCommit)) error,
) error {
	return u.DoWithOpts(ctx, nil, fn)
}

func (u *UoW) DoWithOpts(
	ctx context.Context,
	opts *pgx.TxOptions,
	fn func(ctx context.Context, tx postgres.DB, after func(AfterCommit)) error,
) error {
	var err error

	for attempt := 0; attempt < maxAttempts; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(time.Duration(attempt) * 20 * time.Millisecond):
			}
		}

		var hooks []AfterCommit

		err = u.store.RunTx(ctx, opts, func(ctx context.Context, tx postgres.DB) error {
			return fn(ctx, tx, func(h AfterCommit) {
				hooks = append(hooks, h)
			})
		})
		if err == nil {
			for _, h := range hooks {
				h(ctx)
			}
			return nil
		}
		if !postgres.IsRetryable(err) {
			return err
		}
	}

	return err
}

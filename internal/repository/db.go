package repository

import (
	"context"
	"errors"
	"net"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
)

// ErrNotFound is returned when a referenced row does not exist
var ErrNotFound = errors.New("not found")

// ErrDuplicate is returned when an insert hits a unique constraint
var ErrDuplicate = errors.New("duplicate")

const (
	opTimeout     = 5 * time.Second
	retryAttempts = 3
	retryBackoff  = 100 * time.Millisecond
)

// opContext bounds a single database operation. Callers hold the
// request context; this adds the per-statement deadline on top.
func opContext(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, opTimeout)
}

// isUniqueViolation reports whether err is a Postgres unique_violation
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

// isTransient reports whether the error is worth retrying: connection
// problems and statements pgx marks as safe to retry. Constraint and
// syntax errors are never transient.
func isTransient(err error) bool {
	if err == nil {
		return false
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}
	if pgconn.SafeToRetry(err) {
		return true
	}
	var connErr *pgconn.ConnectError
	return errors.As(err, &connErr)
}

// withRetry runs fn with a bounded retry on transient failures.
// Only read or idempotent operations should go through here.
func withRetry(ctx context.Context, fn func(ctx context.Context) error) error {
	var err error
	for attempt := 0; attempt < retryAttempts; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(retryBackoff * time.Duration(attempt)):
			}
		}
		opCtx, cancel := opContext(ctx)
		err = fn(opCtx)
		cancel()
		if err == nil || !isTransient(err) {
			return err
		}
	}
	return err
}

package recordstore

import (
	"context"
	"errors"

	"achivo/internal/domain/apperror"

	"github.com/jackc/pgx/v5/pgconn"
)

type errorClass int

const (
	classFatal errorClass = iota
	classTransient
	classTokenExpired
)

func (c errorClass) String() string {
	switch c {
	case classTransient:
		return "transient"
	case classTokenExpired:
		return "token_expired"
	default:
		return "fatal"
	}
}

func classify(err error) errorClass {
	switch {
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return classFatal
	case apperror.IsTokenExpired(err):
		return classTokenExpired
	case pgconn.SafeToRetry(err):
		return classTransient
	default:
		return classFatal
	}
}

// retrier replays an operation up to budget extra times. Token-expired failures
// call refresh before the replay; when refresh is nil or fails, the original
// error is returned.
type retrier struct {
	budget  int
	refresh func(ctx context.Context) error
	onRetry func(class errorClass)
	onFail  func(class errorClass, err error)
}

func (r retrier) run(ctx context.Context, op func(ctx context.Context) error) error {
	for attempt := 0; ; attempt++ {
		err := op(ctx)
		if err == nil {
			return nil
		}

		class := classify(err)
		if attempt >= r.budget || ctx.Err() != nil || class == classFatal {
			return err
		}

		if class == classTokenExpired {
			if r.refresh == nil {
				return err
			}
			if refreshErr := r.refresh(ctx); refreshErr != nil {
				if r.onFail != nil {
					r.onFail(class, refreshErr)
				}
				return err
			}
		}

		if r.onRetry != nil {
			r.onRetry(class)
		}
	}
}

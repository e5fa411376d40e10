package recordstore

import (
	"context"
	"errors"
	"testing"

	"achivo/internal/domain/apperror"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errExpired = &apperror.DatabaseError{Code: apperror.CodeInvalidToken, Message: "JWT expired"}

type safeToRetryErr struct{}

func (safeToRetryErr) Error() string     { return "connection refused" }
func (safeToRetryErr) SafeToRetry() bool { return true }

func TestRetrier_RefreshesOnceOnExpiredToken(t *testing.T) {
	calls, refreshes := 0, 0
	r := retrier{
		budget: 1,
		refresh: func(ctx context.Context) error {
			refreshes++
			return nil
		},
	}

	err := r.run(context.Background(), func(ctx context.Context) error {
		calls++
		if calls == 1 {
			return errExpired
		}
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 2, calls)
	assert.Equal(t, 1, refreshes)
}

func TestRetrier_BudgetExhausted(t *testing.T) {
	calls := 0
	r := retrier{
		budget:  1,
		refresh: func(ctx context.Context) error { return nil },
	}

	err := r.run(context.Background(), func(ctx context.Context) error {
		calls++
		return errExpired
	})

	require.Error(t, err)
	assert.True(t, apperror.IsTokenExpired(err))
	assert.Equal(t, 2, calls)
}

func TestRetrier_RefreshFailureReturnsOriginalError(t *testing.T) {
	calls := 0
	var failed errorClass = -1
	r := retrier{
		budget:  3,
		refresh: func(ctx context.Context) error { return errors.New("refresh token revoked") },
		onFail:  func(class errorClass, err error) { failed = class },
	}

	err := r.run(context.Background(), func(ctx context.Context) error {
		calls++
		return errExpired
	})

	assert.Same(t, errExpired, err)
	assert.Equal(t, 1, calls)
	assert.Equal(t, classTokenExpired, failed)
}

func TestRetrier_TransientReplayedWithoutRefresh(t *testing.T) {
	calls := 0
	var retried []errorClass
	r := retrier{
		budget:  2,
		refresh: func(ctx context.Context) error { t.Fatal("refresh must not be called"); return nil },
		onRetry: func(class errorClass) { retried = append(retried, class) },
	}

	err := r.run(context.Background(), func(ctx context.Context) error {
		calls++
		if calls < 3 {
			return &apperror.DatabaseError{Message: "dial failed", Err: safeToRetryErr{}}
		}
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 3, calls)
	assert.Equal(t, []errorClass{classTransient, classTransient}, retried)
}

func TestRetrier_FatalNotReplayed(t *testing.T) {
	calls := 0
	r := retrier{budget: 5}
	fatal := &apperror.DatabaseError{Code: "23503", Message: "violates foreign key constraint"}

	err := r.run(context.Background(), func(ctx context.Context) error {
		calls++
		return fatal
	})

	assert.Same(t, fatal, err)
	assert.Equal(t, 1, calls)
}

func TestRetrier_ZeroBudget(t *testing.T) {
	calls := 0
	r := retrier{budget: 0, refresh: func(ctx context.Context) error { return nil }}

	err := r.run(context.Background(), func(ctx context.Context) error {
		calls++
		return errExpired
	})

	require.Error(t, err)
	assert.Equal(t, 1, calls)
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want errorClass
	}{
		{"expired token", errExpired, classTokenExpired},
		{"safe to retry", safeToRetryErr{}, classTransient},
		{"deadline", context.DeadlineExceeded, classFatal},
		{"plain", errors.New("boom"), classFatal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, classify(tt.err))
		})
	}
}

package cron

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type countingSweeper struct {
	calls   atomic.Int32
	maxIdle atomic.Int64
}

func (c *countingSweeper) Sweep(maxIdle time.Duration) int {
	c.calls.Add(1)
	c.maxIdle.Store(int64(maxIdle))
	return 1
}

func TestVisitorSweeper_RunsOnSchedule(t *testing.T) {
	target := &countingSweeper{}
	s := NewVisitorSweeper(target, time.Second, 5*time.Minute, zap.NewNop())

	require.NoError(t, s.Start())
	assert.Eventually(t, func() bool { return target.calls.Load() > 0 }, 3*time.Second, 50*time.Millisecond)
	s.Stop()

	assert.Equal(t, int64(5*time.Minute), target.maxIdle.Load())
}

func TestVisitorSweeper_SweepDirect(t *testing.T) {
	target := &countingSweeper{}
	s := NewVisitorSweeper(target, time.Minute, time.Minute, zap.NewNop())

	s.sweep()

	assert.Equal(t, int32(1), target.calls.Load())
}

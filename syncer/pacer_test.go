package syncer

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestIntervalPacerEnforcesMinimumSpacing(t *testing.T) {
	pacer := NewIntervalPacer(30 * time.Millisecond)
	ctx := context.Background()

	pacer.Wait(ctx) // first call never blocks
	start := time.Now()
	pacer.Wait(ctx)
	elapsed := time.Since(start)

	assert.GreaterOrEqual(t, elapsed, 25*time.Millisecond)
}

func TestIntervalPacerFirstCallDoesNotBlock(t *testing.T) {
	pacer := NewIntervalPacer(time.Hour)

	start := time.Now()
	pacer.Wait(context.Background())

	assert.Less(t, time.Since(start), time.Second)
}

func TestIntervalPacerStopsWaitingOnCancel(t *testing.T) {
	pacer := NewIntervalPacer(time.Hour)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	pacer.Wait(ctx)
	start := time.Now()
	pacer.Wait(ctx) // cancelled context, returns immediately

	assert.Less(t, time.Since(start), time.Second)
}

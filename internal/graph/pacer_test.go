package graph

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestPacerSpacesWrites(t *testing.T) {
	t.Parallel()

	pacer := NewPacer(20 * time.Millisecond)
	ctx := context.Background()

	start := time.Now()
	for i := 0; i < 3; i++ {
		require.NoError(t, pacer.Wait(ctx))
	}
	require.GreaterOrEqual(t, time.Since(start), 35*time.Millisecond)
}

func TestPacerZeroDelayIsUnpaced(t *testing.T) {
	t.Parallel()

	pacer := NewPacer(0)
	for i := 0; i < 100; i++ {
		require.NoError(t, pacer.Wait(context.Background()))
	}

	var nilPacer *Pacer
	require.NoError(t, nilPacer.Wait(context.Background()))
}

func TestPacerHonoursCancellation(t *testing.T) {
	t.Parallel()

	pacer := NewPacer(time.Hour)
	require.NoError(t, pacer.Wait(context.Background()))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.Error(t, pacer.Wait(ctx))
}

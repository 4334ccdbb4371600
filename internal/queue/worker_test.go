package queue

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRetryWorkerResolvesOnSuccessfulFlag(t *testing.T) {
	q := openTestQueue(t)
	require.NoError(t, q.Enqueue(11, []byte(`{"order_id":11}`)))

	var flagged []int64
	w := NewRetryWorker(zerolog.Nop(), q, func(ctx context.Context, orderID int64) error {
		flagged = append(flagged, orderID)
		return nil
	})

	require.True(t, w.cycle(context.Background()))

	assert.Equal(t, []int64{11}, flagged)
	n, err := q.PendingCount()
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestRetryWorkerKeepsEntryOnFailure(t *testing.T) {
	q := openTestQueue(t)
	require.NoError(t, q.Enqueue(11, []byte(`{"order_id":11}`)))

	w := NewRetryWorker(zerolog.Nop(), q, func(ctx context.Context, orderID int64) error {
		return errors.New("db indisponível")
	})
	w.idleSleep = time.Millisecond

	require.True(t, w.cycle(context.Background()))
	require.True(t, w.cycle(context.Background()))

	rows, err := q.DrainBatch(10)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, 2, rows[0].Attempts)
}

func TestRetryWorkerFlagsOnlyDoesNotTouchFiles(t *testing.T) {
	// retry ponawia wyłącznie oflagowanie: flag dostaje order_id, nigdy
	// nie dostaje ładunku do ponownego zapisu pliku
	q := openTestQueue(t)
	require.NoError(t, q.Enqueue(5, []byte(`{"order_id":5,"items":[]}`)))

	calls := 0
	w := NewRetryWorker(zerolog.Nop(), q, func(ctx context.Context, orderID int64) error {
		calls++
		assert.Equal(t, int64(5), orderID)
		return nil
	})
	require.True(t, w.cycle(context.Background()))
	assert.Equal(t, 1, calls)
}

func TestRetryWorkerBacksOffWhenWholeBatchFails(t *testing.T) {
	q := openTestQueue(t)
	require.NoError(t, q.Enqueue(1, []byte(`{"order_id":1}`)))
	require.NoError(t, q.Enqueue(2, []byte(`{"order_id":2}`)))

	// zero sukcesów w partii: cykl kwituje to odczekaniem, żeby nie
	// młócić w ciasnej pętli przy leżącej bazie
	w := NewRetryWorker(zerolog.Nop(), q, func(ctx context.Context, orderID int64) error {
		return errors.New("db indisponível")
	})
	w.idleSleep = 50 * time.Millisecond

	start := time.Now()
	require.True(t, w.cycle(context.Background()))
	assert.GreaterOrEqual(t, time.Since(start), w.idleSleep)

	// częściowy sukces nie wymusza odczekania
	w2 := NewRetryWorker(zerolog.Nop(), q, func(ctx context.Context, orderID int64) error {
		if orderID == 1 {
			return nil
		}
		return errors.New("db indisponível")
	})
	w2.idleSleep = time.Second

	start = time.Now()
	require.True(t, w2.cycle(context.Background()))
	assert.Less(t, time.Since(start), w2.idleSleep)
}

func TestRetryWorkerStopsOnCancelledContext(t *testing.T) {
	q := openTestQueue(t)
	w := NewRetryWorker(zerolog.Nop(), q, func(ctx context.Context, orderID int64) error {
		return nil
	})
	w.idleSleep = time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.False(t, w.cycle(ctx))
}

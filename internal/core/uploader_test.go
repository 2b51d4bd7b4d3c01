package core

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type progressCall struct{ inserted, total int }

func newTestUploader(store OrderStore) (*Uploader, *[]time.Duration) {
	var pauses []time.Duration
	u := NewUploader(store)
	u.sleep = func(_ context.Context, d time.Duration) { pauses = append(pauses, d) }
	return u, &pauses
}

func TestUploader_Replace_Batches(t *testing.T) {
	store := &fakeOrderStore{}
	u, pauses := newTestUploader(store)

	var progress []progressCall
	n, err := u.Replace(context.Background(), makeRecords(250), func(inserted, total int) {
		progress = append(progress, progressCall{inserted, total})
	})

	require.NoError(t, err)
	assert.Equal(t, 250, n)
	assert.Equal(t, []int{100, 100, 50}, store.batchSizes())
	assert.Equal(t, []string{"truncate", "insert", "insert", "insert"}, store.callLog())
	assert.Equal(t, []progressCall{{0, 250}, {100, 250}, {200, 250}, {250, 250}}, progress)
	assert.Len(t, *pauses, 3)
	assert.Equal(t, DefaultBatchPause, (*pauses)[0])
}

func TestUploader_Replace_BatchOrder(t *testing.T) {
	store := &fakeOrderStore{}
	u, _ := newTestUploader(store)
	u.BatchSize = 3

	records := makeRecords(7)
	_, err := u.Replace(context.Background(), records, nil)
	require.NoError(t, err)

	assert.Equal(t, records, store.rows)
}

func TestUploader_Replace_SecondBatchFails(t *testing.T) {
	boom := errors.New("insert otc_orders: connection reset by peer")
	store := &fakeOrderStore{insertErrs: map[int]error{1: boom}}
	u, _ := newTestUploader(store)

	n, err := u.Replace(context.Background(), makeRecords(250), nil)

	require.Error(t, err)
	assert.Equal(t, 100, n)
	assert.Len(t, store.rows, 100)
	assert.Equal(t, []int{100, 100}, store.batchSizes(), "no third batch may be attempted")
	assert.Contains(t, err.Error(), "100 records imported before error")
	assert.ErrorIs(t, err, boom)

	var be *BatchError
	require.ErrorAs(t, err, &be)
	assert.Equal(t, 100, be.Imported)
	assert.Equal(t, 250, be.Total)
}

func TestUploader_Replace_TruncateFallsBackToDelete(t *testing.T) {
	store := &fakeOrderStore{truncateErr: errors.New("function truncate_otc_orders_restart_identity() does not exist")}
	u, _ := newTestUploader(store)

	n, err := u.Replace(context.Background(), makeRecords(5), nil)
	require.NoError(t, err)
	assert.Equal(t, 5, n)
	assert.Equal(t, []string{"truncate", "delete", "insert"}, store.callLog())
}

func TestUploader_Replace_DeleteFails(t *testing.T) {
	deleteErr := errors.New("permission denied for table otc_orders")
	store := &fakeOrderStore{
		truncateErr: errors.New("truncate failed"),
		deleteErr:   deleteErr,
	}
	u, _ := newTestUploader(store)

	n, err := u.Replace(context.Background(), makeRecords(5), nil)
	assert.Zero(t, n)
	assert.ErrorIs(t, err, deleteErr)
	assert.Equal(t, "IMP003", MapError(err).Code)
	assert.Empty(t, store.batchSizes(), "nothing may be inserted")
}

func TestUploader_Replace_EmptyInput(t *testing.T) {
	store := &fakeOrderStore{}
	u, _ := newTestUploader(store)

	n, err := u.Replace(context.Background(), nil, nil)
	assert.Zero(t, n)
	assert.ErrorIs(t, err, ErrNoValidRows)
	assert.Empty(t, store.callLog(), "no deletion may happen")
}

func TestUploader_Pause(t *testing.T) {
	u := &Uploader{BatchPause: time.Hour}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	start := time.Now()
	u.pause(ctx)
	assert.Less(t, time.Since(start), time.Second, "pause must end with the context")

	u.BatchPause = 0
	u.pause(context.Background())
}

package jobs_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vytor/studyflash/internal/jobs"
	"github.com/vytor/studyflash/internal/worker"
)

type recordingRefresher struct {
	calls chan [2]int64
}

func (r *recordingRefresher) RefreshDeckProgress(_ context.Context, profileID, deckID int64) error {
	r.calls <- [2]int64{profileID, deckID}
	return nil
}

func TestWorkerQueue_EnqueueProgressRefresh(t *testing.T) {
	pool := worker.NewPool(1, 4)
	pool.Start(context.Background())
	defer pool.Stop()

	r := &recordingRefresher{calls: make(chan [2]int64, 1)}
	var q jobs.JobQueue = jobs.NewWorkerQueue(pool, r)

	require.NoError(t, q.EnqueueProgressRefresh(3, 11))

	select {
	case call := <-r.calls:
		assert.Equal(t, [2]int64{3, 11}, call)
	case <-time.After(2 * time.Second):
		t.Fatal("refresh job did not run")
	}
}

func TestWorkerQueue_FullQueue(t *testing.T) {
	pool := worker.NewPool(1, 1)
	defer pool.Stop()

	q := jobs.NewWorkerQueue(pool, &recordingRefresher{calls: make(chan [2]int64, 2)})
	require.NoError(t, q.EnqueueProgressRefresh(1, 1))
	assert.ErrorIs(t, q.EnqueueProgressRefresh(1, 2), worker.ErrQueueFull)
}

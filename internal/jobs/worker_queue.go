package jobs

import (
	"github.com/vytor/studyflash/internal/worker"
)

// WorkerQueue implements JobQueue using a worker pool
type WorkerQueue struct {
	progressPool *worker.Pool
	refresher    worker.ProgressRefresher
}

// NewWorkerQueue creates a new WorkerQueue implementation
func NewWorkerQueue(progressPool *worker.Pool, refresher worker.ProgressRefresher) *WorkerQueue {
	return &WorkerQueue{
		progressPool: progressPool,
		refresher:    refresher,
	}
}

func (q *WorkerQueue) EnqueueProgressRefresh(profileID, deckID int64) error {
	return q.progressPool.Submit(&worker.RefreshProgressJob{
		Refresher: q.refresher,
		ProfileID: profileID,
		DeckID:    deckID,
	})
}

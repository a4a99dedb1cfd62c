package jobs

// JobQueue provides an abstraction for enqueueing background jobs
type JobQueue interface {
	EnqueueProgressRefresh(profileID, deckID int64) error
}

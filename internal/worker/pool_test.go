package worker

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type funcJob struct {
	name string
	fn   func(context.Context) error
}

func (j funcJob) Name() string                  { return j.name }
func (j funcJob) Run(ctx context.Context) error { return j.fn(ctx) }

func TestPool_RunsSubmittedJobs(t *testing.T) {
	p := NewPool(3, 10)
	p.Start(context.Background())
	defer p.Stop()

	var wg sync.WaitGroup
	var ran atomic.Int32
	for i := 0; i < 5; i++ {
		wg.Add(1)
		err := p.Submit(funcJob{name: "count", fn: func(context.Context) error {
			defer wg.Done()
			ran.Add(1)
			return nil
		}})
		require.NoError(t, err)
	}
	wg.Wait()
	assert.Equal(t, int32(5), ran.Load())
}

func TestPool_SubmitReturnsErrQueueFull(t *testing.T) {
	// Not started: nothing drains the queue.
	p := NewPool(1, 1)

	require.NoError(t, p.Submit(funcJob{name: "a", fn: func(context.Context) error { return nil }}))
	err := p.Submit(funcJob{name: "b", fn: func(context.Context) error { return nil }})
	assert.ErrorIs(t, err, ErrQueueFull)
	assert.Equal(t, 1, p.QueueSize())

	p.Stop()
}

func TestPool_SubmitAfterStop(t *testing.T) {
	p := NewPool(1, 1)
	p.Start(context.Background())
	p.Stop()
	p.Stop()

	err := p.Submit(funcJob{name: "late", fn: func(context.Context) error { return nil }})
	assert.ErrorIs(t, err, ErrPoolStopped)
}

func TestPool_SurvivesFailingAndPanickingJobs(t *testing.T) {
	p := NewPool(1, 4)
	p.Start(context.Background())
	defer p.Stop()

	done := make(chan struct{})
	require.NoError(t, p.Submit(funcJob{name: "fail", fn: func(context.Context) error { return errors.New("boom") }}))
	require.NoError(t, p.Submit(funcJob{name: "panic", fn: func(context.Context) error { panic("boom") }}))
	require.NoError(t, p.Submit(funcJob{name: "ok", fn: func(context.Context) error {
		close(done)
		return nil
	}}))

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("worker did not survive failing jobs")
	}
}

type stubRefresher struct {
	profileID, deckID int64
	err               error
}

func (r *stubRefresher) RefreshDeckProgress(_ context.Context, profileID, deckID int64) error {
	r.profileID, r.deckID = profileID, deckID
	return r.err
}

func TestRefreshProgressJob(t *testing.T) {
	r := &stubRefresher{}
	job := &RefreshProgressJob{Refresher: r, ProfileID: 7, DeckID: 9}

	assert.Equal(t, "refresh_progress", job.Name())
	require.NoError(t, job.Run(context.Background()))
	assert.Equal(t, int64(7), r.profileID)
	assert.Equal(t, int64(9), r.deckID)

	r.err = errors.New("db down")
	assert.EqualError(t, job.Run(context.Background()), "db down")
}

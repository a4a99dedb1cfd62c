package mocks

import (
	"github.com/stretchr/testify/mock"
)

// MockJobQueue is a mock implementation of jobs.JobQueue
type MockJobQueue struct {
	mock.Mock
}

func (m *MockJobQueue) EnqueueProgressRefresh(profileID, deckID int64) error {
	args := m.Called(profileID, deckID)
	return args.Error(0)
}

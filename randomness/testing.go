package randomness

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MockSource provides a settable randomness source for testing.
//
// By default requests fulfill immediately with the configured next result.
// Disable auto-fulfill to exercise the "numbers not yet drawn" path.
type MockSource struct {
	mu          sync.Mutex
	next        int32
	autoFulfill bool
	requests    map[int64]Request
	pendingID   int64
	latestRound int64
	result      int32
}

// NewMockSource creates an auto-fulfilling source returning MinResult.
func NewMockSource() *MockSource {
	return &MockSource{
		next:        MinResult,
		autoFulfill: true,
		requests:    make(map[int64]Request),
	}
}

// SetNextRandomResult sets the result the next fulfillment yields.
func (m *MockSource) SetNextRandomResult(n int32) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.next = n
}

// SetAutoFulfill toggles immediate fulfillment of requests.
func (m *MockSource) SetAutoFulfill(auto bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.autoFulfill = auto
}

// RequestRandomNumber registers a request for the round.
func (m *MockSource) RequestRandomNumber(ctx context.Context, roundID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.requests[roundID] = Request{
		ID:          uuid.New().String(),
		RoundID:     roundID,
		Status:      StatusPending,
		RequestedAt: time.Now().UTC(),
	}
	m.pendingID = roundID

	if m.autoFulfill {
		return m.fulfillLocked()
	}
	return nil
}

// Fulfill resolves the most recent pending request.
func (m *MockSource) Fulfill() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.fulfillLocked()
}

func (m *MockSource) fulfillLocked() error {
	req, ok := m.requests[m.pendingID]
	if !ok || req.Status != StatusPending {
		return ErrNoPendingRequest
	}

	req.Status = StatusFulfilled
	req.Result = m.next
	req.FulfilledAt = time.Now().UTC()
	m.requests[m.pendingID] = req

	m.latestRound = req.RoundID
	m.result = req.Result
	return nil
}

// LatestRoundID reports the round of the most recently fulfilled request.
func (m *MockSource) LatestRoundID() int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.latestRound
}

// RandomResult returns the most recently fulfilled result.
func (m *MockSource) RandomResult() int32 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.result
}

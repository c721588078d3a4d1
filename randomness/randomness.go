// Package randomness supplies drawn numbers for lottery rounds.
//
// Sources are two-phase: a round close issues a request and returns
// immediately; the draw later checks which round the latest fulfilled request
// belongs to before consuming the result.
package randomness

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Result bounds: a guard digit followed by six significant digits.
const (
	MinResult = 1_000_000
	MaxResult = 1_999_999
)

// Request statuses.
const (
	StatusPending   = "pending"
	StatusFulfilled = "fulfilled"
)

// Errors
var (
	ErrNoPendingRequest = errors.New("no pending request")
	ErrRequestNotFound  = errors.New("request not found")
)

// Request records one randomness request.
type Request struct {
	ID          string
	RoundID     int64
	Status      string
	Result      int32
	RequestedAt time.Time
	FulfilledAt time.Time
}

// SecureSource draws results from crypto/rand. Requests stay pending until
// Fulfill is called, preserving the request/fulfill split the engine expects.
type SecureSource struct {
	mu          sync.Mutex
	requests    map[int64]Request
	pendingID   int64
	latestRound int64
	result      int32
}

// NewSecureSource creates a source with no pending or fulfilled requests.
func NewSecureSource() *SecureSource {
	return &SecureSource{requests: make(map[int64]Request)}
}

// RequestRandomNumber registers a pending request for the round.
func (s *SecureSource) RequestRandomNumber(ctx context.Context, roundID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.requests[roundID] = Request{
		ID:          uuid.New().String(),
		RoundID:     roundID,
		Status:      StatusPending,
		RequestedAt: time.Now().UTC(),
	}
	s.pendingID = roundID
	return nil
}

// Fulfill resolves the most recent pending request with a fresh random result.
func (s *SecureSource) Fulfill() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	req, ok := s.requests[s.pendingID]
	if !ok || req.Status != StatusPending {
		return ErrNoPendingRequest
	}

	n, err := rand.Int(rand.Reader, big.NewInt(MaxResult-MinResult+1))
	if err != nil {
		return fmt.Errorf("draw random number: %w", err)
	}

	req.Status = StatusFulfilled
	req.Result = int32(n.Int64()) + MinResult
	req.FulfilledAt = time.Now().UTC()
	s.requests[s.pendingID] = req

	s.latestRound = req.RoundID
	s.result = req.Result
	return nil
}

// LatestRoundID reports the round of the most recently fulfilled request.
func (s *SecureSource) LatestRoundID() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.latestRound
}

// RandomResult returns the most recently fulfilled result.
func (s *SecureSource) RandomResult() int32 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.result
}

// GetRequest returns the request record for a round.
func (s *SecureSource) GetRequest(roundID int64) (Request, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	req, ok := s.requests[roundID]
	if !ok {
		return Request{}, ErrRequestNotFound
	}
	return req, nil
}

package lottery

import (
	"context"
	"sync"
)

// MemoryStore provides an in-memory implementation of Store for testing and
// single-process deployments.
type MemoryStore struct {
	mu           sync.RWMutex
	rounds       map[int64]Round
	tickets      map[int64]Ticket
	userTickets  map[string]map[int64][]int64 // owner -> round -> ticket ids
	brackets     map[int64]map[uint32]int64   // round -> key -> count
	nextRoundID  int64
	nextTicketID int64
}

// NewMemoryStore creates an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		rounds:      make(map[int64]Round),
		tickets:     make(map[int64]Ticket),
		userTickets: make(map[string]map[int64][]int64),
		brackets:    make(map[int64]map[uint32]int64),
		nextRoundID: 1,
	}
}

// Round operations

func (s *MemoryStore) CreateRound(ctx context.Context, round Round) (Round, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	round.ID = s.nextRoundID
	s.nextRoundID++
	s.rounds[round.ID] = round
	return round, nil
}

func (s *MemoryStore) GetRound(ctx context.Context, roundID int64) (Round, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	round, ok := s.rounds[roundID]
	if !ok {
		return Round{}, ErrRoundNotFound
	}
	return round, nil
}

func (s *MemoryStore) UpdateRound(ctx context.Context, round Round) (Round, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.rounds[round.ID]; !ok {
		return Round{}, ErrRoundNotFound
	}
	s.rounds[round.ID] = round
	return round, nil
}

func (s *MemoryStore) CurrentRoundID(ctx context.Context) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.nextRoundID - 1, nil
}

// Ticket operations

func (s *MemoryStore) CreateTicket(ctx context.Context, roundID int64, ticket Ticket) (Ticket, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ticket.ID = s.nextTicketID
	s.nextTicketID++
	s.tickets[ticket.ID] = ticket

	if s.userTickets[ticket.Owner] == nil {
		s.userTickets[ticket.Owner] = make(map[int64][]int64)
	}
	s.userTickets[ticket.Owner][roundID] = append(s.userTickets[ticket.Owner][roundID], ticket.ID)
	return ticket, nil
}

func (s *MemoryStore) GetTicket(ctx context.Context, ticketID int64) (Ticket, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ticket, ok := s.tickets[ticketID]
	if !ok {
		return Ticket{}, ErrTicketNotFound
	}
	return ticket, nil
}

func (s *MemoryStore) UpdateTicket(ctx context.Context, ticket Ticket) (Ticket, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.tickets[ticket.ID]; !ok {
		return Ticket{}, ErrTicketNotFound
	}
	s.tickets[ticket.ID] = ticket
	return ticket, nil
}

func (s *MemoryStore) CurrentTicketID(ctx context.Context) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.nextTicketID, nil
}

func (s *MemoryStore) TicketIDsForOwner(ctx context.Context, owner string, roundID int64, cursor, size int) ([]int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := s.userTickets[owner][roundID]
	if cursor >= len(ids) {
		return nil, nil
	}
	end := cursor + size
	if end > len(ids) {
		end = len(ids)
	}
	page := make([]int64, end-cursor)
	copy(page, ids[cursor:end])
	return page, nil
}

func (s *MemoryStore) CountTicketsForOwner(ctx context.Context, owner string, roundID int64) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.userTickets[owner][roundID]), nil
}

// Bridge index operations

func (s *MemoryStore) IncrementBracketCounts(ctx context.Context, roundID int64, keys [Brackets]uint32) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.brackets[roundID] == nil {
		s.brackets[roundID] = make(map[uint32]int64)
	}
	for _, key := range keys {
		s.brackets[roundID][key]++
	}
	return nil
}

func (s *MemoryStore) BracketCount(ctx context.Context, roundID int64, key uint32) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.brackets[roundID][key], nil
}

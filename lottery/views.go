package lottery

import "context"

// TicketPage is one page of an owner's tickets within a round, with per-ticket
// claim status and the cursor for the next page.
type TicketPage struct {
	TicketIDs  []int64 `json:"ticket_ids"`
	Numbers    []int32 `json:"numbers"`
	Claimed    []bool  `json:"claimed"`
	NextCursor int     `json:"next_cursor"`
}

// ViewRound returns a round by id.
func (s *Service) ViewRound(ctx context.Context, roundID int64) (Round, error) {
	return s.store.GetRound(ctx, roundID)
}

// ViewCurrentRoundID returns the latest round id, 0 if none exists.
func (s *Service) ViewCurrentRoundID(ctx context.Context) (int64, error) {
	return s.store.CurrentRoundID(ctx)
}

// ViewTicketsForOwner pages through an owner's tickets in a round.
func (s *Service) ViewTicketsForOwner(ctx context.Context, owner string, roundID int64, cursor, size int) (TicketPage, error) {
	if size <= 0 {
		size = 100
	}
	if cursor < 0 {
		cursor = 0
	}

	ids, err := s.store.TicketIDsForOwner(ctx, owner, roundID, cursor, size)
	if err != nil {
		return TicketPage{}, err
	}

	page := TicketPage{
		TicketIDs:  ids,
		Numbers:    make([]int32, 0, len(ids)),
		Claimed:    make([]bool, 0, len(ids)),
		NextCursor: cursor + len(ids),
	}
	for _, id := range ids {
		ticket, err := s.store.GetTicket(ctx, id)
		if err != nil {
			return TicketPage{}, err
		}
		page.Numbers = append(page.Numbers, ticket.Number)
		page.Claimed = append(page.Claimed, ticket.Claimed)
	}
	return page, nil
}

// ViewTicketCountForOwner returns how many tickets an owner holds in a round.
func (s *Service) ViewTicketCountForOwner(ctx context.Context, owner string, roundID int64) (int, error) {
	return s.store.CountTicketsForOwner(ctx, owner, roundID)
}

// ViewNumbersAndStatuses returns the combination and claim status for each
// ticket id.
func (s *Service) ViewNumbersAndStatuses(ctx context.Context, ticketIDs []int64) ([]int32, []bool, error) {
	numbers := make([]int32, 0, len(ticketIDs))
	claimed := make([]bool, 0, len(ticketIDs))
	for _, id := range ticketIDs {
		ticket, err := s.store.GetTicket(ctx, id)
		if err != nil {
			return nil, nil, err
		}
		numbers = append(numbers, ticket.Number)
		claimed = append(claimed, ticket.Claimed)
	}
	return numbers, claimed, nil
}

// ViewRewardsForTicket returns the prize a ticket would earn at a bracket.
// Unlike ClaimTickets this never errors: a wrong phase, range, or bracket
// simply yields 0.
func (s *Service) ViewRewardsForTicket(ctx context.Context, roundID, ticketID int64, bracket int) int64 {
	round, err := s.store.GetRound(ctx, roundID)
	if err != nil || round.Status != StatusClaimable {
		return 0
	}
	if bracket < 0 || bracket >= Brackets {
		return 0
	}
	if ticketID < round.FirstTicketID || ticketID >= round.FirstTicketIDNextRound {
		return 0
	}
	ticket, err := s.store.GetTicket(ctx, ticketID)
	if err != nil {
		return 0
	}
	return rewardForTicket(round, ticket.Number, bracket)
}

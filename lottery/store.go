package lottery

import "context"

// Store defines the persistence interface for lottery state: the round table,
// the ticket table, and the bridge index.
type Store interface {
	// Round operations. CreateRound assigns the next sequential round id,
	// starting at 1.
	CreateRound(ctx context.Context, round Round) (Round, error)
	GetRound(ctx context.Context, roundID int64) (Round, error)
	UpdateRound(ctx context.Context, round Round) (Round, error)
	// CurrentRoundID returns the latest round id, 0 if no round exists.
	CurrentRoundID(ctx context.Context) (int64, error)

	// Ticket operations. CreateTicket assigns the next global ticket id,
	// starting at 0; ids are never reused.
	CreateTicket(ctx context.Context, roundID int64, ticket Ticket) (Ticket, error)
	GetTicket(ctx context.Context, ticketID int64) (Ticket, error)
	UpdateTicket(ctx context.Context, ticket Ticket) (Ticket, error)
	// CurrentTicketID returns the id the next created ticket will receive.
	CurrentTicketID(ctx context.Context) (int64, error)
	// TicketIDsForOwner pages through an owner's ticket ids within a round.
	TicketIDsForOwner(ctx context.Context, owner string, roundID int64, cursor, size int) ([]int64, error)
	// CountTicketsForOwner returns how many tickets the owner holds in a round.
	CountTicketsForOwner(ctx context.Context, owner string, roundID int64) (int, error)

	// Bridge index operations. Counts are per round, keyed by bracketKey.
	IncrementBracketCounts(ctx context.Context, roundID int64, keys [Brackets]uint32) error
	BracketCount(ctx context.Context, roundID int64, key uint32) (int64, error)
}

// RandomSource is the two-phase randomness collaborator. A round close calls
// RequestRandomNumber; the draw consumes RandomResult only after
// LatestRoundID confirms the fulfillment belongs to that round.
type RandomSource interface {
	RequestRandomNumber(ctx context.Context, roundID int64) error
	LatestRoundID() int64
	RandomResult() int32
}

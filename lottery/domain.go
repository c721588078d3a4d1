// Package lottery implements a recurring number-matching lottery over a
// fungible-token pool: players buy tickets carrying six-digit combinations,
// a random winning combination is drawn at round close, and prize pools are
// split across brackets of trailing-digit match quality.
package lottery

import "time"

// Status represents the lifecycle state of a lottery round.
type Status string

const (
	StatusPending   Status = "pending"
	StatusOpen      Status = "open"
	StatusClosed    Status = "closed"
	StatusClaimable Status = "claimable"
)

// Brackets is the number of prize brackets. Bracket 0 matches the last digit,
// bracket 5 the full six-digit combination.
const Brackets = 6

// Ticket numbers carry a leading guard digit followed by six significant
// digits, so the valid range is [1000000, 1999999].
const (
	MinTicketNumber int32 = 1_000_000
	MaxTicketNumber int32 = 1_999_999
)

// TotalBasisPoints is the denominator for rewards breakdown and treasury fee.
const TotalBasisPoints int64 = 10_000

// Round represents one lottery round.
type Round struct {
	ID              int64     `json:"id"`
	Status          Status    `json:"status"`
	StartTime       time.Time `json:"start_time"`
	EndTime         time.Time `json:"end_time"`
	TicketPrice     int64     `json:"ticket_price"`
	DiscountDivisor int64     `json:"discount_divisor"`

	// RewardsBreakdown allocates the shareable pool across brackets, in basis
	// points summing to TotalBasisPoints. Index 5 is the jackpot.
	RewardsBreakdown [Brackets]int64 `json:"rewards_breakdown"`
	TreasuryFeeBps   int64           `json:"treasury_fee_bps"`

	// Tickets sold in this round occupy the half-open id range
	// [FirstTicketID, FirstTicketIDNextRound).
	FirstTicketID          int64 `json:"first_ticket_id"`
	FirstTicketIDNextRound int64 `json:"first_ticket_id_next_round"`

	// AmountCollected accumulates ticket sales and injections.
	AmountCollected int64 `json:"amount_collected"`

	// FinalNumber is set once the round becomes claimable.
	FinalNumber int32 `json:"final_number"`

	// Populated at the closed-to-claimable transition, immutable afterward.
	TokenPerBracket        [Brackets]int64 `json:"token_per_bracket"`
	CountWinnersPerBracket [Brackets]int64 `json:"count_winners_per_bracket"`
}

// Ticket represents one purchased ticket. The owning round is the one whose
// ticket-id range contains ID.
type Ticket struct {
	ID      int64  `json:"id"`
	Owner   string `json:"owner"`
	Number  int32  `json:"number"`
	Claimed bool   `json:"claimed"`
}

// Roles holds the privileged identities checked by guarded operations.
type Roles struct {
	Owner    string
	Operator string
	Treasury string
	Injector string
}

// StartParams carries the operator-supplied parameters for a new round.
type StartParams struct {
	EndTime          time.Time
	TicketPrice      int64
	DiscountDivisor  int64
	RewardsBreakdown [Brackets]int64
	TreasuryFeeBps   int64
}

// validNumber reports whether n is a well-formed ticket number.
func validNumber(n int32) bool {
	return n >= MinTicketNumber && n <= MaxTicketNumber
}

package lottery

import "errors"

// Authorization errors.
var (
	ErrNotOwner           = errors.New("not owner")
	ErrNotOperator        = errors.New("not operator")
	ErrNotOwnerOrInjector = errors.New("not owner or injector")
)

// Validation errors.
var (
	ErrNoTickets            = errors.New("no tickets")
	ErrTooManyTickets       = errors.New("too many tickets")
	ErrInvalidTicketNumber  = errors.New("invalid ticket number")
	ErrNotSameLength        = errors.New("ticket ids and brackets not same length")
	ErrBracketOutOfRange    = errors.New("bracket out of range")
	ErrBulkExceedsDivisor   = errors.New("bulk size exceeds discount divisor")
	ErrDiscountDivisorLow   = errors.New("discount divisor too low")
	ErrTreasuryFeeTooHigh   = errors.New("treasury fee too high")
	ErrRewardsBreakdownSum  = errors.New("rewards breakdown must sum to 10000")
	ErrTicketPriceRange     = errors.New("ticket price out of range")
	ErrRoundLengthRange     = errors.New("round length out of range")
	ErrInvalidMaxTickets    = errors.New("invalid max tickets per call")
	ErrInvalidOperator      = errors.New("invalid operator address")
	ErrInvalidTreasury      = errors.New("invalid treasury address")
	ErrInvalidInjector      = errors.New("invalid injector address")
	ErrInvalidRandomSource  = errors.New("invalid random source")
	ErrCannotRecoverPayment = errors.New("cannot recover payment token")
	ErrInvalidAmount        = errors.New("invalid amount")
	ErrInvalidIdentity      = errors.New("invalid identity")
)

// Lifecycle errors.
var (
	ErrRoundNotFound     = errors.New("round not found")
	ErrRoundNotOpen      = errors.New("round not open")
	ErrRoundNotClosed    = errors.New("round not closed")
	ErrRoundNotClaimable = errors.New("round not claimable")
	ErrRoundOver         = errors.New("round is over")
	ErrRoundNotOver      = errors.New("round not over")
	ErrPreviousNotDone   = errors.New("previous round not claimable")
)

// Consistency errors.
var (
	ErrNumbersNotDrawn     = errors.New("final numbers not yet drawn")
	ErrTicketNotFound      = errors.New("ticket not found")
	ErrTicketTooLow        = errors.New("ticket id too low for round")
	ErrTicketTooHigh       = errors.New("ticket id too high for round")
	ErrNoPrizeForBracket   = errors.New("no prize for this bracket")
	ErrBracketMustBeHigher = errors.New("bracket must be higher")
)

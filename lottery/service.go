package lottery

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/R3E-Network/delott/internal/config"
	"github.com/R3E-Network/delott/pkg/logger"
	"github.com/R3E-Network/delott/pkg/metrics"
	"github.com/R3E-Network/delott/token"
)

// Service owns all mutable lottery state and drives the round lifecycle.
// Operations are serialized: each call runs to completion under the service
// lock, and token transfers that pay out happen only after internal state for
// the call is finalized.
type Service struct {
	mu sync.Mutex

	store  Store
	tok    token.Ledger
	random RandomSource
	log    *logger.Logger
	stats  *metrics.Registry

	cfg   config.Config
	roles Roles

	maxTicketsPerCall int

	// pendingInjectionNextRound carries an auto-injected treasury remainder
	// into the next round's starting pool.
	pendingInjectionNextRound int64

	now func() time.Time
}

// New constructs a lottery service. The owner identity controls role and
// configuration changes.
func New(cfg config.Config, owner string, store Store, tok token.Ledger, random RandomSource, log *logger.Logger) *Service {
	if log == nil {
		log = logger.NewDefault("lottery")
	}
	return &Service{
		store:             store,
		tok:               tok,
		random:            random,
		log:               log,
		cfg:               cfg,
		roles:             Roles{Owner: owner},
		maxTicketsPerCall: cfg.MaxTicketsPerCall,
		now:               time.Now,
	}
}

// WithMetrics sets the counter registry.
func (s *Service) WithMetrics(stats *metrics.Registry) {
	s.stats = stats
}

// WithClock overrides the time source. Intended for tests.
func (s *Service) WithClock(now func() time.Time) {
	if now != nil {
		s.now = now
	}
}

// Roles returns the current role assignments.
func (s *Service) Roles() Roles {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.roles
}

// SetRoles assigns the operator, treasury, and injector identities.
func (s *Service) SetRoles(caller, operator, treasury, injector string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if caller == "" || caller != s.roles.Owner {
		return ErrNotOwner
	}
	if operator == "" {
		return ErrInvalidOperator
	}
	if treasury == "" {
		return ErrInvalidTreasury
	}
	if injector == "" {
		return ErrInvalidInjector
	}

	s.roles.Operator = operator
	s.roles.Treasury = treasury
	s.roles.Injector = injector

	s.log.WithField("operator", operator).
		WithField("treasury", treasury).
		WithField("injector", injector).
		Info("roles updated")
	return nil
}

// SetMaxTicketsPerCall changes the bulk buy/claim cap.
func (s *Service) SetMaxTicketsPerCall(caller string, n int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if caller == "" || caller != s.roles.Owner {
		return ErrNotOwner
	}
	if n <= 0 {
		return ErrInvalidMaxTickets
	}
	s.maxTicketsPerCall = n
	s.log.WithField("max_tickets", n).Info("max tickets per call updated")
	return nil
}

// SetRandomSource swaps the randomness collaborator. Only allowed between
// rounds, so an in-flight request can never be answered by a different source.
func (s *Service) SetRandomSource(ctx context.Context, caller string, src RandomSource) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if caller == "" || caller != s.roles.Owner {
		return ErrNotOwner
	}
	if src == nil {
		return ErrInvalidRandomSource
	}

	currentID, err := s.store.CurrentRoundID(ctx)
	if err != nil {
		return fmt.Errorf("current round: %w", err)
	}
	if currentID != 0 {
		round, err := s.store.GetRound(ctx, currentID)
		if err != nil {
			return fmt.Errorf("get round: %w", err)
		}
		if round.Status != StatusClaimable {
			return ErrRoundNotClaimable
		}
	}

	s.random = src
	s.log.Info("random source changed")
	return nil
}

// StartRound opens a new round. The previous round, if any, must be claimable.
func (s *Service) StartRound(ctx context.Context, operator string, p StartParams) (Round, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if operator == "" || operator != s.roles.Operator {
		return Round{}, ErrNotOperator
	}

	currentID, err := s.store.CurrentRoundID(ctx)
	if err != nil {
		return Round{}, fmt.Errorf("current round: %w", err)
	}
	if currentID != 0 {
		prev, err := s.store.GetRound(ctx, currentID)
		if err != nil {
			return Round{}, fmt.Errorf("get round: %w", err)
		}
		if prev.Status != StatusClaimable {
			return Round{}, ErrPreviousNotDone
		}
	}

	now := s.now()
	length := p.EndTime.Sub(now)
	if length < s.cfg.MinRoundLength || length > s.cfg.MaxRoundLength {
		return Round{}, ErrRoundLengthRange
	}
	if p.TicketPrice < s.cfg.MinTicketPrice || p.TicketPrice > s.cfg.MaxTicketPrice {
		return Round{}, ErrTicketPriceRange
	}
	if p.DiscountDivisor < s.cfg.MinDiscountDivisor {
		return Round{}, ErrDiscountDivisorLow
	}
	if p.TreasuryFeeBps < 0 || p.TreasuryFeeBps > s.cfg.MaxTreasuryFeeBps {
		return Round{}, ErrTreasuryFeeTooHigh
	}
	var sum int64
	for _, bps := range p.RewardsBreakdown {
		if bps < 0 {
			return Round{}, ErrRewardsBreakdownSum
		}
		sum += bps
	}
	if sum != TotalBasisPoints {
		return Round{}, ErrRewardsBreakdownSum
	}

	firstTicketID, err := s.store.CurrentTicketID(ctx)
	if err != nil {
		return Round{}, fmt.Errorf("current ticket id: %w", err)
	}

	round := Round{
		Status:           StatusOpen,
		StartTime:        now,
		EndTime:          p.EndTime,
		TicketPrice:      p.TicketPrice,
		DiscountDivisor:  p.DiscountDivisor,
		RewardsBreakdown: p.RewardsBreakdown,
		TreasuryFeeBps:   p.TreasuryFeeBps,
		FirstTicketID:    firstTicketID,
		AmountCollected:  s.pendingInjectionNextRound,
	}
	created, err := s.store.CreateRound(ctx, round)
	if err != nil {
		return Round{}, fmt.Errorf("create round: %w", err)
	}
	s.pendingInjectionNextRound = 0

	s.log.WithField("round_id", created.ID).
		WithField("end_time", created.EndTime).
		WithField("ticket_price", created.TicketPrice).
		WithField("injected_seed", created.AmountCollected).
		Info("round opened")
	s.stats.IncrementCounter("lottery_rounds_started_total", nil)

	return created, nil
}

// BuyTickets purchases tickets for a round. Returns the assigned ticket ids
// in purchase order; ids are dense and contiguous per call.
func (s *Service) BuyTickets(ctx context.Context, buyer string, roundID int64, numbers []int32) ([]int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	// The empty string marks consumed tickets and unset roles, so it can
	// never act as a buyer.
	if buyer == "" {
		return nil, ErrInvalidIdentity
	}
	if len(numbers) == 0 {
		return nil, ErrNoTickets
	}
	if len(numbers) > s.maxTicketsPerCall {
		return nil, ErrTooManyTickets
	}
	for _, n := range numbers {
		if !validNumber(n) {
			return nil, ErrInvalidTicketNumber
		}
	}

	round, err := s.store.GetRound(ctx, roundID)
	if err != nil {
		return nil, err
	}
	if round.Status != StatusOpen {
		return nil, ErrRoundNotOpen
	}
	if !s.now().Before(round.EndTime) {
		return nil, ErrRoundOver
	}

	cost, err := CalculateTotalPrice(round.DiscountDivisor, round.TicketPrice, len(numbers))
	if err != nil {
		return nil, err
	}

	if err := s.tok.TransferFrom(ctx, s.cfg.PoolAccount, buyer, s.cfg.PoolAccount, cost); err != nil {
		return nil, fmt.Errorf("debit buyer: %w", err)
	}

	ids := make([]int64, 0, len(numbers))
	for _, n := range numbers {
		created, err := s.store.CreateTicket(ctx, roundID, Ticket{Owner: buyer, Number: n})
		if err != nil {
			return nil, fmt.Errorf("create ticket: %w", err)
		}
		if err := s.store.IncrementBracketCounts(ctx, roundID, ticketKeys(n)); err != nil {
			return nil, fmt.Errorf("index ticket: %w", err)
		}
		ids = append(ids, created.ID)
	}

	round.AmountCollected += cost
	if _, err := s.store.UpdateRound(ctx, round); err != nil {
		return nil, fmt.Errorf("update round: %w", err)
	}

	s.log.WithField("buyer", buyer).
		WithField("round_id", roundID).
		WithField("ticket_count", len(numbers)).
		WithField("cost", cost).
		Info("tickets purchased")
	s.stats.IncrementCounter("lottery_tickets_sold_total", map[string]string{"round_id": fmt.Sprint(roundID)})

	return ids, nil
}

// InjectFunds tops up an open round's pool from the owner or injector.
func (s *Service) InjectFunds(ctx context.Context, from string, roundID int64, amount int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if from == "" || (from != s.roles.Owner && from != s.roles.Injector) {
		return ErrNotOwnerOrInjector
	}
	if amount <= 0 {
		return ErrInvalidAmount
	}

	round, err := s.store.GetRound(ctx, roundID)
	if err != nil {
		return err
	}
	if round.Status != StatusOpen {
		return ErrRoundNotOpen
	}

	if err := s.tok.TransferFrom(ctx, s.cfg.PoolAccount, from, s.cfg.PoolAccount, amount); err != nil {
		return fmt.Errorf("debit injector: %w", err)
	}

	round.AmountCollected += amount
	if _, err := s.store.UpdateRound(ctx, round); err != nil {
		return fmt.Errorf("update round: %w", err)
	}

	s.log.WithField("round_id", roundID).
		WithField("from", from).
		WithField("amount", amount).
		Info("funds injected")
	s.stats.IncrementCounter("lottery_injections_total", nil)

	return nil
}

// CloseRound freezes ticket sales for a round past its end time and requests
// the round's random number.
func (s *Service) CloseRound(ctx context.Context, operator string, roundID int64) (Round, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if operator == "" || operator != s.roles.Operator {
		return Round{}, ErrNotOperator
	}

	round, err := s.store.GetRound(ctx, roundID)
	if err != nil {
		return Round{}, err
	}
	if round.Status != StatusOpen {
		return Round{}, ErrRoundNotOpen
	}
	if s.now().Before(round.EndTime) {
		return Round{}, ErrRoundNotOver
	}

	nextTicketID, err := s.store.CurrentTicketID(ctx)
	if err != nil {
		return Round{}, fmt.Errorf("current ticket id: %w", err)
	}

	if err := s.random.RequestRandomNumber(ctx, roundID); err != nil {
		return Round{}, fmt.Errorf("request random number: %w", err)
	}

	round.FirstTicketIDNextRound = nextTicketID
	round.Status = StatusClosed
	updated, err := s.store.UpdateRound(ctx, round)
	if err != nil {
		return Round{}, fmt.Errorf("update round: %w", err)
	}

	s.log.WithField("round_id", roundID).
		WithField("first_ticket_id_next_round", nextTicketID).
		Info("round closed")
	s.stats.IncrementCounter("lottery_rounds_closed_total", nil)

	return updated, nil
}

// DrawFinalNumberAndMakeClaimable consumes the round's fulfilled random
// number, splits the pool across brackets, and opens claims.
//
// With autoInjection the treasury remainder seeds the next round instead of
// being paid out.
func (s *Service) DrawFinalNumberAndMakeClaimable(ctx context.Context, operator string, roundID int64, autoInjection bool) (Round, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if operator == "" || operator != s.roles.Operator {
		return Round{}, ErrNotOperator
	}

	round, err := s.store.GetRound(ctx, roundID)
	if err != nil {
		return Round{}, err
	}
	if round.Status != StatusClosed {
		return Round{}, ErrRoundNotClosed
	}
	// Only the most recently fulfilled request may be consumed; anything else
	// is stale or foreign randomness.
	if s.random.LatestRoundID() != roundID {
		return Round{}, ErrNumbersNotDrawn
	}

	finalNumber := s.random.RandomResult()
	if !validNumber(finalNumber) {
		return Round{}, ErrInvalidTicketNumber
	}

	amountToShare := applyBps(round.AmountCollected, TotalBasisPoints-round.TreasuryFeeBps)
	treasuryCarry := round.AmountCollected - amountToShare

	for j := Brackets - 1; j >= 0; j-- {
		count, err := s.store.BracketCount(ctx, roundID, bracketKey(j, finalNumber))
		if err != nil {
			return Round{}, fmt.Errorf("bracket count: %w", err)
		}
		round.CountWinnersPerBracket[j] = count

		switch {
		case count == 0:
			// No winners: the bracket's share rolls to the treasury so funds
			// are never stranded in the pool.
			round.TokenPerBracket[j] = 0
			treasuryCarry += applyBps(amountToShare, round.RewardsBreakdown[j])
		case round.RewardsBreakdown[j] == 0:
			round.TokenPerBracket[j] = 0
		default:
			round.TokenPerBracket[j] = applyBps(amountToShare, round.RewardsBreakdown[j]) / count
		}
	}

	round.FinalNumber = finalNumber
	round.Status = StatusClaimable
	updated, err := s.store.UpdateRound(ctx, round)
	if err != nil {
		return Round{}, fmt.Errorf("update round: %w", err)
	}

	if autoInjection {
		s.pendingInjectionNextRound = treasuryCarry
	} else if treasuryCarry > 0 {
		if err := s.tok.Transfer(ctx, s.cfg.PoolAccount, s.roles.Treasury, treasuryCarry); err != nil {
			return Round{}, fmt.Errorf("pay treasury: %w", err)
		}
	}

	s.log.WithField("round_id", roundID).
		WithField("final_number", finalNumber).
		WithField("total_winning_tickets", updated.CountWinnersPerBracket[0]).
		WithField("treasury_carry", treasuryCarry).
		WithField("auto_injection", autoInjection).
		Info("round claimable")
	s.stats.IncrementCounter("lottery_rounds_drawn_total", nil)

	return updated, nil
}

// ClaimTickets pays out prizes for winning tickets. Every (ticketId, bracket)
// pair must validate or the whole call fails with no state change; the payout
// transfer happens once, after all tickets are consumed.
func (s *Service) ClaimTickets(ctx context.Context, claimer string, roundID int64, ticketIDs []int64, brackets []int) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Consumed tickets carry the empty owner, so letting the empty identity
	// claim would pay every already-claimed ticket a second time.
	if claimer == "" {
		return 0, ErrInvalidIdentity
	}
	if len(ticketIDs) != len(brackets) {
		return 0, ErrNotSameLength
	}
	if len(ticketIDs) == 0 {
		return 0, ErrNoTickets
	}
	if len(ticketIDs) > s.maxTicketsPerCall {
		return 0, ErrTooManyTickets
	}

	round, err := s.store.GetRound(ctx, roundID)
	if err != nil {
		return 0, err
	}
	if round.Status != StatusClaimable {
		return 0, ErrRoundNotClaimable
	}

	// Validate every pair before touching any ticket, so a failure partway
	// through cannot leave earlier tickets consumed.
	total := int64(0)
	tickets := make([]Ticket, len(ticketIDs))
	seen := make(map[int64]struct{}, len(ticketIDs))
	for i, ticketID := range ticketIDs {
		bracket := brackets[i]
		if bracket < 0 || bracket >= Brackets {
			return 0, ErrBracketOutOfRange
		}
		if ticketID >= round.FirstTicketIDNextRound {
			return 0, ErrTicketTooHigh
		}
		if ticketID < round.FirstTicketID {
			return 0, ErrTicketTooLow
		}

		ticket, err := s.store.GetTicket(ctx, ticketID)
		if err != nil {
			return 0, err
		}
		// A consumed ticket has no owner, so replays and duplicate ids in one
		// call both surface as ownership failures.
		if _, dup := seen[ticketID]; dup || ticket.Owner != claimer {
			return 0, ErrNotOwner
		}
		seen[ticketID] = struct{}{}

		reward := rewardForTicket(round, ticket.Number, bracket)
		if reward == 0 {
			return 0, ErrNoPrizeForBracket
		}
		if bracket != Brackets-1 && rewardForTicket(round, ticket.Number, bracket+1) != 0 {
			return 0, ErrBracketMustBeHigher
		}

		tickets[i] = ticket
		total += reward
	}

	for _, ticket := range tickets {
		ticket.Owner = ""
		ticket.Claimed = true
		if _, err := s.store.UpdateTicket(ctx, ticket); err != nil {
			return 0, fmt.Errorf("consume ticket: %w", err)
		}
	}

	if err := s.tok.Transfer(ctx, s.cfg.PoolAccount, claimer, total); err != nil {
		return 0, fmt.Errorf("pay claimer: %w", err)
	}

	s.log.WithField("claimer", claimer).
		WithField("round_id", roundID).
		WithField("ticket_count", len(ticketIDs)).
		WithField("amount", total).
		Info("tickets claimed")
	s.stats.IncrementCounter("lottery_prizes_claimed_total", map[string]string{"round_id": fmt.Sprint(roundID)})

	return total, nil
}

// RecoverForeignFunds withdraws tokens sent to the pool by mistake. The
// round's own payment token can never be recovered this way.
func (s *Service) RecoverForeignFunds(ctx context.Context, caller string, foreign token.Ledger, amount int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if caller == "" || caller != s.roles.Owner {
		return ErrNotOwner
	}
	if amount <= 0 {
		return ErrInvalidAmount
	}
	if foreign.Symbol() == s.tok.Symbol() {
		return ErrCannotRecoverPayment
	}

	if err := foreign.Transfer(ctx, s.cfg.PoolAccount, caller, amount); err != nil {
		return fmt.Errorf("recover funds: %w", err)
	}

	s.log.WithField("token", foreign.Symbol()).
		WithField("amount", amount).
		Info("foreign funds recovered")
	return nil
}

// rewardForTicket returns the bracket prize for a ticket number, or 0 when the
// number does not match the final number on the bracket's suffix.
func rewardForTicket(round Round, number int32, bracket int) int64 {
	if !matchesBracket(number, round.FinalNumber, bracket) {
		return 0
	}
	return round.TokenPerBracket[bracket]
}

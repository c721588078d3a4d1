package lottery

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/R3E-Network/delott/internal/config"
	"github.com/R3E-Network/delott/pkg/logger"
	"github.com/R3E-Network/delott/randomness"
	"github.com/R3E-Network/delott/token"
)

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{t: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

func TestLotteryService_FullLifecycle(t *testing.T) {
	ctx := context.Background()
	log := logger.NewDefault("lottery-test")

	cfg := config.Default()
	store := NewMemoryStore()
	ledger := token.NewMemoryLedger("CAKE")
	rng := randomness.NewMockSource()
	clock := newFakeClock()

	svc := New(cfg, "alice", store, ledger, rng, log)
	svc.WithClock(clock.Now)

	pool := cfg.PoolAccount
	breakdown := [Brackets]int64{200, 300, 500, 1500, 2500, 5000}

	t.Run("SetRoles", func(t *testing.T) {
		if err := svc.SetRoles("bob", "operator", "treasury", "injector"); !errors.Is(err, ErrNotOwner) {
			t.Errorf("expected ErrNotOwner, got %v", err)
		}
		if err := svc.SetRoles("alice", "", "treasury", "injector"); !errors.Is(err, ErrInvalidOperator) {
			t.Errorf("expected ErrInvalidOperator, got %v", err)
		}
		if err := svc.SetRoles("alice", "operator", "treasury", "injector"); err != nil {
			t.Fatalf("SetRoles failed: %v", err)
		}
	})

	// Mint and approve spending by the pool for every participant.
	for _, account := range []string{"alice", "bob", "carol", "injector"} {
		ledger.Mint(account, 100_000_000_000)
		ledger.Approve(account, pool, 100_000_000_000)
	}

	t.Run("StartRoundValidation", func(t *testing.T) {
		good := StartParams{
			EndTime:          clock.Now().Add(4 * time.Hour),
			TicketPrice:      500_000,
			DiscountDivisor:  2000,
			RewardsBreakdown: breakdown,
			TreasuryFeeBps:   2000,
		}

		if _, err := svc.StartRound(ctx, "bob", good); !errors.Is(err, ErrNotOperator) {
			t.Errorf("expected ErrNotOperator, got %v", err)
		}

		bad := good
		bad.EndTime = clock.Now().Add(time.Hour)
		if _, err := svc.StartRound(ctx, "operator", bad); !errors.Is(err, ErrRoundLengthRange) {
			t.Errorf("expected ErrRoundLengthRange, got %v", err)
		}

		bad = good
		bad.TicketPrice = 100
		if _, err := svc.StartRound(ctx, "operator", bad); !errors.Is(err, ErrTicketPriceRange) {
			t.Errorf("expected ErrTicketPriceRange, got %v", err)
		}

		bad = good
		bad.DiscountDivisor = 200
		if _, err := svc.StartRound(ctx, "operator", bad); !errors.Is(err, ErrDiscountDivisorLow) {
			t.Errorf("expected ErrDiscountDivisorLow, got %v", err)
		}

		bad = good
		bad.TreasuryFeeBps = 3500
		if _, err := svc.StartRound(ctx, "operator", bad); !errors.Is(err, ErrTreasuryFeeTooHigh) {
			t.Errorf("expected ErrTreasuryFeeTooHigh, got %v", err)
		}

		bad = good
		bad.RewardsBreakdown = [Brackets]int64{200, 300, 500, 1500, 2500, 4000}
		if _, err := svc.StartRound(ctx, "operator", bad); !errors.Is(err, ErrRewardsBreakdownSum) {
			t.Errorf("expected ErrRewardsBreakdownSum, got %v", err)
		}
	})

	t.Run("StartRound", func(t *testing.T) {
		round, err := svc.StartRound(ctx, "operator", StartParams{
			EndTime:          clock.Now().Add(4 * time.Hour),
			TicketPrice:      500_000,
			DiscountDivisor:  2000,
			RewardsBreakdown: breakdown,
			TreasuryFeeBps:   2000,
		})
		if err != nil {
			t.Fatalf("StartRound failed: %v", err)
		}
		if round.ID != 1 {
			t.Errorf("expected round id 1, got %d", round.ID)
		}
		if round.Status != StatusOpen {
			t.Errorf("expected status %s, got %s", StatusOpen, round.Status)
		}
		if round.FirstTicketID != 0 {
			t.Errorf("expected first ticket id 0, got %d", round.FirstTicketID)
		}

		// Overlapping rounds are rejected while this one is open.
		if _, err := svc.StartRound(ctx, "operator", StartParams{
			EndTime:          clock.Now().Add(4 * time.Hour),
			TicketPrice:      500_000,
			DiscountDivisor:  2000,
			RewardsBreakdown: breakdown,
			TreasuryFeeBps:   2000,
		}); !errors.Is(err, ErrPreviousNotDone) {
			t.Errorf("expected ErrPreviousNotDone, got %v", err)
		}
	})

	t.Run("BuyTickets", func(t *testing.T) {
		numbers := make([]int32, 100)
		for i := range numbers {
			numbers[i] = 1_234_561 + int32(i)
		}

		ids, err := svc.BuyTickets(ctx, "bob", 1, numbers)
		if err != nil {
			t.Fatalf("BuyTickets failed: %v", err)
		}
		if len(ids) != 100 || ids[0] != 0 || ids[99] != 99 {
			t.Errorf("expected dense ids 0..99, got %d ids [%d..%d]", len(ids), ids[0], ids[len(ids)-1])
		}

		// Bulk price: 500000 * 100 * 1901 / 2000.
		balance, _ := ledger.BalanceOf(ctx, "bob")
		if balance != 100_000_000_000-47_525_000 {
			t.Errorf("unexpected buyer balance %d", balance)
		}
		poolBalance, _ := ledger.BalanceOf(ctx, pool)
		if poolBalance != 47_525_000 {
			t.Errorf("unexpected pool balance %d", poolBalance)
		}

		round, _ := svc.ViewRound(ctx, 1)
		if round.AmountCollected != 47_525_000 {
			t.Errorf("expected collected 47525000, got %d", round.AmountCollected)
		}
	})

	t.Run("BuyTicketsValidation", func(t *testing.T) {
		if _, err := svc.BuyTickets(ctx, "carol", 1, nil); !errors.Is(err, ErrNoTickets) {
			t.Errorf("expected ErrNoTickets, got %v", err)
		}

		tooMany := make([]int32, 101)
		for i := range tooMany {
			tooMany[i] = 1_111_111
		}
		if _, err := svc.BuyTickets(ctx, "carol", 1, tooMany); !errors.Is(err, ErrTooManyTickets) {
			t.Errorf("expected ErrTooManyTickets, got %v", err)
		}

		if _, err := svc.BuyTickets(ctx, "carol", 1, []int32{12_345_610}); !errors.Is(err, ErrInvalidTicketNumber) {
			t.Errorf("expected ErrInvalidTicketNumber, got %v", err)
		}
		if _, err := svc.BuyTickets(ctx, "carol", 1, []int32{999_999}); !errors.Is(err, ErrInvalidTicketNumber) {
			t.Errorf("expected ErrInvalidTicketNumber, got %v", err)
		}

		if _, err := svc.BuyTickets(ctx, "carol", 99, []int32{1_111_111}); !errors.Is(err, ErrRoundNotFound) {
			t.Errorf("expected ErrRoundNotFound, got %v", err)
		}
	})

	t.Run("ViewTicketsForOwner", func(t *testing.T) {
		page, err := svc.ViewTicketsForOwner(ctx, "bob", 1, 0, 40)
		if err != nil {
			t.Fatalf("ViewTicketsForOwner failed: %v", err)
		}
		if len(page.TicketIDs) != 40 || page.TicketIDs[0] != 0 || page.NextCursor != 40 {
			t.Errorf("unexpected first page: %+v", page)
		}
		if page.Numbers[0] != 1_234_561 {
			t.Errorf("expected number 1234561, got %d", page.Numbers[0])
		}

		page, err = svc.ViewTicketsForOwner(ctx, "bob", 1, 80, 40)
		if err != nil {
			t.Fatalf("ViewTicketsForOwner failed: %v", err)
		}
		if len(page.TicketIDs) != 20 || page.NextCursor != 100 {
			t.Errorf("unexpected last page: %+v", page)
		}
	})

	t.Run("InjectFunds", func(t *testing.T) {
		if err := svc.InjectFunds(ctx, "bob", 1, 1_000); !errors.Is(err, ErrNotOwnerOrInjector) {
			t.Errorf("expected ErrNotOwnerOrInjector, got %v", err)
		}
		if err := svc.InjectFunds(ctx, "injector", 1, 0); !errors.Is(err, ErrInvalidAmount) {
			t.Errorf("expected ErrInvalidAmount, got %v", err)
		}
		if err := svc.InjectFunds(ctx, "injector", 1, 10_000_000); err != nil {
			t.Fatalf("InjectFunds failed: %v", err)
		}
		if err := svc.InjectFunds(ctx, "alice", 1, 5_000_000); err != nil {
			t.Fatalf("owner InjectFunds failed: %v", err)
		}

		round, _ := svc.ViewRound(ctx, 1)
		if round.AmountCollected != 62_525_000 {
			t.Errorf("expected collected 62525000, got %d", round.AmountCollected)
		}
	})

	t.Run("CloseRound", func(t *testing.T) {
		if _, err := svc.CloseRound(ctx, "operator", 1); !errors.Is(err, ErrRoundNotOver) {
			t.Errorf("expected ErrRoundNotOver, got %v", err)
		}

		clock.Advance(4*time.Hour + time.Minute)
		rng.SetAutoFulfill(false)

		if _, err := svc.BuyTickets(ctx, "carol", 1, []int32{1_111_111}); !errors.Is(err, ErrRoundOver) {
			t.Errorf("expected ErrRoundOver, got %v", err)
		}
		if _, err := svc.CloseRound(ctx, "bob", 1); !errors.Is(err, ErrNotOperator) {
			t.Errorf("expected ErrNotOperator, got %v", err)
		}

		round, err := svc.CloseRound(ctx, "operator", 1)
		if err != nil {
			t.Fatalf("CloseRound failed: %v", err)
		}
		if round.Status != StatusClosed {
			t.Errorf("expected status %s, got %s", StatusClosed, round.Status)
		}
		if round.FirstTicketIDNextRound != 100 {
			t.Errorf("expected next round first ticket id 100, got %d", round.FirstTicketIDNextRound)
		}

		if _, err := svc.CloseRound(ctx, "operator", 1); !errors.Is(err, ErrRoundNotOpen) {
			t.Errorf("expected ErrRoundNotOpen, got %v", err)
		}
		if err := svc.InjectFunds(ctx, "injector", 1, 1_000); !errors.Is(err, ErrRoundNotOpen) {
			t.Errorf("expected ErrRoundNotOpen, got %v", err)
		}
		if _, err := svc.ClaimTickets(ctx, "bob", 1, []int64{8}, []int{0}); !errors.Is(err, ErrRoundNotClaimable) {
			t.Errorf("expected ErrRoundNotClaimable, got %v", err)
		}
	})

	t.Run("DrawFinalNumber", func(t *testing.T) {
		// The randomness request is still pending, so the draw must fail
		// cleanly instead of consuming stale randomness.
		if _, err := svc.DrawFinalNumberAndMakeClaimable(ctx, "operator", 1, true); !errors.Is(err, ErrNumbersNotDrawn) {
			t.Errorf("expected ErrNumbersNotDrawn, got %v", err)
		}

		rng.SetNextRandomResult(1_999_999)
		if err := rng.Fulfill(); err != nil {
			t.Fatalf("Fulfill failed: %v", err)
		}

		if _, err := svc.DrawFinalNumberAndMakeClaimable(ctx, "bob", 1, true); !errors.Is(err, ErrNotOperator) {
			t.Errorf("expected ErrNotOperator, got %v", err)
		}

		round, err := svc.DrawFinalNumberAndMakeClaimable(ctx, "operator", 1, true)
		if err != nil {
			t.Fatalf("draw failed: %v", err)
		}
		if round.Status != StatusClaimable {
			t.Errorf("expected status %s, got %s", StatusClaimable, round.Status)
		}
		if round.FinalNumber != 1_999_999 {
			t.Errorf("expected final number 1999999, got %d", round.FinalNumber)
		}

		// Bob's numbers 1234561..1234660 against final 1999999: ten tickets
		// end in 9, one ends in 99, none match three or more digits.
		wantCounts := [Brackets]int64{10, 1, 0, 0, 0, 0}
		if round.CountWinnersPerBracket != wantCounts {
			t.Errorf("expected winner counts %v, got %v", wantCounts, round.CountWinnersPerBracket)
		}

		// share = 62525000 * 8000 / 10000 = 50020000
		if round.TokenPerBracket[0] != 100_040 {
			t.Errorf("expected bracket 0 prize 100040, got %d", round.TokenPerBracket[0])
		}
		if round.TokenPerBracket[1] != 1_500_600 {
			t.Errorf("expected bracket 1 prize 1500600, got %d", round.TokenPerBracket[1])
		}
		for j := 2; j < Brackets; j++ {
			if round.TokenPerBracket[j] != 0 {
				t.Errorf("expected bracket %d prize 0, got %d", j, round.TokenPerBracket[j])
			}
		}

		if _, err := svc.DrawFinalNumberAndMakeClaimable(ctx, "operator", 1, true); !errors.Is(err, ErrRoundNotClosed) {
			t.Errorf("expected ErrRoundNotClosed, got %v", err)
		}
	})

	t.Run("ClaimValidation", func(t *testing.T) {
		if _, err := svc.ClaimTickets(ctx, "bob", 1, []int64{8}, []int{0, 1}); !errors.Is(err, ErrNotSameLength) {
			t.Errorf("expected ErrNotSameLength, got %v", err)
		}
		if _, err := svc.ClaimTickets(ctx, "bob", 1, nil, nil); !errors.Is(err, ErrNoTickets) {
			t.Errorf("expected ErrNoTickets, got %v", err)
		}
		if _, err := svc.ClaimTickets(ctx, "bob", 1, []int64{8}, []int{6}); !errors.Is(err, ErrBracketOutOfRange) {
			t.Errorf("expected ErrBracketOutOfRange, got %v", err)
		}
		if _, err := svc.ClaimTickets(ctx, "bob", 1, []int64{100}, []int{0}); !errors.Is(err, ErrTicketTooHigh) {
			t.Errorf("expected ErrTicketTooHigh, got %v", err)
		}
		if _, err := svc.ClaimTickets(ctx, "carol", 1, []int64{8}, []int{0}); !errors.Is(err, ErrNotOwner) {
			t.Errorf("expected ErrNotOwner, got %v", err)
		}
		// Ticket 0 (1234561) does not match the final number's last digit.
		if _, err := svc.ClaimTickets(ctx, "bob", 1, []int64{0}, []int{0}); !errors.Is(err, ErrNoPrizeForBracket) {
			t.Errorf("expected ErrNoPrizeForBracket, got %v", err)
		}
		// Ticket 38 (1234599) matches two digits, so bracket 0 is too low.
		if _, err := svc.ClaimTickets(ctx, "bob", 1, []int64{38}, []int{0}); !errors.Is(err, ErrBracketMustBeHigher) {
			t.Errorf("expected ErrBracketMustBeHigher, got %v", err)
		}
		// Duplicate ids within one call collapse into an ownership failure.
		if _, err := svc.ClaimTickets(ctx, "bob", 1, []int64{18, 18}, []int{0, 0}); !errors.Is(err, ErrNotOwner) {
			t.Errorf("expected ErrNotOwner, got %v", err)
		}
	})

	t.Run("ClaimAtomicity", func(t *testing.T) {
		// Second pair fails, so the first ticket must stay claimable.
		if _, err := svc.ClaimTickets(ctx, "bob", 1, []int64{28, 0}, []int{0, 0}); !errors.Is(err, ErrNoPrizeForBracket) {
			t.Errorf("expected ErrNoPrizeForBracket, got %v", err)
		}
		amount, err := svc.ClaimTickets(ctx, "bob", 1, []int64{28}, []int{0})
		if err != nil {
			t.Fatalf("claim after failed batch: %v", err)
		}
		if amount != 100_040 {
			t.Errorf("expected payout 100040, got %d", amount)
		}
	})

	t.Run("ClaimTickets", func(t *testing.T) {
		before, _ := ledger.BalanceOf(ctx, "bob")

		amount, err := svc.ClaimTickets(ctx, "bob", 1, []int64{8, 38}, []int{0, 1})
		if err != nil {
			t.Fatalf("ClaimTickets failed: %v", err)
		}
		if amount != 100_040+1_500_600 {
			t.Errorf("expected payout 1600640, got %d", amount)
		}

		after, _ := ledger.BalanceOf(ctx, "bob")
		if after-before != amount {
			t.Errorf("expected balance delta %d, got %d", amount, after-before)
		}

		// Replay fails as an ownership error: consumed tickets have no owner.
		if _, err := svc.ClaimTickets(ctx, "bob", 1, []int64{8}, []int{0}); !errors.Is(err, ErrNotOwner) {
			t.Errorf("expected ErrNotOwner on replay, got %v", err)
		}

		numbers, claimed, err := svc.ViewNumbersAndStatuses(ctx, []int64{8, 38, 0})
		if err != nil {
			t.Fatalf("ViewNumbersAndStatuses failed: %v", err)
		}
		if numbers[0] != 1_234_569 || !claimed[0] || !claimed[1] || claimed[2] {
			t.Errorf("unexpected numbers/statuses: %v %v", numbers, claimed)
		}
	})

	t.Run("ViewRewardsForTicket", func(t *testing.T) {
		if got := svc.ViewRewardsForTicket(ctx, 1, 48, 0); got != 100_040 {
			t.Errorf("expected 100040, got %d", got)
		}
		if got := svc.ViewRewardsForTicket(ctx, 1, 0, 0); got != 0 {
			t.Errorf("expected 0 for non-matching ticket, got %d", got)
		}
		if got := svc.ViewRewardsForTicket(ctx, 1, 200, 0); got != 0 {
			t.Errorf("expected 0 for out-of-range ticket, got %d", got)
		}
		if got := svc.ViewRewardsForTicket(ctx, 1, 48, 9); got != 0 {
			t.Errorf("expected 0 for invalid bracket, got %d", got)
		}
	})

	t.Run("SetRandomSourceBetweenRounds", func(t *testing.T) {
		if err := svc.SetRandomSource(ctx, "bob", rng); !errors.Is(err, ErrNotOwner) {
			t.Errorf("expected ErrNotOwner, got %v", err)
		}
		if err := svc.SetRandomSource(ctx, "alice", nil); !errors.Is(err, ErrInvalidRandomSource) {
			t.Errorf("expected ErrInvalidRandomSource, got %v", err)
		}
		if err := svc.SetRandomSource(ctx, "alice", rng); err != nil {
			t.Fatalf("SetRandomSource failed: %v", err)
		}
	})

	t.Run("AutoInjectionSeedsNextRound", func(t *testing.T) {
		round, err := svc.StartRound(ctx, "operator", StartParams{
			EndTime:          clock.Now().Add(4 * time.Hour),
			TicketPrice:      500_000,
			DiscountDivisor:  2000,
			RewardsBreakdown: breakdown,
			TreasuryFeeBps:   2000,
		})
		if err != nil {
			t.Fatalf("StartRound failed: %v", err)
		}
		if round.ID != 2 {
			t.Errorf("expected round id 2, got %d", round.ID)
		}

		// Treasury carry of round 1: base fee 12505000 plus the unwon
		// bracket shares 2..5 (9500 bps of 50020000).
		if round.AmountCollected != 60_024_000 {
			t.Errorf("expected seeded pool 60024000, got %d", round.AmountCollected)
		}
		if round.FirstTicketID != 100 {
			t.Errorf("expected first ticket id 100, got %d", round.FirstTicketID)
		}

		// Swapping the random source mid-round is rejected.
		if err := svc.SetRandomSource(ctx, "alice", rng); !errors.Is(err, ErrRoundNotClaimable) {
			t.Errorf("expected ErrRoundNotClaimable, got %v", err)
		}
	})

	t.Run("SetMaxTicketsPerCall", func(t *testing.T) {
		if err := svc.SetMaxTicketsPerCall("bob", 10); !errors.Is(err, ErrNotOwner) {
			t.Errorf("expected ErrNotOwner, got %v", err)
		}
		if err := svc.SetMaxTicketsPerCall("alice", 0); !errors.Is(err, ErrInvalidMaxTickets) {
			t.Errorf("expected ErrInvalidMaxTickets, got %v", err)
		}
		if err := svc.SetMaxTicketsPerCall("alice", 1); err != nil {
			t.Fatalf("SetMaxTicketsPerCall failed: %v", err)
		}
		if _, err := svc.BuyTickets(ctx, "carol", 2, []int32{1_111_111, 1_222_222}); !errors.Is(err, ErrTooManyTickets) {
			t.Errorf("expected ErrTooManyTickets, got %v", err)
		}
		if err := svc.SetMaxTicketsPerCall("alice", 100); err != nil {
			t.Fatalf("SetMaxTicketsPerCall failed: %v", err)
		}
	})

	t.Run("RecoverForeignFunds", func(t *testing.T) {
		foreign := token.NewMemoryLedger("BUSD")
		foreign.Mint(pool, 1_000)

		if err := svc.RecoverForeignFunds(ctx, "bob", foreign, 1_000); !errors.Is(err, ErrNotOwner) {
			t.Errorf("expected ErrNotOwner, got %v", err)
		}
		if err := svc.RecoverForeignFunds(ctx, "alice", ledger, 1_000); !errors.Is(err, ErrCannotRecoverPayment) {
			t.Errorf("expected ErrCannotRecoverPayment, got %v", err)
		}
		if err := svc.RecoverForeignFunds(ctx, "alice", foreign, 1_000); err != nil {
			t.Fatalf("RecoverForeignFunds failed: %v", err)
		}

		balance, _ := foreign.BalanceOf(ctx, "alice")
		if balance != 1_000 {
			t.Errorf("expected recovered balance 1000, got %d", balance)
		}
	})
}

func TestEmptyIdentityRejected(t *testing.T) {
	ctx := context.Background()
	cfg := config.Default()
	store := NewMemoryStore()
	ledger := token.NewMemoryLedger("CAKE")
	rng := randomness.NewMockSource()
	clock := newFakeClock()

	svc := New(cfg, "alice", store, ledger, rng, nil)
	svc.WithClock(clock.Now)

	params := StartParams{
		EndTime:          clock.Now().Add(4 * time.Hour),
		TicketPrice:      500_000,
		DiscountDivisor:  2000,
		RewardsBreakdown: [Brackets]int64{10_000, 0, 0, 0, 0, 0},
		TreasuryFeeBps:   2000,
	}

	t.Run("NoRoleBeforeAssignment", func(t *testing.T) {
		// Unassigned roles are the empty string; the empty identity must not
		// hold them.
		if _, err := svc.StartRound(ctx, "", params); !errors.Is(err, ErrNotOperator) {
			t.Errorf("expected ErrNotOperator, got %v", err)
		}
		if err := svc.SetRoles("", "operator", "treasury", "injector"); !errors.Is(err, ErrNotOwner) {
			t.Errorf("expected ErrNotOwner, got %v", err)
		}
		if err := svc.SetMaxTicketsPerCall("", 10); !errors.Is(err, ErrNotOwner) {
			t.Errorf("expected ErrNotOwner, got %v", err)
		}
	})

	if err := svc.SetRoles("alice", "operator", "treasury", "injector"); err != nil {
		t.Fatalf("SetRoles failed: %v", err)
	}
	if _, err := svc.StartRound(ctx, "operator", params); err != nil {
		t.Fatalf("StartRound failed: %v", err)
	}

	ledger.Mint("bob", 1_000_000)
	ledger.Approve("bob", cfg.PoolAccount, 1_000_000)

	t.Run("BuyerMustBeNamed", func(t *testing.T) {
		if _, err := svc.BuyTickets(ctx, "", 1, []int32{1_111_119}); !errors.Is(err, ErrInvalidIdentity) {
			t.Errorf("expected ErrInvalidIdentity, got %v", err)
		}
		if err := svc.InjectFunds(ctx, "", 1, 1_000); !errors.Is(err, ErrNotOwnerOrInjector) {
			t.Errorf("expected ErrNotOwnerOrInjector, got %v", err)
		}
	})

	if _, err := svc.BuyTickets(ctx, "bob", 1, []int32{1_111_119}); err != nil {
		t.Fatalf("BuyTickets failed: %v", err)
	}

	clock.Advance(4*time.Hour + time.Minute)
	rng.SetNextRandomResult(1_999_999)
	if _, err := svc.CloseRound(ctx, "operator", 1); err != nil {
		t.Fatalf("CloseRound failed: %v", err)
	}
	if _, err := svc.DrawFinalNumberAndMakeClaimable(ctx, "operator", 1, true); err != nil {
		t.Fatalf("draw failed: %v", err)
	}

	t.Run("ConsumedTicketNotClaimableByEmptyIdentity", func(t *testing.T) {
		amount, err := svc.ClaimTickets(ctx, "bob", 1, []int64{0}, []int{0})
		if err != nil {
			t.Fatalf("ClaimTickets failed: %v", err)
		}
		if amount != 400_000 {
			t.Errorf("expected prize 400000, got %d", amount)
		}

		// The consumed ticket now has the empty owner; a claim from the
		// empty identity would pay it out a second time.
		poolBefore, _ := ledger.BalanceOf(ctx, cfg.PoolAccount)
		if _, err := svc.ClaimTickets(ctx, "", 1, []int64{0}, []int{0}); !errors.Is(err, ErrInvalidIdentity) {
			t.Errorf("expected ErrInvalidIdentity, got %v", err)
		}
		poolAfter, _ := ledger.BalanceOf(ctx, cfg.PoolAccount)
		if poolBefore != poolAfter {
			t.Errorf("pool balance changed from %d to %d on rejected claim", poolBefore, poolAfter)
		}

		empty, _ := ledger.BalanceOf(ctx, "")
		if empty != 0 {
			t.Errorf("empty identity was paid %d", empty)
		}
	})
}

package token

import (
	"context"
	"sync"
)

// MemoryLedger provides an in-memory implementation of Ledger for testing and
// simulation. Accounts are created on first use with a zero balance.
type MemoryLedger struct {
	mu         sync.Mutex
	symbol     string
	balances   map[string]int64
	allowances map[string]map[string]int64 // owner -> spender -> amount
}

// NewMemoryLedger creates an empty ledger for the given token symbol.
func NewMemoryLedger(symbol string) *MemoryLedger {
	return &MemoryLedger{
		symbol:     symbol,
		balances:   make(map[string]int64),
		allowances: make(map[string]map[string]int64),
	}
}

// Symbol identifies the token.
func (l *MemoryLedger) Symbol() string { return l.symbol }

// Mint credits an account with freshly created tokens.
func (l *MemoryLedger) Mint(account string, amount int64) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.balances[account] += amount
}

// Approve grants spender the right to move up to amount from owner.
func (l *MemoryLedger) Approve(owner, spender string, amount int64) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.allowances[owner] == nil {
		l.allowances[owner] = make(map[string]int64)
	}
	l.allowances[owner][spender] = amount
}

// Allowance returns the remaining approval from owner to spender.
func (l *MemoryLedger) Allowance(owner, spender string) int64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.allowances[owner][spender]
}

// BalanceOf returns the balance of an account.
func (l *MemoryLedger) BalanceOf(ctx context.Context, account string) (int64, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.balances[account], nil
}

// Transfer moves amount between accounts.
func (l *MemoryLedger) Transfer(ctx context.Context, from, to string, amount int64) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.move(from, to, amount)
}

// TransferFrom moves amount from owner to dest, consuming spender's allowance.
func (l *MemoryLedger) TransferFrom(ctx context.Context, spender, owner, dest string, amount int64) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if amount <= 0 {
		return ErrInvalidAmount
	}
	if l.allowances[owner][spender] < amount {
		return ErrInsufficientAllowance
	}
	if err := l.move(owner, dest, amount); err != nil {
		return err
	}
	l.allowances[owner][spender] -= amount
	return nil
}

func (l *MemoryLedger) move(from, to string, amount int64) error {
	if amount <= 0 {
		return ErrInvalidAmount
	}
	if l.balances[from] < amount {
		return ErrInsufficientBalance
	}
	l.balances[from] -= amount
	l.balances[to] += amount
	return nil
}

// Package token defines the fungible-token ledger the lottery settles against.
package token

import (
	"context"
	"errors"
)

// Errors
var (
	ErrInsufficientBalance   = errors.New("insufficient balance")
	ErrInsufficientAllowance = errors.New("insufficient allowance")
	ErrInvalidAmount         = errors.New("invalid amount")
)

// Ledger is the fungible-token interface the lottery engine consumes.
//
// Transfer moves funds the caller already controls. TransferFrom moves funds
// from an owner who previously granted the spender an allowance.
type Ledger interface {
	// Symbol identifies the token.
	Symbol() string
	// BalanceOf returns the balance of an account.
	BalanceOf(ctx context.Context, account string) (int64, error)
	// Transfer moves amount from one account to another.
	Transfer(ctx context.Context, from, to string, amount int64) error
	// TransferFrom moves amount from owner to dest, consuming spender's allowance.
	TransferFrom(ctx context.Context, spender, owner, dest string, amount int64) error
}

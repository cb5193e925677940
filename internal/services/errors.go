package services

import (
	"errors"
	"fmt"
)

var (
	ErrPoolNotFound          = errors.New("pool not found")
	ErrProviderNotFound      = errors.New("provider not found")
	ErrPoolExists            = errors.New("pool already exists")
	ErrInvalidBase           = errors.New("unsupported base currency")
	ErrNegativeAmount        = errors.New("amount must be positive")
	ErrInvalidSharePercent   = errors.New("share percent must be in (0, 1]")
	ErrZeroRemovePercent     = errors.New("remove percent cannot be zero")
	ErrInsufficientLiquidity = errors.New("pool has no liquidity")
	ErrNoLiquidity           = errors.New("provider has no liquidity in this pool")
	ErrInsufficientBalance   = errors.New("insufficient wallet balance")
	ErrSwapSuspended         = errors.New("swapping is suspended for this pool")
	ErrProvidingSuspended    = errors.New("providing is suspended for this pool")
	ErrInvalidFeeConfig      = errors.New("invalid fee configuration")
)

// SlippageExceededError is returned when a commit would move the price past
// the caller's tolerance. It carries both bounds so the caller can retry
// with an adjusted input.
type SlippageExceededError struct {
	Max    float64
	Actual float64
}

func (e *SlippageExceededError) Error() string {
	return fmt.Sprintf("slippage %.8f exceeds allowed maximum %.8f", e.Actual, e.Max)
}

// ValueMismatchError is returned when the two sides of a paired deposit are
// not equivalent in value. RequiredAmountB is the B amount that would match
// AmountA at the current price.
type ValueMismatchError struct {
	RequiredAmountB float64
	AmountB         float64
	ValueA          float64
	ValueB          float64
}

func (e *ValueMismatchError) Error() string {
	return fmt.Sprintf("deposit values are not equivalent: side A is worth %.8f, side B %.8f (required amount B %.8f, got %.8f)",
		e.ValueA, e.ValueB, e.RequiredAmountB, e.AmountB)
}

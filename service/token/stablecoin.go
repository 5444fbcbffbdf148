package token

import (
	"context"
	"fmt"

	"stablevault/core"

	"github.com/holiman/uint256"
)

// Stablecoin ledger whose supply only changes through allow-listed minters
type Stablecoin struct {
	*Ledger
	owner   core.Address
	minters map[core.Address]bool
}

// NewStablecoin stablecoin managed by owner
func NewStablecoin(asset core.Asset, owner core.Address) *Stablecoin {
	return &Stablecoin{
		Ledger:  NewLedger(asset),
		owner:   owner,
		minters: map[core.Address]bool{},
	}
}

// SetMinter grants or revokes the minter role
func (s *Stablecoin) SetMinter(_ context.Context, caller, minter core.Address, allowed bool) error {
	if caller != s.owner {
		return core.ErrNotOwner
	}

	if minter.IsZero() {
		return fmt.Errorf("set minter: %w", core.ErrInvalidParameter)
	}

	if allowed {
		s.minters[minter] = true
	} else {
		delete(s.minters, minter)
	}

	return nil
}

func (s *Stablecoin) IsMinter(account core.Address) bool {
	return s.minters[account]
}

func (s *Stablecoin) Mint(ctx context.Context, minter, to core.Address, amount *uint256.Int) error {
	if !s.minters[minter] {
		return core.ErrNotMinter
	}

	return s.Ledger.Mint(ctx, to, amount)
}

func (s *Stablecoin) Burn(_ context.Context, minter, from core.Address, amount *uint256.Int) error {
	if !s.minters[minter] {
		return core.ErrNotMinter
	}

	return s.Ledger.burn(from, amount)
}

// Checkpoint implements txn.Participant
func (s *Stablecoin) Checkpoint() func() {
	restore := s.Ledger.Checkpoint()
	minters := make(map[core.Address]bool, len(s.minters))
	for k, v := range s.minters {
		minters[k] = v
	}

	return func() {
		restore()
		s.minters = minters
	}
}

package token

import (
	"context"
	"fmt"

	"stablevault/core"
	"stablevault/pkg/wad"

	"github.com/holiman/uint256"
)

// Ledger in-memory fungible asset with balances and allowances
type Ledger struct {
	asset      core.Asset
	supply     *uint256.Int
	balances   map[core.Address]*uint256.Int
	allowances map[core.Address]map[core.Address]*uint256.Int
}

// NewLedger empty ledger of asset
func NewLedger(asset core.Asset) *Ledger {
	return &Ledger{
		asset:      asset,
		supply:     wad.Zero(),
		balances:   map[core.Address]*uint256.Int{},
		allowances: map[core.Address]map[core.Address]*uint256.Int{},
	}
}

func (l *Ledger) Asset() core.Asset {
	return l.asset
}

func (l *Ledger) TotalSupply(_ context.Context) *uint256.Int {
	return l.supply.Clone()
}

func (l *Ledger) BalanceOf(_ context.Context, owner core.Address) *uint256.Int {
	return wad.OrZero(l.balances[owner])
}

func (l *Ledger) Allowance(_ context.Context, owner, spender core.Address) *uint256.Int {
	return wad.OrZero(l.allowances[owner][spender])
}

func (l *Ledger) Approve(_ context.Context, owner, spender core.Address, amount *uint256.Int) error {
	if owner.IsZero() || spender.IsZero() {
		return fmt.Errorf("approve: %w", core.ErrInvalidParameter)
	}

	m, ok := l.allowances[owner]
	if !ok {
		m = map[core.Address]*uint256.Int{}
		l.allowances[owner] = m
	}

	m[spender] = amount.Clone()
	return nil
}

func (l *Ledger) Transfer(_ context.Context, from, to core.Address, amount *uint256.Int) error {
	return l.move(from, to, amount)
}

// TransferFrom spends the allowance of spender, an all-ones allowance never decreases
func (l *Ledger) TransferFrom(_ context.Context, spender, from, to core.Address, amount *uint256.Int) error {
	allowed := wad.OrZero(l.allowances[from][spender])
	if allowed.Lt(amount) {
		return fmt.Errorf("%s transferFrom %s by %s: %w", l.asset, from, spender, core.ErrInsufficientAllowance)
	}

	if err := l.move(from, to, amount); err != nil {
		return err
	}

	if !allowed.Eq(wad.Max()) {
		l.allowances[from][spender] = wad.Sub(allowed, amount)
	}

	return nil
}

// Mint credits to without any gate, used to seed collateral and bond balances
func (l *Ledger) Mint(_ context.Context, to core.Address, amount *uint256.Int) error {
	if to.IsZero() {
		return fmt.Errorf("mint: %w", core.ErrInvalidParameter)
	}

	l.balances[to] = wad.Add(wad.OrZero(l.balances[to]), amount)
	l.supply = wad.Add(l.supply, amount)
	return nil
}

func (l *Ledger) burn(from core.Address, amount *uint256.Int) error {
	balance := wad.OrZero(l.balances[from])
	if balance.Lt(amount) {
		return fmt.Errorf("%s burn from %s: %w", l.asset, from, core.ErrInsufficientBalance)
	}

	l.balances[from] = wad.Sub(balance, amount)
	l.supply = wad.SubFloor(l.supply, amount)
	return nil
}

func (l *Ledger) move(from, to core.Address, amount *uint256.Int) error {
	if to.IsZero() {
		return fmt.Errorf("transfer: %w", core.ErrInvalidParameter)
	}

	balance := wad.OrZero(l.balances[from])
	if balance.Lt(amount) {
		return fmt.Errorf("%s transfer from %s: %w", l.asset, from, core.ErrInsufficientBalance)
	}

	l.balances[from] = wad.Sub(balance, amount)
	l.balances[to] = wad.Add(wad.OrZero(l.balances[to]), amount)
	return nil
}

// Checkpoint implements txn.Participant
func (l *Ledger) Checkpoint() func() {
	supply := l.supply.Clone()
	balances := make(map[core.Address]*uint256.Int, len(l.balances))
	for k, v := range l.balances {
		balances[k] = v.Clone()
	}

	allowances := make(map[core.Address]map[core.Address]*uint256.Int, len(l.allowances))
	for owner, m := range l.allowances {
		c := make(map[core.Address]*uint256.Int, len(m))
		for spender, v := range m {
			c[spender] = v.Clone()
		}
		allowances[owner] = c
	}

	return func() {
		l.supply = supply
		l.balances = balances
		l.allowances = allowances
	}
}

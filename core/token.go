package core

import (
	"context"

	"github.com/holiman/uint256"
)

// Token fungible asset
type Token interface {
	Asset() Asset
	TotalSupply(ctx context.Context) *uint256.Int
	BalanceOf(ctx context.Context, owner Address) *uint256.Int
	Allowance(ctx context.Context, owner, spender Address) *uint256.Int
	Approve(ctx context.Context, owner, spender Address, amount *uint256.Int) error
	Transfer(ctx context.Context, from, to Address, amount *uint256.Int) error
	TransferFrom(ctx context.Context, spender, from, to Address, amount *uint256.Int) error
}

// Stablecoin token with an allow-listed minter set
type Stablecoin interface {
	Token
	Mint(ctx context.Context, minter, to Address, amount *uint256.Int) error
	Burn(ctx context.Context, minter, from Address, amount *uint256.Int) error
	IsMinter(account Address) bool
}

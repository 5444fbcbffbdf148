package request

import (
	"context"

	"stablevault/core"
)

type key int

const (
	accountKey key = iota
)

type ContextX struct {
	context.Context
}

// NewContext context extension
func NewContext(ctx context.Context) ContextX {
	return ContextX{
		Context: ctx,
	}
}

// WithAccount context with the calling account
func (c ContextX) WithAccount(account core.Address) context.Context {
	return context.WithValue(c, accountKey, account)
}

// GetAccount get account from context
func (c ContextX) GetAccount() (core.Address, bool) {
	account, ok := c.Value(accountKey).(core.Address)
	return account, ok && !account.IsZero()
}

package core

import "strings"

// Address identifies an account: a borrower, liquidator, depositor or a module
type Address string

// ZeroAddress no account
const ZeroAddress Address = ""

// IsZero true for the empty address
func (a Address) IsZero() bool {
	return strings.TrimSpace(string(a)) == ""
}

func (a Address) String() string {
	return string(a)
}

// Asset identifies a fungible asset by symbol
type Asset string

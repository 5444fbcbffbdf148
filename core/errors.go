package core

import (
	"errors"
	"strconv"
)

// ErrorCode int
type ErrorCode int

func (e ErrorCode) String() string {
	return strconv.Itoa(int(e))
}

// ErrorKind tells a caller whether to fix the request, retry later or give up
type ErrorKind int

const (
	// KindUnknown not one of ours
	KindUnknown ErrorKind = iota
	// KindValidation caller-correctable, nothing changed
	KindValidation
	// KindPrecondition operation not valid in the current state
	KindPrecondition
	// KindEnvironmental external collaborator failure, retry after the condition clears
	KindEnvironmental
	// KindAuthorization caller lacks the role
	KindAuthorization
)

func (k ErrorKind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindPrecondition:
		return "precondition"
	case KindEnvironmental:
		return "environmental"
	case KindAuthorization:
		return "authorization"
	default:
		return "unknown"
	}
}

// Error typed protocol failure
type Error struct {
	Code ErrorCode
	Kind ErrorKind
	Name string
}

func (e *Error) Error() string {
	return e.Name
}

func newError(code ErrorCode, kind ErrorKind, name string) *Error {
	return &Error{Code: code, Kind: kind, Name: name}
}

var (
	// validation

	ErrZeroAmount                  = newError(100101, KindValidation, "ZeroAmount")
	ErrExcessiveWithdrawal         = newError(100102, KindValidation, "ExcessiveWithdrawal")
	ErrDebtBelowMinimum            = newError(100103, KindValidation, "DebtBelowMinimum")
	ErrInvalidParameter            = newError(100104, KindValidation, "InvalidParameter")
	ErrInvalidCommitmentHash       = newError(100105, KindValidation, "InvalidCommitmentHash")
	ErrInsufficientDeposit         = newError(100106, KindValidation, "InsufficientDeposit")
	ErrInsufficientCollateralRatio = newError(100107, KindValidation, "InsufficientCollateralRatio")
	ErrInsufficientBalance         = newError(100108, KindValidation, "InsufficientBalance")
	ErrInsufficientAllowance       = newError(100109, KindValidation, "InsufficientAllowance")

	// precondition

	ErrVaultNotLiquidatable      = newError(100201, KindPrecondition, "VaultNotLiquidatable")
	ErrAuctionNotActive          = newError(100202, KindPrecondition, "AuctionNotActive")
	ErrAuctionStillOngoing       = newError(100203, KindPrecondition, "AuctionStillOngoing")
	ErrAuctionAlreadyExecuted    = newError(100204, KindPrecondition, "AuctionAlreadyExecuted")
	ErrCommitmentNotFound        = newError(100205, KindPrecondition, "CommitmentNotFound")
	ErrCommitmentAlreadyRevealed = newError(100206, KindPrecondition, "CommitmentAlreadyRevealed")
	ErrRevealTooEarly            = newError(100207, KindPrecondition, "RevealTooEarly")
	ErrCommitmentExpired         = newError(100208, KindPrecondition, "CommitmentExpired")
	ErrNoValidBids               = newError(100209, KindPrecondition, "NoValidBids")
	ErrNotWinner                 = newError(100210, KindPrecondition, "NotWinner")
	ErrNoRefundAvailable         = newError(100211, KindPrecondition, "NoRefundAvailable")
	ErrInsufficientObservations  = newError(100212, KindPrecondition, "InsufficientObservations")
	ErrPriceFeedNotSet           = newError(100213, KindPrecondition, "PriceFeedNotSet")
	ErrBorrowTooSoon             = newError(100214, KindPrecondition, "BorrowTooSoon")
	ErrLiquidationCooldown       = newError(100215, KindPrecondition, "LiquidationCooldown")
	ErrInterestGracePeriod       = newError(100216, KindPrecondition, "InterestGracePeriod")
	ErrNoDeposits                = newError(100217, KindPrecondition, "NoDeposits")
	ErrTooManyBids               = newError(100218, KindPrecondition, "TooManyBids")
	ErrNoDebt                    = newError(100219, KindPrecondition, "NoDebt")
	ErrPaused                    = newError(100220, KindPrecondition, "Paused")
	ErrCleanupNotAllowed         = newError(100221, KindPrecondition, "CleanupNotAllowed")

	// environmental

	ErrStalePriceData    = newError(100301, KindEnvironmental, "StalePriceData")
	ErrInvalidPrice      = newError(100302, KindEnvironmental, "InvalidPrice")
	ErrStaleObservations = newError(100303, KindEnvironmental, "StaleObservations")
	ErrTWAPUnavailable   = newError(100304, KindEnvironmental, "TWAPUnavailable")
	ErrUpdateTooFrequent = newError(100305, KindEnvironmental, "UpdateTooFrequent")
	ErrFeedUnavailable   = newError(100306, KindEnvironmental, "FeedUnavailable")
	ErrSlashingDetected  = newError(100307, KindEnvironmental, "SlashingDetected")

	// authorization

	ErrNotLiquidationEngine = newError(100401, KindAuthorization, "NotLiquidationEngine")
	ErrNotOwner             = newError(100402, KindAuthorization, "NotOwner")
	ErrNotMinter            = newError(100403, KindAuthorization, "NotMinter")
)

// KindOf reports the kind of a protocol error anywhere in err's chain
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}

	return KindUnknown
}

// CodeOf returns the protocol error code, or zero
func CodeOf(err error) ErrorCode {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}

	return 0
}

// IsRetryable environmental failures clear on their own
func IsRetryable(err error) bool {
	return KindOf(err) == KindEnvironmental
}


package core

import (
	"context"
	"encoding/json"
	"time"

	"github.com/fatih/structs"
	"github.com/holiman/uint256"
	"github.com/jmoiron/sqlx/types"
)

// EventCategory separates designed degradation paths from ordinary state changes
type EventCategory string

const (
	EventCategoryAction   EventCategory = "action"
	EventCategoryBackstop EventCategory = "backstop"
	EventCategoryOracle   EventCategory = "oracle"
	EventCategoryAdmin    EventCategory = "admin"
)

// EventKind event kind
type EventKind string

const (
	EventCollateralDeposited EventKind = "CollateralDeposited"
	EventCollateralWithdrawn EventKind = "CollateralWithdrawn"
	EventBorrowed            EventKind = "Borrowed"
	EventRepaid              EventKind = "Repaid"
	EventInterestAccrued     EventKind = "InterestAccrued"
	EventYieldAccrued        EventKind = "YieldAccrued"
	EventVaultLiquidated     EventKind = "VaultLiquidated"
	EventBadDebtRecorded     EventKind = "BadDebtRecorded"

	EventReservesWithdrawn   EventKind = "ReservesWithdrawn"
	EventBadDebtWrittenOff   EventKind = "BadDebtWrittenOff"
	EventBorrowRateUpdated   EventKind = "BorrowRateUpdated"
	EventLiquidationEngine   EventKind = "LiquidationEngineSet"
	EventPauseGuardSet       EventKind = "PauseGuardSet"
	EventPaused              EventKind = "Paused"
	EventUnpaused            EventKind = "Unpaused"
	EventStabilityPoolSet    EventKind = "StabilityPoolSet"
	EventSlashedRevenueTaken EventKind = "SlashedRevenueWithdrawn"

	EventPriceFeedSet        EventKind = "PriceFeedSet"
	EventObservationRecorded EventKind = "ObservationRecorded"

	EventAuctionStarted        EventKind = "AuctionStarted"
	EventLiquidationCommitted  EventKind = "LiquidationCommitted"
	EventLiquidationRevealed   EventKind = "LiquidationRevealed"
	EventAuctionFinalized      EventKind = "AuctionFinalized"
	EventAuctionFallback       EventKind = "AuctionFallback"
	EventFallbackSkipped       EventKind = "FallbackSkipped"
	EventDepositSlashed        EventKind = "DepositSlashed"
	EventRefundCredited        EventKind = "RefundCredited"
	EventRefundWithdrawn       EventKind = "RefundWithdrawn"
	EventBidsCleaned           EventKind = "BidsCleaned"
	EventPoolDeposited         EventKind = "PoolDeposited"
	EventPoolWithdrawn         EventKind = "PoolWithdrawn"
	EventCollateralGainClaimed EventKind = "CollateralGainClaimed"
	EventLiquidationAbsorbed   EventKind = "LiquidationDistributed"
	EventPoolEpochReset        EventKind = "PoolEpochReset"

	EventSlashingReported EventKind = "SlashingReported"
)

var eventCategories = map[EventKind]EventCategory{
	EventBadDebtRecorded:  EventCategoryBackstop,
	EventAuctionFallback:  EventCategoryBackstop,
	EventFallbackSkipped:  EventCategoryBackstop,
	EventDepositSlashed:   EventCategoryBackstop,
	EventPoolEpochReset:   EventCategoryBackstop,
	EventSlashingReported: EventCategoryBackstop,

	EventPriceFeedSet:        EventCategoryOracle,
	EventObservationRecorded: EventCategoryOracle,

	EventReservesWithdrawn:   EventCategoryAdmin,
	EventBadDebtWrittenOff:   EventCategoryAdmin,
	EventBorrowRateUpdated:   EventCategoryAdmin,
	EventLiquidationEngine:   EventCategoryAdmin,
	EventPauseGuardSet:       EventCategoryAdmin,
	EventPaused:              EventCategoryAdmin,
	EventUnpaused:            EventCategoryAdmin,
	EventStabilityPoolSet:    EventCategoryAdmin,
	EventSlashedRevenueTaken: EventCategoryAdmin,
}

// Category of the kind, action unless listed otherwise
func (k EventKind) Category() EventCategory {
	if c, ok := eventCategories[k]; ok {
		return c
	}

	return EventCategoryAction
}

// EventData extra data
type EventData map[string]interface{}

// NewEventData new event data instance
func NewEventData() EventData {
	return make(EventData)
}

// EventDataFrom flattens a struct into event data using its json tags
func EventDataFrom(v interface{}) EventData {
	s := structs.New(v)
	s.TagName = "json"
	return s.Map()
}

// Put put data, amounts are rendered as decimal strings
func (d EventData) Put(key string, value interface{}) EventData {
	if v, ok := value.(*uint256.Int); ok {
		if v == nil {
			value = "0"
		} else {
			value = v.Dec()
		}
	}

	d[key] = value
	return d
}

// Format format as []byte
func (d EventData) Format() []byte {
	bs, e := json.Marshal(d)
	if e != nil {
		return []byte("{}")
	}

	return bs
}

// Event one entry of the append-only audit log
type Event struct {
	ID        int64          `sql:"PRIMARY_KEY;AUTO_INCREMENT" json:"id"`
	TraceID   string         `sql:"size:36;index:idx_events_trace_id" json:"trace_id"`
	Op        string         `sql:"size:64" json:"op"`
	Kind      EventKind      `sql:"size:48;index:idx_events_kind" json:"kind"`
	Category  EventCategory  `sql:"size:16" json:"category"`
	Vault     Address        `sql:"size:128;index:idx_events_vault" json:"vault,omitempty"`
	Actor     Address        `sql:"size:128" json:"actor,omitempty"`
	Amount    string         `sql:"size:80" json:"amount,omitempty"`
	Data      types.JSONText `sql:"type:TEXT" json:"data,omitempty"`
	CreatedAt time.Time      `sql:"default:CURRENT_TIMESTAMP" json:"created_at"`
}

// NewEvent builds an event, category follows the kind
func NewEvent(kind EventKind, vault, actor Address, amount *uint256.Int, data EventData) *Event {
	ev := &Event{
		Kind:     kind,
		Category: kind.Category(),
		Vault:    vault,
		Actor:    actor,
		Data:     []byte("{}"),
	}

	if amount != nil {
		ev.Amount = amount.Dec()
	}

	if data != nil {
		ev.Data = data.Format()
	}

	return ev
}

// EventSink receives events emitted during an operation
type EventSink interface {
	Emit(ev *Event)
}

// EventBuffer collects events in order
type EventBuffer struct {
	Events []*Event
}

// Emit append
func (b *EventBuffer) Emit(ev *Event) {
	b.Events = append(b.Events, ev)
}

// Kinds kinds in emission order
func (b *EventBuffer) Kinds() []EventKind {
	kinds := make([]EventKind, 0, len(b.Events))
	for _, ev := range b.Events {
		kinds = append(kinds, ev.Kind)
	}

	return kinds
}

// Has reports whether an event of kind was emitted
func (b *EventBuffer) Has(kind EventKind) bool {
	for _, ev := range b.Events {
		if ev.Kind == kind {
			return true
		}
	}

	return false
}

type eventSinkKey struct{}

// WithEventSink routes events emitted under ctx to sink
func WithEventSink(ctx context.Context, sink EventSink) context.Context {
	return context.WithValue(ctx, eventSinkKey{}, sink)
}

// Emit sends ev to the sink on ctx, events outside an operation are dropped
func Emit(ctx context.Context, ev *Event) {
	if sink, ok := ctx.Value(eventSinkKey{}).(EventSink); ok && sink != nil {
		if ev.CreatedAt.IsZero() {
			ev.CreatedAt = time.Unix(BlockTime(ctx, nil), 0).UTC()
		}

		sink.Emit(ev)
	}
}

// IEventStore append-only event log
type IEventStore interface {
	Append(ctx context.Context, events []*Event) error
	List(ctx context.Context, fromID int64, limit int) ([]*Event, error)
	ListByVault(ctx context.Context, vault Address, fromID int64, limit int) ([]*Event, error)
}

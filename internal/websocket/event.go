package websocket

import (
	"encoding/json"
	"fmt"
	"time"
)

// EventType represents what happened to an entity
type EventType string

const (
	EventTypeUpdated   EventType = "updated"
	EventTypeSynced    EventType = "synced"
	EventTypeReplaced  EventType = "replaced"
	EventTypeDismissed EventType = "dismissed"
)

// EntityType represents the type of entity the event is about
type EntityType string

const (
	EntityTypeBudget EntityType = "budget"
	EntityTypeIncome EntityType = "income"
	EntityTypeLedger EntityType = "ledger"
	EntityTypeAlert  EntityType = "alert"

	EntityTypeSubscription EntityType = "subscription"
)

// Event represents a WebSocket event message sent to clients
// Format: { type, entity, period, payload, timestamp }
type Event struct {
	Type      string      `json:"type"`             // Combined type e.g. "budget.updated"
	Entity    EntityType  `json:"entity"`           // Entity type e.g. "budget"
	Period    string      `json:"period,omitempty"` // Empty for ledger-wide events
	Payload   interface{} `json:"payload"`
	Timestamp time.Time   `json:"timestamp"`
}

// NewEvent creates a new event with the given type, entity, and payload
func NewEvent(eventType EventType, entityType EntityType, payload interface{}) Event {
	return Event{
		Type:      fmt.Sprintf("%s.%s", entityType, eventType),
		Entity:    entityType,
		Payload:   payload,
		Timestamp: time.Now().UTC(),
	}
}

// ForPeriod scopes the event to one period so subscribed clients can filter it
func (e Event) ForPeriod(period string) Event {
	e.Period = period
	return e
}

// ToJSON serializes the event to JSON bytes
func (e Event) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

// BudgetUpdated creates a budget.updated event
func BudgetUpdated(payload interface{}) Event {
	return NewEvent(EventTypeUpdated, EntityTypeBudget, payload)
}

// IncomeSynced creates an income.synced event
func IncomeSynced(payload interface{}) Event {
	return NewEvent(EventTypeSynced, EntityTypeIncome, payload)
}

// LedgerReplaced creates a ledger.replaced event
func LedgerReplaced(payload interface{}) Event {
	return NewEvent(EventTypeReplaced, EntityTypeLedger, payload)
}

// AlertDismissed creates an alert.dismissed event
func AlertDismissed(payload interface{}) Event {
	return NewEvent(EventTypeDismissed, EntityTypeAlert, payload)
}

// SubscriptionUpdated acknowledges a client's period subscriptions
func SubscriptionUpdated(periods []string) Event {
	return NewEvent(EventTypeUpdated, EntityTypeSubscription, map[string]interface{}{"periods": periods})
}

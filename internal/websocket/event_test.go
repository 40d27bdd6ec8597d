package websocket

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewEvent(t *testing.T) {
	payload := map[string]interface{}{
		"period": "2024-01",
		"income": 15000000,
	}

	before := time.Now()
	evt := NewEvent(EventTypeUpdated, EntityTypeBudget, payload)
	after := time.Now()

	assert.Equal(t, "budget.updated", evt.Type)
	assert.Equal(t, EntityTypeBudget, evt.Entity)
	assert.Equal(t, payload, evt.Payload)
	assert.True(t, !evt.Timestamp.Before(before) && !evt.Timestamp.After(after))
}

func TestEvent_JSON_Serialization(t *testing.T) {
	fixedTime := time.Date(2025, 1, 15, 10, 30, 0, 0, time.UTC)
	evt := Event{
		Type:      "income.synced",
		Entity:    EntityTypeIncome,
		Payload:   map[string]interface{}{"period": "2025-01", "income": float64(5079479)},
		Timestamp: fixedTime,
	}

	data, err := json.Marshal(evt)
	require.NoError(t, err)

	var decoded Event
	require.NoError(t, json.Unmarshal(data, &decoded))

	assert.Equal(t, evt.Type, decoded.Type)
	assert.Equal(t, evt.Entity, decoded.Entity)
	assert.Equal(t, fixedTime.UTC(), decoded.Timestamp.UTC())

	decodedPayload, ok := decoded.Payload.(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "2025-01", decodedPayload["period"])
	assert.Equal(t, float64(5079479), decodedPayload["income"])
}

func TestEvent_ToJSON(t *testing.T) {
	evt := LedgerReplaced(map[string]interface{}{"periods": float64(3)})

	data, err := evt.ToJSON()
	require.NoError(t, err)

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &decoded))

	assert.Equal(t, "ledger.replaced", decoded["type"])
	assert.Equal(t, "ledger", decoded["entity"])
	assert.NotNil(t, decoded["payload"])
	assert.NotNil(t, decoded["timestamp"])
}

func TestEvent_Helpers(t *testing.T) {
	payload := map[string]interface{}{"period": "2024-02"}

	tests := []struct {
		name     string
		evt      Event
		wantType string
		entity   EntityType
	}{
		{"BudgetUpdated", BudgetUpdated(payload), "budget.updated", EntityTypeBudget},
		{"IncomeSynced", IncomeSynced(payload), "income.synced", EntityTypeIncome},
		{"LedgerReplaced", LedgerReplaced(payload), "ledger.replaced", EntityTypeLedger},
		{"AlertDismissed", AlertDismissed(payload), "alert.dismissed", EntityTypeAlert},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantType, tt.evt.Type)
			assert.Equal(t, tt.entity, tt.evt.Entity)
			assert.Equal(t, payload, tt.evt.Payload)
		})
	}
}

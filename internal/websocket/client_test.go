package websocket

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClient_WantsEverythingUntilSubscribed(t *testing.T) {
	c := NewClient(nil, "user-1", nil)

	assert.True(t, c.Wants(BudgetUpdated(nil).ForPeriod("2024-03")))
	assert.True(t, c.Wants(LedgerReplaced(nil)))
	assert.Empty(t, c.Periods())
}

func TestClient_Apply(t *testing.T) {
	c := NewClient(nil, "", nil)

	require.NoError(t, c.Apply(Frame{Action: ActionSubscribe, Period: "2024-04"}))
	require.NoError(t, c.Apply(Frame{Action: ActionSubscribe, Period: "2024-03"}))
	assert.Equal(t, []string{"2024-03", "2024-04"}, c.Periods())

	assert.True(t, c.Wants(IncomeSynced(nil).ForPeriod("2024-03")))
	assert.False(t, c.Wants(IncomeSynced(nil).ForPeriod("2024-05")))
	assert.True(t, c.Wants(LedgerReplaced(nil)))

	require.NoError(t, c.Apply(Frame{Action: ActionUnsubscribe, Period: "2024-04"}))
	assert.Equal(t, []string{"2024-03"}, c.Periods())
}

func TestClient_Apply_Rejects(t *testing.T) {
	c := NewClient(nil, "", nil)

	assert.Error(t, c.Apply(Frame{Action: ActionSubscribe, Period: "March"}))
	assert.Error(t, c.Apply(Frame{Action: "watch", Period: "2024-03"}))
	assert.Empty(t, c.Periods())
}

func TestClient_HandleFrame_Acknowledges(t *testing.T) {
	c := NewClient(nil, "", nil)

	c.handleFrame([]byte(`{"action":"subscribe","period":"2024-03"}`))

	require.Len(t, c.send, 1)
	var ack Event
	require.NoError(t, json.Unmarshal(<-c.send, &ack))
	assert.Equal(t, "subscription.updated", ack.Type)
	assert.Equal(t, EntityTypeSubscription, ack.Entity)
	assert.Equal(t, map[string]interface{}{"periods": []interface{}{"2024-03"}}, ack.Payload)
}

func TestClient_HandleFrame_IgnoresGarbage(t *testing.T) {
	c := NewClient(nil, "", nil)

	c.handleFrame([]byte(`not json`))
	c.handleFrame([]byte(`{"action":"subscribe","period":"2024-13"}`))

	assert.Len(t, c.send, 0)
	assert.Empty(t, c.Periods())
}

func TestEvent_ForPeriod(t *testing.T) {
	evt := AlertDismissed(map[string]string{"category": "Makan"}).ForPeriod("2024-03")

	data, err := evt.ToJSON()
	require.NoError(t, err)
	assert.Contains(t, string(data), `"period":"2024-03"`)

	wide, err := LedgerReplaced(nil).ToJSON()
	require.NoError(t, err)
	assert.NotContains(t, string(wide), `"period"`)
}

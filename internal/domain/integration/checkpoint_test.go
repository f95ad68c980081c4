package integration

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ---------------------------------------------------------------------------
// SyncType Tests
// ---------------------------------------------------------------------------

func TestParseSyncType(t *testing.T) {
	tests := []struct {
		input   string
		want    SyncType
		wantErr bool
	}{
		{"offers", SyncTypeOffers, false},
		{"products", SyncTypeOffers, false},
		{" Inventory ", SyncTypeInventory, false},
		{"ORDERS", SyncTypeOrders, false},
		{"tracking", SyncTypeTracking, false},
		{"refunds", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseSyncType(tt.input)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrUnknownSyncType)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestAllSyncTypes(t *testing.T) {
	types := AllSyncTypes()
	assert.Len(t, types, 4)
	for _, st := range types {
		assert.True(t, st.IsValid())
	}
}

// ---------------------------------------------------------------------------
// Checkpoint Tests
// ---------------------------------------------------------------------------

func TestNewCheckpoint(t *testing.T) {
	cp := NewCheckpoint()
	for _, st := range AllSyncTypes() {
		assert.Nil(t, cp.LastSync(st))
	}
	assert.Equal(t, 0, cp.ProcessedCount())
}

func TestCheckpoint_MarkProcessed(t *testing.T) {
	cp := NewCheckpoint()

	assert.False(t, cp.IsProcessed("ABC123-A"))
	assert.True(t, cp.MarkProcessed("ABC123-A"))
	assert.True(t, cp.IsProcessed("ABC123-A"))

	t.Run("duplicate id is not appended", func(t *testing.T) {
		assert.False(t, cp.MarkProcessed("ABC123-A"))
		assert.Equal(t, []string{"ABC123-A"}, cp.ProcessedOrderIDs)
	})

	t.Run("empty id is ignored", func(t *testing.T) {
		assert.False(t, cp.MarkProcessed(""))
		assert.Equal(t, 1, cp.ProcessedCount())
	})

	t.Run("append order is preserved", func(t *testing.T) {
		cp.MarkProcessed("B")
		cp.MarkProcessed("C")
		assert.Equal(t, []string{"ABC123-A", "B", "C"}, cp.ProcessedOrderIDs)
	})
}

func TestCheckpoint_AdvanceAndLastSync(t *testing.T) {
	cp := NewCheckpoint()
	at := time.Date(2024, 5, 1, 10, 30, 0, 0, time.FixedZone("CEST", 2*3600))

	for _, st := range AllSyncTypes() {
		cp.Advance(st, at)
		got := cp.LastSync(st)
		require.NotNil(t, got, st)
		assert.True(t, got.Equal(at))
		assert.Equal(t, time.UTC, got.Location())
	}

	assert.NotNil(t, cp.LastProductSync)
	assert.NotNil(t, cp.LastInventorySync)
	assert.NotNil(t, cp.LastOrderSync)
	assert.NotNil(t, cp.LastTrackingSync)
}

func TestCheckpoint_UnmarshalRebuildsIndex(t *testing.T) {
	raw := `{"last_order_sync":"2024-01-02T03:04:05Z","processed_order_ids":["A","B","A",""]}`

	var cp Checkpoint
	require.NoError(t, json.Unmarshal([]byte(raw), &cp))

	assert.True(t, cp.IsProcessed("A"))
	assert.True(t, cp.IsProcessed("B"))
	assert.False(t, cp.IsProcessed("C"))
	assert.False(t, cp.IsProcessed(""))
	assert.Equal(t, 2, cp.ProcessedCount())
	require.NotNil(t, cp.LastOrderSync)
	assert.Nil(t, cp.LastProductSync)

	assert.Equal(t, []string{"A", "B"}, cp.Clone().ProcessedOrderIDs)

	assert.True(t, cp.MarkProcessed("C"))
	assert.Equal(t, []string{"A", "B", "C"}, cp.ProcessedOrderIDs)
}

func TestCheckpoint_ReadsDoNotModify(t *testing.T) {
	raw := `{"processed_order_ids":["A","A","B"]}`

	var cp Checkpoint
	require.NoError(t, json.Unmarshal([]byte(raw), &cp))

	assert.True(t, cp.IsProcessed("B"))
	assert.Equal(t, 2, cp.ProcessedCount())
	clone := cp.Clone()

	assert.Equal(t, []string{"A", "A", "B"}, cp.ProcessedOrderIDs)
	assert.Nil(t, cp.processed)
	assert.Equal(t, []string{"A", "B"}, clone.ProcessedOrderIDs)
	assert.True(t, clone.IsProcessed("A"))
}

func TestCheckpoint_UnknownFieldsIgnored(t *testing.T) {
	raw := `{"last_refund_sync":"2024-01-02T03:04:05Z","processed_order_ids":["X"],"schema":7}`

	var cp Checkpoint
	require.NoError(t, json.Unmarshal([]byte(raw), &cp))
	assert.True(t, cp.IsProcessed("X"))
}

func TestCheckpoint_Clone(t *testing.T) {
	cp := NewCheckpoint()
	cp.MarkProcessed("A")
	cp.Advance(SyncTypeOrders, time.Now())

	clone := cp.Clone()
	clone.MarkProcessed("B")
	clone.Advance(SyncTypeOrders, time.Now().Add(time.Hour))

	assert.False(t, cp.IsProcessed("B"))
	assert.True(t, clone.IsProcessed("A"))
	assert.NotEqual(t, cp.LastOrderSync, clone.LastOrderSync)
}

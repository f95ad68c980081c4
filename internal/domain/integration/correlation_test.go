package integration

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEncodeCorrelation(t *testing.T) {
	c := EncodeCorrelation("ABC123-A")

	assert.Equal(t, []string{"Mirakl", "Order-ABC123-A"}, c.Tags)
	assert.Equal(t, "Mirakl Order ID: ABC123-A", c.Note)
}

func TestDecodeCorrelationID(t *testing.T) {
	tests := []struct {
		name   string
		note   string
		tags   string
		wantID string
		wantOK bool
	}{
		{"note match", "Mirakl Order ID: ABC123", "", "ABC123", true},
		{"note wins over tag", "Mirakl Order ID: FROM-NOTE", "Mirakl, Order-FROM-TAG", "FROM-NOTE", true},
		{"tag fallback", "gift wrap please", "Mirakl, Order-XYZ9", "XYZ9", true},
		{"tag at start", "", "Order-Q1,Mirakl", "Q1", true},
		{"embedded in longer note", "Imported.\nMirakl Order ID:   77-B\nThanks", "", "77-B", true},
		{"note id with spaces", "Mirakl Order ID: abc 12  \r\nGift", "", "abc 12", true},
		{"note id with dots", "Mirakl Order ID: ORD.1001-A", "", "ORD.1001-A", true},
		{"tag id with slashes", "", "Mirakl, Order-FR/2024/77", "FR/2024/77", true},
		{"tag id with spaces", "", "Mirakl,  Order-abc 12 ", "abc 12", true},
		{"no match", "call before delivery", "Mirakl, wholesale", "", false},
		{"tag substring is not a match", "", "PreOrder-5", "", false},
		{"empty", "", "", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id, ok := DecodeCorrelationID(tt.note, tt.tags)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.wantID, id)
		})
	}
}

func TestCorrelation_RoundTrip(t *testing.T) {
	for _, id := range []string{"ABC123", "ABC123-A", "order_9", "ORD.1001-A", "FR/2024/77", "abc 12"} {
		assert.NoError(t, ValidateCorrelationID(id))
		c := EncodeCorrelation(id)

		got, ok := DecodeCorrelationID(c.Note, "")
		assert.True(t, ok)
		assert.Equal(t, id, got)

		got, ok = DecodeCorrelationID("", strings.Join(c.Tags, ", "))
		assert.True(t, ok)
		assert.Equal(t, id, got)
	}
}

func TestValidateCorrelationID(t *testing.T) {
	tests := []struct {
		id      string
		wantErr bool
	}{
		{"ABC123", false},
		{"ORD.1001-A", false},
		{"FR/2024/77", false},
		{"abc 12", false},
		{"", true},
		{" A", true},
		{"A ", true},
		{"A,B", true},
		{"A\nB", true},
		{"A\rB", true},
	}

	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			err := ValidateCorrelationID(tt.id)
			if !tt.wantErr {
				assert.NoError(t, err)
				return
			}
			assert.True(t, errors.Is(err, ErrOrderSyncInvalidOrder))
		})
	}
}

func TestHasMarketplaceOriginTag(t *testing.T) {
	assert.True(t, HasMarketplaceOriginTag("Mirakl, Order-1"))
	assert.True(t, HasMarketplaceOriginTag("vip,  mirakl "))
	assert.False(t, HasMarketplaceOriginTag("MiraklOrder"))
	assert.False(t, HasMarketplaceOriginTag(""))
}

package domain

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func validEvent() MarketEvent {
	return MarketEvent{
		TxID:       "tx",
		Symbol:     "SOL-PERP",
		Direction:  Long,
		MarketType: MarketPerpetual,
		OrderType:  OrderMarket,
		Price:      100,
		Quantity:   1,
		Fee:        0.1,
		Timestamp:  time.Date(2024, 5, 6, 12, 0, 0, 0, time.UTC),
		IsEntry:    true,
	}
}

func TestMarketEvent_Validate(t *testing.T) {
	nan := math.NaN()
	tests := []struct {
		name    string
		mutate  func(e *MarketEvent)
		wantErr string
	}{
		{name: "valid", mutate: func(e *MarketEvent) {}},
		{name: "empty order type", mutate: func(e *MarketEvent) { e.OrderType = "" }},
		{name: "zero quantity", mutate: func(e *MarketEvent) { e.Quantity = 0 }},
		{name: "empty symbol", mutate: func(e *MarketEvent) { e.Symbol = "" }, wantErr: "symbol is empty"},
		{name: "bad direction", mutate: func(e *MarketEvent) { e.Direction = "up" }, wantErr: "unknown direction"},
		{name: "bad market", mutate: func(e *MarketEvent) { e.MarketType = "futures" }, wantErr: "unknown market type"},
		{name: "bad order type", mutate: func(e *MarketEvent) { e.OrderType = "iceberg" }, wantErr: "unknown order type"},
		{name: "zero timestamp", mutate: func(e *MarketEvent) { e.Timestamp = time.Time{} }, wantErr: "timestamp is zero"},
		{name: "negative price", mutate: func(e *MarketEvent) { e.Price = -1 }, wantErr: "price -1 is negative"},
		{name: "NaN quantity", mutate: func(e *MarketEvent) { e.Quantity = nan }, wantErr: "quantity is not a finite number"},
		{name: "infinite fee", mutate: func(e *MarketEvent) { e.Fee = math.Inf(1) }, wantErr: "fee is not a finite number"},
		{name: "NaN hint", mutate: func(e *MarketEvent) { e.PnLHint = &nan }, wantErr: "pnl hint"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := validEvent()
			tt.mutate(&e)
			err := e.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}

func TestParseHelpers(t *testing.T) {
	assert.Equal(t, Short, ParseDirection(" SHORT "))
	assert.Equal(t, MarketOptions, ParseMarketType("Options"))
	assert.Equal(t, OrderMarket, ParseOrderType(""))
	assert.Equal(t, OrderTakeProfit, ParseOrderType("Take-Profit"))
	assert.False(t, ParseDirection("sideways").Valid())
}

func TestKeysAndNotional(t *testing.T) {
	e := validEvent()
	e.Price, e.Quantity = 2.5, 4
	assert.Equal(t, 10.0, e.Notional())
	assert.Equal(t, "SOL-PERP-long", e.Key().String())

	open := NewOpenPosition(e)
	assert.Equal(t, e.Timestamp, open.EntryTime)
	assert.Equal(t, "tx", open.TxID)

	tr := &Trade{EntryPrice: 3, Quantity: 2}
	assert.Equal(t, 6.0, tr.Notional())
}

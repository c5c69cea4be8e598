package eventfile

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tradeAnalytics/internal/domain"
	"tradeAnalytics/internal/ports"
)

type nopLogger struct{}

func (nopLogger) Debug(ctx context.Context, msg string, fields ...map[string]interface{}) {}
func (nopLogger) Info(ctx context.Context, msg string, fields ...map[string]interface{})  {}
func (nopLogger) Warn(ctx context.Context, msg string, fields ...map[string]interface{})  {}
func (nopLogger) Error(ctx context.Context, err error, msg string, fields ...map[string]interface{}) {
}

const sampleCSV = `tx_id,timestamp,symbol,direction,market_type,order_type,price,quantity,fee,is_entry,pnl_hint
open-1,2024-05-06T12:00:00Z,SOL-PERP,LONG,perpetual,limit,100,2,0.1,true,
close-1,2024-05-06T13:30:00Z,SOL-PERP,long,Perpetual,,110,2,0.1,false,18.5
`

const sampleJSON = `[
  {"tx_id": "open-1", "timestamp": "2024-05-06T12:00:00Z", "symbol": "SOL-PERP", "direction": "LONG",
   "market_type": "perpetual", "order_type": "limit", "price": 100, "quantity": 2, "fee": 0.1, "is_entry": true},
  {"tx_id": "close-1", "timestamp": "2024-05-06T13:30:00Z", "symbol": "SOL-PERP", "direction": "long",
   "market_type": "Perpetual", "price": 110, "quantity": 2, "fee": 0.1, "is_entry": false, "pnl_hint": 18.5}
]`

const sampleYAML = `
- tx_id: open-1
  timestamp: "2024-05-06T12:00:00Z"
  symbol: SOL-PERP
  direction: LONG
  market_type: perpetual
  order_type: limit
  price: 100
  quantity: 2
  fee: 0.1
  is_entry: true
- tx_id: close-1
  timestamp: "2024-05-06T13:30:00Z"
  symbol: SOL-PERP
  direction: long
  market_type: Perpetual
  price: 110
  quantity: 2
  fee: 0.1
  is_entry: false
  pnl_hint: 18.5
`

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func assertSampleEvents(t *testing.T, events []domain.MarketEvent) {
	t.Helper()
	require.Len(t, events, 2)

	open := events[0]
	assert.Equal(t, "open-1", open.TxID)
	assert.Equal(t, "SOL-PERP", open.Symbol)
	assert.Equal(t, domain.Long, open.Direction)
	assert.Equal(t, domain.MarketPerpetual, open.MarketType)
	assert.Equal(t, domain.OrderLimit, open.OrderType)
	assert.Equal(t, 100.0, open.Price)
	assert.Equal(t, 2.0, open.Quantity)
	assert.Equal(t, 0.1, open.Fee)
	assert.True(t, open.IsEntry)
	assert.Nil(t, open.PnLHint)
	assert.True(t, open.Timestamp.Equal(time.Date(2024, 5, 6, 12, 0, 0, 0, time.UTC)))

	closing := events[1]
	assert.Equal(t, domain.OrderMarket, closing.OrderType)
	assert.Equal(t, domain.MarketPerpetual, closing.MarketType)
	assert.False(t, closing.IsEntry)
	require.NotNil(t, closing.PnLHint)
	assert.Equal(t, 18.5, *closing.PnLHint)
	assert.NoError(t, closing.Validate())
}

func TestSource_Events(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		content string
	}{
		{name: "csv", file: "events.csv", content: sampleCSV},
		{name: "json", file: "events.json", content: sampleJSON},
		{name: "yaml", file: "events.yaml", content: sampleYAML},
		{name: "yml", file: "events.yml", content: sampleYAML},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src, err := NewSource(writeFile(t, tt.file, tt.content), nopLogger{})
			require.NoError(t, err)

			events, err := src.Events(context.Background())
			require.NoError(t, err)
			assertSampleEvents(t, events)
		})
	}
}

func TestSource_MissingFile(t *testing.T) {
	src, err := NewSource(filepath.Join(t.TempDir(), "absent.csv"), nopLogger{})
	require.NoError(t, err)

	_, err = src.Events(context.Background())
	assert.ErrorIs(t, err, ports.ErrSourceUnavailable)
}

func TestSource_CanceledContext(t *testing.T) {
	src, err := NewSource(writeFile(t, "events.csv", sampleCSV), nopLogger{})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = src.Events(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestNewSource_Errors(t *testing.T) {
	_, err := NewSource("", nopLogger{})
	assert.ErrorIs(t, err, ports.ErrConfigurationError)

	_, err = NewSource("events.txt", nopLogger{})
	assert.ErrorIs(t, err, ports.ErrConfigurationError)

	_, err = NewSource("events.csv", nil)
	assert.ErrorIs(t, err, ports.ErrConfigurationError)
}

func TestReadCSV_Malformed(t *testing.T) {
	const header = "timestamp,symbol,direction,market_type,price,quantity,fee,is_entry\n"
	tests := []struct {
		name    string
		input   string
		wantMsg string
	}{
		{name: "missing column", input: "timestamp,symbol\n2024-05-06T12:00:00Z,SOL\n", wantMsg: `missing column "direction"`},
		{name: "bad price", input: header + "2024-05-06T12:00:00Z,SOL,long,spot,abc,1,0,true\n", wantMsg: "line 2"},
		{name: "bad bool", input: header + "2024-05-06T12:00:00Z,SOL,long,spot,1,1,0,maybe\n", wantMsg: "invalid is_entry"},
		{name: "bad timestamp", input: header + "yesterday,SOL,long,spot,1,1,0,true\n", wantMsg: "not RFC3339"},
		{name: "short row", input: header + "2024-05-06T12:00:00Z,SOL\n", wantMsg: "wrong number of fields"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadCSV(strings.NewReader(tt.input))
			require.Error(t, err)
			assert.ErrorIs(t, err, ports.ErrMalformedInput)
			assert.Contains(t, err.Error(), tt.wantMsg)
		})
	}
}

func TestReadCSV_EmptyAndComments(t *testing.T) {
	events, err := ReadCSV(strings.NewReader(""))
	require.NoError(t, err)
	assert.Empty(t, events)

	input := "timestamp,symbol,direction,market_type,price,quantity,fee,is_entry\n" +
		"# exported 2024-05-06\n" +
		"2024-05-06T12:00:00Z,SOL,short,spot,1,1,0,1\n"
	events, err = ReadCSV(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, domain.Short, events[0].Direction)
	assert.Equal(t, domain.OrderMarket, events[0].OrderType)
}

func TestDecode_Malformed(t *testing.T) {
	_, err := Decode([]byte(`{"not": "a list"}`), FormatJSON)
	assert.ErrorIs(t, err, ports.ErrMalformedInput)

	_, err = Decode([]byte(`[{"symbol": "SOL"}]`), FormatJSON)
	assert.ErrorIs(t, err, ports.ErrMalformedInput)
	assert.Contains(t, err.Error(), "timestamp is empty")

	_, err = Decode([]byte("- [unclosed"), FormatYAML)
	assert.ErrorIs(t, err, ports.ErrMalformedInput)

	events, err := Decode(nil, FormatJSON)
	require.NoError(t, err)
	assert.Empty(t, events)
}

func TestWriteCSV_ReadBack(t *testing.T) {
	hint := -3.25
	want := []domain.MarketEvent{
		{
			TxID: "a", Symbol: "ETH", Direction: domain.Short, MarketType: domain.MarketOptions,
			OrderType: domain.OrderStopLoss, Price: 3200.5, Quantity: 0.25, Fee: 0.75,
			Timestamp: time.Date(2024, 1, 2, 3, 4, 5, 600, time.UTC), IsEntry: false, PnLHint: &hint,
		},
		{
			Symbol: "ETH", Direction: domain.Short, MarketType: domain.MarketOptions,
			OrderType: domain.OrderMarket, Price: 3100, Quantity: 0.25,
			Timestamp: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), IsEntry: true,
		},
	}

	path := filepath.Join(t.TempDir(), "out.csv")
	require.NoError(t, WriteCSV(want, path))

	src, err := NewSource(path, nopLogger{})
	require.NoError(t, err)
	got, err := src.Events(context.Background())
	require.NoError(t, err)
	require.Len(t, got, len(want))

	for i := range want {
		assert.True(t, want[i].Timestamp.Equal(got[i].Timestamp))
		got[i].Timestamp = want[i].Timestamp
		assert.Equal(t, want[i], got[i])
	}
}

package eventfile

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"tradeAnalytics/internal/domain"
	"tradeAnalytics/internal/ports"
)

// csvHeader is the column layout written by WriteCSV. ReadCSV accepts the
// columns in any order; pnl_hint and order_type may be omitted.
var csvHeader = []string{
	"tx_id", "timestamp", "symbol", "direction", "market_type", "order_type",
	"price", "quantity", "fee", "is_entry", "pnl_hint",
}

var requiredColumns = []string{"timestamp", "symbol", "direction", "market_type", "price", "quantity", "fee", "is_entry"}

// ReadCSV parses events from r. The first row must be a header.
func ReadCSV(r io.Reader) ([]domain.MarketEvent, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true
	reader.Comment = '#'

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return []domain.MarketEvent{}, nil
		}
		return nil, fmt.Errorf("failed to read csv header: %w: %w", ports.ErrMalformedInput, err)
	}

	cols := make(map[string]int, len(header))
	for i, name := range header {
		cols[strings.ToLower(strings.TrimSpace(name))] = i
	}
	for _, name := range requiredColumns {
		if _, ok := cols[name]; !ok {
			return nil, fmt.Errorf("csv header is missing column %q: %w", name, ports.ErrMalformedInput)
		}
	}

	events := make([]domain.MarketEvent, 0)
	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read csv: %w: %w", ports.ErrMalformedInput, err)
		}
		line, _ := reader.FieldPos(0)

		rec, err := csvRecord(row, cols)
		if err != nil {
			return nil, fmt.Errorf("csv line %d: %w: %w", line, ports.ErrMalformedInput, err)
		}
		event, err := rec.toEvent()
		if err != nil {
			return nil, fmt.Errorf("csv line %d: %w: %w", line, ports.ErrMalformedInput, err)
		}
		events = append(events, event)
	}
	return events, nil
}

func csvRecord(row []string, cols map[string]int) (record, error) {
	field := func(name string) string {
		if i, ok := cols[name]; ok {
			return strings.TrimSpace(row[i])
		}
		return ""
	}

	rec := record{
		TxID:       field("tx_id"),
		Timestamp:  field("timestamp"),
		Symbol:     field("symbol"),
		Direction:  field("direction"),
		MarketType: field("market_type"),
		OrderType:  field("order_type"),
	}

	var err error
	if rec.Price, err = parseFloat("price", field("price")); err != nil {
		return record{}, err
	}
	if rec.Quantity, err = parseFloat("quantity", field("quantity")); err != nil {
		return record{}, err
	}
	if rec.Fee, err = parseFloat("fee", field("fee")); err != nil {
		return record{}, err
	}
	if rec.IsEntry, err = strconv.ParseBool(field("is_entry")); err != nil {
		return record{}, fmt.Errorf("invalid is_entry %q", field("is_entry"))
	}
	if hint := field("pnl_hint"); hint != "" {
		v, err := parseFloat("pnl_hint", hint)
		if err != nil {
			return record{}, err
		}
		rec.PnLHint = &v
	}
	return rec, nil
}

func parseFloat(name, s string) (float64, error) {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q", name, s)
	}
	return v, nil
}

// WriteCSV writes events to filename in the layout ReadCSV expects.
func WriteCSV(events []domain.MarketEvent, filename string) error {
	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer file.Close()

	writer := csv.NewWriter(file)

	if err := writer.Write(csvHeader); err != nil {
		return err
	}

	for _, e := range events {
		hint := ""
		if e.PnLHint != nil {
			hint = strconv.FormatFloat(*e.PnLHint, 'f', -1, 64)
		}
		if err := writer.Write([]string{
			e.TxID,
			e.Timestamp.Format(time.RFC3339Nano),
			e.Symbol,
			string(e.Direction),
			string(e.MarketType),
			string(e.OrderType),
			strconv.FormatFloat(e.Price, 'f', -1, 64),
			strconv.FormatFloat(e.Quantity, 'f', -1, 64),
			strconv.FormatFloat(e.Fee, 'f', -1, 64),
			strconv.FormatBool(e.IsEntry),
			hint,
		}); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

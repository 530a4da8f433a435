package gateway

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/warp/refund-engine/refund"
)

// tradeColumns is the expected header, in order.
var tradeColumns = []string{
	"name", "timeZone", "signUpDate", "source",
	"investmentDate", "investmentTime", "refundRequestDate", "refundRequestTime",
}

// CSVTradeReader reads trade records from CSV files.
type CSVTradeReader struct{}

// NewCSVTradeReader creates a new reader instance.
func NewCSVTradeReader() *CSVTradeReader {
	return &CSVTradeReader{}
}

// ReadTrades reads and parses a trades CSV file. Field contents are passed
// through untouched; the evaluator decides what is malformed.
func (r *CSVTradeReader) ReadTrades(ctx context.Context, path string) ([]refund.TradeRecord, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open trades file %s: %w", path, err)
	}
	defer file.Close()

	trades, err := r.Decode(ctx, file)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return trades, nil
}

// Decode parses trades from any reader. The header row is required and
// columns may appear in any order.
func (r *CSVTradeReader) Decode(ctx context.Context, in io.Reader) ([]refund.TradeRecord, error) {
	reader := csv.NewReader(in)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}
	index, err := columnIndex(header)
	if err != nil {
		return nil, err
	}

	var trades []refund.TradeRecord
	for line := 2; ; line++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("error reading record on line %d: %w", line, err)
		}
		if len(record) != len(header) {
			return nil, fmt.Errorf("line %d: expected %d fields, got %d", line, len(header), len(record))
		}

		field := func(name string) string { return record[index[name]] }
		trades = append(trades, refund.TradeRecord{
			Name:              field("name"),
			TimeZone:          field("timeZone"),
			SignUpDate:        field("signUpDate"),
			Source:            refund.Source(field("source")),
			InvestmentDate:    field("investmentDate"),
			InvestmentTime:    field("investmentTime"),
			RefundRequestDate: field("refundRequestDate"),
			RefundRequestTime: field("refundRequestTime"),
		})
	}
	return trades, nil
}

func columnIndex(header []string) (map[string]int, error) {
	index := make(map[string]int, len(header))
	for i, h := range header {
		if i == 0 {
			// Excel prefixes UTF-8 exports with a byte order mark.
			h = strings.TrimPrefix(h, "\ufeff")
		}
		index[strings.TrimSpace(h)] = i
	}
	var missing []string
	for _, c := range tradeColumns {
		if _, ok := index[c]; !ok {
			missing = append(missing, c)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("header is missing columns: %s", strings.Join(missing, ", "))
	}
	return index, nil
}

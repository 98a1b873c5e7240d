package universe

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"

	"nsewatch/models"
)

// Accepted header names for the symbol column, checked in this order.
var symbolHeaders = []string{"SYMBOL", "Symbol"}

// Ticker is one tracked instrument: the raw exchange symbol and its
// provider-qualified form.
type Ticker struct {
	Symbol string
	Yahoo  string
}

// Loader reads the tracked-symbol universe from a CSV file and
// qualifies each symbol with the exchange suffix.
type Loader struct {
	Path   string
	Suffix string
}

func NewLoader(path, suffix string) *Loader {
	return &Loader{Path: path, Suffix: suffix}
}

// Load reads the symbol list, preserving source row order. A missing
// file reports models.ErrSourceNotFound so callers can distinguish it
// from parse failures.
func (l *Loader) Load() ([]Ticker, error) {
	file, err := os.Open(l.Path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", models.ErrSourceNotFound, l.Path)
		}
		return nil, fmt.Errorf("open symbol list: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.ReuseRecord = true
	reader.FieldsPerRecord = -1 // the listing file has a ragged tail column

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("read symbol list header: %w", err)
	}

	col, err := symbolColumn(header)
	if err != nil {
		return nil, err
	}

	var tickers []Ticker
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read symbol list row: %w", err)
		}
		if col >= len(record) {
			continue
		}
		symbol := strings.TrimSpace(record[col])
		if symbol == "" {
			continue
		}
		tickers = append(tickers, Ticker{
			Symbol: symbol,
			Yahoo:  symbol + l.Suffix,
		})
	}

	return tickers, nil
}

func symbolColumn(header []string) (int, error) {
	for _, name := range symbolHeaders {
		for i, h := range header {
			if strings.TrimSpace(h) == name {
				return i, nil
			}
		}
	}
	return 0, fmt.Errorf("symbol list has no SYMBOL column (header: %s)", strings.Join(header, ","))
}

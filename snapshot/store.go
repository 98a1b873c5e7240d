package snapshot

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"nsewatch/models"
)

var cacheHeader = []string{"Symbol", "Latest", "Previous", "Difference", "Change"}

// Store persists one snapshot file per calendar date under a base
// directory. Entries are never mutated in place: a write is always a
// full overwrite. No locking: concurrent writers for the same date are
// a known last-write-wins race, acceptable because writes only happen
// for immutable past dates or for today after market close.
type Store struct {
	Dir string
}

func NewStore(dir string) *Store {
	return &Store{Dir: dir}
}

// EnsureDir creates the cache directory if absent. Called at startup.
func (s *Store) EnsureDir() error {
	return os.MkdirAll(s.Dir, 0755)
}

func (s *Store) path(date string) string {
	return filepath.Join(s.Dir, date+".csv")
}

// Exists reports whether a cache entry is present for the date.
func (s *Store) Exists(date string) bool {
	_, err := os.Stat(s.path(date))
	return err == nil
}

// Read loads a persisted snapshot. Row order is returned verbatim; the
// persisted ranking is trusted. Unparseable content reports
// models.ErrCorruptCache.
func (s *Store) Read(date string) (models.Snapshot, error) {
	file, err := os.Open(s.path(date))
	if err != nil {
		return nil, fmt.Errorf("open cache entry for %s: %w", date, err)
	}
	defer file.Close()

	records, err := csv.NewReader(file).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", models.ErrCorruptCache, date, err)
	}
	if len(records) == 0 || len(records[0]) != len(cacheHeader) {
		return nil, fmt.Errorf("%w: %s: unexpected header", models.ErrCorruptCache, date)
	}

	snap := make(models.Snapshot, 0, len(records)-1)
	for _, record := range records[1:] {
		row, err := parseRow(record)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %v", models.ErrCorruptCache, date, err)
		}
		snap = append(snap, row)
	}
	return snap, nil
}

func parseRow(record []string) (models.SnapshotRow, error) {
	var row models.SnapshotRow
	if len(record) != len(cacheHeader) {
		return row, fmt.Errorf("expected %d fields, got %d", len(cacheHeader), len(record))
	}
	row.Symbol = record[0]
	for i, dst := range []*float64{&row.Latest, &row.Previous, &row.Difference, &row.Change} {
		v, err := strconv.ParseFloat(record[i+1], 64)
		if err != nil {
			return row, fmt.Errorf("invalid %s value %q", cacheHeader[i+1], record[i+1])
		}
		*dst = v
	}
	return row, nil
}

// Write persists a snapshot, fully overwriting any existing entry.
// IO errors are propagated, not retried.
func (s *Store) Write(date string, snap models.Snapshot) error {
	file, err := os.Create(s.path(date))
	if err != nil {
		return fmt.Errorf("create cache entry for %s: %w", date, err)
	}
	defer file.Close()

	w := csv.NewWriter(file)
	if err := w.Write(cacheHeader); err != nil {
		return fmt.Errorf("write cache header: %w", err)
	}
	for _, row := range snap {
		record := []string{
			row.Symbol,
			formatPrice(row.Latest),
			formatPrice(row.Previous),
			formatPrice(row.Difference),
			formatPrice(row.Change),
		}
		if err := w.Write(record); err != nil {
			return fmt.Errorf("write cache row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("flush cache entry for %s: %w", date, err)
	}
	return nil
}

func formatPrice(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}

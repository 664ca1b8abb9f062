// Package csvio reads pre-parsed statement rows and reads/writes the unified
// ledger as CSV. It exists for the CLI; the core packages never touch files.
package csvio

import (
	"fmt"
	"os"

	"ledgerunify/internal/mapper"
	"ledgerunify/internal/models"

	"github.com/gocarina/gocsv"
)

// ReadRawRows reads a CSV of raw statement rows into header-keyed maps, the
// shape the field mapper consumes.
func ReadRawRows(path string) ([]mapper.RawRow, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("error opening raw rows file: %w", err)
	}
	defer func() { _ = f.Close() }()

	maps, err := gocsv.CSVToMaps(f)
	if err != nil {
		return nil, fmt.Errorf("error reading raw rows from %s: %w", path, err)
	}

	rows := make([]mapper.RawRow, len(maps))
	for i, m := range maps {
		rows[i] = mapper.RawRow(m)
	}
	return rows, nil
}

// ReadLedger reads a previously written unified ledger. A missing file is an
// empty ledger, not an error: the first import starts from nothing.
func ReadLedger(path string) ([]models.Transaction, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return []models.Transaction{}, nil
		}
		return nil, fmt.Errorf("error opening ledger file: %w", err)
	}
	defer func() { _ = f.Close() }()

	var transactions []models.Transaction
	if err := gocsv.UnmarshalFile(f, &transactions); err != nil {
		return nil, fmt.Errorf("error reading ledger from %s: %w", path, err)
	}
	return transactions, nil
}

// WriteLedger writes the unified ledger to CSV.
func WriteLedger(path string, transactions []models.Transaction) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("error creating ledger file: %w", err)
	}
	defer func() { _ = f.Close() }()

	if err := gocsv.MarshalFile(&transactions, f); err != nil {
		return fmt.Errorf("error writing ledger to %s: %w", path, err)
	}
	return nil
}

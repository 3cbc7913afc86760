// Package results persists sampling tables, simulation outputs and PRCC
// vectors as delimited numeric text files, and records every run in a
// SQLite catalog.
package results

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
)

// tableDelimiter matches the semicolon-delimited tables of the sensitivity
// pipeline's file format.
const tableDelimiter = ';'

// WriteTable writes a numeric table, one row per line, semicolon-delimited,
// with full float64 round-trip precision.
func WriteTable(path string, rows [][]float64) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create table file: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	w.Comma = tableDelimiter
	record := []string{}
	for i, row := range rows {
		record = record[:0]
		for _, v := range row {
			record = append(record, strconv.FormatFloat(v, 'g', -1, 64))
		}
		if err := w.Write(record); err != nil {
			return fmt.Errorf("write table row %d: %w", i, err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("flush table: %w", err)
	}
	return nil
}

// ReadTable reads a semicolon-delimited numeric table.
func ReadTable(path string) ([][]float64, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open table file: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.Comma = tableDelimiter
	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read table: %w", err)
	}

	rows := make([][]float64, len(records))
	for i, record := range records {
		rows[i] = make([]float64, len(record))
		for j, field := range record {
			v, err := strconv.ParseFloat(field, 64)
			if err != nil {
				return nil, fmt.Errorf("table %s row %d column %d: %w", path, i, j, err)
			}
			rows[i][j] = v
		}
	}
	return rows, nil
}

// WriteVector writes a single column of values, one per line.
func WriteVector(path string, values []float64) error {
	rows := make([][]float64, len(values))
	for i, v := range values {
		rows[i] = []float64{v}
	}
	return WriteTable(path, rows)
}

// ReadVector reads a single-column table back into a flat slice.
func ReadVector(path string) ([]float64, error) {
	rows, err := ReadTable(path)
	if err != nil {
		return nil, err
	}
	out := make([]float64, len(rows))
	for i, row := range rows {
		if len(row) != 1 {
			return nil, fmt.Errorf("vector file %s row %d has %d columns, want 1", path, i, len(row))
		}
		out[i] = row[0]
	}
	return out, nil
}

package loader

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/ppiankov/joulespectre/internal/dataset"
)

// table is a CSV body addressed by column name.
type table struct {
	name    string
	columns map[string]int
	rows    [][]string
}

// readTable parses a headered CSV and checks that every required column is present.
// Extra columns are ignored.
func readTable(name string, r io.Reader, required ...string) (*table, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%s: empty file", name)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: read header: %w", name, err)
	}

	columns := make(map[string]int, len(header))
	for i, h := range header {
		h = strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
		if _, dup := columns[h]; !dup {
			columns[h] = i
		}
	}
	for _, col := range required {
		if _, ok := columns[col]; !ok {
			return nil, &dataset.SchemaError{File: name, Column: col}
		}
	}

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return &table{name: name, columns: columns, rows: rows}, nil
}

// line returns the 1-based file line of data row i.
func (t *table) line(i int) int {
	return i + 2
}

func (t *table) str(row []string, col string) string {
	return strings.TrimSpace(row[t.columns[col]])
}

func (t *table) intAt(i int, col string) (int, error) {
	v := t.str(t.rows[i], col)
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s line %d: %s %q is not an integer", t.name, t.line(i), col, v)
	}
	return n, nil
}

func (t *table) floatAt(i int, col string) (float64, error) {
	v := t.str(t.rows[i], col)
	f, err := strconv.ParseFloat(v, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("%s line %d: %s %q is not a number", t.name, t.line(i), col, v)
	}
	return f, nil
}

package imageio

import (
	"encoding/csv"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/plateworks/tavola/pkg/catalog"
	"github.com/plateworks/tavola/pkg/errors"
)

// Table holds per-image metadata loaded from a CSV file. The first column
// is the image name key; the remaining columns become metadata fields.
type Table struct {
	// Fields are the metadata field names in header order, without the
	// key column.
	Fields []string

	rows map[string]map[string]string
}

// ReadMetadata parses CSV metadata from r. The first row is the header;
// the first column identifies the image file the row belongs to. Short
// rows are padded with empty values, surplus cells are ignored.
func ReadMetadata(r io.Reader) (*Table, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	records, err := cr.ReadAll()
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeInvalidInput, "parse metadata CSV")
	}
	if len(records) == 0 || len(records[0]) < 2 {
		return nil, errors.New(errors.ErrCodeInvalidInput, "metadata CSV needs a header with a key column and at least one field")
	}

	header := records[0]
	fields := make([]string, len(header)-1)
	for i, name := range header[1:] {
		fields[i] = strings.TrimSpace(name)
	}

	t := &Table{Fields: fields, rows: make(map[string]map[string]string, len(records)-1)}
	for _, rec := range records[1:] {
		if len(rec) == 0 || strings.TrimSpace(rec[0]) == "" {
			continue
		}
		row := make(map[string]string, len(fields))
		for i, field := range fields {
			if i+1 < len(rec) {
				row[field] = strings.TrimSpace(rec[i+1])
			}
		}
		t.rows[strings.TrimSpace(rec[0])] = row
	}
	return t, nil
}

// LoadMetadata reads a CSV metadata file from disk.
func LoadMetadata(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeFileNotFound, "open metadata file %s", path)
	}
	defer f.Close()
	return ReadMetadata(f)
}

// Lookup returns the metadata row for an image name. Keys match exactly
// first, then with the extension stripped on either side, so "vessel_01"
// in the CSV matches "vessel_01.png" on disk.
func (t *Table) Lookup(name string) map[string]string {
	if row, ok := t.rows[name]; ok {
		return row
	}
	stem := strings.TrimSuffix(name, filepath.Ext(name))
	if row, ok := t.rows[stem]; ok {
		return row
	}
	for key, row := range t.rows {
		if strings.TrimSuffix(key, filepath.Ext(key)) == stem {
			return row
		}
	}
	return nil
}

// Apply attaches metadata rows to items in place. Items without a row
// keep a nil Meta map; the layout engine sorts their missing values last.
func (t *Table) Apply(items []catalog.ImageItem) {
	if t == nil {
		return
	}
	for i := range items {
		if row := t.Lookup(items[i].ID); row != nil {
			items[i].Meta = row
		}
	}
}

// Package export writes accumulated tree records to files under a fixed,
// ordered column schema.
package export

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/rotisserie/eris"

	"github.com/kodujdlapolski/tree-research/internal/model"
)

// FilePrefix starts every export file name.
const FilePrefix = "trees"

// SchemaError reports a record carrying keys that are not declared columns.
// Missing columns are not an error; they export as empty cells.
type SchemaError struct {
	Row      int
	RecordID string
	Keys     []string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("export: record %d (id %q) has undeclared keys: %s",
		e.Row, e.RecordID, strings.Join(e.Keys, ", "))
}

// Rows lays records out under columns, one cell per column, in order.
func Rows(records []model.Record, columns []string) ([][]string, error) {
	if len(columns) == 0 {
		return nil, eris.New("export: no columns declared")
	}
	index := make(map[string]int, len(columns))
	for i, c := range columns {
		if _, dup := index[c]; dup {
			return nil, eris.Errorf("export: duplicate column %q", c)
		}
		index[c] = i
	}

	rows := make([][]string, 0, len(records))
	for i, rec := range records {
		var extra []string
		for k := range rec {
			if _, ok := index[k]; !ok {
				extra = append(extra, k)
			}
		}
		if len(extra) > 0 {
			slices.Sort(extra)
			return nil, &SchemaError{Row: i, RecordID: rec.ID(), Keys: extra}
		}

		row := make([]string, len(columns))
		for j, c := range columns {
			row[j] = FormatValue(rec[c])
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// FormatValue renders a parsed payload value as cell text.
func FormatValue(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case bool:
		if x {
			return "True"
		}
		return "False"
	case int:
		return strconv.Itoa(x)
	case int64:
		return strconv.FormatInt(x, 10)
	case uint64:
		return strconv.FormatUint(x, 10)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	default:
		return fmt.Sprint(x)
	}
}

// FileName returns the dated export name, e.g. trees_2024-05-01.csv.
func FileName(now time.Time, ext string) string {
	return FilePrefix + "_" + now.Format(time.DateOnly) + "." + ext
}

// createOutput makes dir and creates the named file in it.
func createOutput(dir, name string) (*os.File, string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, "", eris.Wrapf(err, "export: create dir %s", dir)
	}
	path := filepath.Join(dir, name)
	f, err := os.Create(path)
	if err != nil {
		return nil, "", eris.Wrapf(err, "export: create %s", path)
	}
	return f, path, nil
}

// finish closes f and removes it when the write failed.
func finish(f *os.File, path string, writeErr error) error {
	closeErr := f.Close()
	if writeErr == nil && closeErr != nil {
		writeErr = eris.Wrapf(closeErr, "export: close %s", path)
	}
	if writeErr != nil {
		_ = os.Remove(path)
	}
	return writeErr
}

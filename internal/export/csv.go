package export

import (
	"encoding/csv"
	"io"
	"time"

	"github.com/rotisserie/eris"

	"github.com/kodujdlapolski/tree-research/internal/model"
)

// CSV writes a header row of columns followed by one row per record.
func CSV(w io.Writer, records []model.Record, columns []string) error {
	rows, err := Rows(records, columns)
	if err != nil {
		return err
	}
	return writeCSV(w, columns, rows)
}

func writeCSV(w io.Writer, columns []string, rows [][]string) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(columns); err != nil {
		return eris.Wrap(err, "export: write csv header")
	}
	for _, row := range rows {
		if err := cw.Write(row); err != nil {
			return eris.Wrap(err, "export: write csv row")
		}
	}
	cw.Flush()
	return eris.Wrap(cw.Error(), "export: flush csv")
}

// WriteCSVFile writes records to dir/trees_<date>.csv and returns the path.
// The schema is checked before the file is created.
func WriteCSVFile(dir string, now time.Time, records []model.Record, columns []string) (string, error) {
	rows, err := Rows(records, columns)
	if err != nil {
		return "", err
	}

	f, path, err := createOutput(dir, FileName(now, "csv"))
	if err != nil {
		return "", err
	}
	if err := finish(f, path, writeCSV(f, columns, rows)); err != nil {
		return "", err
	}
	return path, nil
}

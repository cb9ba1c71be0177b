package export

import (
	"time"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"

	"github.com/kodujdlapolski/tree-research/internal/model"
)

// SheetName is the worksheet the XLSX export writes.
const SheetName = "trees"

// WriteXLSXFile writes records to dir/trees_<date>.xlsx.
func WriteXLSXFile(dir string, now time.Time, records []model.Record, columns []string) (string, error) {
	rows, err := Rows(records, columns)
	if err != nil {
		return "", err
	}

	file := xlsx.NewFile()
	sheet, err := file.AddSheet(SheetName)
	if err != nil {
		return "", eris.Wrap(err, "export: add sheet")
	}
	addRow(sheet, columns)
	for _, r := range rows {
		addRow(sheet, r)
	}

	f, path, err := createOutput(dir, FileName(now, "xlsx"))
	if err != nil {
		return "", err
	}
	if err := finish(f, path, eris.Wrap(file.Write(f), "export: write xlsx")); err != nil {
		return "", err
	}
	return path, nil
}

func addRow(sheet *xlsx.Sheet, values []string) {
	row := sheet.AddRow()
	for _, v := range values {
		row.AddCell().SetString(v)
	}
}

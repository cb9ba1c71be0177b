package export

import (
	"time"

	"github.com/rotisserie/eris"

	"github.com/kodujdlapolski/tree-research/internal/model"
)

// Output formats.
const (
	FormatCSV       = "csv"
	FormatXLSX      = "xlsx"
	FormatGeoJSON   = "geojson"
	FormatShapefile = "shp"
)

// Formats lists every supported format; csv is the primary output.
var Formats = []string{FormatCSV, FormatXLSX, FormatGeoJSON, FormatShapefile}

type writeFunc func(dir string, now time.Time, records []model.Record, columns []string) (string, error)

var writers = map[string]writeFunc{
	FormatCSV:       WriteCSVFile,
	FormatXLSX:      WriteXLSXFile,
	FormatGeoJSON:   WriteGeoJSONFile,
	FormatShapefile: WriteShapefile,
}

// Write exports records in each format and returns the written paths in the
// order the formats were given. It stops at the first failure.
func Write(formats []string, dir string, now time.Time, records []model.Record, columns []string) ([]string, error) {
	if _, err := Rows(records, columns); err != nil {
		return nil, err
	}

	paths := make([]string, 0, len(formats))
	for _, f := range formats {
		w, ok := writers[f]
		if !ok {
			return paths, eris.Errorf("export: unknown format %q", f)
		}
		path, err := w(dir, now, records, columns)
		if err != nil {
			return paths, err
		}
		paths = append(paths, path)
	}
	return paths, nil
}

package export

import (
	"encoding/json"
	"time"

	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom/encoding/geojson"
	"go.uber.org/zap"

	"github.com/kodujdlapolski/tree-research/internal/model"
)

// GeoJSON builds a FeatureCollection of tree points. Coordinates stay in the
// service projection (EPSG:2178); properties are the declared columns.
// Records without a numeric position are left out.
func GeoJSON(records []model.Record, columns []string) (*geojson.FeatureCollection, error) {
	rows, err := Rows(records, columns)
	if err != nil {
		return nil, err
	}

	fc := &geojson.FeatureCollection{Features: make([]*geojson.Feature, 0, len(records))}
	var skipped int
	for i, rec := range records {
		pt, err := rec.Point(model.SRIDPoland2000Zone7)
		if err != nil {
			skipped++
			continue
		}
		props := make(map[string]any, len(columns))
		for j, c := range columns {
			props[c] = rows[i][j]
		}
		fc.Features = append(fc.Features, &geojson.Feature{
			ID:         rec.ID(),
			Geometry:   pt,
			Properties: props,
		})
	}
	if skipped > 0 {
		zap.L().Warn("export: records without position left out of geojson", zap.Int("skipped", skipped))
	}
	return fc, nil
}

// WriteGeoJSONFile writes records to dir/trees_<date>.geojson.
func WriteGeoJSONFile(dir string, now time.Time, records []model.Record, columns []string) (string, error) {
	fc, err := GeoJSON(records, columns)
	if err != nil {
		return "", err
	}
	data, err := json.Marshal(fc)
	if err != nil {
		return "", eris.Wrap(err, "export: encode geojson")
	}

	f, path, err := createOutput(dir, FileName(now, "geojson"))
	if err != nil {
		return "", err
	}
	_, werr := f.Write(data)
	if err := finish(f, path, eris.Wrap(werr, "export: write geojson")); err != nil {
		return "", err
	}
	return path, nil
}

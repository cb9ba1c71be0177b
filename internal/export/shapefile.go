package export

import (
	"os"
	"strconv"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/jonas-p/go-shp"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/kodujdlapolski/tree-research/internal/model"
)

const (
	dbfNameLen  = 10
	dbfFieldLen = 254
)

// asciiFold strips combining marks after decomposition ("ś" -> "s").
var asciiFold = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// DBFFieldNames maps columns to unique dBase field names: ASCII, at most
// ten bytes, spaces replaced by underscores.
func DBFFieldNames(columns []string) []string {
	seen := make(map[string]bool, len(columns))
	names := make([]string, len(columns))
	for i, c := range columns {
		base := dbfName(c)
		name := base
		for n := 1; seen[name]; n++ {
			suffix := strconv.Itoa(n)
			name = truncate(base, dbfNameLen-len(suffix)) + suffix
		}
		seen[name] = true
		names[i] = name
	}
	return names
}

func dbfName(column string) string {
	folded, _, err := transform.String(asciiFold, column)
	if err != nil {
		folded = column
	}
	folded = strings.NewReplacer("ł", "l", "Ł", "L").Replace(folded)

	var b strings.Builder
	for _, r := range folded {
		switch {
		case r == ' ' || r == '-':
			b.WriteByte('_')
		case r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_'):
			b.WriteRune(r)
		}
	}
	name := b.String()
	if name == "" {
		name = "FIELD"
	}
	return truncate(name, dbfNameLen)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}

// truncateUTF8 cuts s to at most n bytes without splitting a rune.
func truncateUTF8(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}

// renameDBF moves the attribute table go-shp writes as "<base>dbf" to the
// "<base>.dbf" sibling readers look for.
func renameDBF(shpPath string) error {
	base := strings.TrimSuffix(shpPath, ".shp")
	stray := base + "dbf"
	if _, err := os.Stat(stray); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return eris.Wrapf(err, "export: stat %s", stray)
	}
	return eris.Wrapf(os.Rename(stray, base+".dbf"), "export: rename %s", stray)
}

// WriteShapefile writes records as an ESRI point shapefile at
// dir/trees_<date>.shp (with .shx and .dbf siblings). Every column becomes a
// character field. Records without a numeric position are left out.
func WriteShapefile(dir string, now time.Time, records []model.Record, columns []string) (string, error) {
	rows, err := Rows(records, columns)
	if err != nil {
		return "", err
	}

	// createOutput makes the directory; go-shp creates the files itself.
	f, path, err := createOutput(dir, FileName(now, "shp"))
	if err != nil {
		return "", err
	}
	_ = f.Close()

	w, err := shp.Create(path, shp.POINT)
	if err != nil {
		return "", eris.Wrapf(err, "export: create shapefile %s", path)
	}

	names := DBFFieldNames(columns)
	fields := make([]shp.Field, len(names))
	for i, n := range names {
		fields[i] = shp.StringField(n, dbfFieldLen)
	}
	if err := w.SetFields(fields); err != nil {
		w.Close()
		return "", eris.Wrap(err, "export: set shapefile fields")
	}

	var skipped int
	for i, rec := range records {
		x, y, ok := rec.Coords()
		if !ok {
			skipped++
			continue
		}
		idx := int(w.Write(&shp.Point{X: x, Y: y}))
		for j, v := range rows[i] {
			if err := w.WriteAttribute(idx, j, truncateUTF8(v, dbfFieldLen)); err != nil {
				w.Close()
				return "", eris.Wrapf(err, "export: write shapefile attribute %s", names[j])
			}
		}
	}
	w.Close()
	if err := renameDBF(path); err != nil {
		return "", err
	}

	if skipped > 0 {
		zap.L().Warn("export: records without position left out of shapefile", zap.Int("skipped", skipped))
	}
	return path, nil
}

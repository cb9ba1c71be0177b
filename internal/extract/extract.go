// Package extract promotes the labelled lines packed into a feature's
// free-text "name" attribute to top-level record fields.
package extract

import (
	"fmt"
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/kodujdlapolski/tree-research/internal/model"
)

// Delimiter separates a label from its value on one attribute line.
const Delimiter = ": "

// Error reports an attribute line without a label/value delimiter.
type Error struct {
	RecordID string
	Line     string
}

func (e *Error) Error() string {
	return fmt.Sprintf("extract: record %q: line %q has no %q delimiter", e.RecordID, e.Line, Delimiter)
}

// Attributes splits a blob of "label: value" lines. Empty lines are
// skipped; a repeated label keeps its last value. Labels are NFC-normalized.
func Attributes(blob string) (map[string]string, error) {
	attrs := make(map[string]string)
	for line := range strings.SplitSeq(blob, "\n") {
		line = strings.TrimSuffix(line, "\r")
		if line == "" {
			continue
		}
		label, value, ok := strings.Cut(line, Delimiter)
		if !ok {
			return nil, &Error{Line: line}
		}
		attrs[norm.NFC.String(label)] = value
	}
	return attrs, nil
}

// Promote merges the attributes from rec's "name" blob into rec and removes
// "name". On error rec is left untouched. A record whose "name" is absent or
// not text is not changed.
func Promote(rec model.Record) error {
	blob, ok := rec[model.FieldName].(string)
	if !ok {
		return nil
	}
	attrs, err := Attributes(blob)
	if err != nil {
		if e, ok := err.(*Error); ok {
			e.RecordID = rec.ID()
		}
		return err
	}
	for k, v := range attrs {
		rec[k] = v
	}
	delete(rec, model.FieldName)
	return nil
}

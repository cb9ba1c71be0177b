package foi

import (
	"encoding/json"
	"errors"
	"strings"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"

	"github.com/kodujdlapolski/tree-research/internal/model"
)

// FeatureArrayKey names the list of features in a FOI payload.
const FeatureArrayKey = "foiarray"

// ErrParse marks payloads that are not a well-formed document after repair.
var ErrParse = eris.New("parse error")

// Payload is one parsed tile response.
type Payload struct {
	// Features are the entries of foiarray, in response order.
	Features []model.Record
	// Doc holds the whole top-level mapping (themeMBR, isWholeImg, ...).
	Doc map[string]any
}

// Parse decodes repaired payload text as JSON. Text that is not valid JSON
// syntax is retried as a YAML flow mapping, which also takes the unquoted
// scalar values the service sometimes emits. A payload without foiarray is
// an empty tile.
func Parse(text string) (*Payload, error) {
	if strings.TrimSpace(text) == "" {
		return nil, eris.Wrap(ErrParse, "foi: empty payload")
	}

	doc, err := decodeDocument(text)
	if err != nil {
		return nil, eris.Wrapf(ErrParse, "foi: decode payload: %v", err)
	}
	if doc == nil {
		return nil, eris.Wrap(ErrParse, "foi: payload is not a mapping")
	}

	p := &Payload{Doc: doc}
	raw, ok := doc[FeatureArrayKey]
	if !ok || raw == nil {
		return p, nil
	}
	items, ok := raw.([]any)
	if !ok {
		return nil, eris.Wrapf(ErrParse, "foi: %s is %T, want a list", FeatureArrayKey, raw)
	}

	p.Features = make([]model.Record, 0, len(items))
	for i, item := range items {
		m, ok := item.(map[string]any)
		if !ok {
			return nil, eris.Wrapf(ErrParse, "foi: %s[%d] is %T, want a mapping", FeatureArrayKey, i, item)
		}
		p.Features = append(p.Features, model.Record(m))
	}
	return p, nil
}

// decodeDocument returns the top-level mapping. JSON numbers decode as
// float64; duplicate keys keep the last value.
func decodeDocument(text string) (map[string]any, error) {
	var doc map[string]any
	err := json.Unmarshal([]byte(text), &doc)
	var syntaxErr *json.SyntaxError
	if err == nil || !errors.As(err, &syntaxErr) {
		return doc, err
	}

	doc = nil
	if yerr := yaml.Unmarshal([]byte(text), &doc); yerr != nil {
		return nil, yerr
	}
	return doc, nil
}

// Decode repairs and parses a raw tile response.
func Decode(raw string, mode RepairMode) (*Payload, error) {
	return Parse(Repair(raw, mode))
}

package foi

import (
	"strings"

	"github.com/rotisserie/eris"
)

// RepairMode selects how bare keys in a payload are quoted.
type RepairMode string

const (
	// RepairLiteral rewrites a fixed list of key tokens wherever they occur,
	// including inside string values.
	RepairLiteral RepairMode = "literal"
	// RepairStructural quotes any identifier followed by a colon at a key
	// position and leaves string contents alone.
	RepairStructural RepairMode = "structural"
)

// ParseRepairMode converts a config string into a RepairMode.
func ParseRepairMode(s string) (RepairMode, error) {
	switch RepairMode(s) {
	case RepairLiteral, RepairStructural:
		return RepairMode(s), nil
	default:
		return "", eris.Errorf("foi: unknown repair mode %q (valid: literal, structural)", s)
	}
}

// literalKeys is applied in order. ",y:" keeps its comma so that "y:" inside
// other tokens is not touched.
var literalKeys = [][2]string{
	{"id:", `"id": `},
	{"name:", `"name": `},
	{"gtype:", `"gtype": `},
	{"imgurl:", `"imgurl": `},
	{"x:", `"x": `},
	{",y:", `,"y": `},
	{"width:", `"width": `},
	{"height:", `"height": `},
	{"attrnames:", `"attrnames": `},
	{"themeMBR:", `"themeMBR": `},
	{"isWholeImg:", `"isWholeImg": `},
}

// Normalize quotes the service's bare keys by plain substring replacement.
// Occurrences of the same tokens inside values are rewritten as well.
func Normalize(raw string) string {
	out := raw
	for _, kv := range literalKeys {
		out = strings.ReplaceAll(out, kv[0], kv[1])
	}
	return out
}

// QuoteKeys quotes every bare identifier that sits at a key position (at the
// start, or right after '{' or ',', outside string literals) and is followed
// by ':'.
func QuoteKeys(raw string) string {
	var b strings.Builder
	b.Grow(len(raw) + len(raw)/8)

	var quote byte // active string delimiter, 0 outside strings
	keyPos := true // the text may be a bare key list without braces
	for i := 0; i < len(raw); i++ {
		c := raw[i]

		if quote != 0 {
			b.WriteByte(c)
			switch c {
			case '\\':
				if i+1 < len(raw) {
					i++
					b.WriteByte(raw[i])
				}
			case quote:
				quote = 0
			}
			continue
		}

		switch {
		case c == '"' || c == '\'':
			quote = c
			keyPos = false
			b.WriteByte(c)
		case c == '{' || c == ',':
			keyPos = true
			b.WriteByte(c)
		case c == ' ' || c == '\t' || c == '\n' || c == '\r':
			b.WriteByte(c)
		case keyPos && isIdentStart(c):
			j := i + 1
			for j < len(raw) && isIdentPart(raw[j]) {
				j++
			}
			k := j
			for k < len(raw) && (raw[k] == ' ' || raw[k] == '\t') {
				k++
			}
			if k < len(raw) && raw[k] == ':' {
				b.WriteByte('"')
				b.WriteString(raw[i:j])
				b.WriteString(`": `)
				i = k
			} else {
				b.WriteString(raw[i:j])
				i = j - 1
			}
			keyPos = false
		default:
			keyPos = false
			b.WriteByte(c)
		}
	}
	return b.String()
}

// Repair applies the selected repair mode.
func Repair(raw string, mode RepairMode) string {
	if mode == RepairStructural {
		return QuoteKeys(raw)
	}
	return Normalize(raw)
}

func isIdentStart(c byte) bool {
	return c == '_' || c == '$' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isIdentPart(c byte) bool {
	return isIdentStart(c) || (c >= '0' && c <= '9')
}

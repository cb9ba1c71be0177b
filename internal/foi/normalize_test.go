package foi

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize_KeyList(t *testing.T) {
	t.Parallel()

	out := Normalize("id:1,name:foo,x:5,y:6")
	assert.Equal(t, `"id": 1,"name": foo,"x": 5,"y": 6`, out)

	p, err := Parse("{" + out + "}")
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"id": 1, "name": "foo", "x": 5, "y": 6}, p.Doc)
}

func TestNormalize_AllKeys(t *testing.T) {
	t.Parallel()

	in := "{id:1,name:2,gtype:3,imgurl:4,x:5,y:6,width:7,height:8,attrnames:9,themeMBR:10,isWholeImg:11}"
	want := `{"id": 1,"name": 2,"gtype": 3,"imgurl": 4,"x": 5,"y": 6,"width": 7,"height": 8,"attrnames": 9,"themeMBR": 10,"isWholeImg": 11}`
	assert.Equal(t, want, Normalize(in))
}

func TestNormalize_Idempotent(t *testing.T) {
	t.Parallel()

	once := Normalize(rawTreeTile)
	assert.Equal(t, once, Normalize(once))
}

func TestNormalize_RewritesValueText(t *testing.T) {
	t.Parallel()

	// Literal replacement does not know where values are.
	once := Normalize(`{name:"index: 5"}`)
	assert.Equal(t, `{"name": "inde"x":  5"}`, once)
	// A second pass leaves the damage as it was.
	assert.Equal(t, once, Normalize(once))

	_, err := Parse(once)
	assert.ErrorIs(t, err, ErrParse)
}

func TestQuoteKeys(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		want string
	}{
		{"bare list", "id:1,name:foo,x:5,y:6", `"id": 1,"name": foo,"x": 5,"y": 6`},
		{"object", "{a:1, b :2}", `{"a": 1, "b": 2}`},
		{"value text untouched", `{name:"index: 5, x: 1"}`, `{"name": "index: 5, x: 1"}`},
		{"escaped quote in value", `{name:"a \"q\", id: 3"}`, `{"name": "a \"q\", id: 3"}`},
		{"single quoted value", `{name:'x: 1'}`, `{"name": 'x: 1'}`},
		{"already quoted", `{"id": 1,"foiarray":[]}`, `{"id": 1,"foiarray":[]}`},
		{"unknown keys", "{foiarray:[{attr_2:1}]}", `{"foiarray": [{"attr_2": 1}]}`},
		{"bare values in list", "{a:[true,false,null]}", `{"a": [true,false,null]}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, QuoteKeys(tt.in))
		})
	}
}

func TestQuoteKeys_Idempotent(t *testing.T) {
	t.Parallel()

	once := QuoteKeys(rawTreeTile)
	assert.Equal(t, once, QuoteKeys(once))
}

func TestRepairModesAgreeOnCleanPayload(t *testing.T) {
	t.Parallel()

	lit, err := Decode(rawTreeTile, RepairLiteral)
	require.NoError(t, err)
	st, err := Decode(rawTreeTile, RepairStructural)
	require.NoError(t, err)
	assert.Equal(t, lit.Features, st.Features)
}

func TestParseRepairMode(t *testing.T) {
	t.Parallel()

	m, err := ParseRepairMode("structural")
	require.NoError(t, err)
	assert.Equal(t, RepairStructural, m)

	_, err = ParseRepairMode("regex")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown repair mode")
}

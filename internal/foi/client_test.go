package foi

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/twpayne/go-geom"

	"github.com/kodujdlapolski/tree-research/internal/fetcher"
	"github.com/kodujdlapolski/tree-research/internal/tile"
)

func testTile() tile.Tile {
	return tile.Tile{Index: 4, Bounds: geom.NewBounds(geom.XY).Set(7489046, 5799540, 7491046, 5801540)}
}

func TestBBoxParam(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "7489046.0000:5799540.0000:7491046.0000:5801540.0000", BBoxParam(testTile()))
}

func TestClientQuery(t *testing.T) {
	t.Parallel()

	c := NewClient("", DefaultParams(), nil)
	q := c.Query(testTile())

	assert.Equal(t, "getfoi", q.Get("request"))
	assert.Equal(t, "1.0", q.Get("version"))
	assert.Equal(t, "7489046.0000:5799540.0000:7491046.0000:5801540.0000", q.Get("bbox"))
	assert.Equal(t, "1608", q.Get("width"))
	assert.Equal(t, "581", q.Get("height"))
	assert.Equal(t, "dane_wawa.BOS_ZIELEN_DRZEWA", q.Get("theme"))
	assert.Equal(t, "yes", q.Get("clickable"))
	assert.Equal(t, "yes", q.Get("area"))
	assert.Equal(t, "2178", q.Get("dstsrid"))
	assert.Equal(t, "yes", q.Get("cachefoi"))
	assert.Equal(t, "no", q.Get("aw"))
	assert.Equal(t, "649_58860", q.Get("tid"))
	assert.Len(t, q, 12)

	assert.Contains(t, c.URL(testTile()), DefaultEndpoint+"?")
}

func TestFetchTile(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/mapviewer/foi", r.URL.Path)
		assert.Equal(t, "7489046.0000:5799540.0000:7491046.0000:5801540.0000", r.URL.Query().Get("bbox"))
		assert.Equal(t, "getfoi", r.URL.Query().Get("request"))
		w.Write([]byte(rawTreeTile))
	}))
	defer srv.Close()

	f := fetcher.NewHTTPFetcher(fetcher.HTTPOptions{Timeout: 5 * time.Second})
	c := NewClient(srv.URL+"/mapviewer/foi", DefaultParams(), f)

	text, err := c.FetchTile(context.Background(), testTile())
	require.NoError(t, err)
	assert.Equal(t, rawTreeTile, text)
}

func TestFetchTile_NetworkError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, DefaultParams(), fetcher.NewHTTPFetcher(fetcher.HTTPOptions{}))
	_, err := c.FetchTile(context.Background(), testTile())
	require.Error(t, err)
	assert.True(t, eris.Is(err, ErrNetwork))
	assert.Contains(t, err.Error(), "fetch tile 4")
}

package foi

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/kodujdlapolski/tree-research/internal/fetcher"
	"github.com/kodujdlapolski/tree-research/internal/tile"
)

// DefaultEndpoint is the Warsaw map viewer FOI URL.
const DefaultEndpoint = "http://mapa.um.warszawa.pl/mapviewer/foi"

// ErrNetwork is returned when a tile request fails in transport or status.
var ErrNetwork = fetcher.ErrNetwork

// Params are the fixed query parameters sent with every tile request.
type Params struct {
	Request   string
	Version   string
	Width     int
	Height    int
	Theme     string
	Clickable string
	Area      string
	DstSRID   int
	CacheFOI  string
	AW        string
	TID       string
}

// DefaultParams returns the parameters the tree layer is queried with.
func DefaultParams() Params {
	return Params{
		Request:   "getfoi",
		Version:   "1.0",
		Width:     1608,
		Height:    581,
		Theme:     "dane_wawa.BOS_ZIELEN_DRZEWA",
		Clickable: "yes",
		Area:      "yes",
		DstSRID:   2178,
		CacheFOI:  "yes",
		AW:        "no",
		TID:       "649_58860",
	}
}

// Client fetches raw FOI payloads one tile at a time.
type Client struct {
	endpoint string
	params   Params
	fetcher  fetcher.Fetcher
}

// NewClient creates a Client. An empty endpoint selects DefaultEndpoint.
func NewClient(endpoint string, params Params, f fetcher.Fetcher) *Client {
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	return &Client{endpoint: endpoint, params: params, fetcher: f}
}

// BBoxParam formats the tile corners as minX:minY:maxX:maxY with four
// decimals each.
func BBoxParam(t tile.Tile) string {
	b := t.BBox()
	parts := make([]string, len(b))
	for i, c := range b {
		parts[i] = fmt.Sprintf("%.4f", c)
	}
	return strings.Join(parts, ":")
}

// Query returns the request parameters for a tile.
func (c *Client) Query(t tile.Tile) url.Values {
	p := c.params
	return url.Values{
		"request":   {p.Request},
		"version":   {p.Version},
		"bbox":      {BBoxParam(t)},
		"width":     {strconv.Itoa(p.Width)},
		"height":    {strconv.Itoa(p.Height)},
		"theme":     {p.Theme},
		"clickable": {p.Clickable},
		"area":      {p.Area},
		"dstsrid":   {strconv.Itoa(p.DstSRID)},
		"cachefoi":  {p.CacheFOI},
		"aw":        {p.AW},
		"tid":       {p.TID},
	}
}

// URL returns the full request URL for a tile.
func (c *Client) URL(t tile.Tile) string {
	return c.endpoint + "?" + c.Query(t).Encode()
}

// FetchTile issues one GET for the tile and returns the raw body text.
func (c *Client) FetchTile(ctx context.Context, t tile.Tile) (string, error) {
	zap.L().Debug("foi: requesting tile",
		zap.Int("tile", t.Index),
		zap.String("bbox", BBoxParam(t)),
		zap.Any("params", c.Query(t)),
	)

	text, err := fetcher.Text(ctx, c.fetcher, c.URL(t))
	if err != nil {
		return "", eris.Wrapf(err, "foi: fetch tile %d", t.Index)
	}
	return text, nil
}

// Package fetcher downloads remote documents over HTTP.
package fetcher

import (
	"context"
	"io"

	"github.com/rotisserie/eris"
)

// ErrNetwork marks transport failures and non-success HTTP statuses.
var ErrNetwork = eris.New("network error")

// Fetcher defines the interface for downloading remote data.
type Fetcher interface {
	// Download fetches the URL and returns the response body decoded to UTF-8.
	Download(ctx context.Context, url string) (io.ReadCloser, error)
}

// Text downloads the URL and returns the whole body as a string.
func Text(ctx context.Context, f Fetcher, url string) (string, error) {
	body, err := f.Download(ctx, url)
	if err != nil {
		return "", err
	}
	defer body.Close() //nolint:errcheck

	data, err := io.ReadAll(body)
	if err != nil {
		return "", eris.Wrapf(ErrNetwork, "read body of %s: %v", url, err)
	}
	return string(data), nil
}

// Package datasource abstracts where the raw survey bytes come from. The
// dataset loader depends only on Source; file and HTTP implementations live
// in subpackages.
package datasource

import (
	"context"
	"io"
	"strings"

	"surveydash/internal/datasource/file"
	"surveydash/internal/datasource/httpds"
)

// Source opens a fresh byte stream for each load.
type Source interface {
	Open(ctx context.Context) (io.ReadCloser, error)
	// Location describes the source for logs, e.g. a path or URL.
	Location() string
}

// FromLocation returns an HTTP source for http(s) URLs and a local file
// source otherwise. hc may be nil for file locations; a default client is
// built when an URL is given without one.
func FromLocation(loc string, hc *httpds.Client) Source {
	lower := strings.ToLower(loc)
	if strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://") {
		if hc == nil {
			hc = httpds.NewClient(httpds.Config{})
		}
		return httpds.NewSource(hc, loc)
	}
	return file.NewLocal(loc)
}

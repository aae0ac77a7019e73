// Package file implements a local filesystem-backed data source.
package file

import (
	"context"
	"fmt"
	"io"
	"os"
)

// Local opens a CSV file from the local disk on every load.
type Local struct{ path string }

// NewLocal returns a Local bound to path. Safe for concurrent use.
func NewLocal(path string) *Local { return &Local{path: path} }

// Location returns the configured path.
func (l *Local) Location() string { return l.path }

// Open opens the configured path for reading. A context that is already done
// short-circuits before touching the filesystem. Filesystem errors are
// wrapped with the path and remain matchable with errors.Is (for example
// os.ErrNotExist). Directories are rejected.
func (l *Local) Open(ctx context.Context) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f, err := os.Open(l.path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", l.path, err)
	}
	st, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("stat %s: %w", l.path, err)
	}
	if st.IsDir() {
		_ = f.Close()
		return nil, fmt.Errorf("open %s: is a directory", l.path)
	}
	return f, nil
}

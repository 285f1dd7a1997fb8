// Package artifacts saves downloaded documents to a local directory.
package artifacts

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/target/paystream-client/internal/adapters/fsutil"
	"github.com/target/paystream-client/internal/ports"
)

var _ ports.ArtifactWriter = (*DirWriter)(nil)

// DirWriter writes artifacts into one directory.
type DirWriter struct {
	dir string
}

// NewDirWriter returns a writer rooted at dir. An empty dir means the working directory.
func NewDirWriter(dir string) *DirWriter {
	if dir == "" {
		dir = "."
	}
	return &DirWriter{dir: filepath.Clean(dir)}
}

// Write stores data as dir/name atomically and returns the path.
func (w *DirWriter) Write(ctx context.Context, name string, data []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	base := filepath.Base(strings.TrimSpace(name))
	if base == "." || base == ".." || base == string(filepath.Separator) || base == "" {
		return "", fmt.Errorf("invalid artifact name %q", name)
	}
	if len(data) == 0 {
		return "", errors.New("refusing to write an empty artifact")
	}

	path := filepath.Join(w.dir, base)
	if err := fsutil.WriteFileAtomic(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write artifact: %w", err)
	}
	return path, nil
}

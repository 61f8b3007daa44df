package feeds

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

// LocalSource reads a feed file from the local filesystem. Used by the
// one-shot CLI and for testing job pipelines without a remote endpoint.
type LocalSource struct {
	path string
}

func NewLocalSource(path string) *LocalSource {
	return &LocalSource{path: path}
}

func (s *LocalSource) Headers(ctx context.Context) ([]string, error) {
	return tableHeaders(ctx, s)
}

func (s *LocalSource) Rows(_ context.Context) (*Table, error) {
	f, err := os.Open(s.path)
	if err != nil {
		return nil, fmt.Errorf("failed to open feed file: %w", err)
	}
	defer f.Close()

	return Parse(filepath.Base(s.path), f)
}

func (s *LocalSource) TestConnection(_ context.Context) error {
	info, err := os.Stat(s.path)
	if err != nil {
		return fmt.Errorf("feed file not accessible: %w", err)
	}
	if info.IsDir() {
		return fmt.Errorf("feed path %q is a directory", s.path)
	}
	return nil
}

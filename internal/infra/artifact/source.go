package artifact

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// ErrNotFound is returned when an artifact does not exist at its location.
var ErrNotFound = errors.New("artifact not found")

// Source opens persisted artifacts by name.
type Source interface {
	Open(ctx context.Context, name string) (io.ReadCloser, error)
	Describe(name string) string
}

// FileSource reads artifacts from the local filesystem. Relative names are
// resolved against Root when it is set.
type FileSource struct {
	Root string
}

// NewFileSource constructs a filesystem source.
func NewFileSource(root string) *FileSource {
	return &FileSource{Root: strings.TrimSpace(root)}
}

// Open implements Source.
func (s *FileSource) Open(_ context.Context, name string) (io.ReadCloser, error) {
	path := s.resolve(name)
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return nil, err
	}
	return f, nil
}

// Describe implements Source.
func (s *FileSource) Describe(name string) string {
	return s.resolve(name)
}

func (s *FileSource) resolve(name string) string {
	if s.Root == "" || filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(s.Root, name)
}

var _ Source = (*FileSource)(nil)

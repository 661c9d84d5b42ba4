package collector

import (
	"context"
	"fmt"
	"os"

	"github.com/aforti1/clarity-cash/internal/model"
)

// FileSource reads a JSON transaction export from disk. The whole file is
// returned regardless of the window.
type FileSource struct {
	Path string
}

// NewFileSource creates a source reading path.
func NewFileSource(path string) *FileSource {
	return &FileSource{Path: path}
}

func (f *FileSource) Name() string { return "file" }

func (f *FileSource) Fetch(ctx context.Context, _ model.Window) ([]model.Transaction, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(f.Path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", f.Path, err)
	}
	txns, err := decodeBatch(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", f.Path, err)
	}
	return txns, nil
}

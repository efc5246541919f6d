// internal/catalog/store.go
package catalog

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"

	apperrors "forecast-bot/internal/common/errors"
	"forecast-bot/internal/table"
)

// Entry is one child of a catalog directory.
type Entry struct {
	Name  string
	IsDir bool
}

// Store is the read-only hierarchical namespace the catalog lives in.
// Segments are relative to the catalog root.
type Store interface {
	List(ctx context.Context, segments ...string) ([]Entry, error)
	ReadTable(ctx context.Context, sheet string, segments ...string) (*table.Table, error)
}

// FSStore serves the catalog from a directory tree of xlsx files.
type FSStore struct {
	fs   afero.Fs
	root string
}

func NewFSStore(fs afero.Fs, root string) *FSStore {
	return &FSStore{fs: fs, root: root}
}

func (s *FSStore) path(segments []string) string {
	return filepath.Join(append([]string{s.root}, segments...)...)
}

func (s *FSStore) List(ctx context.Context, segments ...string) ([]Entry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	p := s.path(segments)
	infos, err := afero.ReadDir(s.fs, p)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, apperrors.NewCatalogNotFoundError(p)
		}
		return nil, apperrors.NewMalformedTableError(p, err)
	}

	entries := make([]Entry, 0, len(infos))
	for _, info := range infos {
		name := info.Name()
		// dotfiles and Excel lock files
		if strings.HasPrefix(name, ".") || strings.HasPrefix(name, "~$") {
			continue
		}
		entries = append(entries, Entry{Name: name, IsDir: info.IsDir()})
	}
	return entries, nil
}

func (s *FSStore) ReadTable(ctx context.Context, sheet string, segments ...string) (*table.Table, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	p := s.path(segments)
	f, err := s.fs.Open(p)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, apperrors.NewCatalogNotFoundError(p)
		}
		return nil, apperrors.NewMalformedTableError(p, err)
	}
	defer f.Close()

	t, err := table.ReadWorkbook(f, sheet)
	if err != nil {
		if se, ok := err.(*apperrors.StandardError); ok {
			se.WithMetadata("path", p)
		}
		return nil, err
	}
	return t, nil
}

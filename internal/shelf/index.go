package shelf

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/renameio/v2"

	"github.com/zizai/go-texshelf/internal/yamlutil"
)

// loadIndex reads index.yaml. A missing file yields an empty index so the
// first Put bootstraps the shelf. Callers hold s.mu.
func (s *Shelf) loadIndex() (*Index, error) {
	path := filepath.Join(s.dir, indexFile)

	data, err := os.ReadFile(path) // #nosec G304 -- path rooted in the shelf directory
	if err != nil {
		if os.IsNotExist(err) {
			return &Index{Project: s.project}, nil
		}
		return nil, fmt.Errorf("reading shelf index: %w", err)
	}

	var idx Index
	if err := yamlutil.UnmarshalStrict(data, &idx); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrIndexCorrupt, err)
	}
	if idx.Project == "" {
		idx.Project = s.project
	}
	return &idx, nil
}

// saveIndex writes index.yaml atomically. Callers hold s.mu.
func (s *Shelf) saveIndex(idx *Index) error {
	data, err := yamlutil.Marshal(idx)
	if err != nil {
		return fmt.Errorf("encoding shelf index: %w", err)
	}

	path := filepath.Join(s.dir, indexFile)
	pending, err := renameio.NewPendingFile(path, renameio.WithPermissions(0o644))
	if err != nil {
		return fmt.Errorf("creating pending index file: %w", err)
	}
	defer func() {
		if err := pending.Cleanup(); err != nil {
			s.logger.Debug().Err(err).Msg("cleanup pending index file")
		}
	}()

	if _, err := pending.Write(data); err != nil {
		return fmt.Errorf("writing shelf index: %w", err)
	}
	if err := pending.CloseAtomicallyReplace(); err != nil {
		return fmt.Errorf("replacing shelf index: %w", err)
	}
	return nil
}

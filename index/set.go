package index

import (
	"fmt"
	"path/filepath"

	"github.com/poiesic/simcheck/core"
)

// Set holds one index per source type and handles snapshot naming.
type Set struct {
	indexes map[core.SourceType]*Index
}

// NewSet creates a Set with an empty index for each given source type.
func NewSet(kinds ...core.SourceType) *Set {
	s := &Set{indexes: make(map[core.SourceType]*Index, len(kinds))}
	for _, kind := range kinds {
		s.indexes[kind] = New(kind)
	}
	return s
}

// Get returns the index for the given source type.
// Returns ErrUnknownKind if the set was not built with it.
func (s *Set) Get(kind core.SourceType) (*Index, error) {
	ix, ok := s.indexes[kind]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownKind, kind)
	}
	return ix, nil
}

// Kinds returns the source types this set covers.
func (s *Set) Kinds() []core.SourceType {
	kinds := make([]core.SourceType, 0, len(s.indexes))
	for kind := range s.indexes {
		kinds = append(kinds, kind)
	}
	return kinds
}

// snapshotPath derives the snapshot file name for an index under dir.
func snapshotPath(dir string, kind core.SourceType) string {
	return filepath.Join(dir, kind.String()+".idx")
}

// PersistAll writes a snapshot for every index in the set under dir.
func (s *Set) PersistAll(dir string) error {
	for kind, ix := range s.indexes {
		if err := ix.Persist(snapshotPath(dir, kind)); err != nil {
			return fmt.Errorf("persist %s index: %w", kind, err)
		}
	}
	return nil
}

// LoadAll loads every index in the set from its snapshot under dir.
// Missing snapshots leave their indexes empty.
func (s *Set) LoadAll(dir string) error {
	for kind, ix := range s.indexes {
		if err := ix.Load(snapshotPath(dir, kind)); err != nil {
			return fmt.Errorf("load %s index: %w", kind, err)
		}
	}
	return nil
}

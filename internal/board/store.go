package board

import (
	"fmt"

	"github.com/google/uuid"

	"fieldmap/internal/geodesy"
)

// Store is the canonical in-memory collection of committed features for
// one document. Features are kept in a map keyed by id for O(1)
// lookup/update/remove, with insertion order preserved for serialization
// and rendering. The store expects a single writer (the input event loop)
// and carries no locking of its own.
type Store struct {
	features map[string]*Feature
	order    []string
}

// NewStore returns an empty feature store.
func NewStore() *Store {
	return &Store{features: make(map[string]*Feature)}
}

// Add validates the feature, assigns it a fresh id and appends it to the
// collection. The assigned id is returned.
func (s *Store) Add(f Feature) (string, error) {
	if err := f.Validate(); err != nil {
		return "", fmt.Errorf("invalid %s feature: %w", f.Type, err)
	}
	f.ID = uuid.NewString()
	s.features[f.ID] = &f
	s.order = append(s.order, f.ID)
	return f.ID, nil
}

// Remove deletes the feature with the given id. Removing an unknown id is
// a no-op.
func (s *Store) Remove(id string) {
	if _, ok := s.features[id]; !ok {
		return
	}
	delete(s.features, id)
	for i, oid := range s.order {
		if oid == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
}

// Get returns the feature with the given id, or ok=false. The returned
// copy is safe to hold across later mutations.
func (s *Store) Get(id string) (Feature, bool) {
	f, ok := s.features[id]
	if !ok {
		return Feature{}, false
	}
	return *f, true
}

// Update applies patch to the stored feature in place. The patch receives
// a pointer to the live feature; it must not change the id or type. Used
// by the drag controller for moves and rotations.
func (s *Store) Update(id string, patch func(*Feature)) bool {
	f, ok := s.features[id]
	if !ok {
		return false
	}
	patch(f)
	return true
}

// List returns the features in insertion order, as copies.
func (s *Store) List() []Feature {
	out := make([]Feature, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, *s.features[id])
	}
	return out
}

// Len returns the number of committed features.
func (s *Store) Len() int { return len(s.order) }

// CountSymbols returns how many symbol features of the given catalog type
// are committed. Building symbols use this for their sequential number.
func (s *Store) CountSymbols(symbolType string) int {
	n := 0
	for _, id := range s.order {
		f := s.features[id]
		if f.Type == TypeSymbol && f.SymbolType == symbolType {
			n++
		}
	}
	return n
}

// Replace swaps the whole collection for the given features, keeping their
// ids and order. Used when loading a saved document.
func (s *Store) Replace(features []Feature) error {
	next := make(map[string]*Feature, len(features))
	order := make([]string, 0, len(features))
	for i := range features {
		f := features[i]
		if f.ID == "" {
			return fmt.Errorf("feature %d has no id", i)
		}
		if _, dup := next[f.ID]; dup {
			return fmt.Errorf("duplicate feature id %s", f.ID)
		}
		if err := f.Validate(); err != nil {
			return fmt.Errorf("feature %s: %w", f.ID, err)
		}
		next[f.ID] = &f
		order = append(order, f.ID)
	}
	s.features = next
	s.order = order
	return nil
}

// Bounds returns the bounding box of all stored coordinates, or ok=false
// for an empty board. The host uses it to frame the viewport on load.
func (s *Store) Bounds() (min, max geodesy.LatLng, ok bool) {
	first := true
	grow := func(p geodesy.LatLng) {
		if first {
			min, max = p, p
			first = false
			return
		}
		if p.Lat < min.Lat {
			min.Lat = p.Lat
		}
		if p.Lng < min.Lng {
			min.Lng = p.Lng
		}
		if p.Lat > max.Lat {
			max.Lat = p.Lat
		}
		if p.Lng > max.Lng {
			max.Lng = p.Lng
		}
	}
	for _, id := range s.order {
		f := s.features[id]
		for _, p := range f.Coords {
			grow(p)
		}
		switch f.Type {
		case TypeSymbol, TypePhoto, TypeText:
			grow(f.At)
		}
	}
	return min, max, !first
}

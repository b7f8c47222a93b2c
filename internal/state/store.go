package state

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/jonathan/dropwatch/internal/types"
)

// DefaultCapacity is the number of item records retained after eviction.
const DefaultCapacity = 8000

// Snapshot is the persisted document: items by identity and targets by name.
type Snapshot struct {
	Items   map[types.ItemIdentity]types.ItemRecord `json:"items"`
	Targets map[string]types.TargetRecord           `json:"targets"`
}

// NewSnapshot returns an empty snapshot with initialized maps.
func NewSnapshot() *Snapshot {
	return &Snapshot{
		Items:   make(map[types.ItemIdentity]types.ItemRecord),
		Targets: make(map[string]types.TargetRecord),
	}
}

func (s *Snapshot) ensureMaps() {
	if s.Items == nil {
		s.Items = make(map[types.ItemIdentity]types.ItemRecord)
	}
	if s.Targets == nil {
		s.Targets = make(map[string]types.TargetRecord)
	}
}

// Backend reads and writes whole snapshots.
type Backend interface {
	// Read returns the persisted snapshot, or nil with no error when none exists.
	Read(ctx context.Context) (*Snapshot, error)
	// Write replaces the persisted snapshot atomically.
	Write(ctx context.Context, snap *Snapshot) error
	// Name identifies the backend in logs and errors.
	Name() string
}

// Store is the single writer of item and target records during a run.
// It is not safe for concurrent use.
type Store struct {
	backend Backend
	snap    *Snapshot
}

// New creates a Store over backend. The store is empty until Load.
func New(backend Backend) *Store {
	return &Store{
		backend: backend,
		snap:    NewSnapshot(),
	}
}

// Load reads prior state. A missing state is not an error. Unreadable state leaves
// the store empty and returns a *LoadError so the caller can surface the reset.
func (s *Store) Load(ctx context.Context) error {
	s.snap = NewSnapshot()

	snap, err := s.backend.Read(ctx)
	if err != nil {
		var loadErr *LoadError
		if errors.As(err, &loadErr) {
			return loadErr
		}
		return &LoadError{Source: s.backend.Name(), Message: "failed to read state", Cause: err}
	}
	if snap == nil {
		return nil
	}
	snap.ensureMaps()
	s.snap = snap
	return nil
}

// Save writes the current snapshot through the backend.
func (s *Store) Save(ctx context.Context) error {
	if err := s.backend.Write(ctx, s.snap); err != nil {
		var saveErr *SaveError
		if errors.As(err, &saveErr) {
			return saveErr
		}
		return &SaveError{Source: s.backend.Name(), Message: "failed to write state", Cause: err}
	}
	return nil
}

// Get returns a copy of the record for id.
func (s *Store) Get(id types.ItemIdentity) (types.ItemRecord, bool) {
	rec, ok := s.snap.Items[id]
	if !ok {
		return types.ItemRecord{}, false
	}
	return rec.Clone(), true
}

// Upsert stores a copy of rec under id.
func (s *Store) Upsert(id types.ItemIdentity, rec types.ItemRecord) {
	rec.ID = id
	s.snap.Items[id] = rec.Clone()
}

// Len returns the number of tracked items.
func (s *Store) Len() int {
	return len(s.snap.Items)
}

// Items returns copies of all records, most recently seen first.
func (s *Store) Items() []types.ItemRecord {
	out := make([]types.ItemRecord, 0, len(s.snap.Items))
	for _, rec := range s.snap.Items {
		out = append(out, rec.Clone())
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].LastSeen.Equal(out[j].LastSeen) {
			return out[i].LastSeen.After(out[j].LastSeen)
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// DigestFor returns the target record for name.
func (s *Store) DigestFor(target string) (types.TargetRecord, bool) {
	rec, ok := s.snap.Targets[target]
	return rec, ok
}

// SetDigest records a target's listing digest. Changed is true only when a previous
// digest existed and differs.
func (s *Store) SetDigest(target, url, digest string, checkedAt time.Time) types.TargetRecord {
	prev, had := s.snap.Targets[target]
	rec := types.TargetRecord{
		URL:         url,
		Digest:      digest,
		LastChecked: checkedAt,
		Changed:     had && prev.Digest != "" && prev.Digest != digest,
	}
	s.snap.Targets[target] = rec
	return rec
}

// EvictOldest drops least recently seen items until at most capacity remain.
// It returns the number of records removed. A capacity <= 0 disables eviction.
func (s *Store) EvictOldest(capacity int) int {
	if capacity <= 0 || len(s.snap.Items) <= capacity {
		return 0
	}
	ids := make([]types.ItemIdentity, 0, len(s.snap.Items))
	for id := range s.snap.Items {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		a, b := s.snap.Items[ids[i]], s.snap.Items[ids[j]]
		if !a.LastSeen.Equal(b.LastSeen) {
			return a.LastSeen.Before(b.LastSeen)
		}
		return ids[i] < ids[j]
	})
	excess := len(ids) - capacity
	for _, id := range ids[:excess] {
		delete(s.snap.Items, id)
	}
	return excess
}

package slotRepo

import (
	"context"
	"sort"
	"sync"

	"medislot/models"
)

// MemorySlotRepo keeps slots in process. Every call holds one mutex, which
// makes batches and transactions trivially atomic.
type MemorySlotRepo struct {
	mu         sync.Mutex
	slots      map[string]models.Slot
	failCommit error
}

// NewMemorySlotRepo returns an empty in-memory store.
func NewMemorySlotRepo() *MemorySlotRepo {
	return &MemorySlotRepo{slots: make(map[string]models.Slot)}
}

// FailCommitsWith makes every subsequent write fail with err; nil restores normal behaviour.
func (r *MemorySlotRepo) FailCommitsWith(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.failCommit = err
}

// All returns every stored slot ordered by date, time and id.
func (r *MemorySlotRepo) All() []models.Slot {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := r.filter(func(models.Slot) bool { return true })
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Instant() != out[j].Instant() {
			return out[i].Instant() < out[j].Instant()
		}
		return out[i].ID < out[j].ID
	})
	return out
}

func (r *MemorySlotRepo) GetByID(ctx context.Context, slotID string) (*models.Slot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.slots[slotID]
	if !ok {
		return nil, ErrNotFound
	}
	return &s, nil
}

func (r *MemorySlotRepo) ListByProviderDate(ctx context.Context, providerID, date string, liveOnly bool) ([]models.Slot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := r.filter(func(s models.Slot) bool {
		return s.ProviderID == providerID && s.Date == date && (!liveOnly || s.IsLive())
	})
	sort.SliceStable(out, func(i, j int) bool { return out[i].Time < out[j].Time })
	return out, nil
}

func (r *MemorySlotRepo) ListByPatient(ctx context.Context, patientID string) ([]models.Slot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.filter(func(s models.Slot) bool { return s.PatientID == patientID }), nil
}

func (r *MemorySlotRepo) ListBookedByProvider(ctx context.Context, providerID string) ([]models.Slot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.filter(func(s models.Slot) bool { return s.ProviderID == providerID && s.IsBooked }), nil
}

func (r *MemorySlotRepo) filter(keep func(models.Slot) bool) []models.Slot {
	out := []models.Slot{}
	for _, s := range r.slots {
		if keep(s) {
			out = append(out, s)
		}
	}
	return out
}

func (r *MemorySlotRepo) CommitBatch(ctx context.Context, b *Batch) error {
	if b.Empty() {
		return nil
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failCommit != nil {
		return r.failCommit
	}

	for _, id := range b.Deletes {
		if s, ok := r.slots[id]; !ok || !deletable(s) {
			return ErrStaleBatch
		}
	}
	for _, u := range b.Updates {
		if s, ok := r.slots[u.ID]; !ok || !cancellable(s) {
			return ErrStaleBatch
		}
	}

	for _, id := range b.Deletes {
		delete(r.slots, id)
	}
	for _, u := range b.Updates {
		s := r.slots[u.ID]
		u.Patch.Apply(&s)
		s.Version++
		r.slots[u.ID] = s
	}
	for _, s := range b.Creates {
		r.slots[s.ID] = s
	}
	return nil
}

func (r *MemorySlotRepo) UpdateInTransaction(ctx context.Context, slotID string, fn UpdateFunc) (*models.Slot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	current, ok := r.slots[slotID]
	if !ok {
		return nil, ErrNotFound
	}
	patch, err := fn(current)
	if err != nil {
		return nil, err
	}
	if patch == nil {
		return &current, nil
	}
	if r.failCommit != nil {
		return nil, r.failCommit
	}
	patch.Apply(&current)
	current.Version++
	r.slots[slotID] = current
	return &current, nil
}

func (r *MemorySlotRepo) EnsureIndexes(ctx context.Context) error { return nil }

func (r *MemorySlotRepo) Ping(ctx context.Context) error { return nil }

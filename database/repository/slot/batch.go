package slotRepo

import (
	"time"

	"github.com/google/uuid"

	"medislot/models"
)

// SlotUpdate is a patch staged against one slot id.
type SlotUpdate struct {
	ID    string
	Patch models.SlotPatch
}

// Batch collects the writes of one engine operation so they commit together.
// Deletes target free Active slots and updates cancel live bookings; a store
// rejects the whole batch with ErrStaleBatch when a target no longer fits.
type Batch struct {
	Deletes []string
	Updates []SlotUpdate
	Creates []models.Slot
}

// Delete stages a hard delete.
func (b *Batch) Delete(slotID string) {
	b.Deletes = append(b.Deletes, slotID)
}

// Update stages a patch.
func (b *Batch) Update(slotID string, patch models.SlotPatch) {
	b.Updates = append(b.Updates, SlotUpdate{ID: slotID, Patch: patch})
}

// Create stages a new slot, assigning an id and creation time when missing.
func (b *Batch) Create(slot models.Slot) models.Slot {
	if slot.ID == "" {
		slot.ID = uuid.New().String()
	}
	if slot.CreatedAt.IsZero() {
		slot.CreatedAt = time.Now().UTC()
	}
	b.Creates = append(b.Creates, slot)
	return slot
}

// Len is the number of staged writes.
func (b *Batch) Len() int {
	if b == nil {
		return 0
	}
	return len(b.Deletes) + len(b.Updates) + len(b.Creates)
}

// Empty reports whether nothing is staged.
func (b *Batch) Empty() bool {
	return b.Len() == 0
}

// deletable reports whether a staged delete may still remove s.
func deletable(s models.Slot) bool {
	return !s.IsBooked && s.Status == models.SlotStatusActive
}

// cancellable reports whether a staged cancellation may still apply to s.
// Cancelled slots are history and never match.
func cancellable(s models.Slot) bool {
	return s.IsBooked && (s.Status == models.SlotStatusBooked || s.Status == models.SlotStatusHoliday)
}

// File: database/repository/slot/interface.go
package slotRepo

import (
	"context"
	"errors"

	"medislot/models"
)

var (
	// ErrNotFound is returned when a slot id does not resolve.
	ErrNotFound = errors.New("slot not found")
	// ErrContention is returned when a transaction keeps losing to concurrent writers.
	ErrContention = errors.New("slot transaction aborted after repeated contention")
	// ErrBatchTooLarge is returned when a backend cannot commit a batch atomically.
	ErrBatchTooLarge = errors.New("batch exceeds the store's atomic write limit")
	// ErrStaleBatch is returned when a staged delete or cancellation no longer
	// matches the slot's booking state at commit time.
	ErrStaleBatch = errors.New("slot changed between read and commit")
)

// UpdateFunc inspects the current slot inside a transaction and returns the patch
// to apply. Returning an error aborts the transaction with that error.
type UpdateFunc func(current models.Slot) (*models.SlotPatch, error)

// SlotRepository is the document store the scheduling engine runs against.
type SlotRepository interface {
	GetByID(ctx context.Context, slotID string) (*models.Slot, error)
	// ListByProviderDate returns the provider's slots on date; liveOnly drops Cancelled slots.
	ListByProviderDate(ctx context.Context, providerID, date string, liveOnly bool) ([]models.Slot, error)
	ListByPatient(ctx context.Context, patientID string) ([]models.Slot, error)
	ListBookedByProvider(ctx context.Context, providerID string) ([]models.Slot, error)

	// CommitBatch applies every delete, update and create in b or none of them.
	CommitBatch(ctx context.Context, b *Batch) error
	// UpdateInTransaction reads the slot, calls fn and writes its patch in one
	// atomic scope, retrying on store-level contention. It returns the updated slot.
	UpdateInTransaction(ctx context.Context, slotID string, fn UpdateFunc) (*models.Slot, error)

	EnsureIndexes(ctx context.Context) error
	Ping(ctx context.Context) error
}

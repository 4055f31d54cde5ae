package slotRepo

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"medislot/models"
)

func seed(t *testing.T, repo *MemorySlotRepo, slots ...models.Slot) []models.Slot {
	t.Helper()
	b := &Batch{}
	out := make([]models.Slot, 0, len(slots))
	for _, s := range slots {
		out = append(out, b.Create(s))
	}
	require.NoError(t, repo.CommitBatch(context.Background(), b))
	return out
}

func TestBatchCreateAssignsIDAndTimestamp(t *testing.T) {
	b := &Batch{}
	s := b.Create(models.Slot{ProviderID: "p1"})

	assert.NotEmpty(t, s.ID)
	assert.False(t, s.CreatedAt.IsZero())
	assert.Equal(t, 1, b.Len())
	assert.False(t, b.Empty())

	var nilBatch *Batch
	assert.True(t, nilBatch.Empty())
}

func TestMemoryCommitBatchAppliesAllWrites(t *testing.T) {
	ctx := context.Background()
	repo := NewMemorySlotRepo()
	seeded := seed(t, repo,
		models.Slot{ProviderID: "p1", Date: "2026-10-16", Time: "09:00", Status: models.SlotStatusActive},
		models.Slot{ProviderID: "p1", Date: "2026-10-16", Time: "09:30", Status: models.SlotStatusBooked, IsBooked: true, PatientID: "pat"},
	)

	b := &Batch{}
	b.Delete(seeded[0].ID)
	b.Update(seeded[1].ID, models.CancelPatch("moved"))
	b.Create(models.Slot{ProviderID: "p1", Date: "2026-10-16", Time: "10:00", Status: models.SlotStatusActive})
	require.NoError(t, repo.CommitBatch(ctx, b))

	_, err := repo.GetByID(ctx, seeded[0].ID)
	assert.ErrorIs(t, err, ErrNotFound)

	cancelled, err := repo.GetByID(ctx, seeded[1].ID)
	require.NoError(t, err)
	assert.Equal(t, models.SlotStatusCancelled, cancelled.Status)
	assert.False(t, cancelled.IsBooked)
	assert.Equal(t, "moved", cancelled.AdminMessage)
	assert.Equal(t, 1, cancelled.Version)

	live, err := repo.ListByProviderDate(ctx, "p1", "2026-10-16", true)
	require.NoError(t, err)
	require.Len(t, live, 1)
	assert.Equal(t, "10:00", live[0].Time)

	all, err := repo.ListByProviderDate(ctx, "p1", "2026-10-16", false)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestMemoryCommitBatchRejectsStaleDelete(t *testing.T) {
	ctx := context.Background()
	repo := NewMemorySlotRepo()
	seeded := seed(t, repo, models.Slot{ProviderID: "p1", Date: "2026-10-16", Time: "09:00", Status: models.SlotStatusActive})

	_, err := repo.UpdateInTransaction(ctx, seeded[0].ID, func(models.Slot) (*models.SlotPatch, error) {
		p := models.BookingPatch(models.PatientInfo{ID: "pat"}, models.ProviderSnapshot{})
		return &p, nil
	})
	require.NoError(t, err)

	b := &Batch{}
	b.Delete(seeded[0].ID)
	b.Create(models.Slot{ProviderID: "p1", Date: "2026-10-16", Time: "09:00"})
	assert.ErrorIs(t, repo.CommitBatch(ctx, b), ErrStaleBatch)
	assert.Len(t, repo.All(), 1)
}

func TestMemoryCommitBatchKeepsCancelledHistory(t *testing.T) {
	ctx := context.Background()
	repo := NewMemorySlotRepo()
	seeded := seed(t, repo, models.Slot{ProviderID: "p1", Date: "2026-10-16", Time: "09:00", Status: models.SlotStatusActive})
	id := seeded[0].ID

	// Staged while the slot was still free.
	stale := &Batch{}
	stale.Delete(id)

	_, err := repo.UpdateInTransaction(ctx, id, func(models.Slot) (*models.SlotPatch, error) {
		p := models.BookingPatch(models.PatientInfo{ID: "pat"}, models.ProviderSnapshot{})
		return &p, nil
	})
	require.NoError(t, err)
	cancel := &Batch{}
	cancel.Update(id, models.CancelPatch("moved"))
	require.NoError(t, repo.CommitBatch(ctx, cancel))

	assert.ErrorIs(t, repo.CommitBatch(ctx, stale), ErrStaleBatch)
	kept, err := repo.GetByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, models.SlotStatusCancelled, kept.Status)
	assert.Equal(t, "pat", kept.PatientID)

	// A second cancellation of the same booking is stale too.
	assert.ErrorIs(t, repo.CommitBatch(ctx, cancel), ErrStaleBatch)
	again, err := repo.GetByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, 2, again.Version)
}

func TestBatchGuards(t *testing.T) {
	cases := []struct {
		name        string
		slot        models.Slot
		deletable   bool
		cancellable bool
	}{
		{"free", models.Slot{Status: models.SlotStatusActive}, true, false},
		{"booked", models.Slot{Status: models.SlotStatusBooked, IsBooked: true}, false, true},
		{"holiday", models.Slot{Status: models.SlotStatusHoliday, IsBooked: true}, false, true},
		{"cancelled", models.Slot{Status: models.SlotStatusCancelled}, false, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.deletable, deletable(tc.slot))
			assert.Equal(t, tc.cancellable, cancellable(tc.slot))
		})
	}
}

func TestMemoryUpdateInTransaction(t *testing.T) {
	ctx := context.Background()
	repo := NewMemorySlotRepo()
	seeded := seed(t, repo, models.Slot{ProviderID: "p1", Date: "2026-10-16", Time: "09:00", Status: models.SlotStatusActive})

	_, err := repo.UpdateInTransaction(ctx, "missing", func(models.Slot) (*models.SlotPatch, error) {
		t.Fatal("fn must not run for a missing slot")
		return nil, nil
	})
	assert.ErrorIs(t, err, ErrNotFound)

	abort := errors.New("abort")
	_, err = repo.UpdateInTransaction(ctx, seeded[0].ID, func(models.Slot) (*models.SlotPatch, error) {
		return nil, abort
	})
	assert.ErrorIs(t, err, abort)

	updated, err := repo.UpdateInTransaction(ctx, seeded[0].ID, func(cur models.Slot) (*models.SlotPatch, error) {
		p := models.BookingPatch(models.PatientInfo{ID: "pat", Name: "Ann"}, models.ProviderSnapshot{Name: "Dr. Lee"})
		return &p, nil
	})
	require.NoError(t, err)
	assert.True(t, updated.IsBooked)
	assert.Equal(t, "Dr. Lee", updated.ProviderName)

	booked, err := repo.ListBookedByProvider(ctx, "p1")
	require.NoError(t, err)
	assert.Len(t, booked, 1)

	byPatient, err := repo.ListByPatient(ctx, "pat")
	require.NoError(t, err)
	assert.Len(t, byPatient, 1)
}

func TestMemoryFailCommitsWithLeavesStateIntact(t *testing.T) {
	ctx := context.Background()
	repo := NewMemorySlotRepo()
	seed(t, repo, models.Slot{ProviderID: "p1", Date: "2026-10-16", Time: "09:00"})

	boom := errors.New("disk full")
	repo.FailCommitsWith(boom)
	b := &Batch{}
	b.Create(models.Slot{ProviderID: "p1", Date: "2026-10-16", Time: "10:00"})
	assert.ErrorIs(t, repo.CommitBatch(ctx, b), boom)
	assert.Len(t, repo.All(), 1)
}

package slotRepo

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"cloud.google.com/go/firestore"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"medislot/models"
)

// firestoreMaxWrites is Firestore's per-transaction write limit.
const firestoreMaxWrites = 500

type firestoreSlotRepo struct {
	client      *firestore.Client
	coll        *firestore.CollectionRef
	maxAttempts int
}

// NewFirestoreSlotRepo constructs a Firestore SlotRepository storing one
// document per slot, keyed by slot id.
func NewFirestoreSlotRepo(client *firestore.Client, maxAttempts int) SlotRepository {
	if maxAttempts <= 0 {
		maxAttempts = 5
	}
	return &firestoreSlotRepo{
		client:      client,
		coll:        client.Collection(slotsCollection),
		maxAttempts: maxAttempts,
	}
}

func (r *firestoreSlotRepo) GetByID(ctx context.Context, slotID string) (*models.Slot, error) {
	snap, err := r.coll.Doc(slotID).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get slot %s: %w", slotID, err)
	}
	return decodeSnapshot(snap)
}

func (r *firestoreSlotRepo) ListByProviderDate(ctx context.Context, providerID, date string, liveOnly bool) ([]models.Slot, error) {
	q := r.coll.Where("providerId", "==", providerID).Where("date", "==", date)
	slots, err := r.query(ctx, q)
	if err != nil {
		return nil, err
	}
	if liveOnly {
		live := slots[:0]
		for _, s := range slots {
			if s.IsLive() {
				live = append(live, s)
			}
		}
		slots = live
	}
	sort.SliceStable(slots, func(i, j int) bool { return slots[i].Time < slots[j].Time })
	return slots, nil
}

func (r *firestoreSlotRepo) ListByPatient(ctx context.Context, patientID string) ([]models.Slot, error) {
	return r.query(ctx, r.coll.Where("patientId", "==", patientID))
}

func (r *firestoreSlotRepo) ListBookedByProvider(ctx context.Context, providerID string) ([]models.Slot, error) {
	return r.query(ctx, r.coll.Where("providerId", "==", providerID).Where("isBooked", "==", true))
}

func (r *firestoreSlotRepo) query(ctx context.Context, q firestore.Query) ([]models.Slot, error) {
	snaps, err := q.Documents(ctx).GetAll()
	if err != nil {
		return nil, fmt.Errorf("failed to fetch slots: %w", err)
	}
	slots := make([]models.Slot, 0, len(snaps))
	for _, snap := range snaps {
		s, err := decodeSnapshot(snap)
		if err != nil {
			return nil, err
		}
		slots = append(slots, *s)
	}
	return slots, nil
}

// CommitBatch uses a transaction rather than a WriteBatch so the booking
// state of every deleted or cancelled slot can be re-checked before writing.
func (r *firestoreSlotRepo) CommitBatch(ctx context.Context, b *Batch) error {
	if b.Empty() {
		return nil
	}
	if b.Len() > firestoreMaxWrites {
		return fmt.Errorf("%w: %d writes, limit %d", ErrBatchTooLarge, b.Len(), firestoreMaxWrites)
	}

	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		refs := make([]*firestore.DocumentRef, 0, len(b.Deletes)+len(b.Updates))
		for _, id := range b.Deletes {
			refs = append(refs, r.coll.Doc(id))
		}
		for _, u := range b.Updates {
			refs = append(refs, r.coll.Doc(u.ID))
		}
		snaps, err := tx.GetAll(refs)
		if err != nil {
			return err
		}
		for i, snap := range snaps {
			if !snap.Exists() {
				return ErrStaleBatch
			}
			current, err := decodeSnapshot(snap)
			if err != nil {
				return err
			}
			fits := cancellable
			if i < len(b.Deletes) {
				fits = deletable
			}
			if !fits(*current) {
				return ErrStaleBatch
			}
		}

		for _, id := range b.Deletes {
			if err := tx.Delete(r.coll.Doc(id)); err != nil {
				return err
			}
		}
		for _, u := range b.Updates {
			if err := tx.Update(r.coll.Doc(u.ID), patchUpdates(u.Patch)); err != nil {
				return err
			}
		}
		for _, s := range b.Creates {
			if err := tx.Create(r.coll.Doc(s.ID), s); err != nil {
				return err
			}
		}
		return nil
	}, firestore.MaxAttempts(r.maxAttempts))
	if err != nil {
		return fmt.Errorf("slot batch transaction failed: %w", err)
	}
	return nil
}

func (r *firestoreSlotRepo) UpdateInTransaction(ctx context.Context, slotID string, fn UpdateFunc) (*models.Slot, error) {
	var updated *models.Slot
	ref := r.coll.Doc(slotID)

	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		snap, err := tx.Get(ref)
		if err != nil {
			if status.Code(err) == codes.NotFound {
				return ErrNotFound
			}
			return err
		}
		current, err := decodeSnapshot(snap)
		if err != nil {
			return err
		}

		patch, err := fn(*current)
		if err != nil {
			return err
		}
		if patch == nil {
			updated = current
			return nil
		}
		if err := tx.Update(ref, patchUpdates(*patch)); err != nil {
			return err
		}
		patch.Apply(current)
		current.Version++
		updated = current
		return nil
	}, firestore.MaxAttempts(r.maxAttempts))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrNotFound
		}
		if status.Code(err) == codes.Aborted {
			return nil, ErrContention
		}
		return nil, err
	}
	return updated, nil
}

// EnsureIndexes is a no-op: composite indexes are declared in firestore.indexes.json.
func (r *firestoreSlotRepo) EnsureIndexes(ctx context.Context) error {
	return nil
}

func (r *firestoreSlotRepo) Ping(ctx context.Context) error {
	_, err := r.coll.Limit(1).Documents(ctx).GetAll()
	return err
}

func patchUpdates(p models.SlotPatch) []firestore.Update {
	fields := p.Fields()
	updates := make([]firestore.Update, 0, len(fields)+1)
	for path, value := range fields {
		if st, ok := value.(models.SlotStatus); ok {
			value = string(st)
		}
		updates = append(updates, firestore.Update{Path: path, Value: value})
	}
	updates = append(updates, firestore.Update{Path: "version", Value: firestore.Increment(1)})
	return updates
}

func decodeSnapshot(snap *firestore.DocumentSnapshot) (*models.Slot, error) {
	var s models.Slot
	if err := snap.DataTo(&s); err != nil {
		return nil, fmt.Errorf("decode slot %s: %w", snap.Ref.ID, err)
	}
	s.ID = snap.Ref.ID
	return &s, nil
}

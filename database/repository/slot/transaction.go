package slotRepo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"medislot/models"
)

var errVersionMismatch = errors.New("slot version changed during transaction")

// UpdateInTransaction reads the slot in a session transaction and writes the
// patch guarded by the version it read. WithTransaction already retries
// transient write conflicts; a version mismatch restarts the whole attempt.
func (r *mongoSlotRepo) UpdateInTransaction(ctx context.Context, slotID string, fn UpdateFunc) (*models.Slot, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	sess, err := r.coll.Database().Client().StartSession()
	if err != nil {
		return nil, fmt.Errorf("could not start mongo session: %w", err)
	}
	defer sess.EndSession(ctx)

	for attempt := 1; attempt <= r.maxAttempts; attempt++ {
		res, err := sess.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
			var current models.Slot
			if err := r.coll.FindOne(sc, bson.M{"id": slotID}).Decode(&current); err != nil {
				if errors.Is(err, mongo.ErrNoDocuments) {
					return nil, ErrNotFound
				}
				return nil, err
			}

			patch, err := fn(current)
			if err != nil {
				return nil, err
			}
			if patch == nil {
				return &current, nil
			}

			update := bson.M{
				"$set": bson.M(patch.Fields()),
				"$inc": bson.M{"version": 1},
			}
			ures, err := r.coll.UpdateOne(sc, bson.M{"id": slotID, "version": current.Version}, update)
			if err != nil {
				return nil, err
			}
			if ures.MatchedCount == 0 {
				return nil, errVersionMismatch
			}

			patch.Apply(&current)
			current.Version++
			return &current, nil
		})
		if errors.Is(err, errVersionMismatch) {
			continue
		}
		if err != nil {
			return nil, err
		}
		return res.(*models.Slot), nil
	}
	return nil, ErrContention
}

// File: database/repository/slot/mongo.go
package slotRepo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"medislot/models"
)

const slotsCollection = "slots"

type mongoSlotRepo struct {
	coll        *mongo.Collection
	maxAttempts int
}

// NewMongoSlotRepo constructs a MongoDB SlotRepository. Transactions require a
// replica set or sharded cluster.
func NewMongoSlotRepo(client *mongo.Client, dbName string, maxAttempts int) SlotRepository {
	if maxAttempts <= 0 {
		maxAttempts = 5
	}
	return &mongoSlotRepo{
		coll:        client.Database(dbName).Collection(slotsCollection),
		maxAttempts: maxAttempts,
	}
}

func (r *mongoSlotRepo) GetByID(ctx context.Context, slotID string) (*models.Slot, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var slot models.Slot
	err := r.coll.FindOne(ctx, bson.M{"id": slotID}).Decode(&slot)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("find slot %s: %w", slotID, err)
	}
	return &slot, nil
}

func (r *mongoSlotRepo) ListByProviderDate(ctx context.Context, providerID, date string, liveOnly bool) ([]models.Slot, error) {
	filter := bson.M{"providerId": providerID, "date": date}
	if liveOnly {
		filter["status"] = bson.M{"$ne": models.SlotStatusCancelled}
	}
	return r.find(ctx, filter, bson.D{{Key: "time", Value: 1}})
}

func (r *mongoSlotRepo) ListByPatient(ctx context.Context, patientID string) ([]models.Slot, error) {
	return r.find(ctx, bson.M{"patientId": patientID}, bson.D{{Key: "date", Value: -1}, {Key: "time", Value: -1}})
}

func (r *mongoSlotRepo) ListBookedByProvider(ctx context.Context, providerID string) ([]models.Slot, error) {
	filter := bson.M{"providerId": providerID, "isBooked": true}
	return r.find(ctx, filter, bson.D{{Key: "date", Value: -1}, {Key: "time", Value: -1}})
}

func (r *mongoSlotRepo) find(ctx context.Context, filter bson.M, sort bson.D) ([]models.Slot, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	cursor, err := r.coll.Find(ctx, filter, options.Find().SetSort(sort))
	if err != nil {
		return nil, fmt.Errorf("failed to fetch slots: %w", err)
	}
	defer cursor.Close(ctx)

	slots := []models.Slot{}
	if err := cursor.All(ctx, &slots); err != nil {
		return nil, fmt.Errorf("error decoding slots: %w", err)
	}
	return slots, nil
}

// CommitBatch runs the staged writes as one ordered BulkWrite inside a
// transaction. Deletes only match free Active slots and cancellations only
// match live bookings, so a booking or cancellation that lands between the
// caller's read and this commit aborts the whole batch instead of being lost.
func (r *mongoSlotRepo) CommitBatch(ctx context.Context, b *Batch) error {
	if b.Empty() {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()

	writes := make([]mongo.WriteModel, 0, b.Len())
	for _, id := range b.Deletes {
		writes = append(writes, mongo.NewDeleteOneModel().SetFilter(bson.M{
			"id":       id,
			"isBooked": false,
			"status":   models.SlotStatusActive,
		}))
	}
	for _, u := range b.Updates {
		writes = append(writes, mongo.NewUpdateOneModel().
			SetFilter(bson.M{
				"id":       u.ID,
				"isBooked": true,
				"status":   bson.M{"$in": bson.A{models.SlotStatusBooked, models.SlotStatusHoliday}},
			}).
			SetUpdate(bson.M{
				"$set": bson.M(u.Patch.Fields()),
				"$inc": bson.M{"version": 1},
			}))
	}
	for _, s := range b.Creates {
		writes = append(writes, mongo.NewInsertOneModel().SetDocument(s))
	}

	sess, err := r.coll.Database().Client().StartSession()
	if err != nil {
		return fmt.Errorf("could not start mongo session: %w", err)
	}
	defer sess.EndSession(ctx)

	_, err = sess.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		res, err := r.coll.BulkWrite(sc, writes, options.BulkWrite().SetOrdered(true))
		if err != nil {
			return nil, err
		}
		if int(res.DeletedCount) != len(b.Deletes) || int(res.MatchedCount) != len(b.Updates) {
			return nil, ErrStaleBatch
		}
		return nil, nil
	})
	if err != nil {
		return fmt.Errorf("slot batch transaction failed: %w", err)
	}
	return nil
}

func (r *mongoSlotRepo) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	return r.coll.Database().Client().Ping(ctx, nil)
}

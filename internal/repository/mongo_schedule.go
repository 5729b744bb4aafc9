package repository

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/mansoorceksport/periodize/internal/domain"
)

// activeStatuses are the statuses that occupy a calendar slot.
var activeStatuses = []string{domain.ScheduleStatusPlanned, domain.ScheduleStatusInProgress}

type MongoScheduleRepository struct {
	collection *mongo.Collection
}

func NewMongoScheduleRepository(db *mongo.Database) *MongoScheduleRepository {
	return &MongoScheduleRepository{
		collection: db.Collection("scheduled_workouts"),
	}
}

// EnsureIndexes creates the partial unique index backing the one-active-
// workout-per-slot rule across processes, plus the calendar range index.
func (r *MongoScheduleRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.collection.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys: bson.D{
				{Key: "user_id", Value: 1},
				{Key: "date", Value: 1},
				{Key: "template_id", Value: 1},
			},
			Options: options.Index().
				SetUnique(true).
				SetPartialFilterExpression(bson.M{"status": bson.M{"$in": activeStatuses}}),
		},
		{
			Keys: bson.D{
				{Key: "user_id", Value: 1},
				{Key: "date", Value: 1},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("failed to create schedule indexes: %w", err)
	}
	return nil
}

func (r *MongoScheduleRepository) Create(ctx context.Context, workout *domain.ScheduledWorkout) error {
	result, err := r.collection.InsertOne(ctx, workout)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return domain.ErrDuplicateSlot
		}
		return fmt.Errorf("failed to create scheduled workout: %w", err)
	}
	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		workout.ID = oid.Hex()
	}
	return nil
}

func (r *MongoScheduleRepository) GetByID(ctx context.Context, id string) (*domain.ScheduledWorkout, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.ErrInvalidID
	}

	var workout domain.ScheduledWorkout
	err = r.collection.FindOne(ctx, bson.M{"_id": oid}).Decode(&workout)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, domain.ErrScheduleNotFound
		}
		return nil, err
	}
	return &workout, nil
}

func (r *MongoScheduleRepository) FindActiveSlot(ctx context.Context, userID string, date time.Time, templateID string) (*domain.ScheduledWorkout, error) {
	filter := bson.M{
		"user_id":     userID,
		"date":        date,
		"template_id": templateID,
		"status":      bson.M{"$in": activeStatuses},
	}

	var workout domain.ScheduledWorkout
	err := r.collection.FindOne(ctx, filter).Decode(&workout)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, err
	}
	return &workout, nil
}

func (r *MongoScheduleRepository) ListByDateRange(ctx context.Context, userID string, from, to time.Time) ([]*domain.ScheduledWorkout, error) {
	filter := bson.M{
		"user_id": userID,
		"date": bson.M{
			"$gte": from,
			"$lt":  to,
		},
	}

	cursor, err := r.collection.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "date", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var workouts []*domain.ScheduledWorkout
	if err := cursor.All(ctx, &workouts); err != nil {
		return nil, err
	}
	return workouts, nil
}

func (r *MongoScheduleRepository) Update(ctx context.Context, workout *domain.ScheduledWorkout) error {
	oid, err := primitive.ObjectIDFromHex(workout.ID)
	if err != nil {
		return domain.ErrInvalidID
	}

	update := bson.M{
		"$set": bson.M{
			"date":             workout.Date,
			"status":           workout.Status,
			"prescription":     workout.Prescription,
			"rescheduled_from": workout.RescheduledFrom,
			"notes":            workout.Notes,
			"updated_at":       workout.UpdatedAt,
		},
	}
	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": oid}, update)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return domain.ErrDuplicateSlot
		}
		return fmt.Errorf("failed to update scheduled workout: %w", err)
	}
	if result.MatchedCount == 0 {
		return domain.ErrScheduleNotFound
	}
	return nil
}

func (r *MongoScheduleRepository) UpdateStatus(ctx context.Context, id, fromStatus, toStatus string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return domain.ErrInvalidID
	}

	// Conditional on the current status so concurrent transitions cannot both
	// win.
	result, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": oid, "status": fromStatus},
		bson.M{"$set": bson.M{
			"status":     toStatus,
			"updated_at": time.Now(),
		}},
	)
	if err != nil {
		return fmt.Errorf("failed to update schedule status: %w", err)
	}
	if result.MatchedCount == 0 {
		return domain.ErrInvalidTransition
	}
	return nil
}

func (r *MongoScheduleRepository) SetSession(ctx context.Context, id, sessionID string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return domain.ErrInvalidID
	}

	result, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": oid, "status": domain.ScheduleStatusPlanned},
		bson.M{"$set": bson.M{
			"session_id": sessionID,
			"status":     domain.ScheduleStatusInProgress,
			"updated_at": time.Now(),
		}},
	)
	if err != nil {
		return fmt.Errorf("failed to link session to schedule: %w", err)
	}
	if result.MatchedCount == 0 {
		return domain.ErrInvalidTransition
	}
	return nil
}

func (r *MongoScheduleRepository) Delete(ctx context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return domain.ErrInvalidID
	}

	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return fmt.Errorf("failed to delete schedule: %w", err)
	}
	if result.DeletedCount == 0 {
		return domain.ErrScheduleNotFound
	}
	return nil
}

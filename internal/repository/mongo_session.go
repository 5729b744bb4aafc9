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

type MongoSessionRepository struct {
	collection *mongo.Collection
}

func NewMongoSessionRepository(db *mongo.Database) *MongoSessionRepository {
	return &MongoSessionRepository{
		collection: db.Collection("workout_sessions"),
	}
}

func (r *MongoSessionRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.collection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{
			{Key: "user_id", Value: 1},
			{Key: "completed_at", Value: 1},
		},
	})
	if err != nil {
		return fmt.Errorf("failed to create session indexes: %w", err)
	}
	return nil
}

func (r *MongoSessionRepository) Create(ctx context.Context, session *domain.WorkoutSession) error {
	result, err := r.collection.InsertOne(ctx, session)
	if err != nil {
		return fmt.Errorf("failed to create session: %w", err)
	}
	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		session.ID = oid.Hex()
	}
	return nil
}

func (r *MongoSessionRepository) GetByID(ctx context.Context, id string) (*domain.WorkoutSession, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.ErrInvalidID
	}

	var session domain.WorkoutSession
	err = r.collection.FindOne(ctx, bson.M{"_id": oid}).Decode(&session)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, domain.ErrSessionNotFound
		}
		return nil, err
	}
	return &session, nil
}

func (r *MongoSessionRepository) AppendSet(ctx context.Context, id string, set domain.LoggedSet) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return domain.ErrInvalidID
	}

	// Open sessions only; a finalized session cannot grow.
	result, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": oid, "completed_at": nil},
		bson.M{
			"$push": bson.M{"sets": set},
			"$set":  bson.M{"updated_at": time.Now()},
		},
	)
	if err != nil {
		return fmt.Errorf("failed to append set: %w", err)
	}
	if result.MatchedCount == 0 {
		return domain.ErrSessionFinalized
	}
	return nil
}

func (r *MongoSessionRepository) Finalize(ctx context.Context, id string, completedAt time.Time, totalVolume float64, totalSets int) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return domain.ErrInvalidID
	}

	result, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": oid, "completed_at": nil},
		bson.M{"$set": bson.M{
			"completed_at": completedAt,
			"total_volume": totalVolume,
			"total_sets":   totalSets,
			"updated_at":   time.Now(),
		}},
	)
	if err != nil {
		return fmt.Errorf("failed to finalize session: %w", err)
	}
	if result.MatchedCount == 0 {
		return domain.ErrSessionFinalized
	}
	return nil
}

func (r *MongoSessionRepository) ReplaceSets(ctx context.Context, id string, sets []domain.LoggedSet, totalVolume float64, totalSets int) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return domain.ErrInvalidID
	}

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": oid}, bson.M{
		"$set": bson.M{
			"sets":         sets,
			"total_volume": totalVolume,
			"total_sets":   totalSets,
			"updated_at":   time.Now(),
		},
	})
	if err != nil {
		return fmt.Errorf("failed to replace session sets: %w", err)
	}
	if result.MatchedCount == 0 {
		return domain.ErrSessionNotFound
	}
	return nil
}

func (r *MongoSessionRepository) Void(ctx context.Context, id string, at time.Time) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return domain.ErrInvalidID
	}

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": oid}, bson.M{
		"$set": bson.M{
			"voided_at":  at,
			"updated_at": time.Now(),
		},
	})
	if err != nil {
		return fmt.Errorf("failed to void session: %w", err)
	}
	if result.MatchedCount == 0 {
		return domain.ErrSessionNotFound
	}
	return nil
}

func (r *MongoSessionRepository) ListCompletedByDateRange(ctx context.Context, userID string, from, to time.Time) ([]*domain.WorkoutSession, error) {
	filter := bson.M{
		"user_id": userID,
		"completed_at": bson.M{
			"$gte": from,
			"$lt":  to,
		},
		"voided_at": nil,
	}

	cursor, err := r.collection.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "completed_at", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var sessions []*domain.WorkoutSession
	if err := cursor.All(ctx, &sessions); err != nil {
		return nil, err
	}
	return sessions, nil
}

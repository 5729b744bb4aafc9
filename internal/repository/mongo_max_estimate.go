package repository

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/mansoorceksport/periodize/internal/domain"
)

type MongoMaxEstimateRepository struct {
	collection *mongo.Collection
}

func NewMongoMaxEstimateRepository(db *mongo.Database) *MongoMaxEstimateRepository {
	return &MongoMaxEstimateRepository{
		collection: db.Collection("max_estimates"),
	}
}

func (r *MongoMaxEstimateRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.collection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{
			{Key: "user_id", Value: 1},
			{Key: "exercise_id", Value: 1},
		},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("failed to create max estimate index: %w", err)
	}
	return nil
}

// maxEstimateDoc keys estimates on (user_id, exercise_id) instead of an
// ObjectID; the pair is the natural identity and makes Upsert a single write.
type maxEstimateDoc struct {
	UserID        string    `bson:"user_id"`
	ExerciseID    string    `bson:"exercise_id"`
	Value         float64   `bson:"value"`
	Source        string    `bson:"source"`
	BasedOnWeight float64   `bson:"based_on_weight,omitempty"`
	BasedOnReps   int       `bson:"based_on_reps,omitempty"`
	UpdatedAt     time.Time `bson:"updated_at"`
	CreatedAt     time.Time `bson:"created_at"`
}

func (d *maxEstimateDoc) toDomain() *domain.OneRepMaxEstimate {
	return &domain.OneRepMaxEstimate{
		ID:            d.UserID + ":" + d.ExerciseID,
		UserID:        d.UserID,
		ExerciseID:    d.ExerciseID,
		Value:         d.Value,
		Source:        d.Source,
		BasedOnWeight: d.BasedOnWeight,
		BasedOnReps:   d.BasedOnReps,
		UpdatedAt:     d.UpdatedAt,
		CreatedAt:     d.CreatedAt,
	}
}

func (r *MongoMaxEstimateRepository) Get(ctx context.Context, userID, exerciseID string) (*domain.OneRepMaxEstimate, error) {
	var doc maxEstimateDoc
	err := r.collection.FindOne(ctx, bson.M{
		"user_id":     userID,
		"exercise_id": exerciseID,
	}).Decode(&doc)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, err
	}
	return doc.toDomain(), nil
}

func (r *MongoMaxEstimateRepository) Upsert(ctx context.Context, estimate *domain.OneRepMaxEstimate) error {
	filter := bson.M{
		"user_id":     estimate.UserID,
		"exercise_id": estimate.ExerciseID,
	}
	update := bson.M{
		"$set": bson.M{
			"value":           estimate.Value,
			"source":          estimate.Source,
			"based_on_weight": estimate.BasedOnWeight,
			"based_on_reps":   estimate.BasedOnReps,
			"updated_at":      estimate.UpdatedAt,
		},
		"$setOnInsert": bson.M{
			"user_id":     estimate.UserID,
			"exercise_id": estimate.ExerciseID,
			"created_at":  estimate.UpdatedAt,
		},
	}

	_, err := r.collection.UpdateOne(ctx, filter, update, options.Update().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("failed to upsert max estimate: %w", err)
	}
	estimate.ID = estimate.UserID + ":" + estimate.ExerciseID
	return nil
}

func (r *MongoMaxEstimateRepository) ListByUser(ctx context.Context, userID string) ([]*domain.OneRepMaxEstimate, error) {
	cursor, err := r.collection.Find(ctx, bson.M{"user_id": userID})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var docs []maxEstimateDoc
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, err
	}

	estimates := make([]*domain.OneRepMaxEstimate, 0, len(docs))
	for i := range docs {
		estimates = append(estimates, docs[i].toDomain())
	}
	return estimates, nil
}

package repository

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/mansoorceksport/periodize/internal/domain"
)

// MongoExerciseRepository is the read-mostly exercise catalog. Documents are
// keyed by slug (e.g. "barbell-bench-press"), not ObjectID, so prescriptions
// and logs can reference exercises with stable human-readable IDs.
type MongoExerciseRepository struct {
	collection *mongo.Collection
}

func NewMongoExerciseRepository(db *mongo.Database) *MongoExerciseRepository {
	return &MongoExerciseRepository{
		collection: db.Collection("exercises"),
	}
}

func (r *MongoExerciseRepository) GetByID(ctx context.Context, id string) (*domain.Exercise, error) {
	var exercise domain.Exercise
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&exercise)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, domain.ErrExerciseNotFound
		}
		return nil, err
	}
	return &exercise, nil
}

func (r *MongoExerciseRepository) List(ctx context.Context, filterOpts map[string]interface{}) ([]*domain.Exercise, error) {
	filter := bson.M{}
	for k, v := range filterOpts {
		filter[k] = v
	}

	cursor, err := r.collection.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "name", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var exercises []*domain.Exercise
	if err := cursor.All(ctx, &exercises); err != nil {
		return nil, err
	}
	return exercises, nil
}

// Seed inserts catalog entries, skipping slugs that already exist.
func (r *MongoExerciseRepository) Seed(ctx context.Context, exercises []*domain.Exercise) (int, error) {
	inserted := 0
	for _, ex := range exercises {
		_, err := r.collection.UpdateOne(ctx,
			bson.M{"_id": ex.ID},
			bson.M{"$setOnInsert": bson.M{
				"name":          ex.Name,
				"muscle_groups": ex.MuscleGroups,
				"equipment":     ex.Equipment,
			}},
			options.Update().SetUpsert(true),
		)
		if err != nil {
			return inserted, fmt.Errorf("failed to seed exercise %s: %w", ex.ID, err)
		}
		inserted++
	}
	return inserted, nil
}

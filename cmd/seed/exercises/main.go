package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/mansoorceksport/periodize/internal/config"
	"github.com/mansoorceksport/periodize/internal/domain"
	"github.com/mansoorceksport/periodize/internal/repository"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoDB.URI))
	if err != nil {
		log.Fatalf("Failed to connect to Mongo: %v", err)
	}
	defer client.Disconnect(ctx)

	db := client.Database(cfg.MongoDB.Database)
	repo := repository.NewMongoExerciseRepository(db)

	exercises := []*domain.Exercise{
		// Lower body
		{ID: "back-squat", Name: "Back Squat", MuscleGroups: []string{"quads", "glutes"}, Equipment: []string{"barbell"}},
		{ID: "front-squat", Name: "Front Squat", MuscleGroups: []string{"quads", "core"}, Equipment: []string{"barbell"}},
		{ID: "deadlift", Name: "Deadlift", MuscleGroups: []string{"hamstrings", "glutes", "back"}, Equipment: []string{"barbell"}},
		{ID: "romanian-deadlift", Name: "Romanian Deadlift", MuscleGroups: []string{"hamstrings", "glutes"}, Equipment: []string{"barbell"}},
		{ID: "leg-press", Name: "Leg Press", MuscleGroups: []string{"quads", "glutes"}, Equipment: []string{"machine"}},
		{ID: "bulgarian-split-squat", Name: "Bulgarian Split Squat", MuscleGroups: []string{"quads", "glutes"}, Equipment: []string{"dumbbell"}},
		{ID: "leg-curl", Name: "Lying Leg Curl", MuscleGroups: []string{"hamstrings"}, Equipment: []string{"machine"}},
		{ID: "calf-raise", Name: "Standing Calf Raise", MuscleGroups: []string{"calves"}, Equipment: []string{"machine"}},

		// Push
		{ID: "bench-press", Name: "Barbell Bench Press", MuscleGroups: []string{"chest", "triceps"}, Equipment: []string{"barbell"}},
		{ID: "incline-bench-press", Name: "Incline Bench Press", MuscleGroups: []string{"chest", "shoulders"}, Equipment: []string{"barbell"}},
		{ID: "overhead-press", Name: "Overhead Press", MuscleGroups: []string{"shoulders", "triceps"}, Equipment: []string{"barbell"}},
		{ID: "dumbbell-bench-press", Name: "Dumbbell Bench Press", MuscleGroups: []string{"chest", "triceps"}, Equipment: []string{"dumbbell"}},
		{ID: "dip", Name: "Dip", MuscleGroups: []string{"chest", "triceps"}, Equipment: []string{"bodyweight"}},
		{ID: "lateral-raise", Name: "Dumbbell Lateral Raise", MuscleGroups: []string{"shoulders"}, Equipment: []string{"dumbbell"}},

		// Pull
		{ID: "barbell-row", Name: "Barbell Row", MuscleGroups: []string{"back", "biceps"}, Equipment: []string{"barbell"}},
		{ID: "pull-up", Name: "Pull Up", MuscleGroups: []string{"back", "biceps"}, Equipment: []string{"bodyweight"}},
		{ID: "lat-pulldown", Name: "Lat Pulldown", MuscleGroups: []string{"back", "biceps"}, Equipment: []string{"machine"}},
		{ID: "seated-cable-row", Name: "Seated Cable Row", MuscleGroups: []string{"back"}, Equipment: []string{"machine"}},
		{ID: "barbell-curl", Name: "Barbell Curl", MuscleGroups: []string{"biceps"}, Equipment: []string{"barbell"}},
		{ID: "face-pull", Name: "Face Pull", MuscleGroups: []string{"rear delts", "upper back"}, Equipment: []string{"cable"}},
	}

	inserted, err := repo.Seed(ctx, exercises)
	if err != nil {
		log.Fatalf("Failed to seed exercises: %v", err)
	}

	fmt.Printf("Seeded exercise catalog: %d new, %d already present\n", inserted, len(exercises)-inserted)
}

package repository

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"complyq/internal/model"
)

type ResultRepository interface {
	Create(ctx context.Context, result *model.AssessmentResult) error
	GetByAssessmentID(ctx context.Context, assessmentID string) (*model.AssessmentResult, error)
	ListByFrameworkID(ctx context.Context, frameworkID string) ([]*model.AssessmentResult, error)
}

type resultRepository struct {
	collection *mongo.Collection
}

func NewResultRepository(client *mongo.Client, dbName string) ResultRepository {
	db := client.Database(dbName)
	return &resultRepository{
		collection: db.Collection("results"),
	}
}

func (r *resultRepository) Create(ctx context.Context, result *model.AssessmentResult) error {
	if result.CompletedAt.IsZero() {
		result.CompletedAt = time.Now()
	}

	_, err := r.collection.InsertOne(ctx, result)
	return err
}

func (r *resultRepository) GetByAssessmentID(ctx context.Context, assessmentID string) (*model.AssessmentResult, error) {
	var result model.AssessmentResult
	err := r.collection.FindOne(ctx, bson.M{"assessmentId": assessmentID}).Decode(&result)
	if err == mongo.ErrNoDocuments {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &result, nil
}

func (r *resultRepository) ListByFrameworkID(ctx context.Context, frameworkID string) ([]*model.AssessmentResult, error) {
	cursor, err := r.collection.Find(
		ctx,
		bson.M{"frameworkId": frameworkID},
		options.Find().SetSort(bson.M{"completedAt": -1}),
	)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var results []*model.AssessmentResult
	if err = cursor.All(ctx, &results); err != nil {
		return nil, err
	}
	return results, nil
}

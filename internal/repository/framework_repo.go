package repository

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"complyq/internal/model"
)

var ErrNotFound = errors.New("not found")

type FrameworkRepository interface {
	GetByID(ctx context.Context, id string) (*model.AssessmentFramework, error)
	List(ctx context.Context) ([]*model.AssessmentFramework, error)
	Upsert(ctx context.Context, framework *model.AssessmentFramework) error
	Delete(ctx context.Context, id string) error
}

type frameworkRepository struct {
	collection *mongo.Collection
}

func NewFrameworkRepository(client *mongo.Client, dbName string) FrameworkRepository {
	db := client.Database(dbName)
	return &frameworkRepository{
		collection: db.Collection("frameworks"),
	}
}

func (r *frameworkRepository) GetByID(ctx context.Context, id string) (*model.AssessmentFramework, error) {
	var framework model.AssessmentFramework
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&framework)
	if err == mongo.ErrNoDocuments {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &framework, nil
}

func (r *frameworkRepository) List(ctx context.Context) ([]*model.AssessmentFramework, error) {
	cursor, err := r.collection.Find(ctx, bson.M{}, options.Find().SetSort(bson.M{"name": 1}))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var frameworks []*model.AssessmentFramework
	if err = cursor.All(ctx, &frameworks); err != nil {
		return nil, err
	}
	return frameworks, nil
}

func (r *frameworkRepository) Upsert(ctx context.Context, framework *model.AssessmentFramework) error {
	now := time.Now()
	if framework.CreatedAt.IsZero() {
		framework.CreatedAt = now
	}
	framework.UpdatedAt = now

	_, err := r.collection.ReplaceOne(
		ctx,
		bson.M{"_id": framework.ID},
		framework,
		options.Replace().SetUpsert(true),
	)
	return err
}

func (r *frameworkRepository) Delete(ctx context.Context, id string) error {
	_, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	return err
}

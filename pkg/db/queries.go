package db

import (
	"context"
	"errors"
	"fmt"
	"math"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// aggregator is the part of *mongo.Collection the report queries use
type aggregator interface {
	Aggregate(ctx context.Context, pipeline interface{}, opts ...*options.AggregateOptions) (*mongo.Cursor, error)
	FindOne(ctx context.Context, filter interface{}, opts ...*options.FindOneOptions) *mongo.SingleResult
}

// Queries runs the recipe reports as MongoDB aggregations.
// It reads the persisted document form, not domain.Recipe.
type Queries struct {
	coll aggregator
}

// NewQueries creates report queries over the client's default collection
func NewQueries(c *Client) (*Queries, error) {
	if c == nil || c.collection == nil {
		return nil, fmt.Errorf("collection not initialized")
	}
	return &Queries{coll: c.collection}, nil
}

// AvgIngredients returns the mean ingredient count, rounded half to even
func (q *Queries) AvgIngredients(ctx context.Context) (int, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$project", Value: bson.D{
			{Key: "num_ingredients", Value: bson.D{{Key: "$size", Value: bson.D{
				{Key: "$ifNull", Value: bson.A{"$ingredients", bson.A{}}},
			}}}},
		}}},
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: nil},
			{Key: "avgIngredients", Value: bson.D{{Key: "$avg", Value: "$num_ingredients"}}},
		}}},
	}

	var row struct {
		Avg *float64 `bson:"avgIngredients"`
	}
	if err := q.aggregateOne(ctx, pipeline, &row); err != nil {
		return 0, fmt.Errorf("average ingredients: %w", err)
	}
	if row.Avg == nil {
		return 0, fmt.Errorf("average ingredients: %w", ErrNoRecipes)
	}
	return int(math.RoundToEven(*row.Avg)), nil
}

// AvgSteps returns the mean preparation step count rounded to two decimals
func (q *Queries) AvgSteps(ctx context.Context) (float64, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$project", Value: bson.D{
			{Key: "num_steps", Value: bson.D{{Key: "$size", Value: bson.D{
				{Key: "$objectToArray", Value: bson.D{
					{Key: "$ifNull", Value: bson.A{"$preparation_steps", bson.D{}}},
				}},
			}}}},
		}}},
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: nil},
			{Key: "avgSteps", Value: bson.D{{Key: "$avg", Value: "$num_steps"}}},
		}}},
	}

	var row struct {
		Avg *float64 `bson:"avgSteps"`
	}
	if err := q.aggregateOne(ctx, pipeline, &row); err != nil {
		return 0, fmt.Errorf("average steps: %w", err)
	}
	if row.Avg == nil {
		return 0, fmt.Errorf("average steps: %w", ErrNoRecipes)
	}
	return math.Round(*row.Avg*100) / 100, nil
}

// MostPortions returns the first recipe with the highest portion count
func (q *Queries) MostPortions(ctx context.Context) (RecipeRef, error) {
	opts := options.FindOne().
		SetSort(bson.D{{Key: "portions", Value: -1}}).
		SetProjection(bson.D{{Key: "_id", Value: 0}, {Key: "title", Value: 1}, {Key: "link", Value: 1}, {Key: "portions", Value: 1}})

	var ref RecipeRef
	err := q.coll.FindOne(ctx, bson.D{{Key: "portions", Value: bson.D{{Key: "$ne", Value: nil}}}}, opts).Decode(&ref)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return RecipeRef{}, fmt.Errorf("most portions: %w", ErrNoRecipes)
	}
	if err != nil {
		return RecipeRef{}, fmt.Errorf("most portions: %w", err)
	}
	return ref, nil
}

// TopAuthor returns the author with the most recipes
func (q *Queries) TopAuthor(ctx context.Context) (AuthorCount, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: "$author"},
			{Key: "recipeCount", Value: bson.D{{Key: "$sum", Value: 1}}},
		}}},
		{{Key: "$sort", Value: bson.D{{Key: "recipeCount", Value: -1}}}},
		{{Key: "$limit", Value: 1}},
	}

	var top AuthorCount
	if err := q.aggregateOne(ctx, pipeline, &top); err != nil {
		return AuthorCount{}, fmt.Errorf("top author: %w", err)
	}
	return top, nil
}

// aggregateOne decodes the first row of an aggregation, ErrNoRecipes when there is none
func (q *Queries) aggregateOne(ctx context.Context, pipeline mongo.Pipeline, out interface{}) error {
	cursor, err := q.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return err
	}
	defer cursor.Close(ctx)

	if !cursor.Next(ctx) {
		if err := cursor.Err(); err != nil {
			return err
		}
		return ErrNoRecipes
	}
	return cursor.Decode(out)
}

package db

import (
	"context"
	"errors"

	"recipe-harvest/pkg/domain"
)

// ErrNoRecipes is returned by report queries over an empty collection
var ErrNoRecipes = errors.New("no recipes found")

// RecipeStore is implemented by every backend a harvest run can write to.
// This allows the Mongo, Postgres and Supabase clients to be used interchangeably.
type RecipeStore interface {
	// InsertMany stores the recipes in the named collection (or table) and returns their ids in order.
	// An empty collection name means the backend's default.
	InsertMany(ctx context.Context, collection string, recipes []domain.Recipe) ([]string, error)
}

// RecipeSource reads every stored recipe
type RecipeSource interface {
	FindAll(ctx context.Context) ([]domain.Recipe, error)
}

// LinkIndex reports which recipe links a backend already holds
type LinkIndex interface {
	ExistingLinks(ctx context.Context, links []string) (map[string]bool, error)
}

// Reporter answers the aggregate questions asked over stored recipes
type Reporter interface {
	AvgIngredients(ctx context.Context) (int, error)
	AvgSteps(ctx context.Context) (float64, error)
	MostPortions(ctx context.Context) (RecipeRef, error)
	TopAuthor(ctx context.Context) (AuthorCount, error)
}

// RecipeRef identifies a stored recipe
type RecipeRef struct {
	Title    string `bson:"title" json:"title"`
	Link     string `bson:"link" json:"link"`
	Portions int    `bson:"portions" json:"portions"`
}

// AuthorCount is the number of recipes posted by one author
type AuthorCount struct {
	Author  string `bson:"_id" json:"author"`
	Recipes int    `bson:"recipeCount" json:"recipes"`
}

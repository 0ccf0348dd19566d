package db

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"recipe-harvest/pkg/domain"
)

// Client wraps the MongoDB client and database connection
type Client struct {
	mongoClient *mongo.Client
	database    *mongo.Database
	collection  *mongo.Collection
}

// NewClient creates a new database client.
// collectionName is the default collection used by reads and by InsertMany with an empty name.
func NewClient(connectionString, databaseName, collectionName string) *Client {
	clientOptions := options.Client().ApplyURI(connectionString)
	mongoClient, err := mongo.Connect(context.Background(), clientOptions)
	if err != nil {
		// Return client with nil - error will be caught during Connect()
		return &Client{}
	}

	database := mongoClient.Database(databaseName)
	collection := database.Collection(collectionName)

	return &Client{
		mongoClient: mongoClient,
		database:    database,
		collection:  collection,
	}
}

// Connect establishes connection to MongoDB
func (c *Client) Connect(ctx context.Context) error {
	if c.mongoClient == nil {
		return fmt.Errorf("mongo client not initialized")
	}
	return c.mongoClient.Ping(ctx, nil)
}

// Close closes the MongoDB connection
func (c *Client) Close(ctx context.Context) error {
	if c.mongoClient == nil {
		return nil
	}
	return c.mongoClient.Disconnect(ctx)
}

// Collection returns the named collection, or the default one when name is empty
func (c *Client) Collection(name string) *mongo.Collection {
	if name == "" || c.database == nil {
		return c.collection
	}
	return c.database.Collection(name)
}

// InsertMany inserts the recipes and returns the generated document ids in order
func (c *Client) InsertMany(ctx context.Context, collection string, recipes []domain.Recipe) ([]string, error) {
	coll := c.Collection(collection)
	if coll == nil {
		return nil, fmt.Errorf("collection not initialized")
	}
	if len(recipes) == 0 {
		return []string{}, nil
	}

	docs := make([]interface{}, len(recipes))
	for i := range recipes {
		docs[i] = recipes[i]
	}

	res, err := coll.InsertMany(ctx, docs)
	if err != nil {
		return nil, fmt.Errorf("insert recipes: %w", err)
	}

	return idStrings(res.InsertedIDs), nil
}

// FindAll reads every recipe of the default collection
func (c *Client) FindAll(ctx context.Context) ([]domain.Recipe, error) {
	if c.collection == nil {
		return nil, fmt.Errorf("collection not initialized")
	}

	cursor, err := c.collection.Find(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("failed to query recipes: %w", err)
	}
	defer cursor.Close(ctx)

	return decodeRecipes(ctx, cursor)
}

// decodeRecipes drains a cursor, skipping documents that do not decode
func decodeRecipes(ctx context.Context, cursor *mongo.Cursor) ([]domain.Recipe, error) {
	recipes := make([]domain.Recipe, 0)
	for cursor.Next(ctx) {
		var recipe domain.Recipe
		if err := cursor.Decode(&recipe); err != nil {
			continue // Skip invalid documents
		}
		recipes = append(recipes, recipe)
	}

	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("cursor error: %w", err)
	}

	return recipes, nil
}

func idStrings(ids []interface{}) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		if oid, ok := id.(primitive.ObjectID); ok {
			out[i] = oid.Hex()
			continue
		}
		out[i] = fmt.Sprint(id)
	}
	return out
}

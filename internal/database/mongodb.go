package database

import (
	"context"
	"fmt"
	"log"
	"net/url"
	"time"

	"startup-foundry/internal/config"
	"startup-foundry/internal/models"
	"startup-foundry/internal/storage"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoProjectStore is a MongoDB-backed implementation of storage.ProjectStore
type MongoProjectStore struct {
	client     *mongo.Client
	database   *mongo.Database
	collection *mongo.Collection
}

// NewMongoProjectStore connects to MongoDB and returns a project store
func NewMongoProjectStore(cfg config.MongoDBConfig) (*MongoProjectStore, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Build connection URI
	uri := cfg.URI
	if uri == "" {
		if cfg.Username != "" && cfg.Password != "" {
			// Use url.UserPassword to properly encode username and password
			userInfo := url.UserPassword(cfg.Username, cfg.Password)
			uri = fmt.Sprintf("mongodb://%s@%s:%s/%s?authSource=%s",
				userInfo.String(),
				cfg.Host,
				cfg.Port,
				cfg.Database,
				url.QueryEscape(cfg.AuthSource),
			)
		} else {
			uri = fmt.Sprintf("mongodb://%s:%s/%s",
				cfg.Host,
				cfg.Port,
				cfg.Database,
			)
		}
	}

	// Log connection attempt (mask password)
	logURI := uri
	if cfg.Password != "" && cfg.Username != "" {
		logURI = fmt.Sprintf("mongodb://%s:***@%s:%s/%s",
			cfg.Username, cfg.Host, cfg.Port, cfg.Database)
	}
	log.Printf("Attempting to connect to MongoDB at %s", logURI)

	clientOptions := options.Client().ApplyURI(uri)
	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB at %s: %w", logURI, err)
	}

	// Ping to verify connection
	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("failed to ping MongoDB at %s: %w", logURI, err)
	}

	database := client.Database(cfg.Database)
	collection := database.Collection(cfg.Collection)

	return &MongoProjectStore{
		client:     client,
		database:   database,
		collection: collection,
	}, nil
}

// Put stores or replaces a project document
func (s *MongoProjectStore) Put(ctx context.Context, project *models.Project) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	opts := options.Replace().SetUpsert(true)
	_, err := s.collection.ReplaceOne(ctx, bson.M{"_id": project.ID}, project, opts)
	if err != nil {
		return fmt.Errorf("failed to store project %s: %w", project.ID, err)
	}
	return nil
}

// Get retrieves a project document by id
func (s *MongoProjectStore) Get(ctx context.Context, id string) (*models.Project, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	var project models.Project
	err := s.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&project)
	if err == mongo.ErrNoDocuments {
		return nil, storage.ErrProjectNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch project %s: %w", id, err)
	}
	return &project, nil
}

// Delete removes a project document by id
func (s *MongoProjectStore) Delete(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if _, err := s.collection.DeleteOne(ctx, bson.M{"_id": id}); err != nil {
		return fmt.Errorf("failed to delete project %s: %w", id, err)
	}
	return nil
}

// Close disconnects the underlying MongoDB client
func (s *MongoProjectStore) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.client.Disconnect(ctx)
}

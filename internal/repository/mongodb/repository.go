package mongodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"github.com/mamadbah2/eggtracker/internal/repository"
)

const stateDocumentID = "state"

// stateDocument is the single document holding every blob.
type stateDocument struct {
	ID        string            `bson:"_id"`
	Blobs     map[string]string `bson:"blobs"`
	UpdatedAt time.Time         `bson:"updatedAt"`
}

// MongoDBRepository implements repository.BlobStore on one MongoDB document.
type MongoDBRepository struct {
	client   *mongo.Client
	dbName   string
	collName string
	logger   *zap.Logger
	now      func() time.Time
}

var _ repository.BlobStore = (*MongoDBRepository)(nil)

// NewMongoDBRepository creates a new MongoDB repository.
func NewMongoDBRepository(ctx context.Context, uri string, dbName string, logger *zap.Logger) (*MongoDBRepository, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	clientOptions := options.Client().ApplyURI(uri)
	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongodb: %w", err)
	}

	// Ping the database to verify connection
	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("failed to ping mongodb: %w", err)
	}

	return &MongoDBRepository{
		client:   client,
		dbName:   dbName,
		collName: "egg_state",
		logger:   logger.Named("repo.mongodb"),
		now:      time.Now,
	}, nil
}

func (r *MongoDBRepository) collection() *mongo.Collection {
	return r.client.Database(r.dbName).Collection(r.collName)
}

// Get returns one blob from the state document.
func (r *MongoDBRepository) Get(ctx context.Context, key repository.Key) ([]byte, bool, error) {
	var doc stateDocument
	err := r.collection().FindOne(ctx, bson.M{"_id": stateDocumentID}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to load state document: %w", err)
	}
	value, ok := doc.Blobs[string(key)]
	if !ok {
		return nil, false, nil
	}
	return []byte(value), true, nil
}

// Put sets one blob, creating the document on first write.
func (r *MongoDBRepository) Put(ctx context.Context, key repository.Key, data []byte) error {
	update := bson.M{"$set": bson.M{
		"blobs." + string(key): string(data),
		"updatedAt":            r.now().UTC(),
	}}
	_, err := r.collection().UpdateOne(ctx, bson.M{"_id": stateDocumentID}, update, options.Update().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("failed to write %s blob: %w", key, err)
	}
	return nil
}

// PutAll swaps the whole document in one write.
func (r *MongoDBRepository) PutAll(ctx context.Context, blobs map[repository.Key][]byte) error {
	doc := stateDocument{
		ID:        stateDocumentID,
		Blobs:     make(map[string]string, len(blobs)),
		UpdatedAt: r.now().UTC(),
	}
	for key, data := range blobs {
		doc.Blobs[string(key)] = string(data)
	}
	_, err := r.collection().ReplaceOne(ctx, bson.M{"_id": stateDocumentID}, doc, options.Replace().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("failed to replace state document: %w", err)
	}
	r.logger.Debug("replaced state document", zap.Int("blobs", len(blobs)))
	return nil
}

// Close closes the MongoDB connection.
func (r *MongoDBRepository) Close(ctx context.Context) error {
	return r.client.Disconnect(ctx)
}

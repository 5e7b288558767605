// internal/interface/dataaccess/mongo_store.go
package dataaccess

import (
	"context"
	"fmt"

	"acmeair-service/internal/domain/repository"
	"acmeair-service/internal/infrastructure/config"
	"acmeair-service/internal/infrastructure/persistence"
	"acmeair-service/pkg/logger"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

var mongoNames = repository.DBNames{
	Customer:           "customer",
	Flight:             "flight",
	FlightSegment:      "flightSegment",
	Booking:            "booking",
	CustomerSession:    "customerSession",
	AirportCodeMapping: "airportCodeMapping",
}

// MongoStore implements the DataAccess contract on MongoDB
type MongoStore struct {
	uri      string
	dbName   string
	user     string
	password string
	client   *mongo.Client
	db       *mongo.Database
	logger   logger.Logger
}

// NewMongoStore creates an unconnected MongoDB store
func NewMongoStore(cfg *config.Config, log logger.Logger) *MongoStore {
	return &MongoStore{
		uri:      cfg.MongoURI,
		dbName:   cfg.MongoDB,
		user:     cfg.MongoUser,
		password: cfg.MongoPassword,
		logger:   log,
	}
}

// Initialize connects to MongoDB. Calling it again is a no-op.
func (s *MongoStore) Initialize(ctx context.Context) error {
	if s.db != nil {
		return nil
	}
	client, err := persistence.NewMongoClient(ctx, s.uri, s.user, s.password)
	if err != nil {
		return fmt.Errorf("connect to mongodb: %w", err)
	}
	s.client = client
	s.db = persistence.GetDatabase(client, s.dbName)
	s.logger.Info("Connected to MongoDB", "db", s.dbName)
	return nil
}

// Names returns the mongo collection name table
func (s *MongoStore) Names() repository.DBNames {
	return mongoNames
}

// InsertOne inserts a document
func (s *MongoStore) InsertOne(ctx context.Context, collection string, doc interface{}) error {
	_, err := s.db.Collection(collection).InsertOne(ctx, doc)
	return err
}

// FindOne finds a document by id. Absence is (false, nil).
func (s *MongoStore) FindOne(ctx context.Context, collection, id string, out interface{}) (bool, error) {
	err := s.db.Collection(collection).FindOne(ctx, bson.M{"_id": id}).Decode(out)
	if err == mongo.ErrNoDocuments {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// Update replaces the stored fields of the document with the given id
func (s *MongoStore) Update(ctx context.Context, collection, id string, doc interface{}) error {
	result, err := s.db.Collection(collection).UpdateOne(
		ctx,
		bson.M{"_id": id},
		bson.M{"$set": doc},
	)
	if err != nil {
		return err
	}
	s.logger.Debug("Updated document", "collection", collection, "matched", result.MatchedCount)
	return nil
}

// Remove deletes the document matching the full criteria
func (s *MongoStore) Remove(ctx context.Context, collection string, criteria repository.Criteria) error {
	_, err := s.db.Collection(collection).DeleteOne(ctx, toFilter(criteria))
	return err
}

// FindBy decodes all documents matching the criteria into out
func (s *MongoStore) FindBy(ctx context.Context, collection string, criteria repository.Criteria, out interface{}) error {
	cursor, err := s.db.Collection(collection).Find(ctx, toFilter(criteria))
	if err != nil {
		return err
	}
	defer cursor.Close(ctx)
	return cursor.All(ctx, out)
}

// Count counts documents matching the criteria
func (s *MongoStore) Count(ctx context.Context, collection string, criteria repository.Criteria) (int64, error) {
	return s.db.Collection(collection).CountDocuments(ctx, toFilter(criteria))
}

// RequiresRevisionFetch reports that mongo updates overwrite directly
func (s *MongoStore) RequiresRevisionFetch() bool {
	return false
}

// Close disconnects the client
func (s *MongoStore) Close(ctx context.Context) error {
	if s.client == nil {
		return nil
	}
	return s.client.Disconnect(ctx)
}

func toFilter(criteria repository.Criteria) bson.M {
	filter := bson.M{}
	for field, value := range criteria {
		filter[field] = value
	}
	return filter
}

// internal/interface/dataaccess/redis_store.go
package dataaccess

import (
	"context"
	"encoding/json"
	"fmt"

	"acmeair-service/internal/domain/repository"
	"acmeair-service/internal/infrastructure/config"
	"acmeair-service/internal/infrastructure/persistence"
	"acmeair-service/pkg/logger"

	"github.com/redis/go-redis/v9"
)

var redisNames = repository.DBNames{
	Customer:           "r_customer",
	Flight:             "r_flight",
	FlightSegment:      "r_flightsegment",
	Booking:            "r_booking",
	CustomerSession:    "r_customersession",
	AirportCodeMapping: "r_airportcodemapping",
}

// RedisStore implements the DataAccess contract on Redis. Each document is
// one JSON value; a per-collection set tracks the member ids so FindBy can
// scan. Counting by criteria is not supported on this backend.
type RedisStore struct {
	addr     string
	password string
	dbIndex  int
	client   *redis.Client
	logger   logger.Logger
}

// NewRedisStore creates an unconnected Redis store
func NewRedisStore(cfg *config.Config, log logger.Logger) *RedisStore {
	return &RedisStore{
		addr:     cfg.RedisAddr,
		password: cfg.RedisPassword,
		dbIndex:  cfg.RedisDB,
		logger:   log,
	}
}

// Initialize connects to Redis. Calling it again is a no-op.
func (s *RedisStore) Initialize(ctx context.Context) error {
	if s.client != nil {
		return nil
	}
	client, err := persistence.NewRedisClient(ctx, s.addr, s.password, s.dbIndex)
	if err != nil {
		return fmt.Errorf("connect to redis: %w", err)
	}
	s.client = client
	s.logger.Info("Connected to Redis", "addr", s.addr)
	return nil
}

// Names returns the redis collection name table
func (s *RedisStore) Names() repository.DBNames {
	return redisNames
}

func docKey(collection, id string) string {
	return "acmeair:" + collection + ":" + id
}

func idsKey(collection string) string {
	return "acmeair:" + collection + ":ids"
}

// InsertOne stores the document and registers its id in the collection set
func (s *RedisStore) InsertOne(ctx context.Context, collection string, doc interface{}) error {
	id, err := docID(doc)
	if err != nil {
		return err
	}
	data, err := json.Marshal(doc)
	if err != nil {
		return err
	}
	pipe := s.client.TxPipeline()
	pipe.Set(ctx, docKey(collection, id), data, 0)
	pipe.SAdd(ctx, idsKey(collection), id)
	_, err = pipe.Exec(ctx)
	return err
}

// FindOne finds a document by id. Absence is (false, nil).
func (s *RedisStore) FindOne(ctx context.Context, collection, id string, out interface{}) (bool, error) {
	data, err := s.client.Get(ctx, docKey(collection, id)).Bytes()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal(data, out); err != nil {
		return false, err
	}
	return true, nil
}

// Update overwrites the stored document by id
func (s *RedisStore) Update(ctx context.Context, collection, id string, doc interface{}) error {
	data, err := json.Marshal(doc)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, docKey(collection, id), data, 0).Err()
}

// Remove deletes documents matching the full criteria. A non-matching
// criteria set is a silent no-op.
func (s *RedisStore) Remove(ctx context.Context, collection string, criteria repository.Criteria) error {
	ids, err := s.candidateIDs(ctx, collection, criteria)
	if err != nil {
		return err
	}
	for _, id := range ids {
		data, err := s.client.Get(ctx, docKey(collection, id)).Bytes()
		if err == redis.Nil {
			continue
		}
		if err != nil {
			return err
		}
		var doc map[string]interface{}
		if err := json.Unmarshal(data, &doc); err != nil {
			return err
		}
		if !matchCriteria(doc, criteria) {
			continue
		}
		pipe := s.client.TxPipeline()
		pipe.Del(ctx, docKey(collection, id))
		pipe.SRem(ctx, idsKey(collection), id)
		if _, err := pipe.Exec(ctx); err != nil {
			return err
		}
	}
	return nil
}

// candidateIDs narrows the scan to the criteria id when one is present,
// otherwise the whole collection set.
func (s *RedisStore) candidateIDs(ctx context.Context, collection string, criteria repository.Criteria) ([]string, error) {
	if id, ok := criteria["_id"].(string); ok {
		return []string{id}, nil
	}
	return s.client.SMembers(ctx, idsKey(collection)).Result()
}

// FindBy scans the collection and decodes all documents matching the
// criteria into out
func (s *RedisStore) FindBy(ctx context.Context, collection string, criteria repository.Criteria, out interface{}) error {
	ids, err := s.candidateIDs(ctx, collection, criteria)
	if err != nil {
		return err
	}
	raws := make([]json.RawMessage, 0, len(ids))
	if len(ids) > 0 {
		keys := make([]string, len(ids))
		for i, id := range ids {
			keys[i] = docKey(collection, id)
		}
		values, err := s.client.MGet(ctx, keys...).Result()
		if err != nil {
			return err
		}
		for _, value := range values {
			text, ok := value.(string)
			if !ok {
				continue
			}
			var doc map[string]interface{}
			if err := json.Unmarshal([]byte(text), &doc); err != nil {
				return err
			}
			if matchCriteria(doc, criteria) {
				raws = append(raws, json.RawMessage(text))
			}
		}
	}
	return decodeRows(raws, out)
}

// Count is an intentional stub on this backend. It reports the unsupported
// sentinel, never an error.
func (s *RedisStore) Count(ctx context.Context, collection string, criteria repository.Criteria) (int64, error) {
	return repository.CountUnsupported, nil
}

// RequiresRevisionFetch reports that redis updates overwrite directly
func (s *RedisStore) RequiresRevisionFetch() bool {
	return false
}

// Close closes the client
func (s *RedisStore) Close(ctx context.Context) error {
	if s.client == nil {
		return nil
	}
	return s.client.Close()
}

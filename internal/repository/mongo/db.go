package mongo

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/T-Watch/T-Watch-Backend/internal/repository"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"
)

// Default connection timeout
const defaultTimeout = 10 * time.Second

// ConnectDB establishes a connection to MongoDB using the provided URI and
// verifies it with a ping against the primary.
func ConnectDB(ctx context.Context, uri string) (*mongo.Client, error) {
	clientOptions := options.Client().ApplyURI(uri)

	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return nil, err
	}

	pingCtx, pingCancel := context.WithTimeout(ctx, 5*time.Second)
	defer pingCancel()

	if err := client.Ping(pingCtx, readpref.Primary()); err != nil {
		// Connected but unresponsive: release the client before giving up.
		disconnectCtx, disconnectCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer disconnectCancel()
		_ = client.Disconnect(disconnectCtx)
		return nil, err
	}

	return client, nil
}

// Store owns the process-wide database handle. The handle is published once,
// after the connection step has completed, and is only read afterwards.
// Every accessor built on a Store reports repository.ErrStorageUnavailable
// until then.
type Store struct {
	uri  string
	name string
	log  *zap.Logger
	now  func() time.Time

	db atomic.Pointer[mongo.Database]

	mu     sync.Mutex
	client *mongo.Client
}

// NewStore creates an unconnected Store. Call Connect or ConnectAsync before use.
func NewStore(uri, name string, log *zap.Logger) *Store {
	if log == nil {
		log = zap.NewNop()
	}
	return &Store{uri: uri, name: name, log: log, now: time.Now}
}

// NewStoreFromDatabase wraps an already connected database. The Store is
// ready immediately and does not own the client.
func NewStoreFromDatabase(db *mongo.Database, log *zap.Logger) *Store {
	s := NewStore("", db.Name(), log)
	s.db.Store(db)
	return s
}

// Connect dials MongoDB, ensures indexes and publishes the handle.
func (s *Store) Connect(ctx context.Context) error {
	client, err := ConnectDB(ctx, s.uri)
	if err != nil {
		return err
	}
	db := client.Database(s.name)

	if err := EnsureIndexes(ctx, db); err != nil {
		disconnectCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = client.Disconnect(disconnectCtx)
		return err
	}

	s.mu.Lock()
	s.client = client
	s.mu.Unlock()
	s.db.Store(db)
	return nil
}

// ConnectAsync runs Connect in the background, retrying every interval
// until it succeeds or ctx is done. Requests arriving meanwhile get
// repository.ErrStorageUnavailable.
func (s *Store) ConnectAsync(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = 5 * time.Second
	}
	go func() {
		for attempt := 1; ; attempt++ {
			attemptCtx, cancel := context.WithTimeout(ctx, defaultTimeout)
			err := s.Connect(attemptCtx)
			cancel()
			if err == nil {
				s.log.Info("database connection established",
					zap.String("database", s.name), zap.Int("attempt", attempt))
				return
			}
			s.log.Warn("database connection failed, retrying",
				zap.Int("attempt", attempt), zap.Duration("retry_in", interval), zap.Error(err))

			select {
			case <-ctx.Done():
				return
			case <-time.After(interval):
			}
		}
	}()
}

// Ready reports whether the connection step has completed.
func (s *Store) Ready() bool {
	return s.db.Load() != nil
}

// Disconnect closes the client if this Store opened one.
func (s *Store) Disconnect(ctx context.Context) error {
	s.mu.Lock()
	client := s.client
	s.client = nil
	s.mu.Unlock()
	if client == nil {
		return nil
	}
	return client.Disconnect(ctx)
}

func (s *Store) collection(name string) (*mongo.Collection, error) {
	db := s.db.Load()
	if db == nil {
		return nil, repository.ErrStorageUnavailable
	}
	return db.Collection(name), nil
}

// Repositories builds every accessor on top of this Store.
func (s *Store) Repositories() repository.Repositories {
	return repository.Repositories{
		Users:     NewMongoUserRepository(s),
		Trainings: NewMongoTrainingRepository(s),
		Blocks:    NewMongoTrainingBlockRepository(s),
		Plans:     NewMongoPlanRepository(s),
		Messages:  NewMongoMessageRepository(s),
		Tx:        s,
		Health:    s,
	}
}

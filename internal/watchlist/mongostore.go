package watchlist

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/ssehuun/telegram-news-bot/internal/models"
)

// MongoStore keeps one document per chat in a MongoDB collection. The
// chat id is the document key and every mutation replaces the whole
// document, matching the file backend's record semantics.
type MongoStore struct {
	client     *mongo.Client
	watchlists *mongo.Collection
	maxSize    int
	locks      *keyMutex
}

// NewMongoStore connects to MongoDB and prepares the watchlist
// collection. maxSize caps tickers per chat; zero or negative disables
// the cap.
func NewMongoStore(ctx context.Context, uri, dbName string, maxSize int) (*MongoStore, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, err
	}

	if err := client.Ping(ctx, nil); err != nil {
		return nil, err
	}

	db := client.Database(dbName)
	log.Info().Str("db", dbName).Msg("Connected to MongoDB")

	s := &MongoStore{
		client:     client,
		watchlists: db.Collection("watchlists"),
		maxSize:    maxSize,
		locks:      newKeyMutex(),
	}

	if err := s.createIndexes(ctx); err != nil {
		log.Warn().Err(err).Msg("Failed to create some indexes")
	}

	return s, nil
}

func (s *MongoStore) createIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "updated_at", Value: -1}}},
	}
	_, err := s.watchlists.Indexes().CreateMany(ctx, indexes)
	return err
}

// Add inserts a ticker into the chat's watchlist. It reports false
// without error when the ticker was already present.
func (s *MongoStore) Add(ctx context.Context, chatID int64, ticker string) (bool, error) {
	unlock := s.locks.lock(chatID)
	defer unlock()

	w, err := s.load(ctx, chatID)
	if err != nil {
		return false, err
	}
	if w.Contains(ticker) {
		return false, nil
	}
	if s.maxSize > 0 && len(w.Tickers) >= s.maxSize {
		return false, ErrWatchlistFull
	}

	w.Add(ticker)
	if err := s.persist(ctx, w); err != nil {
		return false, err
	}
	return true, nil
}

// Remove deletes a ticker from the chat's watchlist. It reports false
// without error when the ticker was absent.
func (s *MongoStore) Remove(ctx context.Context, chatID int64, ticker string) (bool, error) {
	unlock := s.locks.lock(chatID)
	defer unlock()

	w, err := s.load(ctx, chatID)
	if err != nil {
		return false, err
	}
	if !w.Remove(ticker) {
		return false, nil
	}
	if err := s.persist(ctx, w); err != nil {
		return false, err
	}
	return true, nil
}

// List returns the chat's tickers in insertion order.
func (s *MongoStore) List(ctx context.Context, chatID int64) ([]string, error) {
	unlock := s.locks.lock(chatID)
	defer unlock()

	w, err := s.load(ctx, chatID)
	if err != nil {
		return nil, err
	}
	return append([]string(nil), w.Tickers...), nil
}

// Count returns the number of chats with a stored record.
func (s *MongoStore) Count(ctx context.Context) (int64, error) {
	return s.watchlists.CountDocuments(ctx, bson.M{})
}

// Close closes the database connection.
func (s *MongoStore) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

func (s *MongoStore) load(ctx context.Context, chatID int64) (*models.Watchlist, error) {
	var w models.Watchlist
	err := s.watchlists.FindOne(ctx, bson.M{"_id": chatID}).Decode(&w)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return &models.Watchlist{ChatID: chatID}, nil
	}
	if err != nil {
		return nil, err
	}
	return &w, nil
}

// persist replaces the whole document before the mutation is
// acknowledged.
func (s *MongoStore) persist(ctx context.Context, w *models.Watchlist) error {
	w.UpdatedAt = time.Now()
	opts := options.Replace().SetUpsert(true)
	_, err := s.watchlists.ReplaceOne(ctx, bson.M{"_id": w.ChatID}, w, opts)
	return err
}

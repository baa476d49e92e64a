package watchlist

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/ssehuun/telegram-news-bot/internal/models"
)

// FileStore keeps one JSON record per chat under a data directory.
// Records are replaced through a temp file and rename, so a record is
// either the previous state or the new one, never a torn write.
type FileStore struct {
	dir     string
	maxSize int
	locks   *keyMutex
}

// NewFileStore opens (creating if needed) a file-backed store rooted at
// dir. maxSize caps tickers per chat; zero or negative disables the cap.
func NewFileStore(dir string, maxSize int) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("watchlist: create dir %s: %w", dir, err)
	}
	log.Info().Str("dir", dir).Msg("Watchlist file store opened")
	return &FileStore{dir: dir, maxSize: maxSize, locks: newKeyMutex()}, nil
}

// Add inserts a ticker into the chat's watchlist. It reports false
// without error when the ticker was already present.
func (s *FileStore) Add(ctx context.Context, chatID int64, ticker string) (bool, error) {
	unlock := s.locks.lock(chatID)
	defer unlock()

	w, err := s.load(chatID)
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
	if err := s.persist(w); err != nil {
		return false, err
	}
	return true, nil
}

// Remove deletes a ticker from the chat's watchlist. It reports false
// without error when the ticker was absent.
func (s *FileStore) Remove(ctx context.Context, chatID int64, ticker string) (bool, error) {
	unlock := s.locks.lock(chatID)
	defer unlock()

	w, err := s.load(chatID)
	if err != nil {
		return false, err
	}
	if !w.Remove(ticker) {
		return false, nil
	}
	if err := s.persist(w); err != nil {
		return false, err
	}
	return true, nil
}

// List returns the chat's tickers in insertion order.
func (s *FileStore) List(ctx context.Context, chatID int64) ([]string, error) {
	unlock := s.locks.lock(chatID)
	defer unlock()

	w, err := s.load(chatID)
	if err != nil {
		return nil, err
	}
	return append([]string(nil), w.Tickers...), nil
}

// Count returns the number of chats with a stored record.
func (s *FileStore) Count(ctx context.Context) (int64, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return 0, fmt.Errorf("watchlist: read dir %s: %w", s.dir, err)
	}
	var n int64
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".json") {
			n++
		}
	}
	return n, nil
}

// Close is a no-op for the file backend.
func (s *FileStore) Close(ctx context.Context) error {
	return nil
}

func (s *FileStore) path(chatID int64) string {
	return filepath.Join(s.dir, strconv.FormatInt(chatID, 10)+".json")
}

func (s *FileStore) load(chatID int64) (*models.Watchlist, error) {
	data, err := os.ReadFile(s.path(chatID))
	if errors.Is(err, os.ErrNotExist) {
		return &models.Watchlist{ChatID: chatID}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("watchlist: read record %d: %w", chatID, err)
	}

	var w models.Watchlist
	if err := json.Unmarshal(data, &w); err != nil {
		return nil, fmt.Errorf("watchlist: decode record %d: %w", chatID, err)
	}
	w.ChatID = chatID
	return &w, nil
}

// persist writes the whole record before the mutation is acknowledged.
func (s *FileStore) persist(w *models.Watchlist) error {
	w.UpdatedAt = time.Now()

	data, err := json.MarshalIndent(w, "", "  ")
	if err != nil {
		return fmt.Errorf("watchlist: encode record %d: %w", w.ChatID, err)
	}

	target := s.path(w.ChatID)
	tmp := target + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("watchlist: write record %d: %w", w.ChatID, err)
	}
	if err := os.Rename(tmp, target); err != nil {
		return fmt.Errorf("watchlist: replace record %d: %w", w.ChatID, err)
	}
	return nil
}

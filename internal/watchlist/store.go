// Package watchlist provides durable per-chat ticker sets.
package watchlist

import (
	"context"
	"errors"
	"sync"
)

// ErrWatchlistFull means the per-chat soft cap was reached. The cap
// bounds report fan-out; raising MAX_WATCHLIST_SIZE lifts it.
var ErrWatchlistFull = errors.New("watchlist: full")

// Store is the durable chat→watchlist mapping. Mutations on the same
// chat are serialized and persisted before they return, so an
// acknowledged add or remove survives a crash. Unknown chats list as
// empty, not as an error.
type Store interface {
	Add(ctx context.Context, chatID int64, ticker string) (added bool, err error)
	Remove(ctx context.Context, chatID int64, ticker string) (removed bool, err error)
	List(ctx context.Context, chatID int64) ([]string, error)
	Count(ctx context.Context) (int64, error)
	Close(ctx context.Context) error
}

// keyMutex serializes read-modify-persist cycles per chat id.
type keyMutex struct {
	mu    sync.Mutex
	locks map[int64]*sync.Mutex
}

func newKeyMutex() *keyMutex {
	return &keyMutex{locks: make(map[int64]*sync.Mutex)}
}

// lock acquires the mutex for one chat id and returns its unlock func.
func (k *keyMutex) lock(chatID int64) func() {
	k.mu.Lock()
	m, ok := k.locks[chatID]
	if !ok {
		m = &sync.Mutex{}
		k.locks[chatID] = m
	}
	k.mu.Unlock()

	m.Lock()
	return m.Unlock
}

// Package resolver turns raw user input into a canonical ticker symbol.
package resolver

import (
	"errors"
	"regexp"
	"strings"

	"github.com/ssehuun/telegram-news-bot/internal/listing"
)

var (
	// ErrEmptyInput means the input was blank after trimming.
	ErrEmptyInput = errors.New("resolver: empty input")

	// ErrUnknownSymbol means the input is not ticker-shaped and the
	// reference listing has no entry for it.
	ErrUnknownSymbol = errors.New("resolver: unknown symbol")

	// ErrResolutionUnavailable means a name lookup was attempted while
	// the reference listing is empty (skip mode). The caller should ask
	// the user for a raw ticker code instead.
	ErrResolutionUnavailable = errors.New("resolver: name resolution unavailable")
)

// tickerPattern matches canonical ticker codes after upcasing: up to
// ten alphanumerics with an optional market suffix, e.g. 005930, AAPL,
// BRK.B, 005930.KS.
var tickerPattern = regexp.MustCompile(`^[A-Z0-9]{1,10}(\.[A-Z0-9]{1,4})?$`)

// Resolver resolves ticker-shaped input directly and display names
// through the reference listing index.
type Resolver struct {
	idx *listing.Index
}

// New creates a resolver backed by the given index.
func New(idx *listing.Index) *Resolver {
	if idx == nil {
		idx = listing.Empty()
	}
	return &Resolver{idx: idx}
}

// Resolve returns the canonical ticker for raw user input.
//
// Ticker-shaped input is trimmed, upper-cased and accepted without a
// listing check: the listing does not cover foreign or delisted
// instruments, and rejecting those would block valid symbols. Anything
// else is treated as a display name and must match the listing exactly
// after normalization.
func (r *Resolver) Resolve(input string) (string, error) {
	token := strings.TrimSpace(input)
	if token == "" {
		return "", ErrEmptyInput
	}

	if upper := strings.ToUpper(token); tickerPattern.MatchString(upper) {
		return upper, nil
	}

	if r.idx.Len() == 0 {
		return "", ErrResolutionUnavailable
	}
	ticker, ok := r.idx.Lookup(token)
	if !ok {
		return "", ErrUnknownSymbol
	}
	return ticker, nil
}

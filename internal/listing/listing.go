// Package listing loads the static company-name to ticker reference
// dataset used for symbol resolution.
package listing

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"
	"unicode"

	"github.com/rs/zerolog/log"
	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

// Index is the name→ticker mapping built once at startup. It is
// read-only after load and safe for concurrent use.
type Index struct {
	byName   map[string]string // normalized display name → ticker
	byTicker map[string]string // ticker → first registered display name
}

// Empty returns an index with no entries. An empty index means name
// resolution is unavailable; ticker-shaped input still resolves.
func Empty() *Index {
	return &Index{
		byName:   map[string]string{},
		byTicker: map[string]string{},
	}
}

// Load reads a CSV listing file of (ticker, name) rows. A header row is
// detected and used to locate the columns; without one the first two
// columns are taken positionally. The file must yield at least one
// usable row.
func Load(path string) (*Index, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("listing: open %s: %w", path, err)
	}
	defer f.Close()

	idx, err := parse(f)
	if err != nil {
		return nil, fmt.Errorf("listing: parse %s: %w", path, err)
	}

	log.Info().
		Str("path", path).
		Int("entries", idx.Len()).
		Msg("Reference listing loaded")

	return idx, nil
}

func parse(r io.Reader) (*Index, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	rows, err := cr.ReadAll()
	if err != nil {
		return nil, err
	}

	idx := Empty()
	tickerCol, nameCol := 0, 1

	for i, row := range rows {
		if i == 0 && isHeader(row) {
			tickerCol, nameCol = headerColumns(row)
			continue
		}
		if len(row) <= tickerCol || len(row) <= nameCol {
			continue
		}

		ticker := strings.ToUpper(strings.TrimSpace(row[tickerCol]))
		name := strings.TrimSpace(row[nameCol])
		if ticker == "" || name == "" {
			continue
		}

		// First registration wins for both directions; re-listed
		// aliases never silently rebind an existing name.
		key := Normalize(name)
		if _, ok := idx.byName[key]; !ok {
			idx.byName[key] = ticker
		}
		if _, ok := idx.byTicker[ticker]; !ok {
			idx.byTicker[ticker] = name
		}
	}

	if idx.Len() == 0 {
		return nil, fmt.Errorf("no usable rows")
	}
	return idx, nil
}

// isHeader reports whether the first row is a column header.
func isHeader(row []string) bool {
	for _, cell := range row {
		switch strings.ToLower(strings.TrimSpace(cell)) {
		case "symbol", "code", "ticker", "종목코드", "티커", "name", "종목명", "회사명":
			return true
		}
	}
	return false
}

// headerColumns locates the ticker and name columns from a header row.
func headerColumns(row []string) (tickerCol, nameCol int) {
	tickerCol, nameCol = 0, 1
	for i, cell := range row {
		switch strings.ToLower(strings.TrimSpace(cell)) {
		case "symbol", "code", "ticker", "종목코드", "티커":
			tickerCol = i
		case "name", "종목명", "회사명":
			nameCol = i
		}
	}
	return tickerCol, nameCol
}

// Lookup resolves a display name to its ticker. Matching is exact on
// the normalized form; there is no partial or fuzzy matching.
func (x *Index) Lookup(name string) (string, bool) {
	t, ok := x.byName[Normalize(name)]
	return t, ok
}

// NameOf returns the display name registered for a ticker.
func (x *Index) NameOf(ticker string) (string, bool) {
	n, ok := x.byTicker[strings.ToUpper(strings.TrimSpace(ticker))]
	return n, ok
}

// Len reports the number of name entries. Zero means name resolution
// is unavailable (skip mode or nothing loaded).
func (x *Index) Len() int {
	return len(x.byName)
}

// Normalize canonicalizes a display name for lookup: Unicode NFKC (so
// full-width variants match), case-folded, with whitespace, punctuation
// and symbol runes removed. Listed names mix Hangul and Latin
// ("LG전자", "POSCO홀딩스"), so folding must handle both scripts.
func Normalize(name string) string {
	s := norm.NFKC.String(name)
	s = cases.Fold().String(s)

	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if unicode.IsSpace(r) || unicode.IsPunct(r) || unicode.IsSymbol(r) {
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// Package main inspects a reference listing file and resolves symbols
// against it. Run it before deploying a new listing export.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/ssehuun/telegram-news-bot/internal/listing"
	"github.com/ssehuun/telegram-news-bot/internal/resolver"
)

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	path := flag.String("listing", "", "listing CSV path (defaults to LISTING_PATH)")
	flag.Parse()

	if *path == "" {
		*path = os.Getenv("LISTING_PATH")
	}
	if *path == "" {
		*path = "./listings.csv"
	}

	idx, err := listing.Load(*path)
	if err != nil {
		log.Fatal().Err(err).Str("path", *path).Msg("Failed to load listing")
	}

	fmt.Printf("✅ %s: %d entries\n", *path, idx.Len())

	if flag.NArg() == 0 {
		return
	}

	// Resolve each argument the way the bot would.
	res := resolver.New(idx)
	failed := 0
	for _, arg := range flag.Args() {
		ticker, err := res.Resolve(arg)
		if err != nil {
			fmt.Printf("❌ %-20s %v\n", arg, err)
			failed++
			continue
		}

		name, ok := idx.NameOf(ticker)
		if !ok {
			name = "(not in listing)"
		}
		fmt.Printf("   %-20s -> %s  %s\n", arg, ticker, name)
	}

	if failed > 0 {
		os.Exit(1)
	}
}

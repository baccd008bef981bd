// Seeds a fresh knowledge store: applies the schema, inserts the starter
// lexemes and reports the resulting lexicon size. Run once per deployment.
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"

	"stavekontrol/internal/store"
)

func main() {
	dbPath := flag.String("db", getenv("DB_PATH", "stavekontrol.db"), "path to the knowledge store")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))

	st, err := store.Open(*dbPath)
	if err != nil {
		logger.Error("knowledge store init failed", "error", err)
		os.Exit(1)
	}
	defer st.Close()

	ctx := context.Background()
	inserted, err := store.SeedStarterLexemes(ctx, st)
	if err != nil {
		logger.Error("seeding failed", "error", err)
		os.Exit(1)
	}

	lemmas, err := st.UserLemmas(ctx)
	if err != nil {
		logger.Error("lexicon readback failed", "error", err)
		os.Exit(1)
	}
	logger.Info("knowledge store ready", "db", *dbPath, "inserted", inserted, "lexemes", len(lemmas))
}

func getenv(key, def string) string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	return v
}

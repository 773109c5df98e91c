package main

import (
	"database/sql"
	"log/slog"
	"net/http"
	"os"

	journalapp "github.com/andyirvine/journal-app"
	_ "github.com/mattn/go-sqlite3"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel(),
	}))

	secret := os.Getenv("APP_SECRET_KEY")
	if secret == "" {
		logger.Error("APP_SECRET_KEY is not set, refusing to start")
		os.Exit(1)
	}

	dbPath := os.Getenv("DATABASE_PATH")
	if dbPath == "" {
		dbPath = "./journal.db"
	}

	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		logger.Error("opening database", "err", err)
		os.Exit(1)
	}
	defer db.Close()

	mux := http.NewServeMux()

	_, err = journalapp.New(
		journalapp.WithSqliteDB(db),
		journalapp.WithLogger(logger),
		journalapp.WithRouter(mux),
		journalapp.WithSecret(secret),
	)
	if err != nil {
		logger.Error("starting journal app", "err", err)
		os.Exit(1)
	}

	addr := os.Getenv("LISTEN_ADDR")
	if addr == "" {
		addr = ":8080"
	}

	logger.Info("listening", "addr", addr)
	if err := http.ListenAndServe(addr, mux); err != nil {
		logger.Error("http server failed", "err", err)
		os.Exit(1)
	}
}

func logLevel() slog.Level {
	switch os.Getenv("LOG_LEVEL") {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

package main

import (
	"bufio"
	"context"
	"log/slog"
	"os"
	"time"

	"potluck/src-client/form"
	"potluck/src-client/remote"
	"potluck/src-client/store"
	"potluck/src-client/view"

	"github.com/joho/godotenv"
	"github.com/lmittmann/tint"
)

func init() {
	if err := godotenv.Load(); err != nil {
		slog.Info(err.Error())
	}
	slog.SetDefault(slog.New(
		tint.NewHandler(os.Stderr, &tint.Options{
			Level:      slog.LevelWarn,
			TimeFormat: time.RFC1123Z,
		}),
	))
}

func main() {
	serverURL := os.Getenv("POTLUCK_SERVER")
	if serverURL == "" {
		serverURL = "http://localhost:8080"
	}

	identityPath, err := store.DefaultPath()
	if err != nil {
		slog.Error("can't locate identity token path", "error", err)
		os.Exit(1)
	}
	identity := store.NewIdentity(identityPath)
	identityID, err := identity.Load()
	if err != nil {
		slog.Warn("can't read identity token, starting fresh", "error", err)
	}

	table := remote.NewTable(serverURL)
	f := form.New(table, identity, view.NewModel(identityID), os.Stdout)

	ctx := context.Background()
	if err := f.Refresh(ctx); err != nil {
		slog.Warn("initial fetch failed", "error", err)
	}

	// every change ping, from any client including this one, is the
	// same instruction: refetch everything
	sub, err := table.Subscribe(func() {
		if err := f.Refresh(context.Background()); err != nil {
			slog.Warn("refetch after change notification failed", "error", err)
		}
	})
	if err != nil {
		slog.Warn("change feed unavailable, live updates disabled", "error", err)
	} else {
		defer sub.Close()
	}

	f.Run(ctx, bufio.NewScanner(os.Stdin))
}

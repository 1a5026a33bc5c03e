package main

import (
	"log/slog"
	"os"

	"github.com/foodrandom/recipebox/cmd/foodrandom/commands"
)

func main() {
	// Structured logs go to stderr so command output on stdout stays clean
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	commands.Execute()
}

package main

import (
	"log/slog"
	"os"

	"bioinsights/internal/app"
)

func main() {
	application, err := app.NewApplication()
	if err != nil {
		slog.Error("Failed to initialize application", slog.String("error", err.Error()))
		os.Exit(1)
	}

	if err := application.Run(); err != nil {
		slog.Error("Application exited with error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

package main

import (
	"context"
	"fmt"
	"os"

	"github.com/civictrack/civictrack-go/config"
	"github.com/civictrack/civictrack-go/internal/bootstrap"
	"github.com/civictrack/civictrack-go/internal/logging"
	"github.com/google/uuid"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
	bootstrap.SetLogLevel(cfg.App.LogLevel)

	ctx := logging.WithRequestID(context.Background(), "cli-"+uuid.NewString())
	svc := bootstrap.NewServices(cfg)

	if err := run(ctx, os.Args[1:], svc, os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

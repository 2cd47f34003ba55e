package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"github.com/supportdesk/support-portal/internal/cli"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	return cli.Execute(ctx)
}

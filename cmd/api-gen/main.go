// Package main is the entry point for the api-gen CLI.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/STNeto1/openapi-gen/internal/cli"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := cli.Execute(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		stop()
		os.Exit(cli.ExitCode(err))
	}
}

package main

import (
	"context"
	"os"
	"os/signal"

	"github.com/guildsync/guildsync/cmd/guildsync/commands"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	return commands.Execute(ctx, args)
}

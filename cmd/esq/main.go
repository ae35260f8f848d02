package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/jacoelho/esq/internal/command"
	"github.com/jacoelho/esq/internal/config"
)

func main() {
	os.Exit(run())
}

func run() int {
	cfg, exitResult := config.Parse(os.Args)
	if exitResult != nil {
		exitResult.Print()
		return exitResult.ExitCode
	}

	r, exitResult := command.New(cfg)
	if exitResult != nil {
		exitResult.Print()
		return exitResult.ExitCode
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	result := r.Run(ctx)
	result.Print()
	return result.ExitCode
}

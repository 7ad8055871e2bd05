package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/appetiteclub/apt"
	"github.com/appetiteclub/pos/cmd/utils/internal/commands"
)

const appNamespace = "UTILS"

func main() {
	config, err := apt.LoadConfig(appNamespace, nil)
	if err != nil {
		log.Fatalf("%s(%s) cannot setup: %v", commands.AppName, commands.AppVersion, err)
	}

	logLevel := config.GetStringOrDef("log.level", "info")
	logger := apt.NewLogger(logLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	root := commands.NewRootCommand(&commands.Env{Config: config, Logger: logger})
	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

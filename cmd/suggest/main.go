// Package main starts the mentor suggestion process lifecycle.
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	suggestcmd "github.com/diarra2704/oikos/internal/cmd/suggest"
)

func main() {
	cfg, err := suggestcmd.ParseConfig(flag.CommandLine, os.Args[1:])
	if err != nil {
		log.Fatalf("parse flags: %v", err)
	}
	log.SetPrefix("[SUGGEST] ")
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := suggestcmd.Run(ctx, cfg); err != nil {
		log.Fatalf("suggest failed: %v", err)
	}
}

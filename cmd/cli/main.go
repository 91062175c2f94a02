package main

import (
	"context"
	"log"
	"os"

	"github.com/gistvault/gistvault/internal/buildinfo"
	"github.com/gistvault/gistvault/internal/cli"
	"github.com/gistvault/gistvault/internal/config"
)

func main() {

	buildinfo.PrintBuildData(os.Stderr)

	ctx := context.Background()
	cfg := config.LoadConfig()
	app, err := cli.NewApp(ctx, cfg)

	if err != nil {
		log.Fatalf("%v", err)
		return
	}

	if err := app.Run(ctx, os.Args[1:]); err != nil {
		log.Fatalf("%v", err)
	}
}

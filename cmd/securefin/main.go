package main

import (
	"context"
	"log"
	"os"

	"github.com/dmitrijs2005/securefin/internal/config"
	"github.com/dmitrijs2005/securefin/internal/engine"
)

func main() {

	ctx := context.Background()
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("%v", err)
	}

	app, err := engine.NewApp(ctx, cfg, os.Stderr)
	if err != nil {
		log.Fatalf("%v", err)
	}
	defer app.Close()

	app.Run(ctx)

}

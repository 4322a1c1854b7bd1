package main

import (
	"context"
	"log"

	"github.com/tentech-me/tentech-api/internal/server"
	"github.com/tentech-me/tentech-api/internal/server/config"
)

func main() {

	ctx := context.Background()
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Printf("config error: %v", err)
		return
	}

	app, err := server.NewApp(ctx, cfg)
	if err != nil {
		log.Printf("%v", err)
		return
	}

	app.Run(ctx)

}

package main

import (
	"context"
	"log"

	"github.com/iamvivek907/GokulsweetsCostAnalytics/internal/client/cli"
	"github.com/iamvivek907/GokulsweetsCostAnalytics/internal/client/config"
)

func main() {
	cfg := config.LoadConfig()
	app, err := cli.NewApp(cfg)
	if err != nil {
		log.Fatalf("%v", err)
	}

	app.Run(context.Background())
}

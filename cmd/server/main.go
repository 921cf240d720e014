package main

import (
	"context"
	"log"
	"os"

	"github.com/dmitrijs2005/journal/internal/buildinfo"
	"github.com/dmitrijs2005/journal/internal/server"
	"github.com/dmitrijs2005/journal/internal/server/config"
)

func main() {

	buildinfo.PrintBuildData(os.Stdout)

	cfg := config.LoadConfig()
	app, err := server.NewApp(context.Background(), cfg)
	if err != nil {
		log.Fatalf("journal server: %v", err)
	}

	app.Run(context.Background())

}

package main

import (
	"context"
	"log"
	"os"

	"github.com/dmitrijs2005/userforms/internal/buildinfo"
	"github.com/dmitrijs2005/userforms/internal/client/cli"
	"github.com/dmitrijs2005/userforms/internal/client/config"
)

func main() {

	buildinfo.PrintBuildData(os.Stdout)

	ctx := context.Background()
	cfg, err := config.LoadConfig(os.Args[1:])
	if err != nil {
		log.Fatalf("%v", err)
	}

	app, err := cli.NewApp(ctx, cfg)
	if err != nil {
		log.Fatalf("%v", err)
	}

	app.Run(ctx)

}

package main

import (
	"context"
	"errors"
	"log"
	"os"

	"github.com/dmitrijs2005/keyvault/internal/buildinfo"
	"github.com/dmitrijs2005/keyvault/internal/cli"
	"github.com/dmitrijs2005/keyvault/internal/common"
	"github.com/dmitrijs2005/keyvault/internal/config"
)

func main() {

	buildinfo.PrintBuildData(os.Stdout)

	ctx := context.Background()
	cfg := config.LoadConfig()
	app, err := cli.NewApp(ctx, cfg)

	if err != nil {
		log.Fatalf("%v", err)
		return
	}

	if err := app.Run(ctx); err != nil {
		if !errors.Is(err, common.ErrAuth) {
			log.Printf("%v", err)
		}
		os.Exit(1)
	}

}

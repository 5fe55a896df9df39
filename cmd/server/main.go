package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/alvinbaena/pwd-advisor/internal/cli"
	"github.com/alvinbaena/pwd-advisor/internal/config"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/net/context"
)

func main() {
	cfg, err := config.LoadServer()
	if err != nil {
		log.Fatal().Err(err).Msg("Error loading configuration")
	}

	if !cfg.Debug {
		gin.SetMode(gin.ReleaseMode)
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err = cli.Serve(ctx, cfg, ""); err != nil {
		log.Fatal().Err(err).Msg("error running server")
	}
}

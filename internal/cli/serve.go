// Copyright (c) 2022. Alvin Baena.
// SPDX-License-Identifier: MIT

package cli

import (
	"fmt"
	"os"

	"github.com/alvinbaena/pwd-advisor/internal/api"
	"github.com/alvinbaena/pwd-advisor/internal/config"
	"github.com/alvinbaena/pwd-advisor/pkg/corpus"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"golang.org/x/net/context"
)

var (
	serveCmd = &cobra.Command{
		Use:   "serve",
		Short: "Serve the API for generating and checking passwords",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return serveCommand(cmd)
		},
	}
)

//goland:noinspection GoUnhandledErrorResult
func init() {
	serveCmd.Flags().StringVarP(&corpusFile, "in-file", "i", "", "Leaked password file (.gcs, .csv or plain text). Defaults to CORPUS_FILE")
	serveCmd.Flags().BoolVar(&selfTLS, "self-tls", false,
		"If the server should use a self-signed certificate when starting. The certificate is renewed on each server restart")
	serveCmd.Flags().StringVar(&tlsCert, "tls-cert", "", "Path to the PEM encoded TLS certificate to be used by the server")
	serveCmd.Flags().StringVar(&tlsKey, "tls-key", "", "Path to the PEM encoded TLS private key to be used by the server")
	serveCmd.Flags().Uint16VarP(&port, "port", "p", 3100, "Port to be used by the server")

	rootCmd.AddCommand(serveCmd)
}

func serveCommand(cmd *cobra.Command) error {
	if !verbose {
		gin.SetMode(gin.ReleaseMode)
	}

	srvCfg := config.ServerConfig{
		Config:  cfg,
		Port:    fmt.Sprintf("%d", port),
		SelfTLS: selfTLS,
		TLSCert: tlsCert,
		TLSKey:  tlsKey,
		Debug:   verbose,
	}
	if !srvCfg.SelfTLS && (srvCfg.TLSCert == "" || srvCfg.TLSKey == "") {
		return fmt.Errorf("server requires TLS configuration to start. " +
			"Please use either the --self-tls flag or set a certificate with the --tls-cert and --tls-key flags")
	}

	return Serve(cmd.Context(), srvCfg, corpusFile)
}

// Serve starts the HTTP API. File corpora load in the background while the
// server starts listening, queries wait for the load. A missing corpus file
// stops Serve before listening, a failed background load shuts the server
// down and is returned.
func Serve(ctx context.Context, srvCfg config.ServerConfig, file string) error {
	if file == "" {
		file = srvCfg.CorpusFile
	}
	if file != "" {
		if _, err := os.Stat(file); err != nil {
			return fmt.Errorf("leaked password corpus is not available: %w", err)
		}
	}

	leaked, err := OpenCorpus(ctx, srvCfg.Config, file, true)
	if err != nil {
		return fmt.Errorf("error initializing API: %w", err)
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	// buffered, the loader never blocks when Serve already returned
	loadErrs := make(chan error, 1)
	if lazy, ok := leaked.(*corpus.Lazy); ok {
		go func() {
			if err := lazy.Load(); err != nil {
				loadErrs <- fmt.Errorf("error loading leaked password corpus: %w", err)
				cancel()
				return
			}
			log.Info().Msg("leaked password corpus loaded")
		}()
	}

	router := api.NewRouter(NewService(srvCfg.Config, leaked))
	err = api.Serve(ctx, srvCfg, router)

	select {
	case loadErr := <-loadErrs:
		return loadErr
	default:
		return err
	}
}

// Copyright (c) 2022. Alvin Baena.
// SPDX-License-Identifier: MIT

package api

import (
	"crypto/tls"
	"crypto/x509"
	"encoding/pem"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/alvinbaena/pwd-advisor/internal/config"
	"github.com/alvinbaena/pwd-advisor/internal/metrics"
	"github.com/alvinbaena/pwd-advisor/pkg/advisor"
	"github.com/gin-contrib/logger"
	"github.com/gin-gonic/gin"
	"github.com/likexian/selfca"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/net/context"
)

// NewRouter builds the v1 API and the /metrics endpoint.
func NewRouter(svc *advisor.Service) *gin.Engine {
	accessLog := zerolog.New(gin.DefaultWriter).With().Timestamp().Logger()

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(logger.SetLogger(logger.WithLogger(func(_ *gin.Context, _ zerolog.Logger) zerolog.Logger {
		return accessLog
	})))
	router.Use(metrics.Middleware())

	RegisterAdvisorApi(router.Group("/v1"), svc)
	router.GET("/metrics", metrics.Handler())

	return router
}

// selfSignedTLS returns a TLS config with a fresh 30 day self-signed
// certificate.
func selfSignedTLS() (*tls.Config, error) {
	caConfig := selfca.Certificate{
		IsCA:      true,
		KeySize:   2048,
		NotBefore: time.Now(),
		NotAfter:  time.Now().Add(time.Duration(30*24) * time.Hour),
	}

	certificate, key, err := selfca.GenerateCertificate(caConfig)
	if err != nil {
		return nil, fmt.Errorf("error generating auto self-signed certificate: %w", err)
	}

	pair, err := tls.X509KeyPair(
		pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: certificate}),
		pem.EncodeToMemory(&pem.Block{Type: "RSA PRIVATE KEY", Bytes: x509.MarshalPKCS1PrivateKey(key)}),
	)
	if err != nil {
		return nil, fmt.Errorf("error using auto self-signed certificate: %w", err)
	}

	return &tls.Config{Certificates: []tls.Certificate{pair}, MinVersion: tls.VersionTLS12}, nil
}

// Serve runs handler over TLS until ctx is done, then shuts down gracefully.
// Certificate files take precedence over a self-signed certificate.
func Serve(ctx context.Context, cfg config.ServerConfig, handler http.Handler) error {
	srvAddr := fmt.Sprintf(":%s", cfg.Port)
	srv := &http.Server{
		Addr:              srvAddr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	certFile, keyFile := cfg.TLSCert, cfg.TLSKey
	switch {
	case certFile != "" && keyFile != "":
	case cfg.SelfTLS:
		log.Warn().Msgf("using auto self-signed certificate for TLS. This is not recommended for production. Please consider using your own certificates.")
		tlsConfig, err := selfSignedTLS()
		if err != nil {
			return err
		}
		srv.TLSConfig = tlsConfig
	default:
		return errors.New("server requires TLS configuration to start")
	}

	errs := make(chan error, 1)
	go func() {
		log.Info().Msgf("starting TLS Server on address: %s", srvAddr)
		// empty file names use srv.TLSConfig
		if err := srv.ListenAndServeTLS(certFile, keyFile); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errs <- err
		}
		close(errs)
	}()

	select {
	case err := <-errs:
		return err
	case <-ctx.Done():
	}

	return gracefulShutdown(srv)
}

func gracefulShutdown(srv *http.Server) error {
	log.Info().Msg("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Warn().Err(err).Msg("server Shutdown.")
		return err
	}

	log.Info().Msg("server exiting...")
	return nil
}

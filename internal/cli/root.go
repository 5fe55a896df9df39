// Copyright (c) 2022. Alvin Baena.
// SPDX-License-Identifier: MIT

package cli

import (
	"context"
	_ "net/http/pprof"
	"os"
	"os/signal"
	"syscall"

	"github.com/alvinbaena/pwd-advisor/internal/config"
	"github.com/alvinbaena/pwd-advisor/internal/util"
	"github.com/spf13/cobra"
)

var (
	rootCmd = &cobra.Command{
		Use:   "pwd-advisor [COMMAND] [OPTIONS]",
		Short: "Generate passwords and check them against leaked password dumps",
		Long: "Generate random passwords, estimate how long a brute force attack would take to crack them and " +
			"check them against leaked password dumps (rockyou.txt, haveibeenpwned.com). " +
			"This command also downloads the dumps and builds GCS (Golomb Coded Set) files from them for fast lookups",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			util.ApplyCliSettings(verbose, profile, pprofPort)

			var err error
			cfg, err = config.Load(envFiles...)
			return err
		},
	}
)

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Print more information on the processing")
	rootCmd.PersistentFlags().BoolVar(&profile, "profile", false, "Enable the profiling server (pprof) when running commands")
	rootCmd.PersistentFlags().Uint16Var(&pprofPort, "profile-port", 6060, "The port to use for the pprof server. Only used if the profile flag is set")
	rootCmd.PersistentFlags().StringSliceVar(&envFiles, "env-file", nil, "Environment files to load. Defaults to .env in the working directory")
}

// Execute runs the command line. SIGINT and SIGTERM cancel the command
// context.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return rootCmd.ExecuteContext(ctx)
}

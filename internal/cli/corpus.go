package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/alvinbaena/pwd-advisor/pkg/corpus"
	"github.com/alvinbaena/pwd-advisor/pkg/gcs"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var (
	corpusCmd = &cobra.Command{
		Use:   "corpus",
		Short: "Build leaked password corpora for fast lookups",
	}

	buildCmd = &cobra.Command{
		Use:   "build",
		Short: "Create a GCS database from a leaked password dump",
		Long: "Create a GCS (Golomb Coded Set) database from a plain text password list (text, latin1) " +
			"or a Pwned Passwords SHA1 file (hibp)",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return buildCommand()
		},
	}

	loadCmd = &cobra.Command{
		Use:   "load",
		Short: "Load a leaked password dump into the Redis set at REDIS_URL",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return loadCommand(cmd)
		},
	}
)

//goland:noinspection GoUnhandledErrorResult
func init() {
	buildCmd.Flags().Uint64VarP(&probability, "false-positive-rate", "p", 16777216, "False positive rate for queries, 1-in-p.")
	buildCmd.Flags().Uint64VarP(&indexGranularity, "index-granularity", "g", 1024, "Entries per index point (16 bytes each).")
	buildCmd.Flags().StringVarP(&inputFile, "in-file", "i", "", "Password dump input file path (required)")
	buildCmd.MarkFlagRequired("in-file")
	buildCmd.Flags().StringVarP(&inputFormat, "format", "f", "latin1", "Input format: text (UTF-8), latin1 or hibp")
	buildCmd.Flags().StringVarP(&outFile, "out-file", "o", "./leaked.gcs", "GCS file output path")
	buildCmd.Flags().BoolVar(&overwrite, "overwrite", false, "Overwrite any existing files while writing the results.")

	loadCmd.Flags().StringVarP(&inputFile, "in-file", "i", "", "Password dump input file path (required)")
	loadCmd.MarkFlagRequired("in-file")
	loadCmd.Flags().StringVarP(&inputFormat, "format", "f", "latin1", "Input format: text (UTF-8), latin1 or hibp")

	corpusCmd.AddCommand(buildCmd, loadCmd)
	rootCmd.AddCommand(corpusCmd)
}

// openInput opens inputFile decoded to UTF-8 according to inputFormat, and
// estimates its line count.
func openInput() (io.Reader, gcs.Format, uint64, func(), error) {
	var format gcs.Format
	var enc corpus.Encoding
	switch inputFormat {
	case "text":
		format, enc = gcs.Plain, corpus.UTF8
	case "latin1":
		format, enc = gcs.Plain, corpus.Latin1
	case "hibp":
		format, enc = gcs.HIBP, corpus.UTF8
	default:
		return nil, format, 0, nil, fmt.Errorf("unknown input format %q", inputFormat)
	}

	file, err := os.Open(inputFile)
	if err != nil {
		return nil, format, 0, nil, err
	}
	lines := gcs.EstimateLines(file)

	closeFn := func() {
		if err := file.Close(); err != nil {
			log.Error().Err(err).Msg("error closing input file")
		}
	}
	return corpus.NewTextReader(file, enc), format, lines, closeFn, nil
}

func buildCommand() error {
	in, format, lines, closeIn, err := openInput()
	if err != nil {
		return err
	}
	defer closeIn()

	abs, err := filepath.Abs(outFile)
	if err != nil {
		return fmt.Errorf("could not get absolute path of file: %w", err)
	}

	if !overwrite {
		if _, err = os.Stat(abs); !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("file %s exists and overwrite flag is not set", outFile)
		}
	}

	out, err := os.Create(abs)
	if err != nil {
		return err
	}

	defer func(out *os.File) {
		if err := out.Close(); err != nil {
			log.Error().Err(err).Msg("error closing GCS file")
		}
	}(out)

	builder := gcs.NewBuilder(in, out, format, probability, indexGranularity).ExpectLines(lines)
	return builder.Process()
}

func loadCommand(cmd *cobra.Command) error {
	if cfg.RedisURL == "" {
		return errors.New("REDIS_URL is not set")
	}

	in, format, _, closeIn, err := openInput()
	if err != nil {
		return err
	}
	defer closeIn()

	r, err := corpus.NewRedis(cmd.Context(), cfg.RedisURL, cfg.RedisKey)
	if err != nil {
		return err
	}
	defer r.Close()

	log.Info().Msgf("loading %s into Redis key %s. This might take a while", inputFile, cfg.RedisKey)
	sent, err := r.Load(cmd.Context(), in, format)
	if err != nil {
		return err
	}

	log.Info().Msgf("sent %d passwords to Redis", sent)
	return nil
}

package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/alvinbaena/pwd-advisor/pkg/dataset"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var (
	downloadCmd = &cobra.Command{
		Use:   "download",
		Short: "Download leaked password dumps",
	}

	hibpCmd = &cobra.Command{
		Use:   "hibp",
		Short: "Download the latest haveibeenpwned hashes (SHA1) to a file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return hibpCommand(cmd)
		},
	}

	kaggleCmd = &cobra.Command{
		Use:   "kaggle",
		Short: "Download a password list from a Kaggle dataset (rockyou.txt by default)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return kaggleCommand(cmd)
		},
	}
)

//goland:noinspection GoUnhandledErrorResult
func init() {
	hibpCmd.Flags().StringVarP(&outFile, "out-file", "o", "./pwned-sha1.txt", "Output file path. Can be absolute or relative.")
	hibpCmd.Flags().BoolVar(&overwrite, "overwrite", false, "Overwrite any existing files while writing the results.")
	hibpCmd.Flags().IntVarP(&threads, "threads", "t", 0, "Number of threads to use for the download. If omitted or less than 1, defaults to eight times the number of logical processors of the machine.")
	hibpCmd.Flags().IntVar(&ranges, "ranges", dataset.AllRanges, "Number of hash ranges to download, starting from 00000.")

	kaggleCmd.Flags().StringVar(&datasetName, "dataset", dataset.DefaultDataset, "Kaggle dataset, as owner/slug")
	kaggleCmd.Flags().StringVar(&datasetFile, "file", dataset.DefaultFile, "File to extract from the dataset archive")
	kaggleCmd.Flags().StringVar(&datasetDir, "dir", "", "Directory to keep the extracted file in. Defaults to the user cache directory")
	kaggleCmd.Flags().BoolVar(&overwrite, "overwrite", false, "Download the dataset again even if the file exists.")

	downloadCmd.AddCommand(hibpCmd, kaggleCmd)
	rootCmd.AddCommand(downloadCmd)
}

func hibpCommand(cmd *cobra.Command) error {
	abs, err := filepath.Abs(outFile)
	if err != nil {
		return fmt.Errorf("could not get absolute path of file: %w", err)
	}

	if !overwrite {
		if _, err = os.Stat(abs); err == nil {
			return fmt.Errorf("file %s exists and overwrite flag is not set", abs)
		}
	}

	file, err := os.Create(abs)
	if err != nil {
		return err
	}

	defer func(file *os.File) {
		if err := file.Close(); err != nil {
			log.Error().Err(err).Msg("error closing Pwned Passwords file")
		}
	}(file)

	d := dataset.NewHIBPDownloader(file, threads)
	return d.ProcessRanges(cmd.Context(), ranges, false)
}

func kaggleCommand(cmd *cobra.Command) error {
	k := dataset.NewKaggle(cfg.KaggleUsername, cfg.KaggleKey, datasetDir)
	name, err := k.Fetch(cmd.Context(), datasetName, datasetFile, overwrite)
	if errors.Is(err, dataset.ErrMissingCredentials) {
		return fmt.Errorf("%w: set KAGGLE_USERNAME and KAGGLE_KEY in the environment or a .env file", err)
	}
	if err != nil {
		return err
	}

	log.Info().Msgf("use it with --corpus %s, or build a GCS file with: corpus build -f latin1 -i %s", name, name)
	return nil
}

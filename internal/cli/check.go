package cli

import (
	"errors"

	"github.com/alvinbaena/pwd-advisor/internal/report"
	"github.com/alvinbaena/pwd-advisor/pkg/advisor"
	"github.com/manifoldco/promptui"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var (
	checkCmd = &cobra.Command{
		Use:   "check [PASSWORD]",
		Short: "Check a password's strength and whether it has been leaked",
		Args: func(cmd *cobra.Command, args []string) error {
			if !interactive {
				return cobra.ExactArgs(1)(cmd, args)
			}
			return cobra.NoArgs(cmd, args)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			leaked, err := OpenCorpus(cmd.Context(), cfg, corpusFile, false)
			if err != nil {
				return err
			}
			svc := NewService(cfg, leaked)

			if interactive {
				return checkInteractive(svc)
			}
			return checkCommand(svc, args[0])
		},
	}
)

//goland:noinspection GoUnhandledErrorResult
func init() {
	checkCmd.Flags().StringVar(&corpusFile, "corpus", "", "Leaked password file (.gcs, .csv or plain text)")
	checkCmd.Flags().BoolVarP(&interactive, "interactive", "n", false, "Interactive mode, passwords are read from a masked prompt")
	checkCmd.Flags().BoolVarP(&hashed, "hashed", "s", false, "The input is a Hexadecimal SHA1 hash. Only leak lookups are done, needs a GCS or Redis corpus")

	rootCmd.AddCommand(checkCmd)
}

func checkCommand(svc *advisor.Service, input string) error {
	if hashed {
		return checkHash(svc, input)
	}

	report.NewLogSink(log.Logger).Checked(svc.Check(input))
	return nil
}

func checkHash(svc *advisor.Service, hash string) error {
	leaked, err := svc.CheckHash(hash)
	if err != nil {
		return err
	}

	if leaked {
		log.Warn().Msgf("Password is present")
	} else {
		log.Info().Msgf("Password is not present")
	}
	return nil
}

func checkInteractive(svc *advisor.Service) error {
	label := "Password"
	if hashed {
		label = "SHA1 Hex hash"
		log.Info().Msgf("Flag 'hashed' is set. Please use SHA1 Hashed passwords.")
	}

	prompt := promptui.Prompt{
		Label: label,
		Validate: func(input string) error {
			if len(input) == 0 {
				return errors.New("please enter a valid password")
			}
			return nil
		},
	}
	if !hashed {
		prompt.Mask = '*'
	}

	log.Info().Msgf("Running interactive session. ^C to exit")
	if err := runInteractiveSession(prompt, svc); err != nil {
		if errors.Is(err, promptui.ErrInterrupt) || errors.Is(err, promptui.ErrEOF) {
			log.Info().Msgf("Goodbye")
		} else {
			log.Error().Err(err).Msgf("Error during interactive session")
		}
	}
	// No error to avoid the default cobra error message
	return nil
}

func runInteractiveSession(prompt promptui.Prompt, svc *advisor.Service) error {
	for {
		result, err := prompt.Run()
		if err != nil {
			return err
		}

		if err = checkCommand(svc, result); err != nil {
			log.Error().Err(err).Msg("Error during query")
		}
	}
}

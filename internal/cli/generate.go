// Copyright (c) 2022. Alvin Baena.
// SPDX-License-Identifier: MIT

package cli

import (
	"fmt"

	"github.com/alvinbaena/pwd-advisor/internal/report"
	"github.com/alvinbaena/pwd-advisor/pkg/advisor"
	"github.com/alvinbaena/pwd-advisor/pkg/charset"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var (
	generateCmd = &cobra.Command{
		Use:   "generate",
		Short: "Generate random passwords and estimate how long they take to crack",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return generateCommand(cmd)
		},
	}
)

//goland:noinspection GoUnhandledErrorResult
func init() {
	generateCmd.Flags().IntVarP(&length, "length", "l", 12, fmt.Sprintf("Password length, between %d and %d", advisor.MinLength, advisor.MaxLength))
	generateCmd.Flags().IntVarP(&count, "count", "c", 1, fmt.Sprintf("Number of passwords to generate, between %d and %d", advisor.MinCount, advisor.MaxCount))
	generateCmd.Flags().BoolVar(&upper, "upper", true, "Include uppercase letters")
	generateCmd.Flags().BoolVar(&lower, "lower", true, "Include lowercase letters")
	generateCmd.Flags().BoolVar(&digits, "digits", true, "Include digits")
	generateCmd.Flags().BoolVar(&specials, "specials", false, "Include punctuation characters")
	generateCmd.Flags().BoolVar(&excludeAmbiguous, "exclude-ambiguous", false, "Exclude characters that are easy to confuse (O, 0, I, 1, |)")
	generateCmd.Flags().StringVar(&exclude, "exclude", "", "Characters to exclude from the passwords")
	generateCmd.Flags().BoolVar(&encode, "base64", false, "Also print the passwords Base64 encoded")
	generateCmd.Flags().StringVar(&corpusFile, "corpus", "", "Leaked password file (.gcs, .csv or plain text) to check the generated passwords against")

	rootCmd.AddCommand(generateCmd)
}

func generateCommand(cmd *cobra.Command) error {
	if length < advisor.MinLength || length > advisor.MaxLength {
		return fmt.Errorf("length must be between %d and %d", advisor.MinLength, advisor.MaxLength)
	}
	if count < advisor.MinCount || count > advisor.MaxCount {
		return fmt.Errorf("count must be between %d and %d", advisor.MinCount, advisor.MaxCount)
	}

	leaked, err := OpenCorpus(cmd.Context(), cfg, corpusFile, false)
	if err != nil {
		return err
	}

	policy := charset.Policy{
		Length:           length,
		Upper:            upper,
		Lower:            lower,
		Digits:           digits,
		Specials:         specials,
		ExcludeAmbiguous: excludeAmbiguous,
		Exclude:          exclude,
	}

	svc := NewService(cfg, leaked)
	if alphabet := charset.Build(policy, svc.Charset); alphabet.Len() < len(charset.Digits) {
		log.Warn().Msgf("only %d characters left to draw from: %s", alphabet.Len(), alphabet)
	}

	sink := report.NewLogSink(log.Logger)
	for i, g := range svc.Generate(policy, count, encode) {
		sink.Generated(i, g)
	}
	return nil
}

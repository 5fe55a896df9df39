package cli

import (
	"context"

	"github.com/alvinbaena/pwd-advisor/internal/config"
	"github.com/alvinbaena/pwd-advisor/pkg/advisor"
	"github.com/alvinbaena/pwd-advisor/pkg/charset"
	"github.com/alvinbaena/pwd-advisor/pkg/corpus"
	"github.com/alvinbaena/pwd-advisor/pkg/strength"
	"github.com/rs/zerolog/log"
)

func corpusOptions(cfg config.Config) corpus.Options {
	opts := corpus.Options{CacheSize: cfg.CorpusCacheSize}
	if cfg.CorpusEncoding == "latin1" {
		opts.Encoding = corpus.Latin1
	}
	return opts
}

// OpenCorpus picks the leaked password corpus: the file argument, then
// CORPUS_FILE, then REDIS_URL. With none of them it returns nil. A lazy
// file corpus is loaded on first use.
func OpenCorpus(ctx context.Context, cfg config.Config, file string, lazy bool) (strength.Corpus, error) {
	if file == "" {
		file = cfg.CorpusFile
	}

	switch {
	case file != "" && lazy:
		return corpus.LazyFile(file, corpusOptions(cfg)), nil
	case file != "":
		return corpus.Open(file, corpusOptions(cfg))
	case cfg.RedisURL != "":
		r, err := corpus.NewRedis(ctx, cfg.RedisURL, cfg.RedisKey)
		if err != nil {
			return nil, err
		}
		log.Info().Msgf("using Redis corpus at key %s", cfg.RedisKey)
		if cfg.CorpusCacheSize <= 0 {
			return r, nil
		}
		cached, err := corpus.NewCached(r, cfg.CorpusCacheSize)
		if err != nil {
			return nil, err
		}
		return cached, nil
	default:
		log.Warn().Msg("no leaked password corpus configured, passwords will not be checked for leaks")
		return nil, nil
	}
}

func NewService(cfg config.Config, leaked strength.Corpus) *advisor.Service {
	return advisor.New(advisor.Options{
		Charset:   charset.Config{Ambiguous: cfg.AmbiguousChars, Punctuation: cfg.Punctuation},
		GuessRate: cfg.GuessRate,
		SafeYears: cfg.SafeYears,
		Corpus:    leaked,
	})
}

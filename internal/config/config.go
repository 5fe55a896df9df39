package config

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/alvinbaena/pwd-advisor/internal/util"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

// Config drives the generator, estimator, classifier and leak corpus.
type Config struct {
	GuessRate       float64 `mapstructure:"GUESS_RATE" validate:"gt=0"`
	SafeYears       float64 `mapstructure:"SAFE_YEARS" validate:"gt=0"`
	AmbiguousChars  string  `mapstructure:"AMBIGUOUS_CHARS"`
	Punctuation     string  `mapstructure:"PUNCTUATION" validate:"required"`
	CorpusFile      string  `mapstructure:"CORPUS_FILE"`
	CorpusEncoding  string  `mapstructure:"CORPUS_ENCODING" validate:"oneof=utf8 latin1"`
	CorpusCacheSize int64   `mapstructure:"CORPUS_CACHE_SIZE" validate:"gte=0"`
	RedisURL        string  `mapstructure:"REDIS_URL" validate:"omitempty,url"`
	RedisKey        string  `mapstructure:"REDIS_KEY"`
	KaggleUsername  string  `mapstructure:"KAGGLE_USERNAME" validate:"required_with=KaggleKey"`
	KaggleKey       string  `mapstructure:"KAGGLE_KEY" validate:"required_with=KaggleUsername"`
}

// ServerConfig is Config plus the HTTP listener settings.
type ServerConfig struct {
	Config  `mapstructure:",squash"`
	Port    string `mapstructure:"PORT" validate:"required"`
	SelfTLS bool   `mapstructure:"SELF_TLS" validate:"required_without_all=TLSCert TLSKey"`
	TLSCert string `mapstructure:"TLS_CERT" validate:"required_if=SelfTLS false,required_with=TLSKey"`
	TLSKey  string `mapstructure:"TLS_KEY" validate:"required_if=SelfTLS false,required_with=TLSCert"`
	Debug   bool   `mapstructure:"DEBUG"`
}

func setDefaults() {
	viper.SetDefault("GUESS_RATE", 1e9)
	viper.SetDefault("SAFE_YEARS", 5)
	viper.SetDefault("AMBIGUOUS_CHARS", "O0I1|")
	viper.SetDefault("PUNCTUATION", "!\"#$%&'()*+,-./:;<=>?@[\\]^_`{|}~")
	viper.SetDefault("CORPUS_ENCODING", "latin1")
	viper.SetDefault("CORPUS_CACHE_SIZE", 100_000)
	viper.SetDefault("REDIS_KEY", "pwd-advisor:leaked")
	viper.SetDefault("PORT", "8443")
}

func bindEnvs(iface interface{}, parts ...string) {
	ifv := reflect.ValueOf(iface)
	ift := reflect.TypeOf(iface)
	for i := 0; i < ift.NumField(); i++ {
		v := ifv.Field(i)
		t := ift.Field(i)
		tv, ok := t.Tag.Lookup("mapstructure")
		if !ok {
			continue
		}
		switch {
		case v.Kind() == reflect.Struct && strings.HasSuffix(tv, ",squash"):
			bindEnvs(v.Interface(), parts...)
		case v.Kind() == reflect.Struct:
			bindEnvs(v.Interface(), append(parts, tv)...)
		default:
			_ = viper.BindEnv(strings.Join(append(parts, tv), "."))
		}
	}
}

func msgForTag(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "This field is required"
	case "required_without_all":
		return fmt.Sprintf("This field is required if fields [%s] are missing", util.ToScreamingSnakeCase(fe.Param()))
	case "required_if":
		return fmt.Sprintf("This field is required if %s", util.ToScreamingSnakeCase(fe.Param()))
	case "required_with":
		return fmt.Sprintf("This field requires the presence of %s", util.ToScreamingSnakeCase(fe.Param()))
	case "gt":
		return fmt.Sprintf("This field must be greater than %s", fe.Param())
	case "gte":
		return fmt.Sprintf("This field must be at least %s", fe.Param())
	case "url":
		return "This field must be a URL"
	case "oneof":
		return fmt.Sprintf("This field must be one of [%s]", fe.Param())
	}
	return fe.Error() // default error
}

func validate(config interface{}) error {
	err := validator.New().Struct(config)
	if err == nil {
		return nil
	}

	var ve validator.ValidationErrors
	if errors.As(err, &ve) {
		var msgs []string
		for _, fe := range ve {
			msgs = append(msgs, fmt.Sprintf("%s: %s", util.ToScreamingSnakeCase(fe.Field()), msgForTag(fe)))
		}
		return errors.New(strings.Join(msgs, ". "))
	}
	return fmt.Errorf("error validating configuration from environment: %w", err)
}

// loadEnvFiles reads .env (or the given files) into the environment without
// overriding variables that are already set.
func loadEnvFiles(files ...string) {
	if err := godotenv.Load(files...); err != nil {
		log.Debug().Err(err).Msg("no .env file loaded")
	}
}

func unmarshal(config interface{}, envFiles ...string) error {
	loadEnvFiles(envFiles...)
	setDefaults()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Binding every key lets viper unmarshal envs into a struct without a config file.
	// https://github.com/spf13/viper/issues/188#issuecomment-399884438
	bindEnvs(reflect.ValueOf(config).Elem().Interface())

	if err := viper.Unmarshal(config); err != nil {
		return err
	}
	return validate(config)
}

// Load reads the advisor configuration from the environment and .env files.
func Load(envFiles ...string) (config Config, err error) {
	err = unmarshal(&config, envFiles...)
	return
}

func LoadServer(envFiles ...string) (config ServerConfig, err error) {
	err = unmarshal(&config, envFiles...)
	return
}

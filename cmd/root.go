package cmd

import (
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/spigell/hire-ranker/internal/model"
)

const (
	app = "hire-ranker"
)

type Config struct {
	Oracle   *OracleConfig   `mapstructure:"oracle" validate:"required"`
	Store    *StoreConfig    `mapstructure:"store" validate:"required"`
	Scoring  *ScoringConfig  `mapstructure:"scoring" validate:"required"`
	Filters  *FiltersConfig  `mapstructure:"filters" validate:"required"`
	Feedback *FeedbackConfig `mapstructure:"feedback"`
}

type OracleConfig struct {
	Provider string        `mapstructure:"provider" validate:"oneof=gemini lexical"`
	Timeout  time.Duration `mapstructure:"timeout" validate:"gte=0"`
	Cache    bool          `mapstructure:"cache"`
	Gemini   *GeminiConfig `mapstructure:"gemini" validate:"required_if=Provider gemini"`
}

type GeminiConfig struct {
	APIKeyFile   string `mapstructure:"api-key-file"`
	Model        string `mapstructure:"model" validate:"required"`
	MaxRetries   int    `mapstructure:"max-retries" validate:"gte=0,lte=10"`
	MaxLogLength int    `mapstructure:"max-log-length" validate:"gte=0"`
}

type StoreConfig struct {
	Driver          string        `mapstructure:"driver" validate:"oneof=memory postgres"`
	Dataset         string        `mapstructure:"dataset"`
	DatabaseURL     string        `mapstructure:"database-url"`
	DatabaseURLFile string        `mapstructure:"database-url-file"`
	MaxOpenConns    int           `mapstructure:"max-open-conns" validate:"gte=0"`
	MaxIdleConns    int           `mapstructure:"max-idle-conns" validate:"gte=0"`
	ConnMaxLifetime time.Duration `mapstructure:"conn-max-lifetime" validate:"gte=0"`
	ConnMaxIdleTime time.Duration `mapstructure:"conn-max-idle-time" validate:"gte=0"`
	PingTimeout     time.Duration `mapstructure:"ping-timeout" validate:"gte=0"`
	Migrate         bool          `mapstructure:"migrate"`
}

type ScoringConfig struct {
	Parallelism          int                   `mapstructure:"parallelism" validate:"gte=0"`
	RenormalizeOverrides bool                  `mapstructure:"renormalize-overrides"`
	BaseWeights          *model.ContextWeights `mapstructure:"base-weights"`
}

type FiltersConfig struct {
	MinimumMatchScore float64  `mapstructure:"minimum-match-score" validate:"gte=0,lte=100"`
	Candidates        []string `mapstructure:"candidates"`
	ExcludeFile       string   `mapstructure:"exclude-file"`
}

type FeedbackConfig struct {
	Replay bool `mapstructure:"replay"`
}

var (
	// Used for flags.
	cfgFile string

	rootCmd = &cobra.Command{
		Use:           app,
		Short:         "hire-ranker matches candidates to jobs and scores them in the context of the job",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
)

// Execute executes the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	if err := viper.BindEnv("store.database-url", "HIRE_RANKER_DATABASE_URL"); err != nil {
		log.Fatalf("binding HIRE_RANKER_DATABASE_URL environment variable: %v", err)
	}
	if err := viper.BindEnv("oracle.gemini.api-key-file", "GEMINI_API_KEY_FILE"); err != nil {
		log.Fatalf("binding GEMINI_API_KEY_FILE environment variable: %v", err)
	}

	setDefaults(viper.GetViper())

	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "a config file (default is hire-ranker.yaml in current directory)")
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "verbose/debug output")
	rootCmd.PersistentFlags().BoolP("json", "j", false, "json format for logging")

	viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	viper.BindPFlag("json", rootCmd.PersistentFlags().Lookup("json"))
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("oracle.provider", "lexical")
	v.SetDefault("oracle.timeout", 5*time.Second)
	v.SetDefault("oracle.cache", true)
	v.SetDefault("oracle.gemini.model", "text-embedding-004")
	v.SetDefault("oracle.gemini.max-retries", 3)
	v.SetDefault("oracle.gemini.max-log-length", 200)

	v.SetDefault("store.driver", "memory")
	v.SetDefault("store.max-open-conns", 10)
	v.SetDefault("store.max-idle-conns", 5)
	v.SetDefault("store.conn-max-lifetime", 30*time.Minute)
	v.SetDefault("store.ping-timeout", 5*time.Second)

	v.SetDefault("scoring.parallelism", 4)
	v.SetDefault("filters.minimum-match-score", 0)
	v.SetDefault("feedback.replay", true)
}

func initConfig() {
	// version needs no config.
	if versionCmd.CalledAs() != "" {
		return
	}

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigName(app)
		viper.SetConfigType("yaml")
	}

	// A missing default config file is fine: defaults and environment cover a memory run.
	// An explicit or broken one is not.
	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile == "" && errors.As(err, &notFound) {
			return
		}
		log.Fatal(err)
	}
}

func getConfig() (*Config, error) {
	return decodeConfig(viper.GetViper())
}

func decodeConfig(v *viper.Viper) (*Config, error) {
	var config *Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if config == nil {
		return nil, errors.New("config is required")
	}

	if err := validator.New().Struct(config); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return config, nil
}

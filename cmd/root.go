package cmd

import (
	"errors"
	"io/fs"
	"log"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/spigell/alumni-referrer/internal/ai/gemini"
	"github.com/spigell/alumni-referrer/internal/alumni"
	"github.com/spigell/alumni-referrer/internal/scoring"
	"github.com/spigell/alumni-referrer/internal/search"
	"github.com/spigell/alumni-referrer/internal/similarity"
)

const (
	app       = "alumni-referrer"
	envPrefix = "ALUMNI_REFERRER"
)

type Config struct {
	CorpusFile string               `mapstructure:"corpus-file"`
	Store      *StoreConfig         `mapstructure:"store"`
	Similarity *SimilarityConfig    `mapstructure:"similarity"`
	Scoring    *scoring.Weights     `mapstructure:"scoring"`
	Search     *search.Config       `mapstructure:"search"`
	Profile    *alumni.QueryProfile `mapstructure:"profile"`
	Filters    map[string]any       `mapstructure:"filters"`
	AI         *AIConfig            `mapstructure:"ai"`
	Outreach   *OutreachConfig      `mapstructure:"outreach"`
	Serve      *ServeConfig         `mapstructure:"serve"`
}

type StoreConfig struct {
	Driver  string `mapstructure:"driver"`
	DSN     string `mapstructure:"dsn"`
	DSNFile string `mapstructure:"dsn-file"`
}

type SimilarityConfig struct {
	Method    string                    `mapstructure:"method"`
	Embedding similarity.EmbedderConfig `mapstructure:"embedding"`
}

type AIConfig struct {
	Enabled  bool           `mapstructure:"enabled"`
	Provider string         `mapstructure:"provider"`
	Gemini   *gemini.Config `mapstructure:"gemini"`
}

type OutreachConfig struct {
	MessageType string `mapstructure:"message-type"`
	SenderName  string `mapstructure:"sender-name"`
}

type ServeConfig struct {
	Addr string `mapstructure:"addr"`
}

var (
	// Used for flags.
	cfgFile string

	rootCmd = &cobra.Command{
		Use:   app,
		Short: "alumni-referrer matches students with alumni for job referral outreach",
	}
)

// Execute executes the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "a config file (default is alumni-referrer.yaml in current directory)")
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "verbose/debug output")
	rootCmd.PersistentFlags().BoolP("json", "j", false, "json format for logging")

	viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	viper.BindPFlag("json", rootCmd.PersistentFlags().Lookup("json"))

	setDefaults(viper.GetViper())
}

// setDefaults registers every tunable key so environment overrides reach Unmarshal.
func setDefaults(v *viper.Viper) {
	weights := scoring.DefaultWeights()

	v.SetDefault("corpus-file", "")
	v.SetDefault("store.driver", "memory")
	v.SetDefault("store.dsn", "")
	v.SetDefault("store.dsn-file", "")
	v.SetDefault("similarity.method", similarity.MethodTFIDF)
	v.SetDefault("similarity.embedding.endpoint", "")
	v.SetDefault("similarity.embedding.max-length", 0)
	v.SetDefault("similarity.embedding.batch-size", 0)
	v.SetDefault("similarity.embedding.timeout", "0s")
	v.SetDefault("similarity.embedding.max-retries", 0)
	v.SetDefault("scoring.similarity-weight", weights.SimilarityWeight)
	v.SetDefault("scoring.organization-bonus", weights.OrganizationBonus)
	v.SetDefault("scoring.role-bonus", weights.RoleBonus)
	v.SetDefault("scoring.domain-bonus", weights.DomainBonus)
	v.SetDefault("scoring.skill-increment", weights.SkillIncrement)
	v.SetDefault("scoring.skill-cap", weights.SkillCap)
	v.SetDefault("scoring.graduation-near-bonus", weights.GraduationNearBonus)
	v.SetDefault("scoring.graduation-mid-bonus", weights.GraduationMidBonus)
	v.SetDefault("scoring.graduation-distant-penalty", weights.GraduationDistantPenalty)
	v.SetDefault("scoring.experience-bonus", weights.ExperienceBonus)
	v.SetDefault("scoring.threshold", weights.Threshold)
	v.SetDefault("scoring.clamp", weights.Clamp)
	v.SetDefault("search.top-k", search.DefaultTopK)
	v.SetDefault("search.pool-multiplier", search.DefaultPoolMultiplier)
	v.SetDefault("search.enrich-concurrency", search.DefaultEnrichConcurrency)
	v.SetDefault("search.enrich-timeout", search.DefaultEnrichTimeout.String())
	v.SetDefault("ai.enabled", false)
	v.SetDefault("ai.provider", gemini.Provider)
	v.SetDefault("ai.gemini.api-key", "")
	v.SetDefault("ai.gemini.api-key-file", "")
	v.SetDefault("ai.gemini.model", "")
	v.SetDefault("ai.gemini.max-retries", 0)
	v.SetDefault("ai.gemini.max-log-length", 0)
	v.SetDefault("ai.gemini.temperature", 0)
	v.SetDefault("outreach.message-type", "linkedin")
	v.SetDefault("outreach.sender-name", "")
	v.SetDefault("serve.addr", ":8080")
}

func initConfig() {
	// A missing .env is fine; a broken one is not.
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Fatalf("loading .env: %v", err)
	}

	viper.SetEnvPrefix(envPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	viper.AutomaticEnv()

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

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		// Without an explicit --config the defaults and environment are enough.
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
		return nil, err
	}
	if config == nil {
		config = &Config{}
	}
	if config.Store == nil {
		config.Store = &StoreConfig{}
	}
	if config.Similarity == nil {
		config.Similarity = &SimilarityConfig{}
	}
	if config.Scoring == nil {
		weights := scoring.DefaultWeights()
		config.Scoring = &weights
	}
	if config.Search == nil {
		config.Search = &search.Config{}
	}
	if config.Profile == nil {
		config.Profile = &alumni.QueryProfile{}
	}
	if config.AI == nil {
		config.AI = &AIConfig{}
	}
	if config.AI.Gemini == nil {
		config.AI.Gemini = &gemini.Config{}
	}
	if config.Outreach == nil {
		config.Outreach = &OutreachConfig{}
	}
	if config.Serve == nil {
		config.Serve = &ServeConfig{}
	}

	if err := config.Scoring.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

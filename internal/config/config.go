package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Paths  PathsConfig  `yaml:"paths" mapstructure:"paths"`
	Panel  PanelConfig  `yaml:"panel" mapstructure:"panel"`
	Store  StoreConfig  `yaml:"store" mapstructure:"store"`
	Export ExportConfig `yaml:"export" mapstructure:"export"`
	Server ServerConfig `yaml:"server" mapstructure:"server"`
	Log    LogConfig    `yaml:"log" mapstructure:"log"`
}

// PathsConfig externalizes every input and output location. The upstream
// extracts arrive as ad hoc spreadsheet drops, so nothing about their
// location is baked into the processing contract.
type PathsConfig struct {
	// Raw inputs.
	IncomeHistory   string `yaml:"income_history" mapstructure:"income_history"`
	GaviEligibility string `yaml:"gavi_eligibility" mapstructure:"gavi_eligibility"`
	GaviMICList     string `yaml:"gavi_mic_list" mapstructure:"gavi_mic_list"`
	GaviReference   string `yaml:"gavi_reference" mapstructure:"gavi_reference"`
	Coverage        string `yaml:"coverage" mapstructure:"coverage"`
	HPVHistory      string `yaml:"hpv_history" mapstructure:"hpv_history"`
	DTPFirstDose    string `yaml:"dtp_first_dose" mapstructure:"dtp_first_dose"`
	DTPLastDose     string `yaml:"dtp_last_dose" mapstructure:"dtp_last_dose"`
	VaxMetadata     string `yaml:"vax_metadata" mapstructure:"vax_metadata"`
	CervicalRates   string `yaml:"cervical_rates" mapstructure:"cervical_rates"`

	// Outputs.
	IntermDir      string `yaml:"interm_dir" mapstructure:"interm_dir"`
	FinalDataset   string `yaml:"final_dataset" mapstructure:"final_dataset"`
	SummaryDataset string `yaml:"summary_dataset" mapstructure:"summary_dataset"`
}

// PanelConfig sets the panel rectangle and the analysis window.
type PanelConfig struct {
	YearMin         int `yaml:"year_min" mapstructure:"year_min"`
	YearMax         int `yaml:"year_max" mapstructure:"year_max"`
	AnalysisYearMin int `yaml:"analysis_year_min" mapstructure:"analysis_year_min"`
	AnalysisYearMax int `yaml:"analysis_year_max" mapstructure:"analysis_year_max"`
}

// StoreConfig configures the run-history database.
type StoreConfig struct {
	Path string `yaml:"path" mapstructure:"path"`
}

// ExportConfig configures the Postgres panel export.
type ExportConfig struct {
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
	Schema      string `yaml:"schema" mapstructure:"schema"`
	Table       string `yaml:"table" mapstructure:"table"`
}

// ServerConfig configures the status server.
type ServerConfig struct {
	Port int `yaml:"port" mapstructure:"port"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("VAXPANEL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("panel.year_min", 2008)
	v.SetDefault("panel.year_max", 2025)
	v.SetDefault("panel.analysis_year_min", 2015)
	v.SetDefault("panel.analysis_year_max", 2024)
	v.SetDefault("paths.interm_dir", "interm_data")
	v.SetDefault("paths.final_dataset", "cleaned_data/final_dataset_country_year.xlsx")
	v.SetDefault("paths.summary_dataset", "cleaned_data/panel_summary.xlsx")
	v.SetDefault("store.path", "vaxpanel.db")
	v.SetDefault("export.schema", "vaxpanel")
	v.SetDefault("export.table", "hpv_panel")
	v.SetDefault("server.port", 8080)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}

package config

import (
	"slices"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	FOI     FOIConfig     `yaml:"foi" mapstructure:"foi"`
	Scan    ScanConfig    `yaml:"scan" mapstructure:"scan"`
	Fetch   FetchConfig   `yaml:"fetch" mapstructure:"fetch"`
	Extract ExtractConfig `yaml:"extract" mapstructure:"extract"`
	Export  ExportConfig  `yaml:"export" mapstructure:"export"`
	Store   StoreConfig   `yaml:"store" mapstructure:"store"`
	Log     LogConfig     `yaml:"log" mapstructure:"log"`
}

// FOIConfig holds the map viewer endpoint and the fixed request parameters.
type FOIConfig struct {
	Endpoint  string `yaml:"endpoint" mapstructure:"endpoint"`
	Request   string `yaml:"request" mapstructure:"request"`
	Version   string `yaml:"version" mapstructure:"version"`
	Width     int    `yaml:"width" mapstructure:"width"`
	Height    int    `yaml:"height" mapstructure:"height"`
	Theme     string `yaml:"theme" mapstructure:"theme"`
	Clickable string `yaml:"clickable" mapstructure:"clickable"`
	Area      string `yaml:"area" mapstructure:"area"`
	DstSRID   int    `yaml:"dstsrid" mapstructure:"dstsrid"`
	CacheFOI  string `yaml:"cachefoi" mapstructure:"cachefoi"`
	AW        string `yaml:"aw" mapstructure:"aw"`
	TID       string `yaml:"tid" mapstructure:"tid"`
	Repair    string `yaml:"repair" mapstructure:"repair"` // literal | structural
}

// ScanConfig is the region to cover, in the service projection.
type ScanConfig struct {
	UpperX   float64 `yaml:"upper_x" mapstructure:"upper_x"`
	UpperY   float64 `yaml:"upper_y" mapstructure:"upper_y"`
	LowerX   float64 `yaml:"lower_x" mapstructure:"lower_x"`
	LowerY   float64 `yaml:"lower_y" mapstructure:"lower_y"`
	TileSide float64 `yaml:"tile_side" mapstructure:"tile_side"`
}

// FetchConfig configures the HTTP client.
type FetchConfig struct {
	UserAgent   string  `yaml:"user_agent" mapstructure:"user_agent"`
	TimeoutSecs int     `yaml:"timeout_secs" mapstructure:"timeout_secs"` // 0 = no timeout
	RatePerSec  float64 `yaml:"rate_per_sec" mapstructure:"rate_per_sec"` // 0 = unlimited
}

// ExtractConfig configures attribute promotion.
type ExtractConfig struct {
	OnError string `yaml:"on_error" mapstructure:"on_error"` // skip | abort
}

// ExportConfig configures the output files.
type ExportConfig struct {
	Dir     string   `yaml:"dir" mapstructure:"dir"`
	Columns []string `yaml:"columns" mapstructure:"columns"`
	Formats []string `yaml:"formats" mapstructure:"formats"`
}

// StoreConfig configures the optional database sink.
type StoreConfig struct {
	Driver string `yaml:"driver" mapstructure:"driver"` // "", sqlite, postgres
	DSN    string `yaml:"dsn" mapstructure:"dsn"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// DefaultColumns is the export schema: the labels the tree layer embeds in
// its free-text attribute plus the technical FOI keys.
var DefaultColumns = []string{
	"Aktualność danych na dzień",
	"Jednostka zarządzająca",
	"Nazwa polska",
	"Nazwa łacińska",
	"Numer inwentaryzacyjny",
	"Obwód pnia w cm",
	"Wysokość w m",
	"gtype",
	"height",
	"id",
	"imgurl",
	"width",
	"x",
	"y",
}

var (
	validRepairModes = []string{"literal", "structural"}
	validOnError     = []string{"skip", "abort"}
	validFormats     = []string{"csv", "xlsx", "geojson", "shp"}
	validDrivers     = []string{"", "sqlite", "postgres"}
)

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("TREES")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("foi.endpoint", "http://mapa.um.warszawa.pl/mapviewer/foi")
	v.SetDefault("foi.request", "getfoi")
	v.SetDefault("foi.version", "1.0")
	v.SetDefault("foi.width", 1608)
	v.SetDefault("foi.height", 581)
	v.SetDefault("foi.theme", "dane_wawa.BOS_ZIELEN_DRZEWA")
	v.SetDefault("foi.clickable", "yes")
	v.SetDefault("foi.area", "yes")
	v.SetDefault("foi.dstsrid", 2178)
	v.SetDefault("foi.cachefoi", "yes")
	v.SetDefault("foi.aw", "no")
	v.SetDefault("foi.tid", "649_58860")
	v.SetDefault("foi.repair", "literal")
	// Roughly the Warsaw box.
	v.SetDefault("scan.upper_x", 7489046.2903)
	v.SetDefault("scan.upper_y", 5801540.5856)
	v.SetDefault("scan.lower_x", 7518990.0477)
	v.SetDefault("scan.lower_y", 5774703.9076)
	v.SetDefault("scan.tile_side", 2000)
	v.SetDefault("fetch.user_agent", "tree-research/1.0")
	v.SetDefault("fetch.timeout_secs", 0)
	v.SetDefault("fetch.rate_per_sec", 0)
	v.SetDefault("extract.on_error", "skip")
	v.SetDefault("export.dir", "data")
	v.SetDefault("export.columns", DefaultColumns)
	v.SetDefault("export.formats", []string{"csv"})
	v.SetDefault("store.driver", "")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	// Read config file (optional)
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

// Validate reports every invalid setting at once.
func (c *Config) Validate() error {
	var problems []string

	if c.FOI.Endpoint == "" {
		problems = append(problems, "foi.endpoint is required")
	}
	if !slices.Contains(validRepairModes, c.FOI.Repair) {
		problems = append(problems, "foi.repair must be one of literal, structural")
	}
	if c.Scan.TileSide <= 0 {
		problems = append(problems, "scan.tile_side must be > 0")
	}
	if c.Fetch.TimeoutSecs < 0 {
		problems = append(problems, "fetch.timeout_secs must be >= 0")
	}
	if c.Fetch.RatePerSec < 0 {
		problems = append(problems, "fetch.rate_per_sec must be >= 0")
	}
	if !slices.Contains(validOnError, c.Extract.OnError) {
		problems = append(problems, "extract.on_error must be one of skip, abort")
	}
	if len(c.Export.Columns) == 0 {
		problems = append(problems, "export.columns must not be empty")
	}
	if len(c.Export.Formats) == 0 {
		problems = append(problems, "export.formats must not be empty")
	}
	for _, f := range c.Export.Formats {
		if !slices.Contains(validFormats, f) {
			problems = append(problems, "export.formats: unknown format "+f)
		}
	}
	if !slices.Contains(validDrivers, c.Store.Driver) {
		problems = append(problems, "store.driver must be one of sqlite, postgres")
	} else if c.Store.Driver != "" && c.Store.DSN == "" {
		problems = append(problems, "store.dsn is required when store.driver is set")
	}

	if len(problems) > 0 {
		return eris.Errorf("config: %s", strings.Join(problems, "; "))
	}
	return nil
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

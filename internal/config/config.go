package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// ErrMissingReference is returned when a required reference file is absent.
var ErrMissingReference = errors.New("missing reference file")

type Config struct {
	App       AppConfig
	Sources   []SourceConfig
	Reference ReferenceConfig
	Pipeline  PipelineConfig
	Database  DatabaseConfig
	Cache     CacheConfig
	Storage   StorageConfig
	Drive     DriveConfig
	Metrics   MetricsConfig
}

type AppConfig struct {
	LogLevel    string
	LogFormat   string
	HostProfile string
	BaseDir     string
	OutputDir   string
	DownloadDir string
}

// SourceConfig is one warehouse export directory. The first source is the
// primary warehouse and carries no suffix.
type SourceConfig struct {
	Name   string
	Dir    string
	Suffix string
}

type ReferenceConfig struct {
	Classification string
	PalletMode     string
	PalletOverride string
}

type PipelineConfig struct {
	StartDate        string
	EndDate          string
	InitialInventory float64
	Workers          int
	Clients          []string
	Warehouses       []string
}

type DatabaseConfig struct {
	Enabled  bool
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// DSN renders the connection string for the pgx driver.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.DBName, d.SSLMode)
}

type CacheConfig struct {
	Enabled       bool
	RedisURL      string
	RedisHost     string
	RedisPort     string
	RedisPassword string
	RedisDB       int
	TTLSeconds    int
}

type StorageConfig struct {
	Enabled   bool
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
	Prefix    string
}

type DriveConfig struct {
	CredentialsFile string
	FolderIDs       []string
}

type MetricsConfig struct {
	TextfilePath string
}

var (
	once     sync.Once
	instance *Config
)

func Load() *Config {
	once.Do(func() {
		// Load .env file if it exists
		_ = godotenv.Load()

		viper.SetDefault("LOG_LEVEL", "info")
		viper.SetDefault("LOG_FORMAT", "console")
		viper.SetDefault("HOST_PROFILE", "default")
		viper.SetDefault("BASE_DIR", "./data")
		viper.SetDefault("OUTPUT_DIR", "./data/output")
		viper.SetDefault("DOWNLOAD_DIR", "./data/downloads")
		viper.SetDefault("SOURCE_DIRS", "primary=./data/primary")
		viper.SetDefault("REFERENCE_CLASSIFICATION", "./data/reference/modelos_clasificacion.xlsx")
		viper.SetDefault("REFERENCE_PALLET_MODE", "./data/reference/pallet_mode.xlsx")
		viper.SetDefault("REFERENCE_PALLET_OVERRIDE", "")
		viper.SetDefault("PIPELINE_INITIAL_INVENTORY", 0.0)
		viper.SetDefault("PIPELINE_WORKERS", 4)
		viper.SetDefault("DB_ENABLED", false)
		viper.SetDefault("DB_HOST", "localhost")
		viper.SetDefault("DB_PORT", "5432")
		viper.SetDefault("DB_USER", "postgres")
		viper.SetDefault("DB_PASSWORD", "postgres")
		viper.SetDefault("DB_NAME", "warehouse_recon")
		viper.SetDefault("DB_SSLMODE", "disable")
		viper.SetDefault("CACHE_ENABLED", false)
		viper.SetDefault("REDIS_URL", "")
		viper.SetDefault("REDIS_HOST", "127.0.0.1")
		viper.SetDefault("REDIS_PORT", "6379")
		viper.SetDefault("REDIS_PASSWORD", "")
		viper.SetDefault("REDIS_DB", 0)
		viper.SetDefault("CACHE_TTL_SECONDS", 3600)
		viper.SetDefault("STORAGE_ENABLED", false)
		viper.SetDefault("STORAGE_USE_SSL", true)
		viper.SetDefault("STORAGE_PREFIX", "warehouse-recon")
		viper.SetDefault("METRICS_TEXTFILE", "")

		// Read from environment variables
		viper.AutomaticEnv()

		instance = fromViper()
	})

	return instance
}

func fromViper() *Config {
	return &Config{
		App: AppConfig{
			LogLevel:    viper.GetString("LOG_LEVEL"),
			LogFormat:   viper.GetString("LOG_FORMAT"),
			HostProfile: viper.GetString("HOST_PROFILE"),
			BaseDir:     viper.GetString("BASE_DIR"),
			OutputDir:   viper.GetString("OUTPUT_DIR"),
			DownloadDir: viper.GetString("DOWNLOAD_DIR"),
		},
		Sources: ParseSources(viper.GetString("SOURCE_DIRS")),
		Reference: ReferenceConfig{
			Classification: viper.GetString("REFERENCE_CLASSIFICATION"),
			PalletMode:     viper.GetString("REFERENCE_PALLET_MODE"),
			PalletOverride: viper.GetString("REFERENCE_PALLET_OVERRIDE"),
		},
		Pipeline: PipelineConfig{
			StartDate:        viper.GetString("PIPELINE_START_DATE"),
			EndDate:          viper.GetString("PIPELINE_END_DATE"),
			InitialInventory: viper.GetFloat64("PIPELINE_INITIAL_INVENTORY"),
			Workers:          viper.GetInt("PIPELINE_WORKERS"),
			Clients:          splitList(viper.GetString("PIPELINE_CLIENTS")),
			Warehouses:       splitList(viper.GetString("PIPELINE_WAREHOUSES")),
		},
		Database: DatabaseConfig{
			Enabled:  viper.GetBool("DB_ENABLED"),
			Host:     viper.GetString("DB_HOST"),
			Port:     viper.GetString("DB_PORT"),
			User:     viper.GetString("DB_USER"),
			Password: viper.GetString("DB_PASSWORD"),
			DBName:   viper.GetString("DB_NAME"),
			SSLMode:  viper.GetString("DB_SSLMODE"),
		},
		Cache: CacheConfig{
			Enabled:       viper.GetBool("CACHE_ENABLED"),
			RedisURL:      viper.GetString("REDIS_URL"),
			RedisHost:     viper.GetString("REDIS_HOST"),
			RedisPort:     viper.GetString("REDIS_PORT"),
			RedisPassword: viper.GetString("REDIS_PASSWORD"),
			RedisDB:       viper.GetInt("REDIS_DB"),
			TTLSeconds:    viper.GetInt("CACHE_TTL_SECONDS"),
		},
		Storage: StorageConfig{
			Enabled:   viper.GetBool("STORAGE_ENABLED"),
			Endpoint:  viper.GetString("STORAGE_ENDPOINT"),
			AccessKey: viper.GetString("STORAGE_ACCESS_KEY"),
			SecretKey: viper.GetString("STORAGE_SECRET_KEY"),
			Bucket:    viper.GetString("STORAGE_BUCKET"),
			UseSSL:    viper.GetBool("STORAGE_USE_SSL"),
			Prefix:    viper.GetString("STORAGE_PREFIX"),
		},
		Drive: DriveConfig{
			CredentialsFile: viper.GetString("GOOGLE_CREDENTIALS_FILE"),
			FolderIDs:       splitList(viper.GetString("DRIVE_FOLDER_IDS")),
		},
		Metrics: MetricsConfig{
			TextfilePath: viper.GetString("METRICS_TEXTFILE"),
		},
	}
}

// ParseSources reads "name=dir[:suffix]" entries separated by commas. The
// first entry is the primary warehouse and never gets a suffix.
func ParseSources(raw string) []SourceConfig {
	var out []SourceConfig
	for i, entry := range splitList(raw) {
		name, rest, ok := strings.Cut(entry, "=")
		if !ok {
			name, rest = fmt.Sprintf("source%d", i), entry
		}
		dir, suffix, _ := strings.Cut(rest, ":")
		if i == 0 {
			suffix = ""
		}
		out = append(out, SourceConfig{Name: strings.TrimSpace(name), Dir: strings.TrimSpace(dir), Suffix: strings.TrimSpace(suffix)})
	}
	return out
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Validate checks the settings a run cannot do without. Missing reference
// files are reported with ErrMissingReference.
func (c *Config) Validate() error {
	if len(c.Sources) == 0 {
		return errors.New("no source directories configured")
	}
	for _, s := range c.Sources[1:] {
		if s.Suffix == "" {
			return fmt.Errorf("source %s: secondary warehouses need a suffix", s.Name)
		}
	}
	for _, path := range []string{c.Reference.Classification, c.Reference.PalletMode} {
		if path == "" {
			return fmt.Errorf("%w: path not set", ErrMissingReference)
		}
		if _, err := os.Stat(path); err != nil {
			return fmt.Errorf("%w: %s", ErrMissingReference, path)
		}
	}
	if p := c.Reference.PalletOverride; p != "" {
		if _, err := os.Stat(p); err != nil {
			return fmt.Errorf("%w: %s", ErrMissingReference, p)
		}
	}
	return nil
}

// EnsureDirs creates the output and download directories.
func (c *Config) EnsureDirs() error {
	for _, dir := range []string{c.App.OutputDir, c.App.DownloadDir} {
		if dir == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}
	return nil
}

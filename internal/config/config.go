package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	apperrors "github.com/mcbagz/edSIS/pkg/errors"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	SourceAPI  = "api"
	SourceFile = "file"
	SourceXLSX = "xlsx"

	StorageLocal = "local"
	StorageS3    = "s3"

	PlaceholdersInclude = "include"
	PlaceholdersOmit    = "omit"
)

type Config struct {
	App      AppConfig      `yaml:"app"`
	Server   ServerConfig   `yaml:"server"`
	SIS      SISConfig      `yaml:"sis"`
	EdFi     EdFiConfig     `yaml:"edfi"`
	Extract  ExtractConfig  `yaml:"extract"`
	Storage  StorageConfig  `yaml:"storage"`
	Mapping  MappingConfig  `yaml:"mapping"`
	Database DatabaseConfig `yaml:"database"`
	Redis    RedisConfig    `yaml:"redis"`
	Workers  WorkersConfig  `yaml:"workers"`
	Logging  LoggingConfig  `yaml:"logging"`
}

type AppConfig struct {
	Name    string `yaml:"name"`
	Version string `yaml:"version"`
	Env     string `yaml:"env"`
}

type ServerConfig struct {
	Port            int           `yaml:"port"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

type SISConfig struct {
	BaseURL       string        `yaml:"base_url"`
	LoginEndpoint string        `yaml:"login_endpoint"`
	Email         string        `yaml:"email"`
	Password      string        `yaml:"password"`
	Timeout       time.Duration `yaml:"timeout"`
}

type EdFiConfig struct {
	BaseURL            string        `yaml:"base_url"`
	TokenEndpoint      string        `yaml:"token_endpoint"`
	DataPath           string        `yaml:"data_path"`
	ClientID           string        `yaml:"client_id"`
	ClientSecret       string        `yaml:"client_secret"`
	Timeout            time.Duration `yaml:"timeout"`
	InsecureSkipVerify bool          `yaml:"insecure_skip_verify"`
}

type ExtractConfig struct {
	// Source selects where SIS records come from: api, file (snapshots) or xlsx.
	Source   string `yaml:"source"`
	Snapshot bool   `yaml:"snapshot"`
	Workbook string `yaml:"workbook"`
}

type StorageConfig struct {
	Backend string      `yaml:"backend"`
	Local   LocalConfig `yaml:"local"`
	S3      S3Config    `yaml:"s3"`
}

type LocalConfig struct {
	Dir string `yaml:"dir"`
}

type S3Config struct {
	Endpoint  string `yaml:"endpoint"`
	AccessKey string `yaml:"access_key"`
	SecretKey string `yaml:"secret_key"`
	Bucket    string `yaml:"bucket"`
	Region    string `yaml:"region"`
	Prefix    string `yaml:"prefix"`
	UseSSL    bool   `yaml:"use_ssl"`
}

type MappingConfig struct {
	Placeholders      string `yaml:"placeholders"`
	NameOfCounty      string `yaml:"name_of_county"`
	CongressionalDist string `yaml:"congressional_district"`
	HispanicLatino    bool   `yaml:"hispanic_latino_ethnicity"`
	Race              string `yaml:"race"`
}

type DatabaseConfig struct {
	Enabled            bool          `yaml:"enabled"`
	Host               string        `yaml:"host"`
	Port               int           `yaml:"port"`
	User               string        `yaml:"user"`
	Password           string        `yaml:"password"`
	Name               string        `yaml:"name"`
	Charset            string        `yaml:"charset"`
	ParseTime          bool          `yaml:"parse_time"`
	Loc                string        `yaml:"loc"`
	MaxConnections     int           `yaml:"max_connections"`
	MaxIdleConnections int           `yaml:"max_idle_connections"`
	ConnectionLifetime time.Duration `yaml:"connection_lifetime"`
}

type RedisConfig struct {
	Host      string `yaml:"host"`
	Port      int    `yaml:"port"`
	Password  string `yaml:"password"`
	DB        int    `yaml:"db"`
	PoolSize  int    `yaml:"pool_size"`
	SyncQueue string `yaml:"sync_queue"`
	DLQSuffix string `yaml:"dlq_suffix"`
}

type WorkersConfig struct {
	Schedule ScheduleWorkerConfig `yaml:"schedule"`
}

type ScheduleWorkerConfig struct {
	Interval   time.Duration `yaml:"interval"`
	RunOnStart bool          `yaml:"run_on_start"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	File   string `yaml:"file"`
}

func Default() *Config {
	return &Config{
		App: AppConfig{Name: "edfi-sync", Version: "dev", Env: "development"},
		Server: ServerConfig{
			Port:            8080,
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    15 * time.Second,
			ShutdownTimeout: 10 * time.Second,
		},
		SIS: SISConfig{
			LoginEndpoint: "/auth/login",
			Timeout:       30 * time.Second,
		},
		EdFi: EdFiConfig{
			TokenEndpoint: "/oauth/token",
			DataPath:      "/data/v3/ed-fi",
			Timeout:       30 * time.Second,
		},
		Extract: ExtractConfig{Source: SourceAPI},
		Storage: StorageConfig{
			Backend: StorageLocal,
			Local:   LocalConfig{Dir: "data"},
		},
		Mapping: MappingConfig{
			Placeholders:      PlaceholdersInclude,
			NameOfCounty:      "UNKNOWN",
			CongressionalDist: "UNKNOWN",
			Race:              "White",
		},
		Database: DatabaseConfig{
			Port:               3306,
			Charset:            "utf8mb4",
			ParseTime:          true,
			Loc:                "UTC",
			MaxConnections:     10,
			MaxIdleConnections: 5,
			ConnectionLifetime: time.Hour,
		},
		Redis: RedisConfig{
			Host:      "localhost",
			Port:      6379,
			PoolSize:  10,
			SyncQueue: "edfi_sync_jobs",
			DLQSuffix: ":dlq",
		},
		Workers: WorkersConfig{
			Schedule: ScheduleWorkerConfig{Interval: 5 * time.Minute},
		},
		Logging: LoggingConfig{Level: "info", Format: "console"},
	}
}

// Load reads .env, then the YAML file at CONFIG_PATH (default config.yaml)
// over the defaults, then applies environment overrides.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config.yaml"
	}

	config, err := LoadFile(configPath)
	if err != nil {
		return nil, err
	}

	config.ApplyEnv()
	return config, nil
}

// LoadFile decodes path over Default(). A missing file is not an error.
func LoadFile(path string) (*Config, error) {
	config := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return config, nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return config, nil
}

// ApplyEnv overrides file values with the variables the original .env used.
func (c *Config) ApplyEnv() {
	setString(&c.SIS.BaseURL, "SIS_API_BASE_URL")
	setString(&c.SIS.Email, "SIS_ADMIN_EMAIL")
	setString(&c.SIS.Password, "SIS_ADMIN_PASSWORD")
	setString(&c.EdFi.BaseURL, "EDFI_API_BASE_URL")
	setString(&c.EdFi.ClientID, "EDFI_API_CLIENT_ID")
	setString(&c.EdFi.ClientSecret, "EDFI_API_CLIENT_SECRET")
	setString(&c.Extract.Source, "SYNC_SOURCE")
	setString(&c.Storage.Local.Dir, "SNAPSHOT_DIR")
	setString(&c.Logging.Level, "LOG_LEVEL")
}

func setString(dst *string, key string) {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		*dst = v
	}
}

// Validate checks what the selected extraction source needs. SIS credentials
// are only required when records are pulled live.
func (c *Config) Validate() error {
	var problems []string

	problems = append(problems, c.validateEdFi()...)

	switch c.Extract.Source {
	case SourceAPI:
		problems = append(problems, c.validateSIS()...)
	case SourceFile:
	case SourceXLSX:
		if c.Extract.Workbook == "" {
			problems = append(problems, "extract.workbook is required for the xlsx source")
		}
	default:
		problems = append(problems, fmt.Sprintf("unknown extract.source %q", c.Extract.Source))
	}

	switch c.Storage.Backend {
	case StorageLocal:
		if c.Storage.Local.Dir == "" {
			problems = append(problems, "storage.local.dir is required")
		}
	case StorageS3:
		if c.Storage.S3.Bucket == "" {
			problems = append(problems, "storage.s3.bucket is required")
		}
	default:
		problems = append(problems, fmt.Sprintf("unknown storage.backend %q", c.Storage.Backend))
	}

	switch c.Mapping.Placeholders {
	case PlaceholdersInclude, PlaceholdersOmit:
	default:
		problems = append(problems, fmt.Sprintf("unknown mapping.placeholders %q", c.Mapping.Placeholders))
	}

	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", apperrors.ErrInvalidConfig, strings.Join(problems, "; "))
	}
	return nil
}

// ValidateSIS is used by the fetch command, which never talks to Ed-Fi.
func (c *Config) ValidateSIS() error {
	if problems := c.validateSIS(); len(problems) > 0 {
		return fmt.Errorf("%w: %s", apperrors.ErrInvalidConfig, strings.Join(problems, "; "))
	}
	return nil
}

// ValidateEdFi is used by the check command, which never talks to the SIS.
func (c *Config) ValidateEdFi() error {
	if problems := c.validateEdFi(); len(problems) > 0 {
		return fmt.Errorf("%w: %s", apperrors.ErrInvalidConfig, strings.Join(problems, "; "))
	}
	return nil
}

func (c *Config) validateEdFi() []string {
	var problems []string
	if c.EdFi.BaseURL == "" {
		problems = append(problems, "edfi.base_url is required")
	}
	if c.EdFi.ClientID == "" || c.EdFi.ClientSecret == "" {
		problems = append(problems, "edfi.client_id and edfi.client_secret are required")
	}
	return problems
}

func (c *Config) validateSIS() []string {
	var problems []string
	if c.SIS.BaseURL == "" {
		problems = append(problems, "sis.base_url is required")
	}
	if c.SIS.Email == "" || c.SIS.Password == "" {
		problems = append(problems, "sis.email and sis.password are required")
	}
	return problems
}

// MySQL DSN format: [username[:password]@][protocol[(address)]]/dbname[?param1=value1&...&paramN=valueN]
func (c *Config) DatabaseDSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=%s&parseTime=%t&loc=%s",
		c.Database.User, c.Database.Password, c.Database.Host, c.Database.Port,
		c.Database.Name, c.Database.Charset, c.Database.ParseTime, c.Database.Loc)
}

func (c *Config) RedisAddr() string {
	return fmt.Sprintf("%s:%d", c.Redis.Host, c.Redis.Port)
}

func (c *Config) EdFiResourceURL(resource string) string {
	return strings.TrimRight(c.EdFi.BaseURL, "/") + c.EdFi.DataPath + "/" + resource
}

func (c *Config) SISCollectionURL(entity string) string {
	return strings.TrimRight(c.SIS.BaseURL, "/") + "/" + entity
}

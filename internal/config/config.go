// Package config provides YAML-based configuration loading for vbtrack.
package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"github.com/sotuphap-angiang/vbtrack/internal/models"
	"gopkg.in/yaml.v3"
)

// Config is the top-level vbtrack configuration, loaded from vbtrack.yaml.
type Config struct {
	Year     int            `yaml:"year"`
	Database DatabaseConfig `yaml:"database"`
	Server   ServerConfig   `yaml:"server"`
	Log      LogConfig      `yaml:"log"`
	Import   ImportConfig   `yaml:"import"`
	Report   ReportConfig   `yaml:"report"`
	Handlers []string       `yaml:"handlers"`
	Notify   NotifyConfig   `yaml:"notify"`
}

// DatabaseConfig selects the store backend. Driver is "sqlite" or "mysql".
type DatabaseConfig struct {
	Driver   string `yaml:"driver" env:"VB_DB_DRIVER"`
	DSN      string `yaml:"dsn" env:"VB_DB_DSN"`
	Path     string `yaml:"path" env:"VB_DB_PATH"`
	Host     string `yaml:"host" env:"VB_DB_HOST"`
	Port     int    `yaml:"port" env:"VB_DB_PORT"`
	Name     string `yaml:"name" env:"VB_DB_NAME"`
	User     string `yaml:"user" env:"VB_DB_USER"`
	Password string `yaml:"password" env:"VB_DB_PASSWORD"`
}

// ServerConfig holds HTTP settings for `vb serve`.
type ServerConfig struct {
	Port        int   `yaml:"port" env:"VB_PORT"`
	MaxUploadMB int64 `yaml:"max_upload_mb" env:"VB_MAX_UPLOAD_MB"`
}

// LogConfig controls the logrus logger.
type LogConfig struct {
	Level  string `yaml:"level" env:"VB_LOG_LEVEL"`
	Format string `yaml:"format" env:"VB_LOG_FORMAT"`
}

// ImportConfig controls workbook ingestion.
type ImportConfig struct {
	BatchSize int           `yaml:"batch_size"`
	Sheets    []SheetConfig `yaml:"sheets"`
	// Schedule is an optional 5-field cron expression; when set, `vb serve`
	// re-imports WorkbookPath on that schedule.
	Schedule     string `yaml:"schedule" env:"VB_IMPORT_SCHEDULE"`
	WorkbookPath string `yaml:"workbook_path" env:"VB_IMPORT_WORKBOOK"`
}

// SheetConfig maps one named workbook sheet to a document partition.
type SheetConfig struct {
	Name    string `yaml:"name"`
	DocType string `yaml:"doc_type"`
	Status  string `yaml:"status"`
}

// ReportConfig holds the static area definitions used by the rollups.
type ReportConfig struct {
	UnassignedLabel string            `yaml:"unassigned_label"`
	Groups          []AreaGroupConfig `yaml:"groups"`
}

// AreaGroupConfig is one summary table: the areas reported for a doc type.
type AreaGroupConfig struct {
	DocType string       `yaml:"doc_type"`
	Title   string       `yaml:"title"`
	Areas   []AreaConfig `yaml:"areas"`
}

// AreaConfig is a named grouping of agencies with an assigned handler label.
type AreaConfig struct {
	Ordinal  int      `yaml:"ordinal"`
	Name     string   `yaml:"name"`
	Agencies []string `yaml:"agencies"`
	Handler  string   `yaml:"handler"`
}

// NotifyConfig holds optional chat webhooks that receive import summaries.
type NotifyConfig struct {
	SlackWebhookURL   string `yaml:"slack_webhook_url" env:"VB_SLACK_WEBHOOK_URL"`
	DiscordWebhookURL string `yaml:"discord_webhook_url" env:"VB_DISCORD_WEBHOOK_URL"`
}

// EnvFiles are loaded (when present) before environment overrides apply.
var EnvFiles = []string{".env", ".env.local"}

// Load reads a YAML config file from path, applies environment overrides and
// returns a validated Config.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}
	if err := loadEnvFiles(EnvFiles); err != nil {
		return nil, err
	}
	return parse(data, true)
}

// Parse unmarshals YAML bytes into a validated Config. Environment variables
// are not consulted.
func Parse(data []byte) (*Config, error) {
	return parse(data, false)
}

func parse(data []byte, withEnv bool) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("config: parse: %w", err)
	}
	if withEnv {
		if err := env.Parse(&cfg); err != nil {
			return nil, fmt.Errorf("config: env: %w", err)
		}
	}
	cfg.applyDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// loadEnvFiles loads the dotenv files that exist. Already-set variables win.
func loadEnvFiles(files []string) error {
	var existing []string
	for _, f := range files {
		if _, err := os.Stat(f); err == nil {
			existing = append(existing, f)
		}
	}
	if len(existing) == 0 {
		return nil
	}
	if err := godotenv.Load(existing...); err != nil {
		return fmt.Errorf("config: load env files: %w", err)
	}
	return nil
}

// applyDefaults fills in derived and default values.
func (c *Config) applyDefaults() {
	if c.Year == 0 {
		c.Year = 2026
	}
	if c.Database.Driver == "" {
		c.Database.Driver = "sqlite"
	}
	if c.Database.Driver == "sqlite" && c.Database.Path == "" && c.Database.DSN == "" {
		c.Database.Path = "vbtrack.db"
	}
	if c.Database.Driver == "mysql" {
		if c.Database.Host == "" {
			c.Database.Host = "127.0.0.1"
		}
		if c.Database.Port == 0 {
			c.Database.Port = 3306
		}
		if c.Database.Name == "" {
			c.Database.Name = "vbtrack"
		}
		if c.Database.User == "" {
			c.Database.User = "root"
		}
	}
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if c.Server.MaxUploadMB == 0 {
		c.Server.MaxUploadMB = 32
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "text"
	}
	if c.Import.BatchSize == 0 {
		c.Import.BatchSize = 50
	}
	if len(c.Import.Sheets) == 0 {
		c.Import.Sheets = DefaultSheets()
	}
	if c.Report.UnassignedLabel == "" {
		c.Report.UnassignedLabel = "Chưa phân công"
	}
	if len(c.Report.Groups) == 0 {
		c.Report.Groups = DefaultAreaGroups()
	}
}

// validate checks that all required fields are present and consistent.
func (c *Config) validate() error {
	var errs []string
	switch c.Database.Driver {
	case "sqlite", "mysql":
	default:
		errs = append(errs, fmt.Sprintf("database.driver %q must be sqlite or mysql", c.Database.Driver))
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		errs = append(errs, fmt.Sprintf("log.format %q must be text or json", c.Log.Format))
	}
	if c.Import.BatchSize < 0 {
		errs = append(errs, "import.batch_size must be positive")
	}
	if c.Import.Schedule != "" && c.Import.WorkbookPath == "" {
		errs = append(errs, "import.workbook_path is required when import.schedule is set")
	}
	seen := make(map[string]bool)
	for i, s := range c.Import.Sheets {
		if s.Name == "" {
			errs = append(errs, fmt.Sprintf("import.sheets[%d].name is required", i))
		}
		if seen[s.Name] {
			errs = append(errs, fmt.Sprintf("import.sheets[%d].name %q is duplicated", i, s.Name))
		}
		seen[s.Name] = true
		if !models.IsValidDocType(s.DocType) {
			errs = append(errs, fmt.Sprintf("import.sheets[%d].doc_type %q is invalid", i, s.DocType))
		}
		if !models.IsValidStatus(s.Status) {
			errs = append(errs, fmt.Sprintf("import.sheets[%d].status %q is invalid", i, s.Status))
		}
	}
	for i, g := range c.Report.Groups {
		if !models.IsValidDocType(g.DocType) {
			errs = append(errs, fmt.Sprintf("report.groups[%d].doc_type %q is invalid", i, g.DocType))
		}
		for j, a := range g.Areas {
			if a.Name == "" {
				errs = append(errs, fmt.Sprintf("report.groups[%d].areas[%d].name is required", i, j))
			}
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("config: validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}

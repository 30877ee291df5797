package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Config is the in-memory representation of ~/.shelfwise/shelfwise.yaml.
// Every field can be overridden with a SHELFWISE_* environment variable,
// e.g. SHELFWISE_GMAIL_APP_PASSWORD or SHELFWISE_SMTP_PORT.
type Config struct {
	GmailAddress        string   `mapstructure:"gmail_address" yaml:"gmail_address"`
	GmailAppPassword    string   `mapstructure:"gmail_app_password" yaml:"gmail_app_password,omitempty"`
	KindleEmail         string   `mapstructure:"kindle_email" yaml:"kindle_email"`
	SMTPHost            string   `mapstructure:"smtp_host" yaml:"smtp_host"`
	SMTPPort            int      `mapstructure:"smtp_port" yaml:"smtp_port"`
	MaxAttachmentSizeMB int      `mapstructure:"max_attachment_size_mb" yaml:"max_attachment_size_mb"`
	DeliveryFormats     []string `mapstructure:"delivery_formats" yaml:"delivery_formats"`
	ScanFormats         []string `mapstructure:"scan_formats" yaml:"scan_formats"`
	ScanWorkers         int      `mapstructure:"scan_workers" yaml:"scan_workers"`
	CatalogPath         string   `mapstructure:"catalog_path" yaml:"catalog_path"`
	CatalogMaxAgeDays   int      `mapstructure:"catalog_max_age_days" yaml:"catalog_max_age_days"`
	RefreshHour         int      `mapstructure:"refresh_hour" yaml:"refresh_hour"`
	SearchMode          string   `mapstructure:"search_mode" yaml:"search_mode"`
	SimilarityThreshold int      `mapstructure:"similarity_threshold" yaml:"similarity_threshold"`
	ListenAddr          string   `mapstructure:"listen_addr" yaml:"listen_addr"`
	LogLevel            string   `mapstructure:"log_level" yaml:"log_level"`
	SendTimeoutSeconds  int      `mapstructure:"send_timeout_seconds" yaml:"send_timeout_seconds"`
	Directories         []string `mapstructure:"directories" yaml:"directories,omitempty"`
}

// Dir returns the absolute path to ~/.shelfwise/.
func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	return filepath.Join(home, ".shelfwise"), nil
}

// Path returns the absolute path to ~/.shelfwise/shelfwise.yaml.
func Path() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "shelfwise.yaml"), nil
}

// ExpandPath expands a leading ~ to the user's home directory.
func ExpandPath(p string) (string, error) {
	if !strings.HasPrefix(p, "~") {
		return p, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot expand ~: %w", err)
	}
	return filepath.Join(home, p[1:]), nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("gmail_address", "")
	v.SetDefault("gmail_app_password", "")
	v.SetDefault("kindle_email", "")
	v.SetDefault("smtp_host", "smtp.gmail.com")
	v.SetDefault("smtp_port", 587)
	v.SetDefault("max_attachment_size_mb", 50)
	v.SetDefault("delivery_formats", []string{".pdf", ".mobi", ".epub", ".azw", ".azw3", ".txt", ".doc", ".docx"})
	v.SetDefault("scan_formats", []string{".pdf", ".epub", ".mobi", ".azw", ".azw3", ".djvu", ".fb2", ".txt"})
	v.SetDefault("scan_workers", 4)
	v.SetDefault("catalog_path", "~/.shelfwise/catalog.json")
	v.SetDefault("catalog_max_age_days", 7)
	v.SetDefault("refresh_hour", 3)
	v.SetDefault("search_mode", "fuzzy")
	v.SetDefault("similarity_threshold", 60)
	v.SetDefault("listen_addr", ":8501")
	v.SetDefault("log_level", "info")
	v.SetDefault("send_timeout_seconds", 60)
	v.SetDefault("directories", []string{})
}

// Load reads shelfwise.yaml (when present) merged with SHELFWISE_* env
// overrides and defaults. A missing config file is not an error; env and
// defaults alone make a usable configuration.
func Load() (*Config, error) {
	dir, err := Dir()
	if err != nil {
		return nil, err
	}

	v := viper.New()
	v.SetConfigName("shelfwise")
	v.SetConfigType("yaml")
	v.AddConfigPath(dir)
	v.SetEnvPrefix("SHELFWISE")
	v.AutomaticEnv()
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("cannot read config in %s: %w", dir, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	cfg.CatalogPath, err = ExpandPath(cfg.CatalogPath)
	if err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Save marshals cfg and writes it to ~/.shelfwise/shelfwise.yaml.
// The app password is never written to disk; it belongs in the
// SHELFWISE_GMAIL_APP_PASSWORD environment variable.
func Save(cfg *Config) error {
	path, err := Path()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("cannot create config dir: %w", err)
	}
	scrubbed := *cfg
	scrubbed.GmailAppPassword = ""
	data, err := yaml.Marshal(&scrubbed)
	if err != nil {
		return fmt.Errorf("cannot marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("cannot write config %s: %w", path, err)
	}
	return nil
}

// IsMailConfigured reports whether delivery has a sender, credential,
// and destination to work with.
func (c *Config) IsMailConfigured() bool {
	return c.GmailAddress != "" && c.GmailAppPassword != "" && c.KindleEmail != ""
}

// Summary returns the current configuration without sensitive values,
// suitable for logging or the status endpoint.
func (c *Config) Summary() map[string]any {
	formats := append([]string(nil), c.DeliveryFormats...)
	sort.Strings(formats)
	return map[string]any{
		"gmail_address":          c.GmailAddress,
		"kindle_email":           c.KindleEmail,
		"smtp_host":              c.SMTPHost,
		"smtp_port":              c.SMTPPort,
		"max_attachment_size_mb": c.MaxAttachmentSizeMB,
		"gmail_configured":       c.GmailAddress != "" && c.GmailAppPassword != "",
		"kindle_configured":      c.KindleEmail != "",
		"fully_configured":       c.IsMailConfigured(),
		"supported_formats":      formats,
		"search_mode":            c.SearchMode,
		"similarity_threshold":   c.SimilarityThreshold,
	}
}

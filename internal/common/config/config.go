// internal/common/config/config.go
package config

import "fmt"

// Config is the main application configuration struct.
type Config struct {
	App           AppConfig          `mapstructure:"app"`
	Database      DatabaseConfig     `mapstructure:"database"`
	Awards        AwardsConfig       `mapstructure:"awards"`
	Logging       LoggingConfig      `mapstructure:"logging"`
	Notifications NotificationConfig `mapstructure:"notifications"`
	Metrics       MetricsConfig      `mapstructure:"metrics"`
}

// --- Core App/Infrastructure Config ---
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment"`
}

type DatabaseConfig struct {
	Postgres      PostgresConfig      `mapstructure:"postgres"`
	SQLite        SQLiteConfig        `mapstructure:"sqlite"`
	Elasticsearch ElasticsearchConfig `mapstructure:"elasticsearch"`
	Redis         RedisConfig         `mapstructure:"redis"`
}

type PostgresConfig struct {
	Host           string `mapstructure:"host"`
	Port           int    `mapstructure:"port"`
	Database       string `mapstructure:"database"`
	User           string `mapstructure:"user"`
	Password       string `mapstructure:"password"`
	MaxConnections int    `mapstructure:"max_connections"`
	MaxIdle        int    `mapstructure:"max_idle"`
	SSLMode        string `mapstructure:"sslmode"`
}

// GetDSN returns the PostgreSQL connection string
func (p PostgresConfig) GetDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		p.Host, p.Port, p.User, p.Password, p.Database, p.SSLMode,
	)
}

// SQLiteConfig configures the single-file archive used for local runs.
type SQLiteConfig struct {
	Path string `mapstructure:"path"`
}

type ElasticsearchConfig struct {
	Enabled   bool     `mapstructure:"enabled"`
	Addresses []string `mapstructure:"addresses"`
	Username  string   `mapstructure:"username"`
	Password  string   `mapstructure:"password"`
	Index     string   `mapstructure:"index"`
}

type RedisConfig struct {
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	LockTTL  int    `mapstructure:"lock_ttl"` // milliseconds
}

// --- Award Processing ---

// AwardsConfig holds the business settings of the processing engine.
type AwardsConfig struct {
	// FiscalYearSuffix overrides the two-digit fiscal year derived from the
	// clock. Leave empty to derive it.
	FiscalYearSuffix     string `mapstructure:"fiscal_year_suffix"`
	PolicyReference      string `mapstructure:"policy_reference"`
	TaxonomyPath         string `mapstructure:"taxonomy_path"`
	RegistryPath         string `mapstructure:"registry_path"`
	MaxCollisionAttempts int    `mapstructure:"max_collision_attempts"`
	ArchiveDriver        string `mapstructure:"archive_driver"` // postgres | sqlite
	ExternalAgency       string `mapstructure:"external_agency"`
	MinFieldCount        int    `mapstructure:"min_field_count"`
	// ManagementOrg names the taxonomy organization whose matched division
	// is reported as the management division.
	ManagementOrg string `mapstructure:"management_org"`
	// MonetaryHold rejects every submission that carries a monetary amount.
	MonetaryHold bool `mapstructure:"monetary_hold"`
	// Consultants maps a funding organization to its HR consultant.
	Consultants map[string]string `mapstructure:"consultants"`
}

// --- Notifications ---

// NotificationConfig holds settings for rejection mail and escalation.
type NotificationConfig struct {
	Region string `mapstructure:"region"`
	SES    struct {
		Enabled   bool   `mapstructure:"enabled"`
		FromEmail string `mapstructure:"from_email"`
		ToEmail   string `mapstructure:"to_email"`
	} `mapstructure:"ses"`
	SNS struct {
		Enabled  bool   `mapstructure:"enabled"`
		TopicARN string `mapstructure:"topic_arn"`
	} `mapstructure:"sns"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Output string `mapstructure:"output"`
}

type MetricsConfig struct {
	Enabled     bool   `mapstructure:"enabled"`
	ServiceName string `mapstructure:"service_name"`
}

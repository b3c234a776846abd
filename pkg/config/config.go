package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// CortexConfig holds the agent API endpoint configuration
type CortexConfig struct {
	Host    string        `mapstructure:"host"`
	APIPath string        `mapstructure:"api_path"`
	Timeout time.Duration `mapstructure:"timeout"`
	Model   string        `mapstructure:"model"`
}

// ResourcesConfig names the semantic models and search service the agent tools are bound to
type ResourcesConfig struct {
	SupplyChainSemanticModel    string `mapstructure:"supply_chain_semantic_model"`
	SupportTicketsSemanticModel string `mapstructure:"support_tickets_semantic_model"`
	SearchService               string `mapstructure:"search_service"`
	SearchTitleColumn           string `mapstructure:"search_title_column"`
	SearchIDColumn              string `mapstructure:"search_id_column"`
}

// AuthConfig holds the credentials used to establish the session
type AuthConfig struct {
	Method         string        `mapstructure:"method"` // keypair or token
	Account        string        `mapstructure:"account"`
	User           string        `mapstructure:"user"`
	PrivateKeyPath string        `mapstructure:"private_key_path"`
	Token          string        `mapstructure:"token"`
	TokenLifetime  time.Duration `mapstructure:"token_lifetime"`
}

// WarehouseConfig selects and configures the query execution backend
type WarehouseConfig struct {
	Driver       string        `mapstructure:"driver"` // snowflake or postgres
	Name         string        `mapstructure:"name"`
	Database     string        `mapstructure:"database"`
	Schema       string        `mapstructure:"schema"`
	Role         string        `mapstructure:"role"`
	DSN          string        `mapstructure:"dsn"`
	Timeout      time.Duration `mapstructure:"timeout"`
	PollInterval time.Duration `mapstructure:"poll_interval"`
}

// ServerConfig holds the HTTP surface configuration
type ServerConfig struct {
	Addr string `mapstructure:"addr"`
}

// LoggingConfig holds logging-related configuration
type LoggingConfig struct {
	LogFile    string `mapstructure:"log_file"`
	Preserve   bool   `mapstructure:"preserve"`
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"`
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
}

// Config represents the application configuration
type Config struct {
	Cortex    CortexConfig    `mapstructure:"cortex"`
	Resources ResourcesConfig `mapstructure:"resources"`
	Auth      AuthConfig      `mapstructure:"auth"`
	Warehouse WarehouseConfig `mapstructure:"warehouse"`
	Server    ServerConfig    `mapstructure:"server"`
	Logging   LoggingConfig   `mapstructure:"logging"`
}

const (
	AuthMethodKeyPair = "keypair"
	AuthMethodToken   = "token"

	DriverSnowflake = "snowflake"
	DriverPostgres  = "postgres"
)

// Global config instance
var cfg *Config

// Get returns the global config instance
func Get() *Config {
	if cfg == nil {
		panic("config not initialized")
	}
	return cfg
}

// Load loads configuration from .env, the settings file and the environment
func Load(cfgFile string) (*Config, error) {
	// A missing .env is normal; the environment may already carry credentials
	_ = godotenv.Load()

	setDefaults()

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to get home directory: %w", err)
		}

		xdgConfigHome := os.Getenv("XDG_CONFIG_HOME")
		if xdgConfigHome == "" {
			xdgConfigHome = filepath.Join(home, ".config")
		}

		viper.AddConfigPath("./.cortex")
		viper.AddConfigPath(filepath.Join(xdgConfigHome, ".cortex"))
		viper.SetConfigType("yaml")
		viper.SetConfigName("settings")
	}

	viper.SetEnvPrefix("CORTEX")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	loaded := &Config{}
	if err := viper.Unmarshal(loaded); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	processDurations(loaded)

	cfg = loaded
	return loaded, nil
}

// setDefaults sets all default configuration values
func setDefaults() {
	viper.SetDefault("cortex.host", "")
	viper.SetDefault("cortex.api_path", "/api/v2/cortex/agent:run")
	viper.SetDefault("cortex.timeout", "50s")
	viper.SetDefault("cortex.model", "llama3.1-70b")

	viper.SetDefault("resources.supply_chain_semantic_model", "@DASH_DB.DASH_SCHEMA.DASH_SEMANTIC_MODELS/supply_chain_semantic_model.yaml")
	viper.SetDefault("resources.support_tickets_semantic_model", "@DASH_DB.DASH_SCHEMA.DASH_SEMANTIC_MODELS/support_tickets_semantic_model.yaml")
	viper.SetDefault("resources.search_service", "DASH_DB.DASH_SCHEMA.VEHICLES_INFO")
	viper.SetDefault("resources.search_title_column", "title")
	viper.SetDefault("resources.search_id_column", "relative_path")

	viper.SetDefault("auth.method", AuthMethodKeyPair)
	viper.SetDefault("auth.account", "")
	viper.SetDefault("auth.user", "")
	viper.SetDefault("auth.private_key_path", "")
	viper.SetDefault("auth.token", "")
	viper.SetDefault("auth.token_lifetime", "59m")

	viper.SetDefault("warehouse.driver", DriverSnowflake)
	viper.SetDefault("warehouse.name", "COMPUTE_WH")
	viper.SetDefault("warehouse.database", "")
	viper.SetDefault("warehouse.schema", "")
	viper.SetDefault("warehouse.role", "")
	viper.SetDefault("warehouse.dsn", "")
	viper.SetDefault("warehouse.timeout", "60s")
	viper.SetDefault("warehouse.poll_interval", "500ms")

	viper.SetDefault("server.addr", ":8080")

	viper.SetDefault("logging.log_file", "./.cortex/system.log")
	viper.SetDefault("logging.preserve", false)
	viper.SetDefault("logging.level", "info")
	viper.SetDefault("logging.format", "console")
	viper.SetDefault("logging.max_size_mb", 10)
	viper.SetDefault("logging.max_backups", 3)
}

// processDurations fills durations that were explicitly zeroed
func processDurations(c *Config) {
	if c.Cortex.Timeout <= 0 {
		c.Cortex.Timeout = 50 * time.Second
	}
	if c.Auth.TokenLifetime <= 0 {
		c.Auth.TokenLifetime = 59 * time.Minute
	}
	if c.Warehouse.Timeout <= 0 {
		c.Warehouse.Timeout = 60 * time.Second
	}
	if c.Warehouse.PollInterval <= 0 {
		c.Warehouse.PollInterval = 500 * time.Millisecond
	}
}

// Validate reports configuration that would make every remote call fail
func (c *Config) Validate() error {
	var problems []string

	if c.Cortex.Host == "" {
		problems = append(problems, "cortex.host is required")
	}
	if c.Cortex.APIPath == "" {
		problems = append(problems, "cortex.api_path is required")
	}

	switch c.Auth.Method {
	case AuthMethodKeyPair:
		if c.Auth.Account == "" || c.Auth.User == "" {
			problems = append(problems, "auth.account and auth.user are required for keypair auth")
		}
		if c.Auth.PrivateKeyPath == "" {
			problems = append(problems, "auth.private_key_path is required for keypair auth")
		}
	case AuthMethodToken:
		if c.Auth.Token == "" {
			problems = append(problems, "auth.token is required for token auth")
		}
	default:
		problems = append(problems, fmt.Sprintf("unknown auth.method %q", c.Auth.Method))
	}

	switch c.Warehouse.Driver {
	case DriverSnowflake:
	case DriverPostgres:
		if c.Warehouse.DSN == "" {
			problems = append(problems, "warehouse.dsn is required for the postgres driver")
		}
	default:
		problems = append(problems, fmt.Sprintf("unknown warehouse.driver %q", c.Warehouse.Driver))
	}

	if len(problems) > 0 {
		return fmt.Errorf("invalid configuration: %s", strings.Join(problems, "; "))
	}
	return nil
}

// BaseURL returns the account URL; a bare host is served over https
func (c *Config) BaseURL() string {
	base := c.Cortex.Host
	if !strings.Contains(base, "://") {
		base = "https://" + base
	}
	return strings.TrimRight(base, "/")
}

// AgentURL returns the full agent:run endpoint URL
func (c *Config) AgentURL() string {
	return c.BaseURL() + "/" + strings.TrimPrefix(c.Cortex.APIPath, "/")
}

// GetConfigFileUsed returns the path to the config file being used
func GetConfigFileUsed() string {
	return viper.ConfigFileUsed()
}

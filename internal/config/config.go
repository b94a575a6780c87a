package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

type Config struct {
	API      APIConfig      `mapstructure:"api"`
	Server   ServerConfig   `mapstructure:"server"`
	Search   SearchConfig   `mapstructure:"search"`
	Extract  ExtractConfig  `mapstructure:"extract"`
	Readable ReadableConfig `mapstructure:"readable"`
	Logging  LoggingConfig  `mapstructure:"logging"`
}

type APIConfig struct {
	Key     string `mapstructure:"key"`
	BaseURL string `mapstructure:"base_url"`
	Timeout int    `mapstructure:"timeout"`
}

type ServerConfig struct {
	Transport string `mapstructure:"transport"`
	Port      int    `mapstructure:"port"`
}

type SearchConfig struct {
	MaxResults        int `mapstructure:"max_results"`
	MaxCharsPerResult int `mapstructure:"max_chars_per_result"`
}

type ExtractConfig struct {
	Excerpts    bool `mapstructure:"excerpts"`
	FullContent bool `mapstructure:"full_content"`
}

type ReadableConfig struct {
	Timeout          int    `mapstructure:"timeout"`
	UserAgent        string `mapstructure:"user_agent"`
	MinContentLength int    `mapstructure:"min_content_length"`
}

type LoggingConfig struct {
	Level string `mapstructure:"level"`
}

func Default() *Config {
	return &Config{
		API: APIConfig{
			Key:     "",
			BaseURL: "https://api.parallel.ai/v1beta",
			Timeout: 60,
		},
		Server: ServerConfig{
			Transport: "stdio",
			Port:      8080,
		},
		Search: SearchConfig{
			MaxResults:        10,
			MaxCharsPerResult: 10000,
		},
		Extract: ExtractConfig{
			Excerpts:    true,
			FullContent: false,
		},
		Readable: ReadableConfig{
			Timeout:          30,
			UserAgent:        "",
			MinContentLength: 100,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

func Load(configFile string) (*Config, error) {
	cfg := Default()

	if configFile != "" {
		viper.SetConfigFile(configFile)
	} else {
		configHome := os.Getenv("XDG_CONFIG_HOME")
		if configHome == "" {
			home, err := os.UserHomeDir()
			if err != nil {
				return cfg, fmt.Errorf("error finding home directory: %w", err)
			}
			configHome = filepath.Join(home, ".config")
		}

		configDir := filepath.Join(configHome, "parsearch")
		viper.AddConfigPath(configDir)
		viper.SetConfigType("toml")
		viper.SetConfigName("config")
	}

	viper.AutomaticEnv()
	viper.SetEnvPrefix("PARSEARCH")

	if err := viper.ReadInConfig(); err != nil {
		// Config file not found is not an error, we'll use defaults
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return cfg, fmt.Errorf("error reading config file: %w", err)
		}
	}

	if err := viper.Unmarshal(cfg); err != nil {
		return cfg, fmt.Errorf("error unmarshaling config: %w", err)
	}

	return cfg, nil
}

func (c *Config) CreateExampleConfig(configPath string) error {
	configDir := filepath.Dir(configPath)
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return fmt.Errorf("error creating config directory: %w", err)
	}

	exampleContent := `# parsearch configuration file

[api]
# Parallel API key. Leave empty to use the PARALLEL_API_KEY environment
# variable (recommended).
key = ""
base_url = "https://api.parallel.ai/v1beta"
timeout = 60              # seconds

[server]
# MCP transport for 'parsearch serve'
transport = "stdio"       # stdio, http
port = 8080               # used by the http transport

[search]
max_results = 10          # results per query
max_chars_per_result = 10000

[extract]
excerpts = true           # focused passages aligned with the objective
full_content = false      # complete page content as markdown

[readable]
# Local, credential-free extraction ('parsearch readable')
timeout = 30              # seconds
user_agent = ""           # custom user agent (empty = rotating default)
min_content_length = 100  # minimum HTML length to attempt extraction

[logging]
level = "info"            # debug, info, warn, error
`

	return os.WriteFile(configPath, []byte(exampleContent), 0644)
}

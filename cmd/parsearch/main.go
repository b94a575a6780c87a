package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/tsion/parallel-search-mcp/internal/config"
	"github.com/tsion/parallel-search-mcp/internal/mcpserver"
	"github.com/tsion/parallel-search-mcp/internal/parallel"
	"github.com/tsion/parallel-search-mcp/internal/readable"
)

// Exit codes for granular error handling
const (
	ExitSuccess      = 0
	ExitNetworkError = 1
	ExitProcessError = 2
	ExitInvalidInput = 3
	ExitConfigError  = 4
)

var (
	cfgFile string
	apiKey  string
	verbose bool
	quiet   bool

	// serve flags
	transport string
	port      int

	// search flags
	objective  string
	maxResults int
	maxChars   int

	// extract flags
	excerpts    bool
	fullContent bool

	// readable flags
	outputFormat string
	timeout      int
	userAgent    string
)

const version = "1.0.0"

var rootCmd = &cobra.Command{
	Use:   "parsearch",
	Short: "Parallel Web Search and Extract, as an MCP server and CLI",
	Long: `parsearch exposes Parallel's Search and Extract APIs (https://docs.parallel.ai)
as MCP tools, and as direct CLI commands for one-off calls.

An API key is required for the search and extract commands, via --api-key
or the PARALLEL_API_KEY environment variable.`,
	Version:       version,
	SilenceErrors: true,
	SilenceUsage:  true,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		if exitErr, ok := err.(*exitErr); ok {
			os.Exit(exitErr.code)
		}
		os.Exit(ExitInvalidInput)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: $XDG_CONFIG_HOME/parsearch/config.toml)")
	rootCmd.PersistentFlags().StringVar(&apiKey, "api-key", "", "Parallel API key (default: PARALLEL_API_KEY env)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose logging")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "suppress all non-content output")

	serveCmd.Flags().StringVar(&transport, "transport", "", "MCP transport (stdio|http)")
	serveCmd.Flags().IntVar(&port, "port", 0, "port for the http transport")

	searchCmd.Flags().StringVar(&objective, "objective", "", "objective to guide result relevance")
	searchCmd.Flags().IntVar(&maxResults, "max-results", 0, "maximum results per query")
	searchCmd.Flags().IntVar(&maxChars, "max-chars", 0, "maximum characters per result excerpt")

	extractCmd.Flags().StringVar(&objective, "objective", "", "what content to extract")
	extractCmd.Flags().BoolVar(&excerpts, "excerpts", true, "return focused passages aligned with the objective")
	extractCmd.Flags().BoolVar(&fullContent, "full-content", false, "return complete page content as markdown")

	readableCmd.Flags().StringVar(&outputFormat, "format", "text", "output format (text|markdown)")
	readableCmd.Flags().IntVar(&timeout, "timeout", 0, "request timeout in seconds")
	readableCmd.Flags().StringVar(&userAgent, "user-agent", "", "custom user agent string")

	rootCmd.AddCommand(serveCmd, searchCmd, extractCmd, readableCmd)
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		configHome := os.Getenv("XDG_CONFIG_HOME")
		if configHome == "" {
			home, err := os.UserHomeDir()
			if err != nil {
				if !quiet {
					fmt.Fprintf(os.Stderr, "Error finding home directory: %v\n", err)
				}
				return
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
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			// Auto-create config on first run
			configPath := getDefaultConfigPath()
			if configPath != "" && cfgFile == "" {
				cfg := config.Default()
				if createErr := cfg.CreateExampleConfig(configPath); createErr == nil {
					if verbose && !quiet {
						fmt.Fprintf(os.Stderr, "Created config file: %s\n", configPath)
					}
					viper.ReadInConfig()
				}
			}
		} else if verbose && !quiet {
			fmt.Fprintf(os.Stderr, "Error reading config: %v\n", err)
		}
	} else if verbose && !quiet {
		fmt.Fprintf(os.Stderr, "Using config file: %s\n", viper.ConfigFileUsed())
	}
}

func getDefaultConfigPath() string {
	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		configHome = filepath.Join(home, ".config")
	}
	return filepath.Join(configHome, "parsearch", "config.toml")
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the MCP tool server",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(cfgFile)
		if err != nil {
			return exitError(ExitConfigError, "failed to load config: %v", err)
		}
		if !cmd.Flags().Changed("transport") {
			transport = cfg.Server.Transport
		}
		if !cmd.Flags().Changed("port") {
			port = cfg.Server.Port
		}

		srv := mcpserver.New(newClient(cfg), cfg, newLogger(cfg))

		switch transport {
		case "stdio", "":
			err = srv.ServeStdio()
		case "http":
			err = srv.ServeHTTP(port)
		default:
			return exitError(ExitInvalidInput, "unknown transport %q (expected stdio or http)", transport)
		}
		if err != nil {
			return exitError(ExitProcessError, "server error: %v", err)
		}
		return nil
	},
}

var searchCmd = &cobra.Command{
	Use:   "search <query>...",
	Short: "Search the web using Parallel's Search API",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(cfgFile)
		if err != nil {
			return exitError(ExitConfigError, "failed to load config: %v", err)
		}
		if !cmd.Flags().Changed("max-results") {
			maxResults = cfg.Search.MaxResults
		}
		if !cmd.Flags().Changed("max-chars") {
			maxChars = cfg.Search.MaxCharsPerResult
		}

		opts := parallel.SearchOptions{
			Objective:         objective,
			MaxResults:        maxResults,
			MaxCharsPerResult: maxChars,
		}

		responses, err := newClient(cfg).Search(cmd.Context(), args, opts)
		if err != nil {
			return adapterError(err)
		}
		return printJSON(responses)
	},
}

var extractCmd = &cobra.Command{
	Use:   "extract <url>...",
	Short: "Extract content from URLs using Parallel's Extract API",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(cfgFile)
		if err != nil {
			return exitError(ExitConfigError, "failed to load config: %v", err)
		}
		if !cmd.Flags().Changed("excerpts") {
			excerpts = cfg.Extract.Excerpts
		}
		if !cmd.Flags().Changed("full-content") {
			fullContent = cfg.Extract.FullContent
		}

		opts := parallel.ExtractOptions{
			Objective:   objective,
			Excerpts:    &excerpts,
			FullContent: fullContent,
		}

		resp, err := newClient(cfg).Extract(cmd.Context(), args, opts)
		if err != nil {
			return adapterError(err)
		}
		return printJSON(resp)
	},
}

var readableCmd = &cobra.Command{
	Use:   "readable <url>",
	Short: "Extract page content locally, without an API key",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(cfgFile)
		if err != nil {
			return exitError(ExitConfigError, "failed to load config: %v", err)
		}
		if !cmd.Flags().Changed("timeout") {
			timeout = cfg.Readable.Timeout
		}
		if !cmd.Flags().Changed("user-agent") {
			userAgent = cfg.Readable.UserAgent
		}
		if timeout <= 0 {
			timeout = 30
		}

		ctx, cancel := context.WithTimeout(cmd.Context(), time.Duration(timeout)*time.Second)
		defer cancel()

		e := readable.New(time.Duration(timeout) * time.Second)
		result, err := e.Extract(ctx, args[0], readable.Options{
			Format:           outputFormat,
			UserAgent:        userAgent,
			MinContentLength: cfg.Readable.MinContentLength,
		})
		if err != nil {
			return exitError(ExitNetworkError, "failed to extract %s: %v", args[0], err)
		}

		fmt.Println(result.Content)
		return nil
	},
}

// newClient builds the API client from flags, environment, and config, in
// that order of precedence.
func newClient(cfg *config.Config) *parallel.Client {
	key := apiKey
	if key == "" && os.Getenv(parallel.EnvAPIKey) == "" {
		key = cfg.API.Key
	}
	client := parallel.NewClient(key)
	if cfg.API.BaseURL != "" {
		client.BaseURL = cfg.API.BaseURL
	}
	return client
}

func newLogger(cfg *config.Config) *slog.Logger {
	level := slog.LevelInfo
	switch strings.ToLower(cfg.Logging.Level) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}
	if verbose {
		level = slog.LevelDebug
	}
	if quiet {
		level = slog.LevelError
	}
	// Logs go to stderr; stdout belongs to the stdio MCP transport.
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// adapterError maps client errors onto exit codes: missing credential is a
// configuration error, everything else is a network-level failure.
func adapterError(err error) error {
	if errors.Is(err, parallel.ErrNoAPIKey) {
		return exitError(ExitConfigError, "%v", err)
	}
	return exitError(ExitNetworkError, "%v", err)
}

func printJSON(v any) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return exitError(ExitProcessError, "failed to encode result: %v", err)
	}
	fmt.Println(string(b))
	return nil
}

type exitErr struct {
	code int
	msg  string
}

func (e *exitErr) Error() string {
	return e.msg
}

func exitError(code int, format string, args ...interface{}) *exitErr {
	msg := fmt.Sprintf(format, args...)
	if msg != "" && !quiet {
		fmt.Fprintf(os.Stderr, "%s\n", msg)
	}
	return &exitErr{code: code, msg: msg}
}

package cli

import (
	"context"
	"fmt"

	"github.com/harun/plyght/internal/config"
	"github.com/harun/plyght/internal/logger"
	"github.com/harun/plyght/internal/observability"
	"github.com/harun/plyght/pkg/plyght"
	"github.com/spf13/cobra"
)

const version = "0.1.0"

var (
	cfgFile     string
	logLevel    string
	address     string
	metricsAddr string

	appConfig *config.Config
	appLogger *logger.Logger
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "plyght",
	Short: "Plyght - stream plots to a Plyght plotting server",
	Long: `Plyght sends plotting commands as line-delimited text tokens to a
Plyght plotting server listening on 127.0.0.1:41410. It can render figure
files, replay the bundled demo, and capture token streams for inspection.`,
	Version:            version,
	SilenceUsage:       true,
	PersistentPreRunE:  setup,
	PersistentPostRunE: teardown,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.plyght/plyght.json)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (trace, debug, info, warn, error, disabled)")
	rootCmd.PersistentFlags().StringVar(&address, "address", "", "plotting server address (default 127.0.0.1:41410)")
	rootCmd.PersistentFlags().StringVar(&metricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address")

	// Version template
	rootCmd.SetVersionTemplate(`{{with .Name}}{{printf "%s " .}}{{end}}{{printf "version %s" .Version}}
`)
}

// setup loads configuration, applies flag overrides and installs the logger.
func setup(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return err
	}

	if logLevel != "" {
		cfg.Logging.Level = logLevel
	}
	if address != "" {
		cfg.Server.Address = address
	}
	if metricsAddr != "" {
		cfg.Metrics.Address = metricsAddr
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	l, err := logger.New(logger.Config{
		Level:   cfg.Logging.Level,
		File:    cfg.Logging.File,
		Console: cfg.Logging.Console,
		Pretty:  cfg.Logging.Pretty,
		Out:     cmd.ErrOrStderr(),
	})
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	appConfig = cfg
	appLogger = l
	l.Debug().Str("address", cfg.Server.Address).Str("level", cfg.Logging.Level).Msg("Configuration loaded")

	if cfg.Metrics.Address != "" {
		go func() {
			if err := observability.ServeMetrics(cmd.Context(), cfg.Metrics.Address); err != nil {
				l.Error().Err(err).Msg("Metrics endpoint failed")
			}
		}()
	}

	return nil
}

func teardown(cmd *cobra.Command, args []string) error {
	if appLogger != nil {
		return appLogger.Close()
	}
	return nil
}

// newSession builds a session for the configured server address.
func newSession() *plyght.Session {
	cfg := plyght.DefaultConfig()
	if appConfig != nil {
		cfg.Address = appConfig.Server.Address
	}
	if appLogger != nil {
		l := appLogger.With().Str("component", "session").Logger()
		cfg.Logger = &l
	}
	return plyght.New(cfg)
}

// GetRootCmd returns the root command for testing
func GetRootCmd() *cobra.Command {
	return rootCmd
}

// GetVersion returns the current version
func GetVersion() string {
	return version
}

package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/existflow/scic/internal/config"
	"github.com/existflow/scic/internal/logger"
)

var (
	configPath string
	apiURL     string
	storeFlag  string
	logLevel   string
	logFile    string
	logConsole bool
	jsonOutput bool
)

// cfg is loaded once per invocation by PersistentPreRunE
var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "scic",
	Short: "SCIC 2025 - competition operator console",
	Long: `scic manages the Sinh viên với Ý tưởng Khởi nghiệp competition backend:
review submissions, publish news and moderate the team finder.

Run 'scic' without arguments to open the admin dashboard.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := config.LoadDotEnv(); err != nil {
			return err
		}

		loaded, err := config.Load(configPath)
		if err != nil {
			logger.Warn("Failed to load config, using defaults", logger.F("error", err))
			loaded = config.DefaultConfig()
		}

		// Override with CLI flags if provided
		if cmd.Flags().Changed("api-url") {
			loaded.API.BaseURL = apiURL
		}
		if cmd.Flags().Changed("store") {
			loaded.Storage.Driver = storeFlag
		}
		if cmd.Flags().Changed("log-level") {
			loaded.LogLevel = logLevel
		}
		if cmd.Flags().Changed("log-file") {
			loaded.LogFile = logFile
		}
		if cmd.Flags().Changed("log-console") {
			loaded.LogConsole = logConsole
		}

		if err := loaded.Validate(); err != nil {
			return fmt.Errorf("invalid config: %w", err)
		}
		cfg = loaded

		logConfig := logger.Config{
			Level:      logger.ParseLevel(cfg.LogLevel),
			FilePath:   cfg.LogFile,
			MaxSize:    10 * 1024 * 1024, // 10MB
			MaxAge:     7,
			MaxBackups: 5,
			Console:    cfg.LogConsole,
		}

		if err := logger.Init(logConfig); err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}

		logger.Info("scic started", logger.F("command", cmd.CommandPath()), logger.F("env", cfg.Env))
		return nil
	},
	RunE: runDashboard,
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		logger.Info("scic exiting", logger.F("command", cmd.CommandPath()))
	},
}

// Execute runs the root command and prints a readable message on failure
func Execute() error {
	err := rootCmd.Execute()
	if err != nil {
		fmt.Fprintln(rootCmd.ErrOrStderr(), describeError(err))
		logger.Error("Command failed", logger.F("error", err))
	}
	_ = logger.Close()
	return err
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file (default ~/.scic/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&apiURL, "api-url", "", "Backend base URL")
	rootCmd.PersistentFlags().StringVar(&storeFlag, "store", "", "Session store (memory, file, sqlite, postgres, redis)")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Print results as JSON")

	// Add logging flags
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level (DEBUG, INFO, WARN, ERROR)")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "", "Path to log file")
	rootCmd.PersistentFlags().BoolVar(&logConsole, "log-console", false, "Enable console logging")

	// Add subcommands
	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(logoutCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(submissionsCmd)
	rootCmd.AddCommand(postsCmd)
	rootCmd.AddCommand(connectCmd)
	rootCmd.AddCommand(submitCmd)
	rootCmd.AddCommand(registerCmd)
	rootCmd.AddCommand(newsCmd)
	rootCmd.AddCommand(dashboardCmd)
}

// Package cmd provides the command-line interface of vertextester.
package cmd

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"vertextester/internal/application/common/slogger"
	"vertextester/internal/config"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const envPrefix = "VERTEXTESTER"

var (
	cfgFile string
	// cfgFileUsed is the absolute path of the config file actually read, if any.
	cfgFileUsed string
	cfg         *config.Config
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = newRootCmd()

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "vertextester",
		Short: "Generate unit tests for source files with Gemini",
		Long: `vertextester generates unit tests for Python, Java, JavaScript and TypeScript
source files.

The generate command launches one independent analyzer process per selected
file. Each analyzer extracts the file's functions and methods with tree-sitter
and streams a test file from a Gemini model into the output directory.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return initConfig(cmd)
		},
	}

	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ./configs/config.yaml)")
	cmd.PersistentFlags().String("log-level", "info", "Log level (debug, info, warn, error)")
	cmd.PersistentFlags().String("log-format", "text", "Log format (json, text)")

	return cmd
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() { //nolint:gochecknoinits // Standard Cobra CLI pattern for command registration
	addCommands(rootCmd)
}

func addCommands(root *cobra.Command) {
	root.AddCommand(newGenerateCmd())
	root.AddCommand(newAnalyzeCmd())
	root.AddCommand(newConfigCmd())
	root.AddCommand(newVersionCmd())
}

// initConfig loads .env, the config file, the environment and the flags, in
// increasing precedence, then configures the global logger.
func initConfig(cmd *cobra.Command) error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to load .env: %w", err)
	}

	v := viper.New()
	config.SetDefaults(v)

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("./configs")
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	used := ""
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return fmt.Errorf("error reading config file: %w", err)
		}
	} else if used, err = filepath.Abs(v.ConfigFileUsed()); err != nil {
		return fmt.Errorf("invalid config file path: %w", err)
	}

	flags := cmd.Root().PersistentFlags()
	if err := v.BindPFlag("log.level", flags.Lookup("log-level")); err != nil {
		return err
	}
	if err := v.BindPFlag("log.format", flags.Lookup("log-format")); err != nil {
		return err
	}

	loaded, err := config.Load(v)
	if err != nil {
		return err
	}
	if err := slogger.Configure(loaded.Log.Level, strings.ToLower(loaded.Log.Format)); err != nil {
		return fmt.Errorf("failed to configure logging: %w", err)
	}

	cfg = loaded
	cfgFileUsed = used
	return nil
}

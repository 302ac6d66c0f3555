package main

import (
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/jackzampolin/langsheet/internal/api"
	"github.com/jackzampolin/langsheet/internal/config"
	"github.com/jackzampolin/langsheet/internal/home"
	"github.com/jackzampolin/langsheet/internal/logging"
	"github.com/jackzampolin/langsheet/version"
)

var (
	cfgFile      string
	homeDir      string
	outputFormat string
)

var rootCmd = &cobra.Command{
	Use:   "langsheet",
	Short: "Convert localization spreadsheets into per-language JSON",
	Long: `Langsheet turns a folder of per-language rules spreadsheets into one
JSON document per language, bundled together and named after the game.

Each spreadsheet is split into segments at its bold rows (or at rows you
mark as headers), segment headers are mapped to output keys, and every
language is built with the same keys in the same order.

Work interactively through the session API (langsheet serve, langsheet api)
or in one shot with a saved profile (langsheet convert).`,
	Version:      version.GitRelease,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(
		&cfgFile, "config", "", "config file (default: ./config.yaml or ~/.langsheet/config.yaml)",
	)
	rootCmd.PersistentFlags().StringVar(
		&homeDir, "home", "", "langsheet home directory (default: ~/.langsheet)",
	)
	rootCmd.PersistentFlags().StringVarP(
		&outputFormat, "output", "o", "yaml", "output format: yaml, json or text",
	)

	// Set output format before any command runs
	rootCmd.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		api.SetOutputFormat(outputFormat)
	}

	rootCmd.AddCommand(versionCmd)
}

// env is what local commands share: home, config and a logger.
type env struct {
	home   *home.Dir
	config *config.Manager
	logger *slog.Logger
	closer io.Closer
}

func (e *env) Close() error { return e.closer.Close() }

// loadEnv resolves the home directory and config. When logFile is true and
// no log file is configured, logs also go to the home log file.
func loadEnv(logFile bool) (*env, error) {
	h, err := home.New(homeDir)
	if err != nil {
		return nil, err
	}
	mgr, err := config.NewManager(cfgFile, h.Path())
	if err != nil {
		return nil, err
	}

	logCfg := mgr.Get().Log
	if logFile && logCfg.File == "" {
		if err := h.EnsureExists(); err != nil {
			return nil, err
		}
		logCfg.File = h.LogPath()
	}
	logger, closer, err := logging.New(logCfg, os.Stderr)
	if err != nil {
		return nil, err
	}
	slog.SetDefault(logger)
	if f := mgr.ConfigFile(); f != "" {
		logger.Debug("using config file", "path", f)
	}

	return &env{home: h, config: mgr, logger: logger, closer: closer}, nil
}

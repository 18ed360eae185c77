package main

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/soilextract/soilextract/internal/config"
	"github.com/soilextract/soilextract/internal/home"
	"github.com/soilextract/soilextract/internal/output"
	"github.com/soilextract/soilextract/version"
)

var (
	cfgFile      string
	homeDir      string
	outputFormat string
	logLevel     string
)

var rootCmd = &cobra.Command{
	Use:   "soilextract",
	Short: "Extract structured data from soil analysis report PDFs",
	Long: `soilextract turns soil analysis report PDFs into structured data.

Each page is rendered to an image and sent, together with an instruction
prompt, to a vision-capable chat-completions model. The JSON block in the
model's reply is validated against a fixed report schema:
  - report number and sampled date
  - per-sample lime, crop, pH, fertilizer and nutrient index values
  - optional additional test results (HM%, W/V, CEC, Mn-I, Zn-I, Cu-I, S-I)`,
	Version:       version.GitRelease,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(
		&cfgFile, "config", "", "config file (default: ./config.yaml or ~/.soilextract/config.yaml)",
	)
	rootCmd.PersistentFlags().StringVar(
		&homeDir, "home", "", "soilextract home directory (default: ~/.soilextract)",
	)
	rootCmd.PersistentFlags().StringVarP(
		&outputFormat, "output", "o", "yaml", "output format: yaml or json",
	)
	rootCmd.PersistentFlags().StringVar(
		&logLevel, "log-level", "", "log level override: debug, info, warn or error",
	)

	// Set output format before any command runs
	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		_, err := output.ParseFormat(outputFormat)
		if err != nil {
			return err
		}
		output.SetFormat(outputFormat)
		return nil
	}

	rootCmd.AddCommand(versionCmd)
}

// loadConfig loads .env files, then the config file, and builds the logger.
// Variables already in the environment win over .env values.
func loadConfig() (*config.Manager, *home.Dir, *slog.Logger, error) {
	h, err := home.New(homeDir)
	if err != nil {
		return nil, nil, nil, err
	}
	if err := config.LoadEnvFile(".env"); err != nil {
		return nil, nil, nil, err
	}
	if err := config.LoadEnvFile(h.EnvPath()); err != nil {
		return nil, nil, nil, err
	}

	mgr, err := config.NewManager(cfgFile, h.Path())
	if err != nil {
		return nil, nil, nil, err
	}

	cfg := mgr.Get()
	level := cfg.Level()
	if logLevel != "" {
		level = (&config.Config{LogLevel: logLevel}).Level()
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	mgr.SetLogger(logger)
	if f := mgr.ConfigFile(); f != "" {
		logger.Debug("config.loaded", "file", f)
	}

	return mgr, h, logger, nil
}

package main

import (
	"errors"
	"io/fs"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/san-kum/sdofsim/internal/config"
	"github.com/san-kum/sdofsim/internal/experiment"
	"github.com/san-kum/sdofsim/internal/logging"
	"github.com/san-kum/sdofsim/internal/storage"
	"github.com/san-kum/sdofsim/internal/viz"
)

// Environment variables read after .env is loaded. Flags win over them.
const (
	envDataDir  = "SDOFSIM_DATA"
	envLogLevel = "SDOFSIM_LOG_LEVEL"
	envTheme    = "SDOFSIM_THEME"
)

var (
	dataDir    string
	configFile string
	preset     string
	logLevel   string
	theme      string
	saveRun    bool
	noPlot     bool

	logger   logging.Logger = logging.NewDefaultLogger()
	registry                = experiment.NewRegistry()
)

// main registers the commands and runs the root command, exiting with
// status 1 when it fails.
func main() {
	rootCmd := &cobra.Command{
		Use:               "sdofsim",
		Short:             "single degree of freedom vibration analysis",
		SilenceUsage:      true,
		PersistentPreRunE: setup,
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&dataDir, "data", ".sdofsim", "data directory for saved runs")
	pf.StringVar(&configFile, "config", "", "analysis file (yaml)")
	pf.StringVar(&preset, "preset", "", "start from a named preset")
	pf.StringVar(&logLevel, "log-level", "", "debug, info, warn or error")
	pf.StringVar(&theme, "theme", "", "output theme")

	rootCmd.AddCommand(analysisCommands()...)
	rootCmd.AddCommand(modalCmd(), presetsCmd(), initCmd())
	rootCmd.AddCommand(listCmd(), showCmd(), plotCmd(), analyzeCmd(), phaseCmd(), exportCmd())
	rootCmd.AddCommand(exportCSVCmd(), exportJSONCmd())
	rootCmd.AddCommand(batchCmd(), sweepCmd(), monteCarloCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// setup loads .env, then applies environment defaults for flags that were
// not given, then configures logging and theme.
func setup(cmd *cobra.Command, _ []string) error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}

	flags := cmd.Flags()
	fromEnv := func(flag, env string, dst *string) {
		if v := os.Getenv(env); v != "" && !flags.Changed(flag) {
			*dst = v
		}
	}
	fromEnv("data", envDataDir, &dataDir)
	fromEnv("log-level", envLogLevel, &logLevel)
	fromEnv("theme", envTheme, &theme)

	if theme != "" {
		viz.SetTheme(theme)
	}
	logging.SetGlobalLogger(logger)
	if logLevel != "" {
		level, err := logging.ParseLevel(logLevel)
		if err != nil {
			return err
		}
		logger.SetLevel(level)
	}
	return nil
}

func openStore() (*storage.Store, error) {
	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return nil, err
	}
	return st, nil
}

// baseConfig is the preset (or the defaults) with the --config file laid
// over it.
func baseConfig() (*config.Config, error) {
	cfg := config.DefaultConfig()
	if preset != "" {
		if cfg = config.GetPreset(preset); cfg == nil {
			return nil, errors.New("unknown preset: " + preset)
		}
	}
	if configFile != "" {
		data, err := os.ReadFile(configFile)
		if err != nil {
			return nil, err
		}
		if err := cfg.Apply(data); err != nil {
			return nil, err
		}
	}
	if cfg.LogLevel != "" && logLevel == "" {
		level, err := logging.ParseLevel(cfg.LogLevel)
		if err != nil {
			return nil, err
		}
		logger.SetLevel(level)
	}
	return cfg, nil
}

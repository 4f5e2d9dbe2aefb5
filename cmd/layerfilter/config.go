package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// cliConfig holds the settings shared by all commands.
type cliConfig struct {
	LogLevel             string        `mapstructure:"log_level"`
	Address              string        `mapstructure:"address"`
	Token                string        `mapstructure:"token"`
	IDColumn             string        `mapstructure:"id_column"`
	MaxConcurrentFetches int           `mapstructure:"max_concurrent_fetches"`
	FetchTimeout         time.Duration `mapstructure:"fetch_timeout"`
	MaxPasses            int           `mapstructure:"max_passes"`
	Listen               string        `mapstructure:"listen"`
	Features             string        `mapstructure:"features"`
	Tokens               []string      `mapstructure:"tokens"`
	MaxMessageSize       int           `mapstructure:"max_message_size"`
}

// loadConfig merges flags of cmd, LAYERFILTER_* environment variables and
// the optional config file.
func loadConfig(cmd *cobra.Command) (*cliConfig, error) {
	v := viper.New()
	v.SetEnvPrefix("LAYERFILTER")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	var bindErr error
	cmd.Flags().VisitAll(func(f *pflag.Flag) {
		if bindErr == nil {
			bindErr = v.BindPFlag(strings.ReplaceAll(f.Name, "-", "_"), f)
		}
	})
	if bindErr != nil {
		return nil, fmt.Errorf("error binding flags: %w", bindErr)
	}

	if configFile != "" {
		v.SetConfigFile(configFile)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("error reading config file %s: %w", configFile, err)
		}
	}

	var cfg cliConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	return &cfg, nil
}

func newLogger(level string) (*slog.Logger, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(level)); err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: l})), nil
}

// readInput reads the named file, or stdin for "" and "-".
func readInput(cmd *cobra.Command, args []string) ([]byte, error) {
	if len(args) == 0 || args[0] == "-" {
		return io.ReadAll(cmd.InOrStdin())
	}
	data, err := os.ReadFile(args[0])
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("input file not found: %s", args[0])
	}
	return data, err
}

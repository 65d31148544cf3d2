// Package config merges flags, environment variables, and an optional
// config file into the CLI's runtime settings, following the precedence
// flags > env > file > default the rest of the pack uses.
package config

import (
	"fmt"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Config holds every setting the clmmsim CLI reads, regardless of which
// subcommand is running; a subcommand reads only the fields it needs.
type Config struct {
	SqliteDSN    string
	LogLevel     string
	Token0Symbol string
	Token1Symbol string
	FeePips      uint32
	TickSpacing  int
	EventsPath   string
	EventsFormat string
}

// Load merges an optional config file, CLMMSIM_-prefixed environment
// variables, and flags into Config.
func Load(cfgFile string, flags *pflag.FlagSet) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("CLMMSIM")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	v.SetDefault("sqlite-dsn", "./clmmsim.db")
	v.SetDefault("log-level", "info")
	v.SetDefault("token0-symbol", "USDC")
	v.SetDefault("token1-symbol", "WETH")
	v.SetDefault("fee-pips", uint32(3000))
	v.SetDefault("tick-spacing", 60)
	v.SetDefault("events-format", "json")

	if flags != nil {
		if err := v.BindPFlags(flags); err != nil {
			return Config{}, fmt.Errorf("config: bind flags: %w", err)
		}
	}

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("config: read %s: %w", cfgFile, err)
		}
	} else {
		v.SetConfigName("clmmsim")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return Config{}, fmt.Errorf("config: read config file: %w", err)
			}
		}
	}

	return Config{
		SqliteDSN:    v.GetString("sqlite-dsn"),
		LogLevel:     v.GetString("log-level"),
		Token0Symbol: v.GetString("token0-symbol"),
		Token1Symbol: v.GetString("token1-symbol"),
		FeePips:      uint32(v.GetUint("fee-pips")),
		TickSpacing:  v.GetInt("tick-spacing"),
		EventsPath:   v.GetString("events-path"),
		EventsFormat: v.GetString("events-format"),
	}, nil
}

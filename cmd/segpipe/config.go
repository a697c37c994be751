package main

import (
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const envPrefix = "SEGPIPE"

// loadConfig merges, by precedence, the command flags set on the command line,
// SEGPIPE_* environment variables, the --config file and the flag defaults.
func loadConfig(cmd *cobra.Command) (*viper.Viper, error) {
	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if err := v.BindPFlags(cmd.Flags()); err != nil {
		return nil, errors.Wrap(err, "bind flags")
	}
	if rootFlags.config != "" {
		v.SetConfigFile(rootFlags.config)
		if err := v.ReadInConfig(); err != nil {
			return nil, errors.Wrap(err, "failed to load config")
		}
	}
	return v, nil
}

func requireString(v *viper.Viper, key string) (string, error) {
	s := v.GetString(key)
	if s == "" {
		return "", errors.Errorf("--%s is required", key)
	}
	return s, nil
}

func nonNegative(v *viper.Viper, key string) (uint64, error) {
	n := v.GetInt64(key)
	if n < 0 {
		return 0, errors.Errorf("--%s must not be negative", key)
	}
	return uint64(n), nil
}

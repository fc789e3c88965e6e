// Package config registers every setting with viper. Values come, in order of
// precedence, from flags, SCRUBLINE_* variables, config.toml and the defaults in Default.
package config

import (
	"errors"
	"strings"

	"github.com/scrubline/scrubline/constant"
	"github.com/scrubline/scrubline/filesystem"
	"github.com/scrubline/scrubline/where"
	"github.com/spf13/viper"
)

// EnvKeyReplacer maps a key such as stream.retry.max_attempts to its variable suffix.
var EnvKeyReplacer = strings.NewReplacer(".", "_")

// Setup binds the environment, applies defaults and reads the config file if there is one.
func Setup() error {
	viper.SetFs(filesystem.API())
	viper.SetConfigName(constant.App)
	viper.SetConfigType("toml")
	viper.AddConfigPath(where.Config())

	viper.SetEnvPrefix(constant.App)
	viper.SetEnvKeyReplacer(EnvKeyReplacer)
	for _, k := range EnvExposed {
		viper.MustBindEnv(k)
	}

	viper.SetTypeByDefaultValue(true)
	for k, field := range Default {
		viper.SetDefault(k, field.Value)
	}

	var notFound viper.ConfigFileNotFoundError
	if err := viper.ReadInConfig(); err != nil && !errors.As(err, &notFound) {
		return err
	}
	return nil
}

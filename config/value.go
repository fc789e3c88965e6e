package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strconv"

	"github.com/samber/lo"
	"github.com/scrubline/scrubline/constant"
	"github.com/scrubline/scrubline/where"
	"github.com/spf13/viper"
)

// ErrUnknownKey is returned for keys that are not in Default.
var ErrUnknownKey = errors.New("unknown key")

// bounds limits an int field to [min, max].
type bounds struct {
	min, max int
}

func (b bounds) check(v int) error {
	if v < b.min || v > b.max {
		return fmt.Errorf("%d is outside [%d, %d]", v, b.min, b.max)
	}
	return nil
}

// Parse converts the command line words raw into the type of key's default
// value and checks it against the field's bounds or choices.
func Parse(key string, raw []string) (any, error) {
	field, ok := Default[key]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownKey, key)
	}

	if len(raw) == 0 {
		return nil, fmt.Errorf("%s: value is required", key)
	}

	switch field.Value.(type) {
	case string:
		if len(field.choices) > 0 && !lo.Contains(field.choices, raw[0]) {
			return nil, fmt.Errorf("%s: %q is not one of %v", key, raw[0], field.choices)
		}
		return raw[0], nil
	case int:
		v, err := strconv.Atoi(raw[0])
		if err != nil {
			return nil, fmt.Errorf("%s: invalid integer %q", key, raw[0])
		}
		if field.bounds != nil {
			if err := field.bounds.check(v); err != nil {
				return nil, fmt.Errorf("%s: %w", key, err)
			}
		}
		return v, nil
	case bool:
		v, err := strconv.ParseBool(raw[0])
		if err != nil {
			return nil, fmt.Errorf("%s: invalid boolean %q", key, raw[0])
		}
		return v, nil
	case []string:
		return raw, nil
	default:
		return nil, fmt.Errorf("%s: unsupported type %s", key, field.typeName())
	}
}

// Path is the location of the config file, whether or not it exists.
func Path() string {
	return filepath.Join(where.Config(), constant.App+".toml")
}

// Save writes the current viper state to Path, creating the file if needed.
func Save() error {
	err := viper.WriteConfig()
	if _, ok := err.(viper.ConfigFileNotFoundError); ok {
		return viper.SafeWriteConfig()
	}
	return err
}

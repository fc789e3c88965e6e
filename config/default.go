// Package config provides centralized management for application settings, defaults, and the Viper-based configuration engine.
package config

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"text/template"

	"github.com/samber/lo"
	"github.com/scrubline/scrubline/color"
	"github.com/scrubline/scrubline/constant"
	"github.com/scrubline/scrubline/icon"
	"github.com/scrubline/scrubline/key"
	"github.com/scrubline/scrubline/style"
	"github.com/spf13/viper"
)

// Field represents a configuration field definition.
type Field struct {
	Key         string
	Value       any
	Description string

	bounds  *bounds
	choices []string
}

// option narrows the values Parse accepts for a field.
type option func(*Field)

func between(min, max int) option {
	return func(f *Field) { f.bounds = &bounds{min: min, max: max} }
}

func oneOf(choices ...string) option {
	return func(f *Field) { f.choices = choices }
}

// Pretty returns a colored string representation of the field for display.
func (f *Field) Pretty() string {
	var b strings.Builder
	lo.Must0(prettyTemplate.Execute(&b, f))
	return b.String()
}

// Env returns the environment variable name for this field.
func (f *Field) Env() string {
	env := strings.ToUpper(EnvKeyReplacer.Replace(f.Key))
	prefix := strings.ToUpper(constant.App + "_")
	if strings.HasPrefix(env, prefix) {
		return env
	}
	return prefix + env
}

// MarshalJSON customizes JSON output to include current and default values.
func (f *Field) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Key         string `json:"key"`
		Value       any    `json:"value"`
		Default     any    `json:"default"`
		Description string `json:"description"`
		Type        string `json:"type"`
	}{
		Key:         f.Key,
		Value:       viper.Get(f.Key),
		Default:     f.Value,
		Description: f.Description,
		Type:        f.typeName(),
	})
}

// typeName returns the string representation of the field's underlying value type.
func (f *Field) typeName() string {
	switch f.Value.(type) {
	case string:
		return "string"
	case int:
		return "int"
	case bool:
		return "bool"
	case []string:
		return "[]string"
	case []int:
		return "[]int"
	default:
		return "unknown"
	}
}

// Default holds the map of all configuration fields.
var Default = make(map[string]Field)

// EnvExposed holds keys that are bound to environment variables.
var EnvExposed []string

func init() {
	register := func(k string, v any, desc string, options ...option) {
		if _, exists := Default[k]; exists {
			panic("Duplicate config key: " + k)
		}
		f := Field{Key: k, Value: v, Description: desc}
		for _, o := range options {
			o(&f)
		}
		Default[k] = f
		EnvExposed = append(EnvExposed, k)
	}

	register(key.SourceDefault, "", "Path to the source file (JSON or YAML) opened when --source is not given.\nEmpty plays the built-in demo stream")
	register(key.PlayerPath, "mpv", "Path or name of the mpv executable")
	register(key.PlayerArgs, []string{}, "Extra arguments passed to mpv.\nUse with care, they are appended after the IPC flags")
	register(key.PlayerVolume, 50, "Initial volume, from 0 to 100", between(0, 100))
	register(key.PlayerFullscreen, false, "Start mpv in fullscreen mode")
	register(key.StreamRetryMaxAttempts, 3, "Restarts attempted after a fatal network error before giving up", between(0, 20))
	register(key.StreamRetryBaseDelay, 1000, "Delay before the first restart, in milliseconds. Doubles on every attempt", between(0, 60_000))
	register(key.StreamRetryMaxDelay, 8000, "Upper bound of the restart delay, in milliseconds", between(0, 300_000))
	register(key.StreamRetryStableAfter, 10, "Seconds of uninterrupted playback after which the retry budget is restored", between(0, 3600))
	register(key.StreamStartLevel, -1, "Quality level to start with.\n-1 selects automatically from the measured bandwidth", between(-1, 64))
	register(key.StreamABRDefaultEstimate, 500000, "Bandwidth estimate in bits per second used before anything was measured", between(1, 1<<31-1))
	register(key.StreamABRBandwidthFactor, 80, "Percentage of the estimated bandwidth a rendition may use in automatic mode", between(1, 100))
	register(key.TUIEdgePadding, 1, "Minimum distance in cells between the timeline tooltip and the timeline edges", between(0, 20))
	register(key.TUISeekStep, 5, "Seconds skipped by the left and right keys", between(1, 600))
	register(key.IconsVariant, "plain", "Icons variant.\nAvailable options are: emoji, kaomoji, plain, squares, nerd (nerd-font required)", oneOf(icon.AvailableVariants()...))
	register(key.LogsWrite, false, "Write logs")
	register(key.LogsLevel, "info", "Available options are: (from less to most verbose)\npanic, fatal, error, warn, info, debug, trace", oneOf("panic", "fatal", "error", "warn", "info", "debug", "trace"))
	register(key.LogsJson, false, "Use json format for logs")
	register(key.CliColored, true, "Enable colored CLI output")
	register(key.CliVersionCheck, true, "Enable automatic version check")
}

var prettyTemplate = lo.Must(template.New("pretty").Funcs(template.FuncMap{
	"faint":    style.Faint,
	"bold":     style.Bold,
	"purple":   style.Fg(color.Purple),
	"blue":     style.Fg(color.Blue),
	"cyan":     style.Fg(color.Cyan),
	"value":    func(k string) any { return viper.Get(k) },
	"typename": func(v any) string { return reflect.TypeOf(v).String() },
	"hl": func(v any) string {
		switch value := v.(type) {
		case bool:
			b := strconv.FormatBool(value)
			if value {
				return style.Fg(color.Green)(b)
			}
			return style.Fg(color.Red)(b)
		case string:
			return style.Fg(color.Yellow)(value)
		default:
			return fmt.Sprint(value)
		}
	},
}).Parse(`{{ faint .Description }}
{{ blue "Key:" }}     {{ purple .Key }}
{{ blue "Env:" }}     {{ .Env }}
{{ blue "Value:" }}   {{ hl (value .Key) }}
{{ blue "Default:" }} {{ hl (.Value) }}
{{ blue "Type:" }}    {{ typename .Value }}`))

// Package where resolves the directories scrubline reads from and writes to.
// Every function creates its directory on first use.
package where

import (
	"os"
	"path/filepath"

	"github.com/samber/lo"
	"github.com/scrubline/scrubline/constant"
	"github.com/scrubline/scrubline/filesystem"
)

// EnvConfigPath overrides the configuration directory.
const EnvConfigPath = "SCRUBLINE_CONFIG_PATH"

func ensureDir(path string) string {
	lo.Must0(filesystem.API().MkdirAll(path, os.ModePerm))
	return path
}

// Config holds config.toml, the logs and the saved sources.
func Config() string {
	if custom, ok := os.LookupEnv(EnvConfigPath); ok {
		return ensureDir(custom)
	}

	base := lo.Must(os.UserConfigDir())
	return ensureDir(filepath.Join(base, constant.App))
}

// Cache holds the version check and the remembered bandwidth estimates.
func Cache() string {
	base, err := os.UserCacheDir()
	if err != nil {
		base = filepath.Join(".", "cache")
	}
	return ensureDir(filepath.Join(base, constant.App))
}

func Logs() string {
	return ensureDir(filepath.Join(Config(), "logs"))
}

// Sources is searched for source files given by bare name.
func Sources() string {
	return ensureDir(filepath.Join(Config(), "sources"))
}

// Temp is wiped by `scrubline clear --temp`.
func Temp() string {
	return ensureDir(filepath.Join(os.TempDir(), constant.App))
}

// Sockets holds the IPC sockets of running mpv instances.
func Sockets() string {
	return ensureDir(filepath.Join(Temp(), "sockets"))
}

// Package cache keeps small JSON values under the cache directory, each expiring after TTL.
package cache

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/scrubline/scrubline/filesystem"
	"github.com/scrubline/scrubline/log"
	"github.com/scrubline/scrubline/util"
	"github.com/scrubline/scrubline/where"
)

const (
	TTL = 7 * 24 * time.Hour

	suffix = ".cache.json"
)

func path(key string) string {
	return filepath.Join(where.Cache(), util.SanitizeFilename(key)+suffix)
}

// Read decodes the value stored under key into target. It reports false when
// the entry is missing, expired or unreadable.
func Read(key string, target any) bool {
	p := path(key)

	info, err := filesystem.API().Stat(p)
	if err != nil || time.Since(info.ModTime()) > TTL {
		return false
	}

	data, err := filesystem.API().ReadFile(p)
	if err != nil {
		return false
	}

	if err := json.Unmarshal(data, target); err != nil {
		log.Warnf("cache %s: %v", key, err)
		return false
	}

	return true
}

// Write stores data under key, replacing the entry atomically.
func Write(key string, data any) error {
	encoded, err := json.Marshal(data)
	if err != nil {
		return err
	}

	p := path(key)
	tmp := p + ".tmp"

	if err := filesystem.API().WriteFile(tmp, encoded, 0o644); err != nil {
		return err
	}

	return filesystem.API().Rename(tmp, p)
}

// CollectGarbage removes expired entries in the background.
func CollectGarbage() {
	go func() {
		_ = filesystem.API().Walk(where.Cache(), func(p string, info os.FileInfo, err error) error {
			if err != nil || info.IsDir() || !strings.HasSuffix(p, suffix) {
				return nil
			}

			if time.Since(info.ModTime()) > TTL {
				log.Debugf("cache: removing expired %s", p)
				_ = filesystem.API().Remove(p)
			}
			return nil
		})
	}()
}

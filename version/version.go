// Package version checks GitHub releases for a newer scrubline.
package version

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/metafates/gache"
	"github.com/scrubline/scrubline/constant"
	"github.com/scrubline/scrubline/filesystem"
	"github.com/scrubline/scrubline/network"
	"github.com/scrubline/scrubline/util"
	"github.com/scrubline/scrubline/where"
)

const checkTimeout = 5 * time.Second

var latestCache = gache.New[string](&gache.Options{
	Path:       filepath.Join(where.Cache(), "version.json"),
	Lifetime:   48 * time.Hour,
	FileSystem: &filesystem.GacheFs{},
})

// releasesURL is swapped by tests.
var releasesURL = constant.Releases

// Latest returns the newest released version without the leading "v".
// The answer is cached for two days.
func Latest() (string, error) {
	cached, expired, err := latestCache.Get()
	if err != nil {
		return "", err
	}
	if !expired && cached != "" {
		return cached, nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), checkTimeout)
	defer cancel()

	latest, err := fetchLatest(ctx)
	if err != nil {
		return "", err
	}

	_ = latestCache.Set(latest)
	return latest, nil
}

func fetchLatest(ctx context.Context) (string, error) {
	resp, err := network.Get(ctx, nil, releasesURL)
	if err != nil {
		return "", err
	}
	defer util.Ignore(resp.Body.Close)

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("releases: unexpected status %s", resp.Status)
	}

	var release struct {
		TagName string `json:"tag_name"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&release); err != nil {
		return "", fmt.Errorf("releases: %w", err)
	}

	if release.TagName == "" {
		return "", errors.New("releases: empty tag name")
	}

	return strings.TrimPrefix(release.TagName, "v"), nil
}

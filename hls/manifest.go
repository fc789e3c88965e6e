// Package hls implements the streaming engine: it resolves an HLS playlist
// into quality levels, picks one, and hands the rendition to a media surface.
package hls

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"

	"github.com/grafov/m3u8"
	"github.com/scrubline/scrubline/media"
	"github.com/scrubline/scrubline/network"
)

// ErrEmptyPlaylist is returned for master playlists without playable variants.
var ErrEmptyPlaylist = errors.New("playlist has no playable variants")

// Manifest is a parsed playlist.
type Manifest struct {
	// Master is false when the URL pointed straight at a media playlist.
	Master bool
	// Levels are sorted by ascending bitrate; Index matches the position.
	Levels []media.Level
}

// ParseManifest decodes an m3u8 document, resolving URIs against base.
func ParseManifest(r io.Reader, base *url.URL) (*Manifest, error) {
	playlist, kind, err := m3u8.DecodeFrom(r, false)
	if err != nil {
		return nil, fmt.Errorf("decode playlist: %w", err)
	}

	switch kind {
	case m3u8.MEDIA:
		return &Manifest{
			Levels: []media.Level{{Index: 0, URI: base.String()}},
		}, nil
	case m3u8.MASTER:
		master, ok := playlist.(*m3u8.MasterPlaylist)
		if !ok {
			return nil, fmt.Errorf("unexpected playlist type %T", playlist)
		}
		return fromMaster(master, base)
	default:
		return nil, fmt.Errorf("unknown playlist type %d", kind)
	}
}

func fromMaster(master *m3u8.MasterPlaylist, base *url.URL) (*Manifest, error) {
	var levels []media.Level

	for _, variant := range master.Variants {
		if variant == nil || variant.Iframe || variant.URI == "" {
			continue
		}

		uri, err := resolve(base, variant.URI)
		if err != nil {
			return nil, err
		}

		level := media.Level{
			Bitrate: int(variant.Bandwidth),
			Codecs:  variant.Codecs,
			Name:    variant.Name,
			URI:     uri,
		}

		if variant.Resolution != "" {
			_, _ = fmt.Sscanf(variant.Resolution, "%dx%d", &level.Width, &level.Height)
		}

		levels = append(levels, level)
	}

	if len(levels) == 0 {
		return nil, ErrEmptyPlaylist
	}

	sort.SliceStable(levels, func(i, j int) bool {
		return levels[i].Bitrate < levels[j].Bitrate
	})
	for i := range levels {
		levels[i].Index = i
	}

	return &Manifest{Master: true, Levels: levels}, nil
}

// firstSegment returns the URI of the first segment of a media playlist.
func firstSegment(r io.Reader, base *url.URL) (string, error) {
	playlist, kind, err := m3u8.DecodeFrom(r, false)
	if err != nil {
		return "", fmt.Errorf("decode media playlist: %w", err)
	}

	if kind != m3u8.MEDIA {
		return "", errors.New("expected a media playlist")
	}

	mediaPlaylist, ok := playlist.(*m3u8.MediaPlaylist)
	if !ok {
		return "", fmt.Errorf("unexpected playlist type %T", playlist)
	}

	for _, segment := range mediaPlaylist.Segments {
		if segment != nil && segment.URI != "" {
			return resolve(base, segment.URI)
		}
	}

	return "", errors.New("media playlist has no segments")
}

func resolve(base *url.URL, ref string) (string, error) {
	parsed, err := url.Parse(ref)
	if err != nil {
		return "", fmt.Errorf("invalid uri %q: %w", ref, err)
	}

	if base == nil {
		return parsed.String(), nil
	}
	return base.ResolveReference(parsed).String(), nil
}

// FetchManifest downloads and parses the playlist at rawURL.
func FetchManifest(ctx context.Context, client *http.Client, rawURL string) (*Manifest, error) {
	base, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("invalid playlist url: %w", err)
	}

	resp, err := network.Get(ctx, client, rawURL)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("GET %s: %s", rawURL, resp.Status)
	}

	return ParseManifest(io.LimitReader(resp.Body, maxPlaylistBytes), base)
}

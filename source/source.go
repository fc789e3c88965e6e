// Package source loads the description of what to play: the playlist URL,
// the video length and its chapters.
package source

import (
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"dario.cat/mergo"
	"github.com/samber/lo"
	"github.com/scrubline/scrubline/filesystem"
	"github.com/scrubline/scrubline/timeline"
	"github.com/scrubline/scrubline/where"
	"gopkg.in/yaml.v3"
)

// Source is the contents of a source file.
type Source struct {
	Title    string             `json:"title,omitempty" yaml:"title,omitempty" jsonschema:"description=Title shown in the player window"`
	URL      string             `json:"hlsPlaylistUrl" yaml:"hlsPlaylistUrl" validate:"required,url,startswith=http" jsonschema:"required,format=uri,description=Master or media HLS playlist"`
	Length   float64            `json:"videoLength" yaml:"videoLength" validate:"gt=0" jsonschema:"required,description=Length of the video in seconds"`
	Chapters []timeline.Chapter `json:"chapters" yaml:"chapters" validate:"required,min=1,dive" jsonschema:"required,minItems=1,description=Ordered and contiguous chapters covering the video"`
}

// Format is a source file encoding.
type Format int

const (
	FormatYAML Format = iota
	FormatJSON
)

// Extensions tried, in order, when a source is given by bare name.
var Extensions = []string{".yaml", ".yml", ".json"}

var ErrNotFound = errors.New("source file not found")

//go:embed demo.json
var demo []byte

// Demo returns the built-in sample source.
func Demo() *Source {
	return lo.Must(Parse(demo, FormatJSON))
}

// FormatOf picks the format from the file extension; anything unknown is read as YAML,
// which also accepts JSON.
func FormatOf(path string) Format {
	if strings.EqualFold(filepath.Ext(path), ".json") {
		return FormatJSON
	}
	return FormatYAML
}

// Resolve finds the file for name. Paths are used as given; bare names are
// looked up in the sources directory.
func Resolve(name string) (string, error) {
	if exists, _ := filesystem.API().Exists(name); exists {
		return name, nil
	}

	if strings.ContainsRune(name, filepath.Separator) || strings.ContainsRune(name, '/') {
		return "", fmt.Errorf("%w: %s", ErrNotFound, name)
	}

	dir := where.Sources()
	candidates := []string{filepath.Join(dir, name)}
	if filepath.Ext(name) == "" {
		candidates = lo.Map(Extensions, func(ext string, _ int) string {
			return filepath.Join(dir, name+ext)
		})
	}

	for _, candidate := range candidates {
		if exists, _ := filesystem.API().Exists(candidate); exists {
			return candidate, nil
		}
	}

	return "", fmt.Errorf("%w: %s (searched %s)", ErrNotFound, name, dir)
}

// Load resolves, reads and validates a source file.
func Load(name string) (*Source, error) {
	path, err := Resolve(name)
	if err != nil {
		return nil, err
	}

	data, err := filesystem.API().ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read source %s: %w", path, err)
	}

	src, err := Parse(data, FormatOf(path))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	return src, nil
}

// Parse decodes and validates a source.
func Parse(data []byte, format Format) (*Source, error) {
	var src Source

	switch format {
	case FormatJSON:
		if err := json.Unmarshal(data, &src); err != nil {
			return nil, fmt.Errorf("decode json: %w", err)
		}
	default:
		if err := yaml.Unmarshal(data, &src); err != nil {
			return nil, fmt.Errorf("decode yaml: %w", err)
		}
	}

	if err := src.Validate(); err != nil {
		return nil, err
	}

	return &src, nil
}

// Merge applies the non-zero fields of override on top of s.
func (s *Source) Merge(override Source) error {
	if err := mergo.Merge(s, override, mergo.WithOverride); err != nil {
		return fmt.Errorf("merge source: %w", err)
	}
	return s.Validate()
}

// Validate checks field constraints and that the chapters form a valid timeline.
func (s *Source) Validate() error {
	if err := validateStruct(s); err != nil {
		return err
	}

	_, err := s.Index()
	return err
}

// Index builds the normalized chapter index.
func (s *Source) Index() (*timeline.Index, error) {
	index, err := timeline.NewIndex(s.Chapters, s.Length)
	if err != nil {
		return nil, fmt.Errorf("chapters: %w", err)
	}
	return index, nil
}

// Name is the title, or the playlist URL when there is none.
func (s *Source) Name() string {
	if s.Title != "" {
		return s.Title
	}
	return s.URL
}

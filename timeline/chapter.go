package timeline

import (
	"errors"
	"fmt"
	"math"

	"github.com/samber/mo"
	"github.com/scrubline/scrubline/util"
	"golang.org/x/exp/slices"
)

// Chapter is a named, half-open interval [Start, End) of the video in seconds.
type Chapter struct {
	Title string  `json:"title" yaml:"title" jsonschema:"description=Title shown in the tooltip and chapter list"`
	Start float64 `json:"start" yaml:"start" jsonschema:"minimum=0,description=Start of the chapter in seconds"`
	End   float64 `json:"end" yaml:"end" jsonschema:"minimum=0,description=End of the chapter in seconds"`
}

// Contains reports whether t falls inside the chapter's half-open interval.
func (c Chapter) Contains(t float64) bool {
	return t >= c.Start && t < c.End
}

// Duration returns the chapter length in seconds.
func (c Chapter) Duration() float64 {
	return c.End - c.Start
}

var (
	ErrInvalidLength = errors.New("video length must be a positive number")
	ErrChapterBounds = errors.New("chapter is outside of the video")
	ErrChapterOrder  = errors.New("chapters are not ordered")
	ErrChapterEmpty  = errors.New("chapter start is not before its end")
	ErrOverlap       = errors.New("chapters overlap")
)

// Index is an immutable, ordered and contiguous list of chapters covering [0, Length].
type Index struct {
	chapters []Chapter
	length   float64
}

// NewIndex validates chapters against videoLength and normalizes them.
// A gap between two chapters is absorbed by the earlier one, and the last
// chapter is stretched to videoLength, so that chapter ends written as
// inclusive whole seconds still produce a contiguous index.
func NewIndex(chapters []Chapter, videoLength float64) (*Index, error) {
	if !util.Finite(videoLength) || videoLength <= 0 {
		return nil, fmt.Errorf("%w: %v", ErrInvalidLength, videoLength)
	}

	normalized := make([]Chapter, len(chapters))
	copy(normalized, chapters)

	for i := range normalized {
		c := &normalized[i]

		if math.IsNaN(c.Start) || math.IsNaN(c.End) || c.Start < 0 {
			return nil, fmt.Errorf("%w: %q starts at %v", ErrChapterBounds, c.Title, c.Start)
		}

		if c.Start >= c.End {
			return nil, fmt.Errorf("%w: %q [%v, %v)", ErrChapterEmpty, c.Title, c.Start, c.End)
		}

		if i == 0 {
			if c.Start != 0 {
				return nil, fmt.Errorf("%w: first chapter %q starts at %v instead of 0", ErrChapterBounds, c.Title, c.Start)
			}
			continue
		}

		prev := &normalized[i-1]
		switch {
		case c.Start < prev.Start:
			return nil, fmt.Errorf("%w: %q starts before %q", ErrChapterOrder, c.Title, prev.Title)
		case c.Start < prev.End:
			return nil, fmt.Errorf("%w: %q and %q", ErrOverlap, prev.Title, c.Title)
		case c.Start > prev.End:
			prev.End = c.Start
		}
	}

	if n := len(normalized); n > 0 {
		last := &normalized[n-1]
		if last.End > videoLength {
			return nil, fmt.Errorf("%w: %q ends at %v past %v", ErrChapterBounds, last.Title, last.End, videoLength)
		}
		if last.Start >= videoLength {
			return nil, fmt.Errorf("%w: %q starts at %v past %v", ErrChapterBounds, last.Title, last.Start, videoLength)
		}
		last.End = videoLength
	}

	return &Index{chapters: normalized, length: videoLength}, nil
}

// Length returns the video length the index was built for.
func (x *Index) Length() float64 {
	return x.length
}

// Len returns the number of chapters.
func (x *Index) Len() int {
	return len(x.chapters)
}

// Chapters returns a copy of the normalized chapters.
func (x *Index) Chapters() []Chapter {
	return slices.Clone(x.chapters)
}

// IndexAt returns the position of the chapter containing t, or -1.
// t equal to the video length belongs to the last chapter.
func (x *Index) IndexAt(t float64) int {
	n := len(x.chapters)
	if n == 0 || math.IsNaN(t) || t < 0 || t > x.length {
		return -1
	}

	if t == x.length {
		return n - 1
	}

	i, found := slices.BinarySearchFunc(x.chapters, t, func(c Chapter, t float64) int {
		switch {
		case t < c.Start:
			return 1
		case t >= c.End:
			return -1
		default:
			return 0
		}
	})
	if !found {
		return -1
	}

	return i
}

// ChapterAt returns the chapter containing t.
func (x *Index) ChapterAt(t float64) mo.Option[Chapter] {
	return x.at(x.IndexAt(t))
}

// Next returns the chapter following the one containing t.
func (x *Index) Next(t float64) mo.Option[Chapter] {
	i := x.IndexAt(t)
	if i < 0 {
		return mo.None[Chapter]()
	}
	return x.at(i + 1)
}

// Previous returns the chapter preceding the one containing t.
func (x *Index) Previous(t float64) mo.Option[Chapter] {
	i := x.IndexAt(t)
	if i < 0 {
		return mo.None[Chapter]()
	}
	return x.at(i - 1)
}

func (x *Index) at(i int) mo.Option[Chapter] {
	if i < 0 || i >= len(x.chapters) {
		return mo.None[Chapter]()
	}
	return mo.Some(x.chapters[i])
}

package hls

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/scrubline/scrubline/filesystem"
	"github.com/scrubline/scrubline/internal/cache"
	"github.com/scrubline/scrubline/media"
	. "github.com/smartystreets/goconvey/convey"
)

const masterPlaylist = `#EXTM3U
#EXT-X-VERSION:3
#EXT-X-STREAM-INF:BANDWIDTH=2800000,RESOLUTION=1280x720,CODECS="avc1.4d401f,mp4a.40.2"
720p/video.m3u8
#EXT-X-STREAM-INF:BANDWIDTH=800000,RESOLUTION=640x360,CODECS="avc1.4d401e,mp4a.40.2"
360p/video.m3u8
#EXT-X-STREAM-INF:BANDWIDTH=5000000,RESOLUTION=1920x1080,CODECS="avc1.640028,mp4a.40.2"
https://cdn.example.com/1080p/video.m3u8
#EXT-X-I-FRAME-STREAM-INF:BANDWIDTH=86000,URI="iframe.m3u8"
`

const mediaPlaylist = `#EXTM3U
#EXT-X-VERSION:3
#EXT-X-TARGETDURATION:4
#EXT-X-MEDIA-SEQUENCE:0
#EXTINF:4.000,
segment0.ts
#EXTINF:4.000,
segment1.ts
#EXT-X-ENDLIST
`

func mustURL(raw string) *url.URL {
	u, err := url.Parse(raw)
	if err != nil {
		panic(err)
	}
	return u
}

func TestParseManifest(t *testing.T) {
	Convey("Given a master playlist", t, func() {
		base := mustURL("https://stream.example.com/abc/playlist.m3u8")

		manifest, err := ParseManifest(strings.NewReader(masterPlaylist), base)
		So(err, ShouldBeNil)

		Convey("Variants should be sorted by bitrate and reindexed", func() {
			So(manifest.Master, ShouldBeTrue)
			So(manifest.Levels, ShouldHaveLength, 3)

			for i, level := range manifest.Levels {
				So(level.Index, ShouldEqual, i)
			}
			So(manifest.Levels[0].Bitrate, ShouldEqual, 800000)
			So(manifest.Levels[2].Bitrate, ShouldEqual, 5000000)
		})

		Convey("Resolutions and URIs should be resolved", func() {
			So(manifest.Levels[0].Width, ShouldEqual, 640)
			So(manifest.Levels[0].Height, ShouldEqual, 360)
			So(manifest.Levels[0].Label(), ShouldEqual, "360p")
			So(manifest.Levels[0].URI, ShouldEqual, "https://stream.example.com/abc/360p/video.m3u8")
			So(manifest.Levels[2].URI, ShouldEqual, "https://cdn.example.com/1080p/video.m3u8")
		})
	})

	Convey("Given a media playlist", t, func() {
		base := mustURL("https://stream.example.com/abc/video.m3u8")

		manifest, err := ParseManifest(strings.NewReader(mediaPlaylist), base)
		So(err, ShouldBeNil)

		Convey("It should become a single level pointing at itself", func() {
			So(manifest.Master, ShouldBeFalse)
			So(manifest.Levels, ShouldHaveLength, 1)
			So(manifest.Levels[0].URI, ShouldEqual, base.String())
		})

		Convey("Its first segment should resolve against the playlist", func() {
			segment, err := firstSegment(strings.NewReader(mediaPlaylist), base)
			So(err, ShouldBeNil)
			So(segment, ShouldEqual, "https://stream.example.com/abc/segment0.ts")
		})
	})

	Convey("Garbage should fail to parse", t, func() {
		_, err := ParseManifest(strings.NewReader("<html></html>"), mustURL("https://example.com"))
		So(err, ShouldNotBeNil)
	})
}

func TestChooseLevel(t *testing.T) {
	Convey("Given levels sorted by bitrate", t, func() {
		levels := []media.Level{
			{Index: 0, Bitrate: 800_000},
			{Index: 1, Bitrate: 2_800_000},
			{Index: 2, Bitrate: 5_000_000},
		}

		Convey("The highest level within the budget should win", func() {
			So(ChooseLevel(levels, 4_000_000, 0.8), ShouldEqual, 1)
			So(ChooseLevel(levels, 10_000_000, 0.8), ShouldEqual, 2)
		})

		Convey("The lowest level should be used when nothing fits", func() {
			So(ChooseLevel(levels, 100_000, 0.8), ShouldEqual, 0)
		})

		Convey("No levels means automatic", func() {
			So(ChooseLevel(nil, 1, 1), ShouldEqual, media.AutoLevel)
		})
	})
}

func TestEstimator(t *testing.T) {
	Convey("Given an estimator with a fallback", t, func() {
		estimator := NewEstimator(500_000, 1000)
		So(estimator.Estimate(), ShouldEqual, 500_000)

		Convey("Small samples should be ignored", func() {
			estimator.Sample(10, time.Millisecond)
			So(estimator.Estimate(), ShouldEqual, 500_000)
		})

		Convey("The first sample should replace the fallback", func() {
			estimator.Sample(125_000, time.Second)
			So(estimator.Estimate(), ShouldEqual, 1_000_000)

			Convey("Later samples should be averaged", func() {
				estimator.Sample(375_000, time.Second)
				So(estimator.Estimate(), ShouldEqual, 2_000_000)
			})
		})
	})
}

type recordingSurface struct {
	mu      sync.Mutex
	loads   []string
	starts  []float64
	reloads int
	time    float64
}

func (s *recordingSurface) ID() string { return "recording" }
func (s *recordingSurface) Load(url string, startAt float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loads = append(s.loads, url)
	s.starts = append(s.starts, startAt)
	return nil
}
func (s *recordingSurface) Play() error { return nil }
func (s *recordingSurface) Pause() error { return nil }
func (s *recordingSurface) CurrentTime() float64 { s.mu.Lock(); defer s.mu.Unlock(); return s.time }
func (s *recordingSurface) SetCurrentTime(float64) error { return nil }
func (s *recordingSurface) Volume() float64 { return 1 }
func (s *recordingSurface) SetVolume(float64) error { return nil }
func (s *recordingSurface) ReadyState() media.ReadyState { return media.HaveNothing }
func (s *recordingSurface) ReloadDecoders() error { s.mu.Lock(); s.reloads++; s.mu.Unlock(); return nil }
func (s *recordingSurface) ToggleFullscreen() error { return nil }
func (s *recordingSurface) Events() <-chan media.Event { return nil }
func (s *recordingSurface) Done() <-chan struct{} { return nil }
func (s *recordingSurface) Close() error { return nil }

func (s *recordingSurface) loaded() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.loads...)
}

func newStreamServer() *httptest.Server {
	mux := http.NewServeMux()
	mux.HandleFunc("/playlist.m3u8", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(strings.Replace(masterPlaylist, "https://cdn.example.com/1080p/video.m3u8", "1080p/video.m3u8", 1)))
	})
	for _, rendition := range []string{"360p", "720p", "1080p"} {
		mux.HandleFunc("/"+rendition+"/video.m3u8", func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(mediaPlaylist))
		})
		mux.HandleFunc("/"+rendition+"/segment0.ts", func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write(make([]byte, 256<<10))
		})
	}
	return httptest.NewServer(mux)
}

// next waits for the first event of type typ, skipping the others.
func next(engine *Engine, typ media.EventType) (media.Event, bool) {
	timeout := time.After(5 * time.Second)
	for {
		select {
		case ev := <-engine.Events():
			if ev.Type == typ {
				return ev, true
			}
		case <-timeout:
			return media.Event{}, false
		}
	}
}

func TestEngine(t *testing.T) {
	Convey("Given a stream server", t, func() {
		server := newStreamServer()
		defer server.Close()

		surface := &recordingSurface{}

		Convey("An engine pinned to a level should load that rendition", func() {
			engine := New(Options{Client: server.Client(), StartLevel: 0})
			defer engine.Destroy()

			So(engine.LoadSource(server.URL+"/playlist.m3u8"), ShouldBeNil)

			ready, ok := next(engine, media.EventSourceReady)
			So(ok, ShouldBeTrue)
			So(ready.Origin, ShouldEqual, engine.ID())

			So(engine.AttachMedia(surface), ShouldBeNil)

			parsed, ok := next(engine, media.EventManifestParsed)
			So(ok, ShouldBeTrue)
			So(parsed.Levels, ShouldHaveLength, 3)
			So(parsed.Level, ShouldEqual, 0)

			switched, ok := next(engine, media.EventLevelSwitched)
			So(ok, ShouldBeTrue)
			So(switched.Level, ShouldEqual, 0)
			So(surface.loaded(), ShouldResemble, []string{server.URL + "/360p/video.m3u8"})

			Convey("Changing the level should reload the new rendition", func() {
				So(engine.SetDesiredQualityLevel(2), ShouldBeNil)

				switched, ok := next(engine, media.EventLevelSwitched)
				So(ok, ShouldBeTrue)
				So(switched.Level, ShouldEqual, 2)
				So(surface.loaded(), ShouldHaveLength, 2)
				So(surface.loaded()[1], ShouldEqual, server.URL+"/1080p/video.m3u8")
			})

			Convey("Out of range levels should be rejected", func() {
				So(engine.SetDesiredQualityLevel(3), ShouldNotBeNil)
				So(engine.SetDesiredQualityLevel(-2), ShouldNotBeNil)
			})
		})

		Convey("An automatic engine on a fast link should pick the best rendition", func() {
			engine := New(Options{Client: server.Client(), StartLevel: media.AutoLevel, Probe: true})
			defer engine.Destroy()

			So(engine.AttachMedia(surface), ShouldBeNil)
			So(engine.LoadSource(server.URL+"/playlist.m3u8"), ShouldBeNil)

			parsed, ok := next(engine, media.EventManifestParsed)
			So(ok, ShouldBeTrue)
			So(parsed.Level, ShouldEqual, media.AutoLevel)

			switched, ok := next(engine, media.EventLevelSwitched)
			So(ok, ShouldBeTrue)
			So(switched.Level, ShouldEqual, 2)
		})

		Convey("A destroyed engine should remember the measured bandwidth", func() {
			filesystem.SetMemMapFs()

			engine := New(Options{Client: server.Client(), StartLevel: media.AutoLevel, Probe: true, EstimateKey: "test-estimate"})
			So(engine.AttachMedia(surface), ShouldBeNil)
			So(engine.LoadSource(server.URL+"/playlist.m3u8"), ShouldBeNil)

			_, ok := next(engine, media.EventLevelSwitched)
			So(ok, ShouldBeTrue)
			So(engine.Destroy(), ShouldBeNil)

			var remembered float64
			So(cache.Read("test-estimate", &remembered), ShouldBeTrue)
			So(remembered, ShouldBeGreaterThan, 0)
		})

		Convey("A missing playlist should be a fatal network error", func() {
			engine := New(Options{Client: server.Client()})
			defer engine.Destroy()

			So(engine.LoadSource(server.URL+"/missing.m3u8"), ShouldBeNil)

			failure, ok := next(engine, media.EventError)
			So(ok, ShouldBeTrue)
			So(failure.Fatal, ShouldBeTrue)
			So(failure.Category, ShouldEqual, media.ErrorNetwork)
		})

		Convey("Manual levels need a manifest", func() {
			engine := New(Options{Client: server.Client()})
			defer engine.Destroy()

			So(engine.SetDesiredQualityLevel(1), ShouldNotBeNil)
			So(engine.SetDesiredQualityLevel(media.AutoLevel), ShouldBeNil)
		})

		Convey("Non-http sources should be rejected", func() {
			engine := New(Options{Client: server.Client()})
			defer engine.Destroy()

			So(engine.LoadSource("file:///tmp/video.m3u8"), ShouldNotBeNil)
		})

		Convey("A destroyed engine should refuse work", func() {
			engine := New(Options{Client: server.Client()})
			So(engine.Destroy(), ShouldBeNil)
			So(engine.Destroy(), ShouldBeNil)

			_, open := <-engine.Done()
			So(open, ShouldBeFalse)
			So(engine.StartLoad(0), ShouldEqual, ErrDestroyed)
			So(engine.RecoverMediaError(), ShouldEqual, ErrDestroyed)
		})
	})
}

func TestFetchManifest(t *testing.T) {
	Convey("Given a stream server", t, func() {
		server := newStreamServer()
		defer server.Close()

		Convey("The master playlist should resolve against the server", func() {
			manifest, err := FetchManifest(context.Background(), server.Client(), server.URL+"/playlist.m3u8")
			So(err, ShouldBeNil)
			So(manifest.Master, ShouldBeTrue)
			So(manifest.Levels, ShouldHaveLength, 3)
			So(manifest.Levels[2].URI, ShouldEqual, server.URL+"/1080p/video.m3u8")
		})

		Convey("A missing playlist should fail", func() {
			_, err := FetchManifest(context.Background(), server.Client(), server.URL+"/missing.m3u8")
			So(err, ShouldNotBeNil)
		})
	})
}

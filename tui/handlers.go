package tui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/scrubline/scrubline/internal/ui"
	"github.com/scrubline/scrubline/key"
	"github.com/scrubline/scrubline/log"
	"github.com/scrubline/scrubline/media"
	"github.com/scrubline/scrubline/playback"
	"github.com/scrubline/scrubline/scrub"
	"github.com/scrubline/scrubline/timeline"
	"github.com/spf13/viper"
)

// chapterRestartThreshold is how far into a chapter "previous" restarts it instead of going back.
const chapterRestartThreshold = 2.0

type surfaceReadyMsg struct {
	surface media.Surface
}

// chapterMarker is implemented by surfaces that can show chapter marks themselves.
type chapterMarker interface {
	SetChapters(chapters []timeline.Chapter) error
}

func (b *statefulBubble) startSurface() tea.Cmd {
	title := b.source.Name()
	start := b.options.Surface

	return func() tea.Msg {
		surface, err := start(title)
		if err != nil {
			return fmt.Errorf("start player: %w", err)
		}

		return surfaceReadyMsg{surface: surface}
	}
}

func (b *statefulBubble) startPlayback(surface media.Surface) tea.Cmd {
	b.surface = surface

	if marker, ok := surface.(chapterMarker); ok {
		if err := marker.SetChapters(b.index.Chapters()); err != nil {
			log.Warnf("set chapters: %v", err)
		}
	}

	b.sync = playback.New(b.options.Engines, surface, playback.Options{
		URL:       b.source.URL,
		Length:    b.index.Length(),
		Volume:    viper.GetFloat64(key.PlayerVolume) / 100,
		Retry:     playback.RetryPolicyFromConfig(),
		Scheduler: b.scheduler,
	})

	b.machine = scrub.New(scrub.Options{
		Geometry: func() scrub.Geometry {
			return b.layout(nil).timeline
		},
		Index:       b.index,
		Measure:     measureTooltip,
		EdgePadding: viper.GetFloat64(key.TUIEdgePadding),
	}, b.bus, b.sync)

	// a failed start is shown in the player view and can be reloaded from there
	if err := b.sync.Start(); err != nil {
		log.Error(err)
	}

	if t, ok := b.options.StartAt.Get(); ok {
		b.sync.Seek(t)
	}

	b.newState(playerState)
	return tea.Batch(waitForSurface(surface), b.syncPumps())
}

// syncPumps starts delivering events of a newly created engine.
func (b *statefulBubble) syncPumps() tea.Cmd {
	engine := b.sync.Engine()
	if engine == nil || engine.ID() == b.engineID {
		return nil
	}

	b.engineID = engine.ID()
	return waitForEngine(engine)
}

// rearm waits for the next event from the instance that produced the last one.
func (b *statefulBubble) rearm(source string) tea.Cmd {
	if b.surface != nil && source == b.surface.ID() {
		return waitForSurface(b.surface)
	}

	if engine := b.sync.Engine(); engine != nil && engine.ID() == source {
		return waitForEngine(engine)
	}

	return nil
}

func (b *statefulBubble) previousChapter() {
	t := b.sync.Snapshot().CurrentTime

	current, ok := b.index.ChapterAt(t).Get()
	if !ok {
		return
	}

	if previous, ok := b.index.Previous(t).Get(); ok && t-current.Start <= chapterRestartThreshold {
		b.sync.Seek(previous.Start)
		return
	}

	b.sync.Seek(current.Start)
}

func (b *statefulBubble) nextChapter() tea.Cmd {
	next, ok := b.index.Next(b.sync.Snapshot().CurrentTime).Get()
	if !ok {
		return ui.Notify("Last chapter")
	}

	b.sync.Seek(next.Start)
	return nil
}

func (b *statefulBubble) openQuality() tea.Cmd {
	state := b.sync.Snapshot()
	if len(state.QualityLevels) == 0 {
		return ui.Notify("Quality levels are not known yet")
	}

	items := []list.Item{&listItem{internal: autoQuality{}, marked: state.AutoQuality}}
	for _, level := range state.QualityLevels {
		items = append(items, &listItem{
			internal: level,
			marked:   !state.AutoQuality && level.Index == state.ActiveQualityIndex,
		})
	}

	b.machine.Dispose()
	cmd := b.qualityC.SetItems(items)
	b.qualityC.ResetFilter()
	b.qualityC.Select(0)
	if !state.AutoQuality {
		for i, item := range items {
			if item.(*listItem).marked {
				b.qualityC.Select(i)
			}
		}
	}

	b.newState(qualityState)
	return cmd
}

func (b *statefulBubble) openChapters() tea.Cmd {
	current := b.index.IndexAt(b.sync.Snapshot().CurrentTime)

	var items []list.Item
	for i, c := range b.index.Chapters() {
		items = append(items, &listItem{internal: c, marked: i == current})
	}

	b.machine.Dispose()
	cmd := b.chaptersC.SetItems(items)
	b.chaptersC.ResetFilter()
	b.chaptersC.Select(max(current, 0))

	b.newState(chaptersState)
	return cmd
}

func (b *statefulBubble) selectQuality(item *listItem) tea.Cmd {
	index, label := media.AutoLevel, "Auto"
	if level, ok := item.internal.(media.Level); ok {
		index, label = level.Index, level.Label()
	}

	if err := b.sync.SelectQuality(index); err != nil {
		log.Warnf("select quality: %v", err)
		return ui.Notify(err.Error())
	}

	return ui.Notify("Quality: " + label)
}

func (b *statefulBubble) press(c control) tea.Cmd {
	switch c {
	case controlPlay:
		b.sync.TogglePlay()
	case controlVolume:
		b.sync.CycleVolume()
	case controlQuality:
		return b.openQuality()
	case controlChapters:
		return b.openChapters()
	case controlFullscreen:
		b.sync.ToggleFullscreen()
	}

	return nil
}

func (b *statefulBubble) reload() tea.Cmd {
	if !b.sync.Snapshot().Failed {
		return nil
	}

	if err := b.sync.Reload(); err != nil {
		log.Warnf("reload: %v", err)
		return ui.Notify(err.Error())
	}

	return tea.Batch(ui.Notify("Reloading"), b.syncPumps())
}

func (b *statefulBubble) seekChapter(item *listItem) tea.Cmd {
	chapter, ok := item.internal.(timeline.Chapter)
	if !ok {
		return nil
	}

	b.sync.Seek(chapter.Start)
	return ui.Notify(chapter.Title)
}

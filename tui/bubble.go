package tui

import (
	"time"

	"github.com/charmbracelet/bubbles/help"
	bubblesKey "github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/lipgloss"
	"github.com/samber/lo"
	"github.com/scrubline/scrubline/internal/ui"
	"github.com/scrubline/scrubline/key"
	"github.com/scrubline/scrubline/log"
	"github.com/scrubline/scrubline/media"
	"github.com/scrubline/scrubline/playback"
	"github.com/scrubline/scrubline/scrub"
	"github.com/scrubline/scrubline/source"
	"github.com/scrubline/scrubline/style"
	"github.com/scrubline/scrubline/timeline"
	"github.com/scrubline/scrubline/util"
	"github.com/spf13/viper"
)

// statefulBubble encapsulates the application state, including component models and workflow tracking.
type statefulBubble struct {
	state         state
	statesHistory util.Stack[state]

	keymap *statefulKeymap

	// components
	spinnerC  spinner.Model
	qualityC  list.Model
	chaptersC list.Model
	volumeC   progress.Model
	helpC     help.Model
	notifier  *ui.Model

	source *source.Source
	index  *timeline.Index

	surface   media.Surface
	sync      *playback.Synchronizer
	machine   *scrub.Machine
	bus       *pointerBus
	scheduler *teaScheduler
	engineID  string

	progressStatus string
	lastError      error

	width, height int

	options *Options
}

// raiseError dispatches a terminal error and transitions the application to the failure view.
func (b *statefulBubble) raiseError(err error) {
	log.Error(err)
	b.lastError = err
	b.newState(errorState)
}

func (b *statefulBubble) setState(s state) {
	b.state = s
	b.keymap.setState(s)
}

// newState transitions to s, recording the previous state in the navigation history when appropriate.
func (b *statefulBubble) newState(s state) {
	if b.state == s {
		return
	}

	if !lo.Contains([]state{loadingState, errorState}, b.state) {
		b.statesHistory.Push(b.state)
	}

	b.setState(s)
}

func (b *statefulBubble) previousState() {
	if b.statesHistory.Len() > 0 {
		b.setState(b.statesHistory.Pop())
	}
}

// resize propagates terminal dimension changes to all child component models.
func (b *statefulBubble) resize(width, height int) {
	x, y := paddingStyle.GetFrameSize()
	xx, yy := listExtraPaddingStyle.GetFrameSize()

	listWidth := width - xx
	listHeight := height - yy

	b.qualityC.SetSize(listWidth, listHeight)
	b.qualityC.Help.Width = listWidth

	b.chaptersC.SetSize(listWidth, listHeight)
	b.chaptersC.Help.Width = listWidth

	b.width = width - x
	b.height = height - y
	b.helpC.Width = b.width

	// pointer geometry changed under a hover; drop the stale tooltip
	if b.machine != nil && !b.machine.Scrubbing() {
		b.machine.PointerLeave()
	}
}

// teardown releases the surface and engine. It is idempotent.
func (b *statefulBubble) teardown() {
	if b.machine != nil {
		b.machine.Dispose()
	}

	if b.sync != nil {
		b.sync.Teardown()
		return
	}

	if b.surface != nil {
		_ = b.surface.Close()
		b.surface = nil
	}
}

func newBubble(options *Options) (*statefulBubble, error) {
	index, err := options.Source.Index()
	if err != nil {
		return nil, err
	}

	keymap := newStatefulKeymap()
	bubble := statefulBubble{
		statesHistory: util.Stack[state]{},
		keymap:        keymap,
		notifier:      &ui.Model{},
		source:        options.Source,
		index:         index,
		bus:           &pointerBus{},
		scheduler:     &teaScheduler{},
		options:       options,
	}

	makeList := func(title string, background lipgloss.Color) list.Model {
		delegate := list.NewDefaultDelegate()
		delegate.Styles.SelectedTitle = lipgloss.NewStyle().
			Border(lipgloss.ThickBorder(), false, false, false, true).
			BorderForeground(style.AccentColor).
			Foreground(style.AccentColor).
			Padding(0, 0, 0, 1)
		delegate.Styles.NormalTitle = delegate.Styles.NormalTitle.Foreground(lipgloss.Color("7"))
		delegate.Styles.SelectedDesc = delegate.Styles.SelectedTitle

		listC := list.New([]list.Item{}, delegate, 0, 0)
		listC.KeyMap = bubble.keymap.forList()
		listC.AdditionalShortHelpKeys = func() []bubblesKey.Binding {
			return bubble.keymap.ShortHelp()
		}
		listC.AdditionalFullHelpKeys = func() []bubblesKey.Binding {
			return bubble.keymap.FullHelp()[0]
		}
		listC.Title = title
		listC.Styles.NoItems = paddingStyle
		listC.Styles.Title = lipgloss.NewStyle().Foreground(style.Base).Background(background).Padding(0, 1)
		listC.StatusMessageLifetime = time.Hour * 999
		listC.SetShowPagination(false)
		listC.SetShowStatusBar(false)

		return listC
	}

	bubble.helpC = help.New()

	bubble.spinnerC = spinner.New()
	bubble.spinnerC.Spinner = spinner.Dot
	bubble.spinnerC.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))

	bubble.volumeC = progress.New(progress.WithDefaultGradient(), progress.WithWidth(volumeBarWidth))

	bubble.qualityC = makeList("Quality", style.Blue)
	bubble.qualityC.SetStatusBarItemName("level", "levels")

	bubble.chaptersC = makeList("Chapters", style.Peach)
	bubble.chaptersC.SetStatusBarItemName("chapter", "chapters")
	bubble.chaptersC.SetFilteringEnabled(true)

	if w, h, err := util.TerminalSize(); err == nil {
		bubble.resize(w, h)
	}

	bubble.setState(loadingState)
	bubble.progressStatus = "Starting player"

	return &bubble, nil
}

func (b *statefulBubble) seekStep() float64 {
	if step := viper.GetFloat64(key.TUISeekStep); step > 0 {
		return step
	}
	return 5
}

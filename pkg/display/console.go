package display

import (
	"context"
	"fmt"
	"sync"

	"github.com/gdamore/tcell/v2"

	"trailview/pkg/playback"
)

const (
	headingRow = 0
	statusRow  = 1
	tableRow   = 3
)

var (
	styleTitle   = tcell.StyleDefault.Bold(true)
	styleHeading = tcell.StyleDefault.Foreground(tcell.ColorGreen).Bold(true)
	styleStatus  = tcell.StyleDefault.Foreground(tcell.ColorGray)
	styleRow     = tcell.StyleDefault
	styleNewest  = tcell.StyleDefault.Foreground(tcell.ColorYellow)
)

// NewTerminalScreen opens and initializes the controlling terminal.
func NewTerminalScreen() (tcell.Screen, error) {
	screen, err := tcell.NewScreen()
	if err != nil {
		return nil, err
	}
	if err := screen.Init(); err != nil {
		return nil, err
	}
	return screen, nil
}

// Console draws the heading readout and an auto-scrolling telemetry table on a terminal.
// It is a playback sink: frames only record the latest snapshot, drawing happens on Run's goroutine.
type Console struct {
	screen tcell.Screen

	// Restart is called when the user presses 'r'. Optional.
	Restart func()

	mu     sync.Mutex
	snap   playback.Snapshot
	redraw chan struct{}
}

// NewConsole creates a console on an initialized screen.
func NewConsole(screen tcell.Screen) *Console {
	return &Console{
		screen: screen,
		redraw: make(chan struct{}, 1),
	}
}

// OnFrame implements playback.Sink.
func (c *Console) OnFrame(snap playback.Snapshot) {
	c.setSnapshot(snap)
}

// OnStop implements playback.StopSink.
func (c *Console) OnStop(snap playback.Snapshot) {
	c.setSnapshot(snap)
}

func (c *Console) setSnapshot(snap playback.Snapshot) {
	c.mu.Lock()
	c.snap = snap
	c.mu.Unlock()

	select {
	case c.redraw <- struct{}{}:
	default:
	}
}

// Run processes input and redraws until ctx is cancelled or the user quits (Esc, q, Ctrl-C).
// The caller owns the screen and calls Fini after Run returns.
func (c *Console) Run(ctx context.Context) error {
	events := make(chan tcell.Event, 16)
	quit := make(chan struct{})
	defer close(quit)

	go func() {
		for {
			ev := c.screen.PollEvent()
			if ev == nil {
				return
			}
			select {
			case events <- ev:
			case <-quit:
				return
			}
		}
	}()

	c.Draw()
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev := <-events:
			if !c.handleInput(ev) {
				return nil
			}
		case <-c.redraw:
			c.Draw()
		}
	}
}

func (c *Console) handleInput(ev tcell.Event) bool {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		if ev.Key() == tcell.KeyEscape || ev.Key() == tcell.KeyCtrlC {
			return false
		}
		if ev.Key() == tcell.KeyRune {
			switch ev.Rune() {
			case 'q':
				return false
			case 'r':
				if c.Restart != nil {
					c.Restart()
				}
			}
		}
	case *tcell.EventResize:
		c.screen.Sync()
		c.Draw()
	}
	return true
}

// Draw renders the latest snapshot.
func (c *Console) Draw() {
	c.mu.Lock()
	snap := c.snap
	c.mu.Unlock()

	c.screen.Clear()
	w, h := c.screen.Size()

	drawText(c.screen, 0, headingRow, w, styleTitle, "Heading: ")
	drawText(c.screen, 9, headingRow, w, styleHeading, HeadingText(snap.Visible))

	state := snap.State
	if state == "" {
		state = playback.StateIdle
	}
	drawText(c.screen, 0, statusRow, w, styleStatus,
		fmt.Sprintf("%d/%d samples  %s  [r] restart  [q] quit", snap.Cursor, snap.Total, state))

	// Newest row is always the bottom visible row.
	rows := h - tableRow
	if rows > 0 {
		start := max(0, len(snap.Visible)-rows)
		for i, s := range snap.Visible[start:] {
			style := styleRow
			if start+i == len(snap.Visible)-1 {
				style = styleNewest
			}
			drawText(c.screen, 0, tableRow+i, w, style, FormatRow(s))
		}
	}

	c.screen.Show()
}

func drawText(s tcell.Screen, x, y, maxX int, style tcell.Style, text string) {
	for _, r := range text {
		if x >= maxX {
			return
		}
		s.SetContent(x, y, r, nil, style)
		x++
	}
}

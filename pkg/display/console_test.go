package display

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/gdamore/tcell/v2"

	"trailview/pkg/model"
	"trailview/pkg/playback"
)

func newTestScreen(t *testing.T, w, h int) tcell.SimulationScreen {
	t.Helper()
	screen := tcell.NewSimulationScreen("UTF-8")
	if err := screen.Init(); err != nil {
		t.Fatalf("screen init: %v", err)
	}
	screen.SetSize(w, h)
	t.Cleanup(screen.Fini)
	return screen
}

func rowText(s tcell.Screen, y int) string {
	w, _ := s.Size()
	var b strings.Builder
	for x := 0; x < w; x++ {
		r, _, _, _ := s.GetContent(x, y)
		if r == 0 {
			r = ' '
		}
		b.WriteRune(r)
	}
	return strings.TrimRight(b.String(), " ")
}

func snapshotOf(n int) playback.Snapshot {
	visible := make([]model.Sample, n)
	for i := range visible {
		visible[i] = model.NewSample(float64(i)*0.1, float64(i), 1, 0)
	}
	return playback.Snapshot{Visible: visible, Cursor: n, Total: 50, State: playback.StateRunning}
}

func TestConsole_DrawEmpty(t *testing.T) {
	screen := newTestScreen(t, 80, 10)
	c := NewConsole(screen)
	c.Draw()

	if got := rowText(screen, headingRow); got != "Heading: --" {
		t.Errorf("heading row = %q", got)
	}
	if got := rowText(screen, statusRow); !strings.HasPrefix(got, "0/0 samples  idle") {
		t.Errorf("status row = %q", got)
	}
	if got := rowText(screen, tableRow); got != "" {
		t.Errorf("expected empty table, got %q", got)
	}
}

func TestConsole_AutoScroll(t *testing.T) {
	screen := newTestScreen(t, 80, 10) // 7 table rows
	c := NewConsole(screen)

	snap := snapshotOf(20)
	c.OnFrame(snap)
	c.Draw()

	if got := rowText(screen, headingRow); got != "Heading: 3.0°" {
		t.Errorf("heading row = %q", got)
	}

	_, h := screen.Size()
	if got, want := rowText(screen, h-1), FormatRow(snap.Visible[19]); got != want {
		t.Errorf("bottom row = %q, want newest %q", got, want)
	}
	if got, want := rowText(screen, tableRow), FormatRow(snap.Visible[13]); got != want {
		t.Errorf("top row = %q, want %q", got, want)
	}
}

func TestConsole_ShortTable(t *testing.T) {
	screen := newTestScreen(t, 80, 10)
	c := NewConsole(screen)

	snap := snapshotOf(2)
	c.OnFrame(snap)
	c.Draw()

	if got, want := rowText(screen, tableRow+1), FormatRow(snap.Visible[1]); got != want {
		t.Errorf("row = %q, want %q", got, want)
	}
	if got := rowText(screen, tableRow+2); got != "" {
		t.Errorf("expected blank after newest row, got %q", got)
	}
}

func TestConsole_RunQuit(t *testing.T) {
	tests := []struct {
		name string
		key  tcell.Key
		r    rune
	}{
		{"Escape", tcell.KeyEscape, 0},
		{"CtrlC", tcell.KeyCtrlC, 0},
		{"Q", tcell.KeyRune, 'q'},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			screen := newTestScreen(t, 80, 10)
			c := NewConsole(screen)

			done := make(chan error, 1)
			go func() { done <- c.Run(context.Background()) }()

			screen.InjectKey(tt.key, tt.r, tcell.ModNone)
			select {
			case err := <-done:
				if err != nil {
					t.Errorf("Run returned %v", err)
				}
			case <-time.After(2 * time.Second):
				t.Fatal("Run did not return on quit key")
			}
		})
	}
}

func TestConsole_RunRestartAndCancel(t *testing.T) {
	screen := newTestScreen(t, 80, 10)
	c := NewConsole(screen)
	restarted := make(chan struct{}, 1)
	c.Restart = func() { restarted <- struct{}{} }

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- c.Run(ctx) }()

	screen.InjectKey(tcell.KeyRune, 'r', tcell.ModNone)
	select {
	case <-restarted:
	case <-time.After(2 * time.Second):
		t.Fatal("restart callback not called")
	}

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return on cancel")
	}
}

// internal/tui/tui.go
package tui

import (
	"context"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/Corphon/NovelForge/internal/manuscript"
	"github.com/Corphon/NovelForge/internal/utils"
)

// Options configures the interactive editor.
type Options struct {
	// AutosaveDelay is the pause after typing before scene content is saved.
	AutosaveDelay time.Duration
	Logger        *utils.Logger
	// AltScreen runs the program full screen.
	AltScreen bool
}

// Run drives ed interactively until the user quits. Pending scene edits are saved
// before it returns.
func Run(ctx context.Context, ed *manuscript.Editor, opts Options) error {
	feed := newSaveFeed(16)
	saver := manuscript.NewAutosaver(ed, manuscript.AutosaverOpts{
		Delay:   opts.AutosaveDelay,
		OnError: func(sceneID string, err error) { feed.send(autosaveMsg{sceneID: sceneID, err: err}) },
		OnSaved: func(sceneID string) { feed.send(autosaveMsg{sceneID: sceneID}) },
	})

	programOpts := []tea.ProgramOption{tea.WithContext(ctx)}
	if opts.AltScreen {
		programOpts = append(programOpts, tea.WithAltScreen())
	}
	m := newModel(ctx, ed, saver, feed.ch, opts.Logger)
	_, runErr := tea.NewProgram(m, programOpts...).Run()

	stopCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	stopErr := saver.Stop(stopCtx)
	// A save that outlived stopCtx may still report after this.
	feed.close()

	if runErr != nil {
		return runErr
	}
	return stopErr
}

// saveFeed carries autosave results to the UI. Sends after close are dropped.
type saveFeed struct {
	mu     sync.Mutex
	ch     chan autosaveMsg
	closed bool
}

func newSaveFeed(size int) *saveFeed {
	return &saveFeed{ch: make(chan autosaveMsg, size)}
}

func (f *saveFeed) send(ev autosaveMsg) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return
	}
	select {
	case f.ch <- ev:
	default:
	}
}

func (f *saveFeed) close() {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.closed {
		f.closed = true
		close(f.ch)
	}
}

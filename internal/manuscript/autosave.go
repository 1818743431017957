// internal/manuscript/autosave.go
package manuscript

import (
	"context"
	"sync"
	"time"
)

// ContentSaver is the part of the Editor the autosaver needs.
type ContentSaver interface {
	SaveSceneContent(ctx context.Context, sceneID, content string) error
}

// AutosaverOpts configures an Autosaver.
type AutosaverOpts struct {
	Delay time.Duration
	// OnError is called from the save goroutine when a save fails.
	OnError func(sceneID string, err error)
	// OnSaved is called after each successful save.
	OnSaved func(sceneID string)
}

// Autosaver debounces scene content edits: the latest content of each scene is saved
// once edits have paused for Delay.
type Autosaver struct {
	saver   ContentSaver
	delay   time.Duration
	onError func(string, error)
	onSaved func(string)

	mu      sync.Mutex
	timer   *time.Timer
	pending map[string]string
	running bool
	stopped bool
	idle    chan struct{}
}

// NewAutosaver creates an autosaver writing through saver.
func NewAutosaver(saver ContentSaver, opts AutosaverOpts) *Autosaver {
	delay := opts.Delay
	if delay <= 0 {
		delay = 2 * time.Second
	}
	idle := make(chan struct{})
	close(idle)
	return &Autosaver{
		saver:   saver,
		delay:   delay,
		onError: opts.OnError,
		onSaved: opts.OnSaved,
		pending: make(map[string]string),
		idle:    idle,
	}
}

// Edit records new content for a scene and restarts the debounce timer.
// Edits after Stop are ignored.
func (a *Autosaver) Edit(sceneID, content string) {
	if a == nil {
		return
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	if a.stopped {
		return
	}
	a.pending[sceneID] = content
	if a.timer == nil {
		a.timer = time.AfterFunc(a.delay, a.onTimer)
		return
	}
	a.timer.Reset(a.delay)
}

// Pending reports how many scenes have unsaved content.
func (a *Autosaver) Pending() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.pending)
}

func (a *Autosaver) onTimer() {
	a.mu.Lock()
	if a.running {
		// A save is in flight; try again once it has had time to finish.
		if a.timer != nil && !a.stopped {
			a.timer.Reset(a.delay)
		}
		a.mu.Unlock()
		return
	}
	batch := a.takeLocked()
	a.mu.Unlock()

	if len(batch) > 0 {
		a.save(context.Background(), batch)
	}
}

// takeLocked swaps out the pending edits and marks a run as started.
func (a *Autosaver) takeLocked() map[string]string {
	if len(a.pending) == 0 {
		return nil
	}
	batch := a.pending
	a.pending = make(map[string]string)
	a.running = true
	a.idle = make(chan struct{})
	return batch
}

func (a *Autosaver) save(ctx context.Context, batch map[string]string) error {
	var firstErr error
	for sceneID, content := range batch {
		if err := a.saver.SaveSceneContent(ctx, sceneID, content); err != nil {
			if firstErr == nil {
				firstErr = err
			}
			if a.onError != nil {
				a.onError(sceneID, err)
			}
			continue
		}
		if a.onSaved != nil {
			a.onSaved(sceneID)
		}
	}

	a.mu.Lock()
	a.running = false
	close(a.idle)
	if len(a.pending) > 0 && a.timer != nil && !a.stopped {
		a.timer.Reset(a.delay)
	}
	a.mu.Unlock()
	return firstErr
}

// Flush saves everything pending now, waiting for an in-flight save first. It returns
// the first save error.
func (a *Autosaver) Flush(ctx context.Context) error {
	for {
		a.mu.Lock()
		if a.running {
			idle := a.idle
			a.mu.Unlock()
			select {
			case <-idle:
				continue
			case <-ctx.Done():
				return ctx.Err()
			}
		}
		if a.timer != nil {
			a.timer.Stop()
		}
		batch := a.takeLocked()
		a.mu.Unlock()

		if len(batch) == 0 {
			return nil
		}
		return a.save(ctx, batch)
	}
}

// Stop flushes pending content and disables further edits.
func (a *Autosaver) Stop(ctx context.Context) error {
	a.mu.Lock()
	a.stopped = true
	if a.timer != nil {
		a.timer.Stop()
	}
	a.mu.Unlock()
	return a.Flush(ctx)
}

// internal/manuscript/editor.go
package manuscript

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"

	apperrors "github.com/Corphon/NovelForge/internal/errors"
	"github.com/Corphon/NovelForge/internal/models"
	"github.com/Corphon/NovelForge/internal/utils"
)

var (
	// ErrEditorClosed is returned when a response arrives after Close; the response is discarded.
	ErrEditorClosed = errors.New("editor closed")
	// ErrReorderInProgress rejects a drag gesture while another reorder is in flight.
	ErrReorderInProgress = errors.New("a reorder is already in progress")
	// ErrBusy rejects a create or delete while another of the same kind is in flight.
	ErrBusy = errors.New("another request of this kind is in progress")
	// ErrNoNovel is returned by actions that need a loaded manuscript.
	ErrNoNovel = errors.New("manuscript not loaded")
)

// ViewMode selects how the manuscript is presented. The document view shows scene
// prose and therefore always wants a scene selected; the grid view does not.
type ViewMode string

const (
	ViewDocument ViewMode = "document"
	ViewGrid     ViewMode = "grid"
)

// Options configures an Editor.
type Options struct {
	ViewMode ViewMode
	Logger   *utils.Logger
}

// Editor owns one novel's manuscript tree and the current selection. All state
// changes go through its methods; it is safe for concurrent use.
type Editor struct {
	backend Backend
	novelID string
	logger  *utils.Logger

	mu           sync.RWMutex
	novel        *models.Novel
	actID        string
	chapterID    string
	sceneID      string
	scrollTarget string
	viewMode     ViewMode

	reordering atomic.Bool
	creating   atomic.Bool
	deleting   atomic.Bool

	refreshGen   atomic.Uint64
	appliedGen   uint64
	session      context.Context
	closeSession context.CancelFunc
}

// NewEditor creates an editor for novelID. Nothing is fetched until Load.
func NewEditor(backend Backend, novelID string, opts Options) *Editor {
	if opts.ViewMode == "" {
		opts.ViewMode = ViewDocument
	}
	if opts.Logger == nil {
		opts.Logger = utils.GetLogger()
	}
	session, cancel := context.WithCancel(context.Background())
	return &Editor{
		backend:      backend,
		novelID:      novelID,
		logger:       opts.Logger,
		viewMode:     opts.ViewMode,
		session:      session,
		closeSession: cancel,
	}
}

// NovelID returns the id of the edited novel.
func (e *Editor) NovelID() string {
	return e.novelID
}

// Close ends the editing session. In-flight requests are cancelled and any response
// that still completes is dropped rather than applied.
func (e *Editor) Close() {
	e.closeSession()
}

// Closed reports whether Close has been called.
func (e *Editor) Closed() bool {
	return e.session.Err() != nil
}

// scope derives a request context that ends with either the caller's context or the session.
func (e *Editor) scope(ctx context.Context) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(ctx)
	stop := context.AfterFunc(e.session, cancel)
	return ctx, func() {
		stop()
		cancel()
	}
}

// Novel returns a deep copy of the loaded manuscript, nil before the first load.
func (e *Editor) Novel() *models.Novel {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.novel.Clone()
}

// ViewMode returns the current presentation mode.
func (e *Editor) ViewMode() ViewMode {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.viewMode
}

// IsReordering reports whether a reorder request is outstanding.
func (e *Editor) IsReordering() bool { return e.reordering.Load() }

// IsCreating reports whether a create request is outstanding.
func (e *Editor) IsCreating() bool { return e.creating.Load() }

// IsDeleting reports whether a delete request is outstanding.
func (e *Editor) IsDeleting() bool { return e.deleting.Load() }

// Load fetches the manuscript and, when nothing is selected yet, selects the first act.
func (e *Editor) Load(ctx context.Context) error {
	if err := e.Refresh(ctx); err != nil {
		return err
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.actID == "" {
		if act := firstAct(e.novel); act != nil {
			e.selectActLocked(act.ID)
		}
	}
	return nil
}

// Refresh refetches the whole structure and replaces the aggregate. A response that
// is older than one already applied is dropped.
func (e *Editor) Refresh(ctx context.Context) error {
	ctx, done := e.scope(ctx)
	defer done()

	gen := e.refreshGen.Add(1)
	novel, err := e.backend.GetStructure(ctx, e.novelID)
	if e.Closed() {
		return ErrEditorClosed
	}
	if err != nil {
		e.logger.Error("structure refresh failed", map[string]interface{}{
			"novel_id": e.novelID,
			"error":    err,
		})
		return apperrors.WrapError(err, "load manuscript", apperrors.ErrorTypeNetwork)
	}
	if novel == nil {
		novel = &models.Novel{ID: e.novelID}
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if gen <= e.appliedGen {
		e.logger.Debug("dropping stale structure response", map[string]interface{}{
			"novel_id":    e.novelID,
			"generation":  gen,
			"applied_gen": e.appliedGen,
		})
		return nil
	}
	e.appliedGen = gen
	e.novel = novel
	e.revalidateSelectionLocked()
	return nil
}

// revalidateSelectionLocked re-derives ancestors after the aggregate changed. Nodes
// that vanished are cleared; nodes that moved take their new parents.
func (e *Editor) revalidateSelectionLocked() {
	if e.scrollTarget != "" {
		if _, ok := locate(e.novel, e.scrollTarget); !ok {
			e.scrollTarget = ""
		}
	}
	if e.sceneID != "" {
		if act, ch, sc := findScene(e.novel, e.sceneID); sc != nil {
			e.actID, e.chapterID = act.ID, ch.ID
			return
		}
		e.sceneID = ""
	}
	if e.chapterID != "" {
		if act, ch := findChapter(e.novel, e.chapterID); ch != nil {
			e.actID = act.ID
			return
		}
		e.chapterID = ""
	}
	if e.actID != "" && findAct(e.novel, e.actID) == nil {
		e.actID = ""
	}
}

// applyIfOpen runs fn under the write lock unless the session has ended.
func (e *Editor) applyIfOpen(fn func()) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.Closed() {
		return ErrEditorClosed
	}
	fn()
	return nil
}

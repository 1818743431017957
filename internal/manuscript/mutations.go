// internal/manuscript/mutations.go
package manuscript

import (
	"context"
	"fmt"
	"strings"
	"sync/atomic"

	apperrors "github.com/Corphon/NovelForge/internal/errors"
	"github.com/Corphon/NovelForge/internal/models"
)

// Creates and deletes change membership and may renumber siblings, so every one of
// them is followed by a full refresh.

// AddAct appends an act. A blank title becomes "Act N".
func (e *Editor) AddAct(ctx context.Context, title string) (*models.Act, error) {
	e.mu.RLock()
	if e.novel == nil {
		e.mu.RUnlock()
		return nil, ErrNoNovel
	}
	title = defaultTitle(title, "Act", len(e.novel.Acts)+1)
	e.mu.RUnlock()

	var created *models.Act
	err := e.mutate(ctx, &e.creating, "create act", func(ctx context.Context) error {
		act, err := e.backend.CreateAct(ctx, e.novelID, models.CreateActRequest{Title: title})
		created = act
		return err
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// AddChapter appends a chapter to an act. A blank title becomes "Chapter N".
func (e *Editor) AddChapter(ctx context.Context, actID, title string) (*models.Chapter, error) {
	e.mu.RLock()
	act := findAct(e.novel, actID)
	if act == nil {
		e.mu.RUnlock()
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("act %s not found", actID), nil)
	}
	title = defaultTitle(title, "Chapter", len(act.Chapters)+1)
	e.mu.RUnlock()

	var created *models.Chapter
	err := e.mutate(ctx, &e.creating, "create chapter", func(ctx context.Context) error {
		ch, err := e.backend.CreateChapter(ctx, e.novelID, models.CreateChapterRequest{ActID: actID, Title: title})
		created = ch
		return err
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// AddScene appends a scene to a chapter. Scenes may stay untitled.
func (e *Editor) AddScene(ctx context.Context, chapterID, title string) (*models.Scene, error) {
	e.mu.RLock()
	_, ch := findChapter(e.novel, chapterID)
	e.mu.RUnlock()
	if ch == nil {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("chapter %s not found", chapterID), nil)
	}

	var created *models.Scene
	err := e.mutate(ctx, &e.creating, "create scene", func(ctx context.Context) error {
		sc, err := e.backend.CreateScene(ctx, e.novelID, models.CreateSceneRequest{
			ChapterID: chapterID,
			Title:     strings.TrimSpace(title),
		})
		created = sc
		return err
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// DeleteAct removes an act with its chapters and scenes.
func (e *Editor) DeleteAct(ctx context.Context, actID string) error {
	if err := e.requireNode(ItemAct, actID); err != nil {
		return err
	}
	return e.mutate(ctx, &e.deleting, "delete act", func(ctx context.Context) error {
		return e.backend.DeleteAct(ctx, e.novelID, actID)
	})
}

// DeleteChapter removes a chapter with its scenes.
func (e *Editor) DeleteChapter(ctx context.Context, chapterID string) error {
	if err := e.requireNode(ItemChapter, chapterID); err != nil {
		return err
	}
	return e.mutate(ctx, &e.deleting, "delete chapter", func(ctx context.Context) error {
		return e.backend.DeleteChapter(ctx, e.novelID, chapterID)
	})
}

// DeleteScene removes a scene.
func (e *Editor) DeleteScene(ctx context.Context, sceneID string) error {
	if err := e.requireNode(ItemScene, sceneID); err != nil {
		return err
	}
	return e.mutate(ctx, &e.deleting, "delete scene", func(ctx context.Context) error {
		return e.backend.DeleteScene(ctx, e.novelID, sceneID)
	})
}

// DeleteAll wipes the whole structure of the novel.
func (e *Editor) DeleteAll(ctx context.Context) error {
	return e.mutate(ctx, &e.deleting, "delete structure", func(ctx context.Context) error {
		return e.backend.DeleteStructure(ctx, e.novelID)
	})
}

// SaveSceneContent stores a scene's prose and patches content and word count in
// place. Content never affects ordering, so no refresh follows.
func (e *Editor) SaveSceneContent(ctx context.Context, sceneID, content string) error {
	if err := e.requireNode(ItemScene, sceneID); err != nil {
		return err
	}

	ctx, done := e.scope(ctx)
	defer done()

	updated, err := e.backend.UpdateScene(ctx, e.novelID, sceneID, models.UpdateSceneRequest{Content: &content})
	if e.Closed() {
		return ErrEditorClosed
	}
	if err != nil {
		return apperrors.WrapError(err, "save scene", apperrors.ErrorTypeNetwork)
	}

	words := models.CountWords(content)
	if updated != nil && updated.WordCount > 0 {
		words = updated.WordCount
	}
	return e.applyIfOpen(func() {
		if _, _, sc := findScene(e.novel, sceneID); sc != nil {
			sc.Content = content
			sc.WordCount = words
			if updated != nil && !updated.UpdatedAt.IsZero() {
				sc.UpdatedAt = updated.UpdatedAt
			}
		}
	})
}

// SetScenePOV assigns (or, with an empty id, clears) a scene's point-of-view character.
func (e *Editor) SetScenePOV(ctx context.Context, sceneID, characterID string) error {
	if err := e.requireNode(ItemScene, sceneID); err != nil {
		return err
	}

	ctx, done := e.scope(ctx)
	defer done()

	pov := characterID
	if _, err := e.backend.UpdateScene(ctx, e.novelID, sceneID, models.UpdateSceneRequest{POVCharacterID: &pov}); err != nil {
		if e.Closed() {
			return ErrEditorClosed
		}
		return apperrors.WrapError(err, "assign point of view", apperrors.ErrorTypeNetwork)
	}
	return e.applyIfOpen(func() {
		if _, _, sc := findScene(e.novel, sceneID); sc != nil {
			if characterID == "" {
				sc.POVCharacterID = nil
			} else {
				sc.POVCharacterID = &pov
			}
		}
	})
}

// mutate runs one create or delete call guarded by flag, then refreshes. The refresh
// also runs after a failed call so the tree reflects whatever the server kept.
func (e *Editor) mutate(ctx context.Context, flag *atomic.Bool, op string, call func(context.Context) error) error {
	if !flag.CompareAndSwap(false, true) {
		return ErrBusy
	}
	defer flag.Store(false)

	ctx, done := e.scope(ctx)
	defer done()

	callErr := call(ctx)
	if e.Closed() {
		return ErrEditorClosed
	}
	if callErr != nil {
		e.logger.Warn("manuscript mutation failed", map[string]interface{}{
			"novel_id":  e.novelID,
			"operation": op,
			"error":     callErr,
		})
		_ = e.Refresh(ctx)
		return apperrors.WrapError(callErr, op, apperrors.ErrorTypeNetwork)
	}

	e.logger.Info("manuscript mutated", map[string]interface{}{
		"novel_id":  e.novelID,
		"operation": op,
	})
	return e.Refresh(ctx)
}

func (e *Editor) requireNode(itemType ItemType, id string) error {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if e.novel == nil {
		return ErrNoNovel
	}
	if p, ok := locate(e.novel, id); !ok || p.Level != itemType {
		return apperrors.NewNotFoundError(fmt.Sprintf("%s %s not found", itemType, id), nil)
	}
	return nil
}

func defaultTitle(title, kind string, n int) string {
	if t := strings.TrimSpace(title); t != "" {
		return t
	}
	return fmt.Sprintf("%s %d", kind, n)
}

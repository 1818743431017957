// internal/manuscript/rename.go
package manuscript

import (
	"context"
	"fmt"
	"strings"

	apperrors "github.com/Corphon/NovelForge/internal/errors"
)

// Renames never change ordering or membership, so a successful rename patches the
// one title in place instead of refetching the structure.

// RenameAct sets an act's title.
func (e *Editor) RenameAct(ctx context.Context, actID, title string) error {
	title, err := e.checkRename(ItemAct, actID, title)
	if err != nil {
		return err
	}

	ctx, done := e.scope(ctx)
	defer done()

	if _, err := e.backend.RenameAct(ctx, e.novelID, actID, title); err != nil {
		if e.Closed() {
			return ErrEditorClosed
		}
		return e.renameFailed(ItemAct, actID, err)
	}
	return e.applyIfOpen(func() {
		if act := findAct(e.novel, actID); act != nil {
			act.Title = title
		}
	})
}

// RenameChapter sets a chapter's title.
func (e *Editor) RenameChapter(ctx context.Context, chapterID, title string) error {
	title, err := e.checkRename(ItemChapter, chapterID, title)
	if err != nil {
		return err
	}

	ctx, done := e.scope(ctx)
	defer done()

	if _, err := e.backend.RenameChapter(ctx, e.novelID, chapterID, title); err != nil {
		if e.Closed() {
			return ErrEditorClosed
		}
		return e.renameFailed(ItemChapter, chapterID, err)
	}
	return e.applyIfOpen(func() {
		if _, ch := findChapter(e.novel, chapterID); ch != nil {
			ch.Title = title
		}
	})
}

// RenameScene sets a scene's title. A blank title is allowed for scenes; they then
// display as "Scene N".
func (e *Editor) RenameScene(ctx context.Context, sceneID, title string) error {
	title, err := e.checkRename(ItemScene, sceneID, title)
	if err != nil {
		return err
	}

	ctx, done := e.scope(ctx)
	defer done()

	if _, err := e.backend.RenameScene(ctx, e.novelID, sceneID, title); err != nil {
		if e.Closed() {
			return ErrEditorClosed
		}
		return e.renameFailed(ItemScene, sceneID, err)
	}
	return e.applyIfOpen(func() {
		if _, _, sc := findScene(e.novel, sceneID); sc != nil {
			sc.Title = title
		}
	})
}

// checkRename validates locally so a bad id or title never reaches the network.
func (e *Editor) checkRename(itemType ItemType, id, title string) (string, error) {
	title = strings.TrimSpace(title)
	if title == "" && itemType != ItemScene {
		return "", apperrors.NewValidationError(fmt.Sprintf("%s title must not be empty", itemType), nil)
	}

	e.mu.RLock()
	defer e.mu.RUnlock()
	if e.novel == nil {
		return "", ErrNoNovel
	}
	p, ok := locate(e.novel, id)
	if !ok || p.Level != itemType {
		return "", apperrors.NewNotFoundError(fmt.Sprintf("%s %s not found", itemType, id), nil)
	}
	return title, nil
}

func (e *Editor) renameFailed(itemType ItemType, id string, err error) error {
	e.logger.Warn("rename failed", map[string]interface{}{
		"novel_id": e.novelID,
		"type":     string(itemType),
		"id":       id,
		"error":    err,
	})
	return apperrors.WrapError(err, fmt.Sprintf("rename %s", itemType), apperrors.ErrorTypeNetwork)
}

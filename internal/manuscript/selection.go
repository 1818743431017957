// internal/manuscript/selection.go
package manuscript

import "github.com/Corphon/NovelForge/internal/models"

// Selection is a snapshot of the current act, chapter and scene. Any level may be nil.
type Selection struct {
	Act     *models.Act
	Chapter *models.Chapter
	Scene   *models.Scene
}

// IDs returns the selected ids, empty where nothing is selected.
func (s Selection) IDs() (actID, chapterID, sceneID string) {
	if s.Act != nil {
		actID = s.Act.ID
	}
	if s.Chapter != nil {
		chapterID = s.Chapter.ID
	}
	if s.Scene != nil {
		sceneID = s.Scene.ID
	}
	return
}

// Selection resolves the selected ids against the current aggregate, so title
// patches are visible without refetching.
func (e *Editor) Selection() Selection {
	e.mu.RLock()
	defer e.mu.RUnlock()

	var sel Selection
	if act := findAct(e.novel, e.actID); act != nil {
		c := act.Clone()
		sel.Act = &c
	}
	if _, ch := findChapter(e.novel, e.chapterID); ch != nil {
		c := ch.Clone()
		sel.Chapter = &c
	}
	if _, _, sc := findScene(e.novel, e.sceneID); sc != nil {
		c := sc.Clone()
		sel.Scene = &c
	}
	return sel
}

// SelectScene selects a scene and its real ancestors. It reports false and changes
// nothing when no manuscript is loaded or the id is unknown.
func (e *Editor) SelectScene(sceneID string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.selectSceneLocked(sceneID)
}

func (e *Editor) selectSceneLocked(sceneID string) bool {
	act, ch, sc := findScene(e.novel, sceneID)
	if sc == nil {
		return false
	}
	e.actID, e.chapterID, e.sceneID = act.ID, ch.ID, sc.ID
	return true
}

// SelectChapter selects a chapter and its act and clears the scene. In the document
// view the chapter's first scene is then selected; an empty chapter leaves no scene.
func (e *Editor) SelectChapter(chapterID string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.selectChapterLocked(chapterID)
}

func (e *Editor) selectChapterLocked(chapterID string) bool {
	act, ch := findChapter(e.novel, chapterID)
	if ch == nil {
		return false
	}
	e.actID, e.chapterID, e.sceneID = act.ID, ch.ID, ""
	if e.viewMode == ViewDocument {
		if sc := firstScene(ch); sc != nil {
			e.sceneID = sc.ID
		}
	}
	return true
}

// SelectAct selects an act, clears chapter and scene, then selects the act's first
// chapter and, in the document view, that chapter's first scene.
func (e *Editor) SelectAct(actID string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.selectActLocked(actID)
}

func (e *Editor) selectActLocked(actID string) bool {
	act := findAct(e.novel, actID)
	if act == nil {
		return false
	}
	e.actID, e.chapterID, e.sceneID = act.ID, "", ""
	if ch := firstChapter(act); ch != nil {
		e.chapterID = ch.ID
		if e.viewMode == ViewDocument {
			if sc := firstScene(ch); sc != nil {
				e.sceneID = sc.ID
			}
		}
	}
	return true
}

// ClearSelection drops the whole selection.
func (e *Editor) ClearSelection() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.actID, e.chapterID, e.sceneID = "", "", ""
}

// SetViewMode switches presentation. Entering the document view with a chapter but no
// scene selected picks the chapter's first scene.
func (e *Editor) SetViewMode(mode ViewMode) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.viewMode = mode
	if mode == ViewDocument && e.sceneID == "" && e.chapterID != "" {
		_, ch := findChapter(e.novel, e.chapterID)
		if sc := firstScene(ch); sc != nil {
			e.sceneID = sc.ID
		}
	}
}

// ScrollTo records a scroll target without touching the selection and returns where
// the node lives. Unknown ids report false and leave the target unchanged.
func (e *Editor) ScrollTo(id string) (Path, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	p, ok := locate(e.novel, id)
	if ok {
		e.scrollTarget = id
	}
	return p, ok
}

// ScrollTarget returns the last ScrollTo target that still exists.
func (e *Editor) ScrollTarget() (Path, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if e.scrollTarget == "" {
		return Path{}, false
	}
	return locate(e.novel, e.scrollTarget)
}

// Locate resolves any node id to its path.
func (e *Editor) Locate(id string) (Path, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return locate(e.novel, id)
}

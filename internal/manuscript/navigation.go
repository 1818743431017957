// internal/manuscript/navigation.go
package manuscript

import "github.com/Corphon/NovelForge/internal/models"

// NavItem is one entry of a navigation list.
type NavItem struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Order     int    `json:"order"`
	IsCurrent bool   `json:"isCurrent"`
}

// Navigation is the derived state behind next/previous controls for one level.
// The zero-item value is inert: no current entry, nothing next or previous.
type Navigation struct {
	Level        ItemType  `json:"level"`
	Items        []NavItem `json:"items"`
	CurrentIndex int       `json:"currentIndex"`
	NextID       string    `json:"nextId,omitempty"`
	PreviousID   string    `json:"previousId,omitempty"`
}

func emptyNavigation(level ItemType) Navigation {
	return Navigation{Level: level, Items: []NavItem{}, CurrentIndex: -1}
}

// HasNext reports whether a next target exists.
func (n Navigation) HasNext() bool { return n.NextID != "" }

// HasPrevious reports whether a previous target exists.
func (n Navigation) HasPrevious() bool { return n.PreviousID != "" }

// Current returns the current item, if any.
func (n Navigation) Current() (NavItem, bool) {
	if n.CurrentIndex < 0 || n.CurrentIndex >= len(n.Items) {
		return NavItem{}, false
	}
	return n.Items[n.CurrentIndex], true
}

// Position is the 1-based position of the current item, 0 when there is none.
func (n Navigation) Position() int {
	if _, ok := n.Current(); !ok {
		return 0
	}
	return n.CurrentIndex + 1
}

// SceneNavigation lists the selected chapter's scenes. Next and previous follow
// reading order across chapter and act boundaries.
func (e *Editor) SceneNavigation() Navigation {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.sceneNavigationLocked()
}

func (e *Editor) sceneNavigationLocked() Navigation {
	_, ch := findChapter(e.novel, e.chapterID)
	if ch == nil {
		return emptyNavigation(ItemScene)
	}

	nav := emptyNavigation(ItemScene)
	for i, sc := range models.SortedScenes(ch.Scenes) {
		current := sc.ID == e.sceneID
		if current {
			nav.CurrentIndex = i
		}
		nav.Items = append(nav.Items, NavItem{ID: sc.ID, Title: sc.DisplayTitle(), Order: sc.Order, IsCurrent: current})
	}
	if nav.CurrentIndex < 0 {
		return nav
	}

	order := documentOrder(e.novel)
	for i, ref := range order {
		if ref.SceneID != e.sceneID {
			continue
		}
		if i+1 < len(order) {
			nav.NextID = order[i+1].SceneID
		}
		if i > 0 {
			nav.PreviousID = order[i-1].SceneID
		}
		break
	}
	return nav
}

// ChapterNavigation lists the selected act's chapters. It stops at the act's boundary.
func (e *Editor) ChapterNavigation() Navigation {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.chapterNavigationLocked()
}

func (e *Editor) chapterNavigationLocked() Navigation {
	act := findAct(e.novel, e.actID)
	if act == nil {
		return emptyNavigation(ItemChapter)
	}

	nav := emptyNavigation(ItemChapter)
	for i, ch := range models.SortedChapters(act.Chapters) {
		current := ch.ID == e.chapterID
		if current {
			nav.CurrentIndex = i
		}
		nav.Items = append(nav.Items, NavItem{ID: ch.ID, Title: ch.Title, Order: ch.Order, IsCurrent: current})
	}
	setNeighbours(&nav)
	return nav
}

// ActNavigation lists the novel's acts.
func (e *Editor) ActNavigation() Navigation {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.actNavigationLocked()
}

func (e *Editor) actNavigationLocked() Navigation {
	if e.novel == nil {
		return emptyNavigation(ItemAct)
	}

	nav := emptyNavigation(ItemAct)
	for i, act := range models.SortedActs(e.novel.Acts) {
		current := act.ID == e.actID
		if current {
			nav.CurrentIndex = i
		}
		nav.Items = append(nav.Items, NavItem{ID: act.ID, Title: act.Title, Order: act.Order, IsCurrent: current})
	}
	setNeighbours(&nav)
	return nav
}

func setNeighbours(nav *Navigation) {
	i := nav.CurrentIndex
	if i < 0 {
		return
	}
	if i+1 < len(nav.Items) {
		nav.NextID = nav.Items[i+1].ID
	}
	if i > 0 {
		nav.PreviousID = nav.Items[i-1].ID
	}
}

// NextScene moves the selection to the next scene in reading order.
func (e *Editor) NextScene() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	nav := e.sceneNavigationLocked()
	return nav.HasNext() && e.selectSceneLocked(nav.NextID)
}

// PreviousScene moves the selection to the previous scene in reading order.
func (e *Editor) PreviousScene() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	nav := e.sceneNavigationLocked()
	return nav.HasPrevious() && e.selectSceneLocked(nav.PreviousID)
}

// NextChapter selects the next chapter of the current act.
func (e *Editor) NextChapter() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	nav := e.chapterNavigationLocked()
	return nav.HasNext() && e.selectChapterLocked(nav.NextID)
}

// PreviousChapter selects the previous chapter of the current act.
func (e *Editor) PreviousChapter() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	nav := e.chapterNavigationLocked()
	return nav.HasPrevious() && e.selectChapterLocked(nav.PreviousID)
}

// NextAct selects the next act.
func (e *Editor) NextAct() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	nav := e.actNavigationLocked()
	return nav.HasNext() && e.selectActLocked(nav.NextID)
}

// PreviousAct selects the previous act.
func (e *Editor) PreviousAct() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	nav := e.actNavigationLocked()
	return nav.HasPrevious() && e.selectActLocked(nav.PreviousID)
}

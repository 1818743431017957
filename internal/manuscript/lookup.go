// internal/manuscript/lookup.go
package manuscript

import "github.com/Corphon/NovelForge/internal/models"

// Parent lookups scan the aggregate on every call. The tree is small and replaced
// wholesale on refresh, so there are no back-pointers to go stale.

func findAct(n *models.Novel, actID string) *models.Act {
	if n == nil || actID == "" {
		return nil
	}
	for i := range n.Acts {
		if n.Acts[i].ID == actID {
			return &n.Acts[i]
		}
	}
	return nil
}

func findChapter(n *models.Novel, chapterID string) (*models.Act, *models.Chapter) {
	if n == nil || chapterID == "" {
		return nil, nil
	}
	for i := range n.Acts {
		act := &n.Acts[i]
		for j := range act.Chapters {
			if act.Chapters[j].ID == chapterID {
				return act, &act.Chapters[j]
			}
		}
	}
	return nil, nil
}

func findScene(n *models.Novel, sceneID string) (*models.Act, *models.Chapter, *models.Scene) {
	if n == nil || sceneID == "" {
		return nil, nil, nil
	}
	for i := range n.Acts {
		act := &n.Acts[i]
		for j := range act.Chapters {
			ch := &act.Chapters[j]
			for k := range ch.Scenes {
				if ch.Scenes[k].ID == sceneID {
					return act, ch, &ch.Scenes[k]
				}
			}
		}
	}
	return nil, nil, nil
}

// firstAct picks the lowest order; on a tie the earlier array entry wins.
func firstAct(n *models.Novel) *models.Act {
	if n == nil {
		return nil
	}
	var best *models.Act
	for i := range n.Acts {
		if best == nil || n.Acts[i].Order < best.Order {
			best = &n.Acts[i]
		}
	}
	return best
}

func firstChapter(a *models.Act) *models.Chapter {
	if a == nil {
		return nil
	}
	var best *models.Chapter
	for i := range a.Chapters {
		if best == nil || a.Chapters[i].Order < best.Order {
			best = &a.Chapters[i]
		}
	}
	return best
}

func firstScene(c *models.Chapter) *models.Scene {
	if c == nil {
		return nil
	}
	var best *models.Scene
	for i := range c.Scenes {
		if best == nil || c.Scenes[i].Order < best.Order {
			best = &c.Scenes[i]
		}
	}
	return best
}

// sceneRef is one scene in reading order together with its ancestors.
type sceneRef struct {
	ActID     string
	ChapterID string
	SceneID   string
}

// documentOrder flattens the manuscript into reading order: acts, then chapters,
// then scenes, each level sorted by order.
func documentOrder(n *models.Novel) []sceneRef {
	if n == nil {
		return nil
	}
	var out []sceneRef
	for _, act := range models.SortedActs(n.Acts) {
		for _, ch := range models.SortedChapters(act.Chapters) {
			for _, sc := range models.SortedScenes(ch.Scenes) {
				out = append(out, sceneRef{ActID: act.ID, ChapterID: ch.ID, SceneID: sc.ID})
			}
		}
	}
	return out
}

// Path locates a node in the tree. Level tells which ids are meaningful.
type Path struct {
	Level     ItemType `json:"level"`
	ActID     string   `json:"actId"`
	ChapterID string   `json:"chapterId,omitempty"`
	SceneID   string   `json:"sceneId,omitempty"`
}

// locate resolves any act, chapter or scene id to its path.
func locate(n *models.Novel, id string) (Path, bool) {
	if act := findAct(n, id); act != nil {
		return Path{Level: ItemAct, ActID: act.ID}, true
	}
	if act, ch := findChapter(n, id); ch != nil {
		return Path{Level: ItemChapter, ActID: act.ID, ChapterID: ch.ID}, true
	}
	if act, ch, sc := findScene(n, id); sc != nil {
		return Path{Level: ItemScene, ActID: act.ID, ChapterID: ch.ID, SceneID: sc.ID}, true
	}
	return Path{}, false
}
